package claims

import "github.com/retracehq/retrace/internal/models"

// Roles a claim authority can hold. The real-world meaning of the item
// poster flips with the item's disposition: a found-item poster is the
// finder judging a claimant's proof, a lost-item poster is the owner being
// offered their item back.
const (
	RoleFinder = "finder"
	RoleOwner  = "owner"
)

// Authority names the party allowed to approve, reject, and resolve claims
// on an item.
type Authority struct {
	Role  string
	Email string
}

// Resolve computes claim authority for an item once, at load time. In both
// dispositions the item poster holds approval authority; only the role name
// differs. All call sites must go through this function rather than
// re-deriving the rule.
func Resolve(item *models.Item) Authority {
	role := RoleOwner
	if item.Type == models.TypeFound {
		role = RoleFinder
	}
	return Authority{Role: role, Email: item.Email}
}
