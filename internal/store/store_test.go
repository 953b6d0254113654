package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/models"
	"github.com/retracehq/retrace/internal/store"
	"github.com/retracehq/retrace/internal/testutil"
)

func newItem(itemType, title, city string) *models.Item {
	return &models.Item{
		Type:     itemType,
		Category: "Mobile",
		Title:    title,
		Location: models.Location{City: city},
		Email:    "poster@example.com",
	}
}

func TestItemRoundTrip(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "black iphone", "Pune")
	item.Location.Area = "Koregaon Park"
	item.Keywords = []string{"iphone", "cracked"}
	item.Questions = []models.Question{{Question: "lock screen photo?", Answer: "a dog"}}
	item.Phone = "555-0100"

	if err := db.CreateItem(item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("CreateItem did not assign an id")
	}

	got, err := db.GetItem(item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Title != item.Title || got.Location.Area != item.Location.Area {
		t.Errorf("got %+v", got)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("keywords = %v", got.Keywords)
	}
	// Expected answers are hidden from the API but must survive storage.
	if len(got.Questions) != 1 || got.Questions[0].Answer != "a dog" {
		t.Errorf("questions = %+v", got.Questions)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status = %q, want pending default", got.Status)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := db.GetItem("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListItems_Filters(t *testing.T) {
	db := testutil.TestDB(t)

	a := newItem(models.TypeLost, "lost wallet", "Pune")
	a.Category = "Wallet"
	b := newItem(models.TypeFound, "found phone", "Mumbai")
	for _, it := range []*models.Item{a, b} {
		if err := db.CreateItem(it); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListItems(store.ItemFilter{Type: models.TypeLost})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("type filter got %d items", len(got))
	}

	// City matching is case-insensitive.
	got, err = db.ListItems(store.ItemFilter{City: "pune"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("city filter got %d items", len(got))
	}

	got, err = db.ListItems(store.ItemFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("unfiltered got %d items, want 2", len(got))
	}
}

func TestListItems_NewestFirst(t *testing.T) {
	db := testutil.TestDB(t)

	old := newItem(models.TypeLost, "old", "Pune")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	recent := newItem(models.TypeLost, "recent", "Pune")
	for _, it := range []*models.Item{old, recent} {
		if err := db.CreateItem(it); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListItems(store.ItemFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != recent.ID {
		t.Errorf("order = %v", []string{got[0].Title, got[1].Title})
	}
}

func TestListCandidates_ExcludesResolved(t *testing.T) {
	db := testutil.TestDB(t)

	active := newItem(models.TypeFound, "active", "Pune")
	done := newItem(models.TypeFound, "done", "Pune")
	other := newItem(models.TypeLost, "other side", "Pune")
	for _, it := range []*models.Item{active, done, other} {
		if err := db.CreateItem(it); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.UpdateItemStatus(done.ID, models.StatusResolved); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListCandidates(models.TypeFound)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Errorf("candidates = %d, want only the active found item", len(got))
	}
}

func TestUpdateItemStatus_NotFound(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.UpdateItemStatus("missing", models.StatusApproved); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteItem_CascadesClaims(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}
	claim := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(claim); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteItem(item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := db.GetClaim(claim.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("claim survived item deletion: %v", err)
	}
	if err := db.DeleteItem(item.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestCreateClaim_ActiveUniquePerClaimant(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}

	first := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(first); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	dup := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(dup); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate claim err = %v, want ErrConflict", err)
	}

	// A different claimant is fine.
	other := &models.Claim{ItemID: item.ID, ClaimantEmail: "priya@example.com"}
	if err := db.CreateClaim(other); err != nil {
		t.Fatalf("second claimant: %v", err)
	}

	// Rejection frees the slot.
	if err := db.UpdateClaimStatus(first.ID, models.ClaimPending, models.ClaimRejected); err != nil {
		t.Fatal(err)
	}
	retry := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(retry); err != nil {
		t.Errorf("claim after rejection: %v, want success", err)
	}
}

func TestCreateClaim_ActiveUniqueIgnoresEmailCase(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateClaim(&models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}); err != nil {
		t.Fatal(err)
	}
	dup := &models.Claim{ItemID: item.ID, ClaimantEmail: "Omar@Example.COM"}
	if err := db.CreateClaim(dup); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("recased duplicate err = %v, want ErrConflict", err)
	}
}

func TestUpdateClaimStatus_StaleStatusConflict(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}
	claim := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(claim); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateClaimStatus(claim.ID, models.ClaimPending, models.ClaimApproved); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// A second writer still holding the pending snapshot loses.
	err := db.UpdateClaimStatus(claim.ID, models.ClaimPending, models.ClaimRejected)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("stale transition err = %v, want ErrConflict", err)
	}
	got, err := db.GetClaim(claim.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.ClaimApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
}

func TestActiveClaim_IgnoresRejected(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}
	claim := &models.Claim{ItemID: item.ID, ClaimantEmail: "omar@example.com"}
	if err := db.CreateClaim(claim); err != nil {
		t.Fatal(err)
	}

	if _, err := db.ActiveClaim(item.ID, "omar@example.com"); err != nil {
		t.Fatalf("ActiveClaim: %v", err)
	}
	if err := db.UpdateClaimStatus(claim.ID, models.ClaimPending, models.ClaimRejected); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ActiveClaim(item.ID, "omar@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound once rejected", err)
	}
}

func TestClaimForParticipant_EitherSide(t *testing.T) {
	db := testutil.TestDB(t)

	item := newItem(models.TypeFound, "phone", "Pune")
	if err := db.CreateItem(item); err != nil {
		t.Fatal(err)
	}
	claim := &models.Claim{
		ItemID:        item.ID,
		PosterEmail:   "poster@example.com",
		ClaimantEmail: "omar@example.com",
	}
	if err := db.CreateClaim(claim); err != nil {
		t.Fatal(err)
	}

	for _, email := range []string{"omar@example.com", "POSTER@example.com"} {
		got, err := db.ClaimForParticipant(item.ID, email)
		if err != nil {
			t.Fatalf("ClaimForParticipant(%q): %v", email, err)
		}
		if got.ID != claim.ID {
			t.Errorf("got claim %q", got.ID)
		}
	}
	if _, err := db.ClaimForParticipant(item.ID, "stranger@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stranger err = %v, want ErrNotFound", err)
	}
}

func TestInsertNotification_MatchDedup(t *testing.T) {
	db := testutil.TestDB(t)

	user := &models.User{Name: "Omar", Email: "omar@example.com"}
	if err := db.CreateUser(user); err != nil {
		t.Fatal(err)
	}

	n := &models.Notification{
		UserID: user.ID,
		Type:   models.NotifMatchFound,
		Title:  "80% Match Found!",
		ItemID: "item-1",
	}
	created, err := db.InsertNotification(n)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	again := &models.Notification{UserID: user.ID, Type: models.NotifMatchFound, ItemID: "item-1"}
	created, err = db.InsertNotification(again)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if created {
		t.Error("duplicate match notification was created")
	}

	// claim_event notifications are not deduplicated.
	for i := 0; i < 2; i++ {
		created, err = db.InsertNotification(&models.Notification{
			UserID: user.ID, Type: models.NotifClaimEvent, ItemID: "item-1",
		})
		if err != nil || !created {
			t.Fatalf("claim_event insert %d: created=%v err=%v", i, created, err)
		}
	}
}

func TestNotifications_FilterByType(t *testing.T) {
	db := testutil.TestDB(t)

	user := &models.User{Email: "omar@example.com"}
	if err := db.CreateUser(user); err != nil {
		t.Fatal(err)
	}
	for _, n := range []*models.Notification{
		{UserID: user.ID, Type: models.NotifMatchFound, ItemID: "item-1"},
		{UserID: user.ID, Type: models.NotifClaimEvent, ItemID: "item-1"},
	} {
		if _, err := db.InsertNotification(n); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := db.ListNotifications(user.ID, false, models.NotifMatchFound)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Type != models.NotifMatchFound {
		t.Errorf("matches = %+v, want one match_found", matches)
	}
	all, err := db.ListNotifications(user.ID, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	db := testutil.TestDB(t)

	user := &models.User{Email: "omar@example.com"}
	if err := db.CreateUser(user); err != nil {
		t.Fatal(err)
	}
	n := &models.Notification{UserID: user.ID, Type: models.NotifSystem, Title: "hello"}
	if _, err := db.InsertNotification(n); err != nil {
		t.Fatal(err)
	}

	unread, err := db.ListNotifications(user.ID, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}

	if err := db.MarkNotificationRead(unread[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	unread, err = db.ListNotifications(user.ID, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 0 {
		t.Errorf("unread after read = %d, want 0", len(unread))
	}
	all, err := db.ListNotifications(user.ID, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || !all[0].Read {
		t.Errorf("all = %+v", all)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := testutil.TestDB(t)

	if err := db.CreateUser(&models.User{Email: "omar@example.com"}); err != nil {
		t.Fatal(err)
	}
	err := db.CreateUser(&models.User{Email: "omar@example.com"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUserByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.TestDB(t)

	user := &models.User{Name: "Omar", Email: "Omar@Example.com"}
	if err := db.CreateUser(user); err != nil {
		t.Fatal(err)
	}
	got, err := db.UserByEmail("omar@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got %+v", got)
	}
	if _, err := db.UserByEmail("nobody@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
}
