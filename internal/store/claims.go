package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/models"
)

// CreateClaim persists a new claim. The partial unique index on active
// claims turns a duplicate submission into apperr.ErrConflict even when two
// requests race past the service-level check.
func (db *DB) CreateClaim(c *models.Claim) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = models.ClaimPending
	}
	answers, _ := json.Marshal(c.Answers)

	_, err := db.conn.Exec(`
		INSERT INTO claims (id, item_id, poster_email, claimant_name, claimant_email,
			answers, confidence, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.ItemID, c.PosterEmail, c.ClaimantName, c.ClaimantEmail,
		string(answers), c.Confidence, c.Status, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("store: create claim: %w", err)
	}
	return nil
}

const claimColumns = `id, item_id, poster_email, claimant_name, claimant_email,
	answers, confidence, status, created_at`

func scanClaim(row interface{ Scan(...any) error }) (*models.Claim, error) {
	var c models.Claim
	var answers string
	err := row.Scan(&c.ID, &c.ItemID, &c.PosterEmail, &c.ClaimantName, &c.ClaimantEmail,
		&answers, &c.Confidence, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(answers), &c.Answers)
	return &c, nil
}

// GetClaim returns a single claim by id.
func (db *DB) GetClaim(id string) (*models.Claim, error) {
	row := db.conn.QueryRow(`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get claim: %w", err)
	}
	return c, nil
}

// ActiveClaim returns the non-rejected claim a claimant holds on an item,
// or apperr.ErrNotFound when there is none.
func (db *DB) ActiveClaim(itemID, claimantEmail string) (*models.Claim, error) {
	row := db.conn.QueryRow(`SELECT `+claimColumns+` FROM claims
		WHERE item_id = ? AND claimant_email = ? COLLATE NOCASE AND status != ?`,
		itemID, claimantEmail, models.ClaimRejected)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: active claim: %w", err)
	}
	return c, nil
}

// ClaimForParticipant returns the most recent claim on an item in which the
// given email is either side (claimant or item poster).
func (db *DB) ClaimForParticipant(itemID, email string) (*models.Claim, error) {
	row := db.conn.QueryRow(`SELECT `+claimColumns+` FROM claims
		WHERE item_id = ? AND (claimant_email = ? COLLATE NOCASE OR poster_email = ? COLLATE NOCASE)
		ORDER BY created_at DESC LIMIT 1`, itemID, email, email)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: claim for participant: %w", err)
	}
	return c, nil
}

// UpdateClaimStatus moves a claim from one lifecycle status to another. The
// write is conditioned on the expected current status so two racing
// transitions cannot both succeed; losing the race is apperr.ErrConflict.
func (db *DB) UpdateClaimStatus(id, from, to string) error {
	res, err := db.conn.Exec(`UPDATE claims SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return fmt.Errorf("store: update claim status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: claim is no longer %s", apperr.ErrConflict, from)
	}
	return nil
}
