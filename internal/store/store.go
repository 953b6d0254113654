// Package store provides SQLite-backed persistence for items, claims,
// notifications, and notification-routing users.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/retracehq/retrace/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	area        TEXT NOT NULL DEFAULT '',
	landmark    TEXT NOT NULL DEFAULT '',
	keywords    TEXT NOT NULL DEFAULT '[]',
	questions   TEXT NOT NULL DEFAULT '[]',
	poster_name TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type, status);
CREATE INDEX IF NOT EXISTS idx_items_city ON items(city);
CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS claims (
	id             TEXT PRIMARY KEY,
	item_id        TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	poster_email   TEXT NOT NULL DEFAULT '',
	claimant_name  TEXT NOT NULL DEFAULT '',
	claimant_email TEXT NOT NULL COLLATE NOCASE,
	answers        TEXT NOT NULL DEFAULT '[]',
	confidence     INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'pending',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- One active (non-rejected) claim per (item, claimant). The partial index
-- keeps this atomic under concurrent submissions.
CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_active
	ON claims(item_id, claimant_email) WHERE status != 'rejected';

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type           TEXT NOT NULL DEFAULT 'system',
	title          TEXT NOT NULL DEFAULT '',
	message        TEXT NOT NULL DEFAULT '',
	item_id        TEXT NOT NULL DEFAULT '',
	source_item_id TEXT NOT NULL DEFAULT '',
	is_read        INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);

-- Match notifications are deduplicated per (recipient, caused-by item).
-- Insert-if-absent against this index is the concurrency boundary for
-- match discovery.
CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_match
	ON notifications(user_id, item_id, type) WHERE type = 'match_found';
`

// DB wraps a sql.DB with domain-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ItemFilter narrows ListItems results. Empty fields match everything.
type ItemFilter struct {
	Type     string
	Category string
	City     string
	Area     string
	Status   string
}

// ItemStore is the item persistence capability consumed by the services.
type ItemStore interface {
	CreateItem(item *models.Item) error
	GetItem(id string) (*models.Item, error)
	ListItems(f ItemFilter) ([]models.Item, error)
	ListCandidates(itemType string) ([]models.Item, error)
	UpdateItemStatus(id, status string) error
	DeleteItem(id string) error
}

// ClaimStore is the claim persistence capability.
type ClaimStore interface {
	CreateClaim(c *models.Claim) error
	GetClaim(id string) (*models.Claim, error)
	ActiveClaim(itemID, claimantEmail string) (*models.Claim, error)
	ClaimForParticipant(itemID, email string) (*models.Claim, error)
	UpdateClaimStatus(id, from, to string) error
}

// NotificationStore is the notification persistence capability. Insert
// reports whether a row was actually created so callers can distinguish a
// fresh notification from a dedup hit.
type NotificationStore interface {
	InsertNotification(n *models.Notification) (bool, error)
	ListNotifications(userID string, unreadOnly bool, notifType string) ([]models.Notification, error)
	MarkNotificationRead(id string) error
}

// UserStore resolves notification-routing identities.
type UserStore interface {
	CreateUser(u *models.User) error
	UserByEmail(email string) (*models.User, error)
}

// Verify *DB satisfies the capability interfaces at compile time.
var (
	_ ItemStore         = (*DB)(nil)
	_ ClaimStore        = (*DB)(nil)
	_ NotificationStore = (*DB)(nil)
	_ UserStore         = (*DB)(nil)
)

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
