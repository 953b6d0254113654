package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/models"
)

// InsertNotification writes a notification with insert-if-absent semantics.
// For match_found notifications the partial unique index suppresses
// duplicates for the same (recipient, caused-by item); the return value
// reports whether a row was actually created.
func (db *DB) InsertNotification(n *models.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = models.NotifSystem
	}

	res, err := db.conn.Exec(`
		INSERT INTO notifications (id, user_id, type, title, message, item_id, source_item_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT DO NOTHING
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, n.ItemID, n.SourceItemID, n.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("store: insert notification: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: insert notification: %w", err)
	}
	return rows > 0, nil
}

// ListNotifications returns a user's notifications, newest first. An empty
// notifType matches every type.
func (db *DB) ListNotifications(userID string, unreadOnly bool, notifType string) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, title, message, item_id, source_item_id, is_read, created_at
		FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	if notifType != "" {
		query += ` AND type = ?`
		args = append(args, notifType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.ItemID, &n.SourceItemID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips a notification's read flag.
func (db *DB) MarkNotificationRead(id string) error {
	res, err := db.conn.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CreateUser registers a notification-routing identity.
func (db *DB) CreateUser(u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// UserByEmail resolves a routing identity by contact address.
func (db *DB) UserByEmail(email string) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRow(`SELECT id, name, email, created_at FROM users
		WHERE email = ? COLLATE NOCASE`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by email: %w", err)
	}
	return &u, nil
}
