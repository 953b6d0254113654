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

// questionRow is the persisted form of a challenge question. The expected
// answer is stripped from API JSON but must survive storage.
type questionRow struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func encodeQuestions(qs []models.Question) string {
	rows := make([]questionRow, len(qs))
	for i, q := range qs {
		rows[i] = questionRow{Question: q.Question, Answer: q.Answer}
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

func decodeQuestions(raw string) []models.Question {
	var rows []questionRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil
	}
	qs := make([]models.Question, len(rows))
	for i, r := range rows {
		qs[i] = models.Question{Question: r.Question, Answer: r.Answer}
	}
	return qs
}

// CreateItem persists a new item. ID and CreatedAt are assigned when empty.
func (db *DB) CreateItem(item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	kw, _ := json.Marshal(item.Keywords)

	_, err := db.conn.Exec(`
		INSERT INTO items (id, type, category, title, description, city, area, landmark,
			keywords, questions, poster_name, phone, email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Type, item.Category, item.Title, item.Description,
		item.Location.City, item.Location.Area, item.Location.Landmark,
		string(kw), encodeQuestions(item.Questions),
		item.PosterName, item.Phone, item.Email, item.Status, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create item: %w", err)
	}
	return nil
}

const itemColumns = `id, type, category, title, description, city, area, landmark,
	keywords, questions, poster_name, phone, email, status, created_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var it models.Item
	var kw, questions string
	err := row.Scan(&it.ID, &it.Type, &it.Category, &it.Title, &it.Description,
		&it.Location.City, &it.Location.Area, &it.Location.Landmark,
		&kw, &questions, &it.PosterName, &it.Phone, &it.Email, &it.Status, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(kw), &it.Keywords)
	it.Questions = decodeQuestions(questions)
	return &it, nil
}

// GetItem returns a single item by id, including private contact fields.
func (db *DB) GetItem(id string) (*models.Item, error) {
	row := db.conn.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get item: %w", err)
	}
	return it, nil
}

// ListItems returns items matching the filter, newest first.
func (db *DB) ListItems(f ItemFilter) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND category = ? COLLATE NOCASE`
		args = append(args, f.Category)
	}
	if f.City != "" {
		query += ` AND city = ? COLLATE NOCASE`
		args = append(args, f.City)
	}
	if f.Area != "" {
		query += ` AND area LIKE ? COLLATE NOCASE`
		args = append(args, "%"+f.Area+"%")
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan item: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// ListCandidates returns all items of the given disposition that are still
// on the active market (anything not resolved), for match discovery.
func (db *DB) ListCandidates(itemType string) ([]models.Item, error) {
	rows, err := db.conn.Query(`SELECT `+itemColumns+` FROM items
		WHERE type = ? AND status != ?`, itemType, models.StatusResolved)
	if err != nil {
		return nil, fmt.Errorf("store: list candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan candidate: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// UpdateItemStatus sets the moderation status of an item.
func (db *DB) UpdateItemStatus(id, status string) error {
	res, err := db.conn.Exec(`UPDATE items SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("store: update item status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteItem removes an item; claims cascade via the foreign key.
func (db *DB) DeleteItem(id string) error {
	res, err := db.conn.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
