package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/models"
	"github.com/retracehq/retrace/internal/store"
)

// DefaultThreshold is the minimum similarity for a pair to be reported.
const DefaultThreshold = 0.60

// Engine scans opposite-disposition items for a freshly created report and
// notifies both posters about qualifying pairs. Notification routing
// failures are logged and skipped; they never fail the surrounding item
// creation. Duplicate suppression is delegated entirely to the store's
// insert-if-absent write, so re-running discovery is idempotent.
type Engine struct {
	items     store.ItemStore
	users     store.UserStore
	notifs    store.NotificationStore
	scorer    *Scorer
	threshold float64
	logger    *slog.Logger
}

// NewEngine creates a discovery engine.
func NewEngine(items store.ItemStore, users store.UserStore, notifs store.NotificationStore,
	scorer *Scorer, threshold float64, logger *slog.Logger) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		items:     items,
		users:     users,
		notifs:    notifs,
		scorer:    scorer,
		threshold: threshold,
		logger:    logger,
	}
}

// OnItemCreated runs match discovery for a newly persisted item and returns
// the number of notifications actually created.
func (e *Engine) OnItemCreated(ctx context.Context, item *models.Item) (int, error) {
	if item.Type == "" {
		return 0, nil
	}

	candidates, err := e.items.ListCandidates(models.OppositeType(item.Type))
	if err != nil {
		return 0, fmt.Errorf("match: list candidates: %w", err)
	}

	e.logger.Debug("match scan started",
		slog.String("item_id", item.ID),
		slog.String("type", item.Type),
		slog.Int("candidates", len(candidates)))

	created := 0
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		cand := &candidates[i]
		if cand.ID == item.ID {
			continue
		}
		score := e.scorer.Score(item, cand)
		if score < e.threshold {
			continue
		}
		pct := int(math.Round(score * 100))

		if e.notify(item, cand, pct) {
			created++
		}
		if e.notify(cand, item, pct) {
			created++
		}
	}
	return created, nil
}

// notify delivers one match notification to the poster of recipientItem
// about matchedItem. Returns true only when a new row was written.
func (e *Engine) notify(recipientItem, matchedItem *models.Item, pct int) bool {
	if recipientItem.Email == "" {
		e.logger.Warn("match: recipient item has no contact email",
			slog.String("item_id", recipientItem.ID))
		return false
	}
	user, err := e.users.UserByEmail(recipientItem.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			e.logger.Warn("match: no routing identity for poster",
				slog.String("item_id", recipientItem.ID))
		} else {
			e.logger.Error("match: user lookup failed",
				slog.String("item_id", recipientItem.ID),
				slog.String("error", err.Error()))
		}
		return false
	}

	subject := recipientItem.Category
	if subject == "" {
		subject = "item"
	}
	created, err := e.notifs.InsertNotification(&models.Notification{
		UserID:       user.ID,
		Type:         models.NotifMatchFound,
		Title:        fmt.Sprintf("%d%% Match Found!", pct),
		Message:      fmt.Sprintf("We found a potential match for your %s. The item %q matches %d%% of your criteria.", subject, matchedItem.Title, pct),
		ItemID:       matchedItem.ID,
		SourceItemID: recipientItem.ID,
	})
	if err != nil {
		e.logger.Error("match: notification write failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		return false
	}
	return created
}
