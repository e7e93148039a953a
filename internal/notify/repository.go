// Package notify implements the Notification Hub: tenant-schema
// Notification rows plus the real-time push fan-out every write emits
// best-effort (§4.9, §6).
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Priority  string     `db:"priority" json:"priority"` // low, normal, high, urgent
	IsRead    bool       `db:"is_read" json:"is_read"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Priority == "" {
		n.Priority = "normal"
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Priority)
	return row.Scan(&n.CreatedAt)
}

// CreateBulk inserts one notification per recipient with identical
// content — used for broadcast-style events (e.g. announcements).
func (r *Repository) CreateBulk(ctx context.Context, userIDs []string, notifType, title, message, priority string) error {
	for _, userID := range userIDs {
		n := &Notification{UserID: userID, Type: notifType, Title: title, Message: message, Priority: priority}
		if err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) List(ctx context.Context, userID string, page kernel.Page, unreadOnly bool) ([]*Notification, int64, error) {
	// Notifications use physical delete (spec.md §3), so the filter
	// builder's default soft-delete predicate does not apply here.
	filter := kernel.NewFilterBuilder().IncludeDeleted()
	filter.Eq("user_id", userID)
	if unreadOnly {
		filter.Eq("is_read", false)
	}
	where, args := filter.Build()

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notifications WHERE "+where, args...); err != nil {
		return nil, 0, err
	}

	var rows []*Notification
	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, priority, is_read, read_at, created_at
		FROM notifications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) MarkAsRead(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = now() WHERE id = $1 AND user_id = $2
	`, id, userID)
	return err
}

func (r *Repository) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = now() WHERE user_id = $1 AND is_read = false
	`, userID)
	return err
}

func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// DeleteOld physically removes read notifications older than the given
// cutoff, per spec.md §3's "administrative cleanup of old read
// notifications" note.
func (r *Repository) DeleteOld(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE is_read = true AND read_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
