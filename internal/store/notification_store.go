package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/easymail/internal/model"
)

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Level == "" {
		n.Level = model.LevelInfo
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, level, message, read, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, string(n.Level), n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, level, message, read, created_at FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// GetRecentNotifications returns up to limit notifications, newest first.
func (s *SQLiteStore) GetRecentNotifications(
	ctx context.Context,
	limit int,
) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, level, message, read, created_at FROM notifications ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead clears the unread flag on every notification.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0"); err != nil {
		return fmt.Errorf("marking notifications as read: %w", err)
	}
	return nil
}

// scanNotifications scans notification rows from a sqlx.Rows result set.
func scanNotifications(rows *sqlx.Rows) ([]model.Notification, error) {
	var notifications []model.Notification
	for rows.Next() {
		var (
			n         model.Notification
			level     string
			readInt   int
			createdAt time.Time
		)
		if err := rows.Scan(&n.ID, &level, &n.Message, &readInt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Level = model.Level(level)
		n.Read = readInt != 0
		n.CreatedAt = createdAt
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
