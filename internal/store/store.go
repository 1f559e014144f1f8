package store

import (
	"context"

	"github.com/nhle/easymail/internal/model"
)

// Well-known keys in the key/value table.
const (
	KeyTimerEnd      = "timerEnd"
	KeyGravatarURL   = "gravatar_url"
	KeyLastAccountID = "last_account_id"
	KeyLastFolder    = "last_folder"
)

// Store defines the local persistence interface: a small key/value table
// standing in for browser local storage, and the notification log.
type Store interface {
	// === Key/value ===

	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	GetRecentNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}
