package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/tests/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestKeyValue(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetValue(ctx, store.KeyTimerEnd)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetValue(ctx, store.KeyTimerEnd, "1700000000000"))
	require.NoError(t, s.SetValue(ctx, store.KeyTimerEnd, "1700000060000"))

	v, ok, err := s.GetValue(ctx, store.KeyTimerEnd)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1700000060000", v)

	require.NoError(t, s.DeleteValue(ctx, store.KeyTimerEnd))
	require.NoError(t, s.DeleteValue(ctx, store.KeyTimerEnd))

	_, ok, err = s.GetValue(ctx, store.KeyTimerEnd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Level: model.LevelSuccess, Message: "Logged in", CreatedAt: base,
	}))
	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Level: model.LevelError, Message: "bad credentials", CreatedAt: base.Add(time.Minute),
	}))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "bad credentials", unread[0].Message)
	assert.Equal(t, model.LevelError, unread[0].Level)
	assert.NotEmpty(t, unread[0].ID)

	require.NoError(t, s.MarkNotificationRead(ctx, unread[0].ID))
	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Logged in", unread[0].Message)

	require.NoError(t, s.MarkAllNotificationsRead(ctx))
	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)

	recent, err := s.GetRecentNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Read)
}
