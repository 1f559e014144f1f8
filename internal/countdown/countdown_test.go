package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/tests/testutil"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Start(now, DefaultCooldown)

	tests := []struct {
		name    string
		at      time.Time
		want    int
		expired bool
	}{
		{"at start", now, 60, false},
		{"partial second rounds up", now.Add(500 * time.Millisecond), 60, false},
		{"one second in", now.Add(time.Second), 59, false},
		{"last fraction", now.Add(59*time.Second + time.Millisecond), 1, false},
		{"at deadline", now.Add(60 * time.Second), 0, true},
		{"after deadline", now.Add(2 * time.Minute), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Remaining(tt.at))
			assert.Equal(t, tt.expired, c.Expired(tt.at))
		})
	}
}

func TestZeroCountdownIsExpired(t *testing.T) {
	var c Countdown
	assert.True(t, c.Expired(time.Now()))
	assert.Equal(t, 0, c.Remaining(time.Now()))
}

func TestTimerSurvivesReload(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	timer := NewTimer(s, store.KeyTimerEnd)
	timer.now = func() time.Time { return clock }

	c, err := timer.Start(ctx, DefaultCooldown)
	require.NoError(t, err)
	assert.Equal(t, 60, c.Remaining(clock))

	// A second start while running is refused.
	_, err = timer.Start(ctx, DefaultCooldown)
	assert.ErrorIs(t, err, ErrActive)

	// A fresh timer over the same store picks up the deadline.
	clock = now.Add(20 * time.Second)
	reloaded := NewTimer(s, store.KeyTimerEnd)
	reloaded.now = func() time.Time { return clock }

	c, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, c.Remaining(clock))

	// Once expired, the entry is cleared.
	clock = now.Add(61 * time.Second)
	c, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Expired(clock))

	_, ok, err := s.GetValue(ctx, store.KeyTimerEnd)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reloaded.Start(ctx, DefaultCooldown)
	assert.NoError(t, err)
}

func TestTimerDropsMalformedEntry(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SetValue(ctx, store.KeyTimerEnd, "soon"))

	c, err := NewTimer(s, store.KeyTimerEnd).Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Expired(time.Now()))

	_, ok, err := s.GetValue(ctx, store.KeyTimerEnd)
	require.NoError(t, err)
	assert.False(t, ok)
}
