// Package countdown models the resend cooldown shared by the verification
// and password-reset flows as an absolute deadline that survives restarts.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultCooldown is how long resend actions stay disabled.
const DefaultCooldown = 60 * time.Second

// ErrActive is returned when starting a cooldown while one is running.
var ErrActive = errors.New("cooldown still running")

// Countdown is an absolute deadline. The zero value is expired.
type Countdown struct {
	deadline time.Time
}

// Start returns a countdown ending d after now.
func Start(now time.Time, d time.Duration) Countdown {
	return Countdown{deadline: now.Add(d)}
}

// At returns a countdown ending at deadline.
func At(deadline time.Time) Countdown {
	return Countdown{deadline: deadline}
}

// Deadline returns the absolute end of the countdown.
func (c Countdown) Deadline() time.Time {
	return c.deadline
}

// Remaining returns the whole seconds left, rounded up, never negative.
func (c Countdown) Remaining(now time.Time) int {
	if c.deadline.IsZero() {
		return 0
	}
	d := c.deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// Expired reports whether no time is left.
func (c Countdown) Expired(now time.Time) bool {
	return c.Remaining(now) == 0
}

// KV is the subset of the local store the timer persists into.
type KV interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// Timer persists a Countdown under a single key as milliseconds since
// the Unix epoch.
type Timer struct {
	kv  KV
	key string
	now func() time.Time
}

// NewTimer returns a timer stored under key.
func NewTimer(kv KV, key string) *Timer {
	return &Timer{kv: kv, key: key, now: time.Now}
}

// Now returns the timer's notion of the current time.
func (t *Timer) Now() time.Time {
	return t.now()
}

// Load returns the persisted countdown. An expired or malformed entry is
// removed and reported as the zero Countdown.
func (t *Timer) Load(ctx context.Context) (Countdown, error) {
	raw, ok, err := t.kv.GetValue(ctx, t.key)
	if err != nil {
		return Countdown{}, fmt.Errorf("loading cooldown: %w", err)
	}
	if !ok {
		return Countdown{}, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Countdown{}, t.Clear(ctx)
	}

	c := At(time.UnixMilli(ms))
	if c.Expired(t.now()) {
		return Countdown{}, t.Clear(ctx)
	}
	return c, nil
}

// Start begins a cooldown of d and persists its deadline. It fails with
// ErrActive while a previous cooldown is still running.
func (t *Timer) Start(ctx context.Context, d time.Duration) (Countdown, error) {
	current, err := t.Load(ctx)
	if err != nil {
		return Countdown{}, err
	}
	if !current.Expired(t.now()) {
		return current, ErrActive
	}

	c := Start(t.now(), d)
	value := strconv.FormatInt(c.Deadline().UnixMilli(), 10)
	if err := t.kv.SetValue(ctx, t.key, value); err != nil {
		return Countdown{}, fmt.Errorf("saving cooldown: %w", err)
	}
	return c, nil
}

// Clear removes the persisted deadline.
func (t *Timer) Clear(ctx context.Context) error {
	if err := t.kv.DeleteValue(ctx, t.key); err != nil {
		return fmt.Errorf("clearing cooldown: %w", err)
	}
	return nil
}
