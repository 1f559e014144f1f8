package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/inbox"
	"github.com/nhle/easymail/internal/model"
)

// PollState represents the current state of the folder poll.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollError
)

// Target is the linked account whose folders are polled.
type Target struct {
	Service   model.Service
	AccountID int
}

// Status holds the poll state for the active target.
type Status struct {
	Target   Target
	State    PollState
	LastPoll time.Time
	Unread   int
	Error    error
}

// FoldersMsg is a tea.Msg sent when a folder poll completes.
type FoldersMsg struct {
	Target    Target
	Folders   []model.InboxFolder
	Unread    int
	NewUnread int
	Error     error
	Expired   bool
}

// FolderLister lists the folders of a linked account. *api.Client
// satisfies it.
type FolderLister interface {
	ListFolders(ctx context.Context, service model.Service, accountID int) ([]model.InboxFolder, error)
}

// Notifier records notifications. store.Store satisfies it.
type Notifier interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// fetchTimeout is the maximum time allowed for a single poll.
const fetchTimeout = 30 * time.Second

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 120 * time.Second

// Poller refreshes folder unread counts for the active account in the
// background and delivers them as FoldersMsg values.
type Poller struct {
	lister    FolderLister
	notifier  Notifier
	log       zerolog.Logger
	interval  time.Duration
	resultCh  chan FoldersMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	status    Status
	hasTarget bool
}

// New creates a poller. notifier may be nil.
func New(l FolderLister, n Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		lister:    l,
		notifier:  n,
		log:       zerolog.Nop(),
		interval:  interval,
		resultCh:  make(chan FoldersMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// SetLogger sets the logger for notification failures. Call it before
// Start.
func (p *Poller) SetLogger(l zerolog.Logger) {
	p.log = l
}

// SetTarget switches the poll to another account and triggers an
// immediate poll.
func (p *Poller) SetTarget(t Target) {
	p.mu.Lock()
	changed := !p.hasTarget || p.status.Target != t
	if changed {
		p.status = Status{Target: t}
		p.hasTarget = true
	}
	p.mu.Unlock()

	if changed {
		p.Refresh()
	}
}

// ClearTarget stops polling until the next SetTarget.
func (p *Poller) ClearTarget() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = Status{}
	p.hasTarget = false
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A poll is already queued
	}
}

// Status returns the current poll status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Poll()
		case <-p.triggerCh:
			p.Poll()
		}
	}
}

// Poll fetches the folders of the active target once and publishes the
// result. It does nothing before a target is set.
func (p *Poller) Poll() {
	p.mu.Lock()
	if !p.hasTarget {
		p.mu.Unlock()
		return
	}
	target := p.status.Target
	prevUnread := p.status.Unread
	hadPoll := !p.status.LastPoll.IsZero()
	p.status.State = PollRunning
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	folders, err := p.lister.ListFolders(ctx, target.Service, target.AccountID)
	if err != nil {
		p.setStatus(target, func(s *Status) {
			s.State = PollError
			s.Error = err
		})
		p.sendResult(FoldersMsg{Target: target, Error: err, Expired: api.IsSessionExpired(err)})
		return
	}

	visible := inbox.VisibleFolders(folders)
	unread := inbox.TotalUnread(visible)

	newUnread := 0
	if hadPoll && unread > prevUnread {
		newUnread = unread - prevUnread
		if p.notifier != nil {
			err := p.notifier.CreateNotification(ctx, model.Notification{
				Level:   model.LevelInfo,
				Message: fmt.Sprintf("%d new unread message(s)", newUnread),
			})
			if err != nil {
				p.log.Warn().Err(err).Int("account_id", target.AccountID).Msg("Recording new mail notification failed")
			}
		}
	}

	p.setStatus(target, func(s *Status) {
		s.State = PollIdle
		s.Error = nil
		s.Unread = unread
		s.LastPoll = time.Now()
	})
	p.sendResult(FoldersMsg{
		Target:    target,
		Folders:   visible,
		Unread:    unread,
		NewUnread: newUnread,
	})
}

// setStatus applies fn when target is still the active one.
func (p *Poller) setStatus(target Target, fn func(*Status)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status.Target != target {
		return
	}
	fn(&p.status)
}

// sendResult sends a FoldersMsg on the result channel without blocking.
func (p *Poller) sendResult(msg FoldersMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it after handling each FoldersMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
