package inbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/easymail/internal/model"
)

// DefaultPageSize is the number of messages requested per page.
const DefaultPageSize = 10

// ErrStaleResult is returned by Apply when a result belongs to an
// account, folder or query that is no longer active.
var ErrStaleResult = errors.New("inbox: stale result")

// Key identifies the listing a session is paging through.
type Key struct {
	Service   model.Service
	AccountID int
	Folder    string
	Query     string
}

// Request is a snapshot of everything needed to fetch one page.
type Request struct {
	Key      Key
	Cursor   model.Cursor
	PageSize int
}

// LoadMore reports whether the request continues an earlier page.
func (r Request) LoadMore() bool {
	return r.Cursor != ""
}

// Result is a fetched page tagged with the request that produced it.
type Result struct {
	Request  Request
	Messages []model.InboxMessage
	NextPage model.Cursor
}

// Lister fetches one page of a folder listing. *api.Client satisfies it.
type Lister interface {
	ListMessages(ctx context.Context, service model.Service, accountID int, q model.InboxQuery) (*model.InboxPage, error)
}

// Session holds the pagination state of one inbox view. It is owned by
// the view's update loop and is not safe for concurrent use.
type Session struct {
	key      Key
	pageSize int
	seen     []model.Cursor
	next     model.Cursor
	messages []model.InboxMessage
}

// NewSession returns an empty session. A non-positive page size falls
// back to DefaultPageSize.
func NewSession(pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{pageSize: pageSize}
}

// Key returns the active listing key.
func (s *Session) Key() Key { return s.key }

// SetAccount selects a linked account. Changing the account clears the
// folder and the query and resets pagination.
func (s *Session) SetAccount(service model.Service, accountID int) {
	if s.key.Service == service && s.key.AccountID == accountID {
		return
	}
	s.key = Key{Service: service, AccountID: accountID}
	s.reset()
}

// SetFolder selects a folder. Changing the folder clears the search
// query and resets pagination.
func (s *Session) SetFolder(folder string) {
	if s.key.Folder == folder {
		return
	}
	s.key.Folder = folder
	s.key.Query = ""
	s.reset()
}

// SetQuery sets the search query and resets pagination when it changes.
func (s *Session) SetQuery(query string) {
	if s.key.Query == query {
		return
	}
	s.key.Query = query
	s.reset()
}

// Reset drops the loaded messages and every cursor while keeping the key.
func (s *Session) Reset() { s.reset() }

func (s *Session) reset() {
	s.seen = nil
	s.next = ""
	s.messages = nil
}

// HasMore reports whether the backend issued a cursor for a further page.
func (s *Session) HasMore() bool { return s.next != "" }

// Cursors returns the cursors already consumed by load-more requests.
func (s *Session) Cursors() []model.Cursor {
	out := make([]model.Cursor, len(s.seen))
	copy(out, s.seen)
	return out
}

// Messages returns the messages loaded so far in listing order.
func (s *Session) Messages() []model.InboxMessage { return s.messages }

// NextRequest snapshots the request for a fresh load, or for the next
// page when loadMore is set and a cursor is available.
func (s *Session) NextRequest(loadMore bool) Request {
	req := Request{Key: s.key, PageSize: s.pageSize}
	if loadMore {
		req.Cursor = s.next
	}
	return req
}

// Apply folds a fetched page into the session. A fresh load replaces the
// message list and a load-more appends to it. Results for a key other
// than the active one are rejected with ErrStaleResult.
func (s *Session) Apply(res Result) error {
	if res.Request.Key != s.key {
		return ErrStaleResult
	}
	if res.Request.LoadMore() {
		if res.Request.Cursor != s.next {
			return ErrStaleResult
		}
		s.seen = append(s.seen, res.Request.Cursor)
		s.messages = append(s.messages, res.Messages...)
	} else {
		s.seen = nil
		s.messages = append([]model.InboxMessage(nil), res.Messages...)
	}
	s.next = res.NextPage
	return nil
}

// Remove drops a message from the loaded list.
func (s *Session) Remove(id string) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// MarkRead flips the read flag of a loaded message.
func (s *Session) MarkRead(id string, read bool) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Message.IsRead = read
			return
		}
	}
}

// Fetch issues exactly one listing call for req.
func Fetch(ctx context.Context, l Lister, req Request) (Result, error) {
	page, err := l.ListMessages(ctx, req.Key.Service, req.Key.AccountID, model.InboxQuery{
		FolderName: req.Key.Folder,
		MaxResult:  req.PageSize,
		Query:      req.Key.Query,
		NextPage:   req.Cursor,
	})
	if err != nil {
		return Result{Request: req}, fmt.Errorf("listing %s messages: %w", req.Key.Folder, err)
	}
	return Result{Request: req, Messages: page.Messages, NextPage: page.NextPage}, nil
}
