package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// InboxFolder is a mailbox folder of a linked account.
type InboxFolder struct {
	Name         string `json:"name"`
	UnreadCount  int    `json:"unreadCount"`
	IsHidden     bool   `json:"isHidden"`
	MessageCount int    `json:"messageCount"`
}

// Attachment describes a file attached to an inbox message. Size is in
// kilobytes, rounded to two decimals by the backend.
type Attachment struct {
	Filename string  `json:"filename"`
	MimeType string  `json:"mime_type,omitempty"`
	Size     float64 `json:"size"`
}

// MessageHeader is the summary of an inbox message shown in a list.
type MessageHeader struct {
	From        string       `json:"from"`
	Subject     string       `json:"subject"`
	Date        string       `json:"date"`
	IsRead      bool         `json:"isRead"`
	Attachments []Attachment `json:"attachments"`
}

// InboxMessage is one row of an inbox listing.
type InboxMessage struct {
	ID      string        `json:"id"`
	Message MessageHeader `json:"message"`
}

// MessageDetail is a fully fetched inbox message. Body is HTML.
type MessageDetail struct {
	Body        string       `json:"body"`
	Subject     string       `json:"subject"`
	Date        string       `json:"date"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	CC          string       `json:"cc"`
	BCC         string       `json:"bcc"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments"`
	IsRead      bool         `json:"isRead"`
}

// Cursor is an opaque backend-issued token for continuing an inbox
// listing. The empty cursor means "first page".
type Cursor string

// UnmarshalJSON accepts a string, a number or null.
func (c *Cursor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding cursor: %w", err)
		}
		*c = Cursor(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding cursor: %w", err)
	}
	*c = Cursor(n.String())
	return nil
}

// Int returns the cursor as a number when it is numeric.
func (c Cursor) Int() (int, bool) {
	n, err := strconv.Atoi(string(c))
	return n, err == nil
}

// InboxQuery is the body of an inbox listing request.
type InboxQuery struct {
	FolderName string `json:"folder_name"`
	MaxResult  int    `json:"max_result"`
	Query      string `json:"query,omitempty"`
	NextPage   Cursor `json:"next_page,omitempty"`
}

// InboxPage is one page of an inbox listing.
type InboxPage struct {
	Messages []InboxMessage `json:"messages"`
	NextPage Cursor         `json:"next_page"`
}

// MessageAction is a state change applied to an inbox message.
type MessageAction string

const (
	ActionRead   MessageAction = "read"
	ActionUnread MessageAction = "unread"
	ActionDelete MessageAction = "delete"
)
