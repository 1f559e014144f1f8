package compose

import "sync"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleEmail Role = "email"
	RoleBot   Role = "bot"
)

// Entry is one line of the compose transcript. Email entries carry the
// generated output and the assistant message id used for paraphrasing.
type Entry struct {
	Role      Role
	Text      string
	Subject   string
	Body      string
	MessageID int
}

// Transcript is the ordered chat history shown in the compose view.
// Commands run in goroutines append to it, so access is locked.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{entries: make([]Entry, 0, 16)}
}

// AddUser records an instruction or command typed by the user.
func (t *Transcript) AddUser(text string) {
	t.add(Entry{Role: RoleUser, Text: text})
}

// AddBot records a local reply such as a command confirmation.
func (t *Transcript) AddBot(text string) {
	t.add(Entry{Role: RoleBot, Text: text})
}

// AddEmail records a generated email.
func (t *Transcript) AddEmail(subject, body string, messageID int) {
	t.add(Entry{Role: RoleEmail, Subject: subject, Body: body, MessageID: messageID})
}

func (t *Transcript) add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, e)
}

// UpdateLastEmail replaces the subject and body of the latest email,
// as after a committed paraphrase.
func (t *Transcript) UpdateLastEmail(subject, body string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Role == RoleEmail {
			t.entries[i].Subject = subject
			t.entries[i].Body = body
			return true
		}
	}
	return false
}

// LastEmail returns the latest generated email.
func (t *Transcript) LastEmail() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Role == RoleEmail {
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the transcript.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = t.entries[:0]
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
