package model

// Chat is a persisted thread of instruction and generation turns tied to
// one evolving email draft.
type Chat struct {
	ID      int    `json:"id"`
	OAuthID *int   `json:"oauth_id"`
	Name    string `json:"name"`
	IsSent  bool   `json:"is_sent"`
}

// ChatTypeUser marks a turn written by the user. Every other chat_type is
// an assistant turn.
const ChatTypeUser = "user"

// Recipient addresses a contact by id or a free-form address by email.
type Recipient struct {
	ID    int    `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// RecipientGroup is the to/cc/bcc triple sent with generation and send
// requests. The backend expects a one-element list of groups.
type RecipientGroup struct {
	To  []Recipient `json:"to"`
	CC  []Recipient `json:"cc"`
	BCC []Recipient `json:"bcc"`
}

// Empty reports whether the group has no recipients at all.
func (g RecipientGroup) Empty() bool {
	return len(g.To) == 0 && len(g.CC) == 0 && len(g.BCC) == 0
}

// TurnData is the payload of a user turn.
type TurnData struct {
	Instruction  string           `json:"instruction"`
	Contacts     []RecipientGroup `json:"contacts,omitempty"`
	LanguageTone string           `json:"language_tone,omitempty"`
	Length       string           `json:"length,omitempty"`
}

// EmailOutput is a generated subject and body.
type EmailOutput struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ChatMessage is one turn of a chat transcript.
type ChatMessage struct {
	ID       int          `json:"id"`
	ChatType string       `json:"chat_type"`
	Data     *TurnData    `json:"data,omitempty"`
	Output   *EmailOutput `json:"output,omitempty"`
}

// IsUser reports whether the turn was written by the user.
func (m ChatMessage) IsUser() bool {
	return m.ChatType == ChatTypeUser
}

// GenerateRequest starts a new chat.
type GenerateRequest struct {
	Contacts     []RecipientGroup `json:"contacts"`
	Instruction  string           `json:"instruction"`
	LanguageTone string           `json:"language_tone"`
	Length       string           `json:"length"`
	OAuthID      int              `json:"oauth_id"`
}

// ModifyRequest appends a turn to an existing chat.
type ModifyRequest struct {
	ChatID       int              `json:"chat_id"`
	Contacts     []RecipientGroup `json:"contacts"`
	Instruction  string           `json:"instruction"`
	LanguageTone string           `json:"language_tone"`
	Length       string           `json:"length"`
}

// GenerateResponse is returned by both generation endpoints.
type GenerateResponse struct {
	ChatID             int         `json:"chat_id"`
	Output             EmailOutput `json:"output"`
	AssistantMessageID int         `json:"assistant_message_id"`
}

// SendRequest sends the current draft of a chat.
type SendRequest struct {
	ChatID   int              `json:"chat_id"`
	Contacts []RecipientGroup `json:"contacts"`
	Subject  string           `json:"subject"`
	Body     string           `json:"body"`
	OAuthID  int              `json:"oauth_id"`
}

// ParaphraseTarget selects which part of a generated email a span is in.
type ParaphraseTarget string

const (
	TargetSubject ParaphraseTarget = "subject"
	TargetBody    ParaphraseTarget = "body"
)

// ParaphrasePosition locates a span inside the subject or body by
// character offsets, with the whitespace that was trimmed off the raw
// selection.
type ParaphrasePosition struct {
	To              int  `json:"to"`
	From            int  `json:"from"`
	LeadingSpace    bool `json:"leadingSpace"`
	TrailingSpace   bool `json:"trailingSpace"`
	LeadingNewline  bool `json:"leadingNewline"`
	TrailingNewline bool `json:"trailingNewline"`
}

// ParaphraseRequest asks the backend to propose a rewrite of one span.
type ParaphraseRequest struct {
	Text     string             `json:"text"`
	Type     ParaphraseTarget   `json:"type"`
	Position ParaphrasePosition `json:"position"`
}

// ParaphraseResponse carries the proposed rewrite.
type ParaphraseResponse struct {
	Paraphrase string `json:"paraphrase"`
}

// SmartReplyRequest asks the backend to draft a reply to an inbox message.
type SmartReplyRequest struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Sender      string `json:"sender"`
	OAuthID     int    `json:"oauth_id"`
	Instruction string `json:"instruction"`
}

// SmartReplyResponse carries the drafted reply.
type SmartReplyResponse struct {
	Reply string `json:"reply"`
}
