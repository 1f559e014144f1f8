package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nhle/easymail/internal/model"
)

// Validation and state errors of the compose flow. The text shown to the
// user for each is kept by the ui package.
var (
	ErrNoAccount     = errors.New("no sender account selected")
	ErrMissingPrompt = errors.New("missing prompt")
	ErrEmptyMessage  = errors.New("empty message")
	ErrNoSendAccount = errors.New("no account to send from")
	ErrNoRecipients  = errors.New("no recipients")
	ErrAlreadySent   = errors.New("email already sent")
	ErrNoChat        = errors.New("no email generated yet")
	ErrNoProposal    = errors.New("no paraphrase pending")
	ErrEmptyChat     = errors.New("chat was empty and has been deleted")
)

// GenerateFailedMessage is the bot reply after a failed modification.
const GenerateFailedMessage = "Error generating email. Please try again."

// Backend is the subset of the API client the compose flow calls.
// *api.Client satisfies it.
type Backend interface {
	GenerateEmail(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error)
	ModifyEmail(ctx context.Context, req model.ModifyRequest) (*model.GenerateResponse, error)
	SendEmail(ctx context.Context, req model.SendRequest) (*model.Message, error)
	GetChat(ctx context.Context, id int) (*model.Chat, error)
	GetChatMessages(ctx context.Context, id int) ([]model.ChatMessage, error)
	DeleteChat(ctx context.Context, id int) (*model.Message, error)
	Paraphrase(ctx context.Context, messageID int, req model.ParaphraseRequest) (*model.ParaphraseResponse, error)
	CommitParaphrase(ctx context.Context, messageID int) (*model.EmailOutput, error)
}

// Draft is the input of a fresh generation.
type Draft struct {
	Instruction string
	Recipients  model.RecipientGroup
	Settings    Settings
	OAuthID     int
}

// Proposal is a paraphrase awaiting confirmation.
type Proposal struct {
	Span      Span
	Old       string
	New       string
	MessageID int
}

// Flow drives one chat: the first generation, follow-up modifications,
// paraphrasing and sending. Backend calls run outside the lock so the
// view can keep rendering while a request is in flight.
type Flow struct {
	backend    Backend
	transcript *Transcript

	mu          sync.Mutex
	chatID      int
	oauthID     int
	instruction string
	settings    Settings
	recipients  model.RecipientGroup
	sent        bool
	pending     *Proposal
}

// NewFlow returns an idle flow with the given default settings.
func NewFlow(b Backend, s Settings) *Flow {
	return &Flow{
		backend:    b,
		transcript: NewTranscript(),
		settings:   s,
	}
}

// Transcript returns the chat history.
func (f *Flow) Transcript() *Transcript { return f.transcript }

// ChatID returns the active chat, or zero before the first generation.
func (f *Flow) ChatID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatID
}

// Instruction returns the first instruction of the chat.
func (f *Flow) Instruction() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instruction
}

// Settings returns the tone and length applied to the next turn.
func (f *Flow) Settings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// SetSettings replaces the tone and length.
func (f *Flow) SetSettings(s Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
}

// Recipients returns the current to/cc/bcc group.
func (f *Flow) Recipients() model.RecipientGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipients
}

// SetRecipients replaces the to/cc/bcc group used by later turns.
func (f *Flow) SetRecipients(g model.RecipientGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients = g
}

// OAuthID returns the linked account the email is sent from.
func (f *Flow) OAuthID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.oauthID
}

// SetOAuthID selects the linked account the email is sent from.
func (f *Flow) SetOAuthID(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oauthID = id
}

// Sent reports whether the chat's email went out. A sent chat is read-only.
func (f *Flow) Sent() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

// Reset returns the flow to a blank draft keeping the settings.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.chatID = 0
	f.instruction = ""
	f.recipients = model.RecipientGroup{}
	f.sent = false
	f.pending = nil
	f.mu.Unlock()

	f.transcript.Reset()
}

// Command runs a slash command typed into the chat. The command and its
// reply are added to the transcript.
func (f *Flow) Command(text string) (string, bool) {
	f.mu.Lock()
	reply, ok := ParseCommand(text, &f.settings)
	f.mu.Unlock()
	if !ok {
		return "", false
	}
	f.transcript.AddUser(text)
	f.transcript.AddBot(reply)
	return reply, true
}

// Fresh starts a new chat from d and records the generated email.
func (f *Flow) Fresh(ctx context.Context, d Draft) (*model.GenerateResponse, error) {
	if d.OAuthID <= 0 {
		return nil, ErrNoAccount
	}
	if strings.TrimSpace(d.Instruction) == "" || len(d.Recipients.To) == 0 {
		return nil, ErrMissingPrompt
	}

	f.mu.Lock()
	f.oauthID = d.OAuthID
	f.recipients = d.Recipients
	f.settings = d.Settings
	f.mu.Unlock()

	f.transcript.AddUser(d.Instruction)

	resp, err := f.backend.GenerateEmail(ctx, model.GenerateRequest{
		Contacts:     []model.RecipientGroup{d.Recipients},
		Instruction:  d.Instruction,
		LanguageTone: d.Settings.Tone,
		Length:       d.Settings.Length,
		OAuthID:      d.OAuthID,
	})
	if err != nil {
		return nil, fmt.Errorf("generating email: %w", err)
	}

	f.mu.Lock()
	f.chatID = resp.ChatID
	f.instruction = d.Instruction
	f.sent = false
	f.mu.Unlock()

	f.transcript.AddEmail(resp.Output.Subject, resp.Output.Body, resp.AssistantMessageID)
	return resp, nil
}

// Modify sends a follow-up instruction for the active chat using the
// current recipients and settings.
func (f *Flow) Modify(ctx context.Context, instruction string) (*model.GenerateResponse, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyMessage
	}

	f.mu.Lock()
	req := model.ModifyRequest{
		ChatID:       f.chatID,
		Contacts:     []model.RecipientGroup{f.recipients},
		Instruction:  instruction,
		LanguageTone: f.settings.Tone,
		Length:       f.settings.Length,
	}
	sent := f.sent
	f.mu.Unlock()

	if req.ChatID == 0 {
		return nil, ErrNoChat
	}
	if sent {
		return nil, ErrAlreadySent
	}

	f.transcript.AddUser(instruction)

	resp, err := f.backend.ModifyEmail(ctx, req)
	if err != nil {
		f.transcript.AddBot(GenerateFailedMessage)
		return nil, fmt.Errorf("modifying email: %w", err)
	}

	f.transcript.AddEmail(resp.Output.Subject, resp.Output.Body, resp.AssistantMessageID)
	return resp, nil
}

// Send delivers the latest generated email from the selected account.
func (f *Flow) Send(ctx context.Context) (*model.Message, error) {
	f.mu.Lock()
	chatID, oauthID, group, sent := f.chatID, f.oauthID, f.recipients, f.sent
	f.mu.Unlock()

	switch {
	case sent:
		return nil, ErrAlreadySent
	case oauthID <= 0:
		return nil, ErrNoSendAccount
	case len(group.To) == 0:
		return nil, ErrNoRecipients
	}

	email, ok := f.transcript.LastEmail()
	if !ok || chatID == 0 {
		return nil, ErrNoChat
	}

	resp, err := f.backend.SendEmail(ctx, model.SendRequest{
		ChatID:   chatID,
		Contacts: []model.RecipientGroup{group},
		Subject:  email.Subject,
		Body:     email.Body,
		OAuthID:  oauthID,
	})
	if err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}

	f.mu.Lock()
	f.sent = true
	f.mu.Unlock()
	return resp, nil
}

// Propose asks for a rewrite of span in the latest email. Nothing changes
// until Commit is called.
func (f *Flow) Propose(ctx context.Context, span Span) (*Proposal, error) {
	if f.Sent() {
		return nil, ErrAlreadySent
	}
	email, ok := f.transcript.LastEmail()
	if !ok {
		return nil, ErrNoChat
	}

	resp, err := f.backend.Paraphrase(ctx, email.MessageID, span.Request())
	if err != nil {
		return nil, fmt.Errorf("paraphrasing: %w", err)
	}

	p := &Proposal{Span: span, Old: span.Text, New: resp.Paraphrase, MessageID: email.MessageID}
	f.mu.Lock()
	f.pending = p
	f.mu.Unlock()
	return p, nil
}

// Pending returns the proposal awaiting confirmation, if any.
func (f *Flow) Pending() *Proposal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Cancel drops the pending proposal without calling the backend.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = nil
}

// Commit applies the pending proposal on the backend and replaces the
// latest email with the returned subject and body.
func (f *Flow) Commit(ctx context.Context) (*model.EmailOutput, error) {
	f.mu.Lock()
	p := f.pending
	f.mu.Unlock()
	if p == nil {
		return nil, ErrNoProposal
	}

	out, err := f.backend.CommitParaphrase(ctx, p.MessageID)
	if err != nil {
		return nil, fmt.Errorf("committing paraphrase: %w", err)
	}

	f.mu.Lock()
	f.pending = nil
	f.mu.Unlock()

	f.transcript.UpdateLastEmail(out.Subject, out.Body)
	return out, nil
}

// Restore reloads a chat from history. The first user instruction, the
// latest recipients, tone and length and the full transcript are
// rebuilt. An empty chat is deleted and ErrEmptyChat is returned.
func (f *Flow) Restore(ctx context.Context, chatID int) error {
	chat, err := f.backend.GetChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("loading chat %d: %w", chatID, err)
	}
	msgs, err := f.backend.GetChatMessages(ctx, chatID)
	if err != nil {
		return fmt.Errorf("loading chat %d messages: %w", chatID, err)
	}

	if len(msgs) == 0 {
		if _, err := f.backend.DeleteChat(ctx, chatID); err != nil {
			return fmt.Errorf("deleting empty chat %d: %w", chatID, err)
		}
		return ErrEmptyChat
	}

	st := restoreState(msgs)

	f.mu.Lock()
	f.chatID = chat.ID
	if chat.OAuthID != nil {
		f.oauthID = *chat.OAuthID
	}
	f.sent = chat.IsSent
	f.instruction = st.instruction
	f.recipients = st.recipients
	if st.tone != "" {
		f.settings.Tone = st.tone
	}
	f.settings.Length = NormalizeLength(st.length)
	f.pending = nil
	f.mu.Unlock()

	f.transcript.Reset()
	for _, m := range msgs {
		switch {
		case m.IsUser() && m.Data != nil:
			f.transcript.AddUser(m.Data.Instruction)
		case !m.IsUser() && m.Output != nil:
			f.transcript.AddEmail(m.Output.Subject, m.Output.Body, m.ID)
		}
	}
	return nil
}

type restored struct {
	instruction string
	recipients  model.RecipientGroup
	tone        string
	length      string
}

// restoreState takes the first instruction and scans backwards for the
// latest turn that carried recipients.
func restoreState(msgs []model.ChatMessage) restored {
	var st restored
	for _, m := range msgs {
		if m.Data != nil {
			st.instruction = m.Data.Instruction
			break
		}
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		d := msgs[i].Data
		if d == nil || len(d.Contacts) == 0 {
			continue
		}
		st.recipients = d.Contacts[0]
		st.tone = d.LanguageTone
		st.length = d.Length
		break
	}
	return st
}
