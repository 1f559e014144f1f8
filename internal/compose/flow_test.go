package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/model"
)

type fakeBackend struct {
	generated  []model.GenerateRequest
	modified   []model.ModifyRequest
	sent       []model.SendRequest
	paraphrase []model.ParaphraseRequest
	commits    []int
	deleted    []int

	chat     model.Chat
	messages []model.ChatMessage
	err      error
}

func (b *fakeBackend) GenerateEmail(_ context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	b.generated = append(b.generated, req)
	if b.err != nil {
		return nil, b.err
	}
	return &model.GenerateResponse{
		ChatID:             42,
		Output:             model.EmailOutput{Subject: "Hello", Body: "Dear Bob"},
		AssistantMessageID: 100,
	}, nil
}

func (b *fakeBackend) ModifyEmail(_ context.Context, req model.ModifyRequest) (*model.GenerateResponse, error) {
	b.modified = append(b.modified, req)
	if b.err != nil {
		return nil, b.err
	}
	return &model.GenerateResponse{
		ChatID:             req.ChatID,
		Output:             model.EmailOutput{Subject: "Hello again", Body: "Dear Bob, shorter"},
		AssistantMessageID: 101,
	}, nil
}

func (b *fakeBackend) SendEmail(_ context.Context, req model.SendRequest) (*model.Message, error) {
	b.sent = append(b.sent, req)
	if b.err != nil {
		return nil, b.err
	}
	return &model.Message{Message: "Email sent"}, nil
}

func (b *fakeBackend) GetChat(_ context.Context, id int) (*model.Chat, error) {
	c := b.chat
	c.ID = id
	return &c, nil
}

func (b *fakeBackend) GetChatMessages(context.Context, int) ([]model.ChatMessage, error) {
	return b.messages, nil
}

func (b *fakeBackend) DeleteChat(_ context.Context, id int) (*model.Message, error) {
	b.deleted = append(b.deleted, id)
	return &model.Message{Message: "deleted"}, nil
}

func (b *fakeBackend) Paraphrase(_ context.Context, _ int, req model.ParaphraseRequest) (*model.ParaphraseResponse, error) {
	b.paraphrase = append(b.paraphrase, req)
	return &model.ParaphraseResponse{Paraphrase: "Dear Robert"}, nil
}

func (b *fakeBackend) CommitParaphrase(_ context.Context, id int) (*model.EmailOutput, error) {
	b.commits = append(b.commits, id)
	return &model.EmailOutput{Subject: "Hello", Body: "Dear Robert"}, nil
}

func draft() Draft {
	return Draft{
		Instruction: "Invite Bob to lunch",
		Recipients:  ParseGroup("7", "", ""),
		Settings:    NewSettings("casual", "short"),
		OAuthID:     3,
	}
}

func TestFreshValidation(t *testing.T) {
	f := NewFlow(&fakeBackend{}, NewSettings("", ""))

	d := draft()
	d.OAuthID = 0
	_, err := f.Fresh(context.Background(), d)
	assert.ErrorIs(t, err, ErrNoAccount)

	d = draft()
	d.Recipients = model.RecipientGroup{}
	_, err = f.Fresh(context.Background(), d)
	assert.ErrorIs(t, err, ErrMissingPrompt)
	assert.Zero(t, f.Transcript().Len())
}

func TestFreshThenModifyThenSend(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	f := NewFlow(b, NewSettings("", ""))

	resp, err := f.Fresh(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, 42, resp.ChatID)
	assert.Equal(t, 42, f.ChatID())
	require.Len(t, b.generated, 1)
	assert.Equal(t, "casual", b.generated[0].LanguageTone)
	assert.Equal(t, 3, b.generated[0].OAuthID)

	reply, ok := f.Command("/length long")
	require.True(t, ok)
	assert.Equal(t, "Email length set to: long", reply)

	_, err = f.Modify(ctx, "make it friendlier")
	require.NoError(t, err)
	require.Len(t, b.modified, 1)
	assert.Equal(t, 42, b.modified[0].ChatID)
	assert.Equal(t, "long", b.modified[0].Length)
	assert.Equal(t, "casual", b.modified[0].LanguageTone)

	roles := []Role{}
	for _, e := range f.Transcript().Entries() {
		roles = append(roles, e.Role)
	}
	assert.Equal(t, []Role{RoleUser, RoleEmail, RoleUser, RoleBot, RoleUser, RoleEmail}, roles)

	_, err = f.Send(ctx)
	require.NoError(t, err)
	require.Len(t, b.sent, 1)
	assert.Equal(t, "Hello again", b.sent[0].Subject)
	assert.Equal(t, "Dear Bob, shorter", b.sent[0].Body)
	assert.True(t, f.Sent())

	_, err = f.Send(ctx)
	assert.ErrorIs(t, err, ErrAlreadySent)
	_, err = f.Modify(ctx, "again")
	assert.ErrorIs(t, err, ErrAlreadySent)
}

func TestModifyFailureAddsBotMessage(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	f := NewFlow(b, NewSettings("", ""))
	_, err := f.Fresh(ctx, draft())
	require.NoError(t, err)

	b.err = errors.New("backend down")
	_, err = f.Modify(ctx, "shorter")
	require.Error(t, err)

	entries := f.Transcript().Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, RoleBot, last.Role)
	assert.Equal(t, GenerateFailedMessage, last.Text)

	_, err = f.Modify(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	f := NewFlow(&fakeBackend{}, NewSettings("", ""))
	_, err := f.Fresh(ctx, draft())
	require.NoError(t, err)

	f.SetRecipients(model.RecipientGroup{})
	_, err = f.Send(ctx)
	assert.ErrorIs(t, err, ErrNoRecipients)

	f.SetOAuthID(0)
	_, err = f.Send(ctx)
	assert.ErrorIs(t, err, ErrNoSendAccount)
}

func TestParaphraseCommitOnlyOnConfirm(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	f := NewFlow(b, NewSettings("", ""))
	_, err := f.Fresh(ctx, draft())
	require.NoError(t, err)

	span, err := NewSpan(model.TargetBody, "Dear Bob", "Dear Bob", 0)
	require.NoError(t, err)

	p, err := f.Propose(ctx, span)
	require.NoError(t, err)
	assert.Equal(t, "Dear Bob", p.Old)
	assert.Equal(t, "Dear Robert", p.New)
	assert.Equal(t, 100, p.MessageID)

	f.Cancel()
	assert.Nil(t, f.Pending())
	_, err = f.Commit(ctx)
	assert.ErrorIs(t, err, ErrNoProposal)
	assert.Empty(t, b.commits)

	_, err = f.Propose(ctx, span)
	require.NoError(t, err)
	out, err := f.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dear Robert", out.Body)
	assert.Equal(t, []int{100}, b.commits)

	last, ok := f.Transcript().LastEmail()
	require.True(t, ok)
	assert.Equal(t, "Dear Robert", last.Body)
}

func TestRestoreScansBackwards(t *testing.T) {
	oauth := 9
	b := &fakeBackend{
		chat: model.Chat{OAuthID: &oauth, IsSent: true},
		messages: []model.ChatMessage{
			{ID: 1, ChatType: "user", Data: &model.TurnData{
				Instruction:  "Ask for a refund",
				Contacts:     []model.RecipientGroup{ParseGroup("1", "", "")},
				LanguageTone: "formal",
				Length:       "short",
			}},
			{ID: 2, ChatType: "assistant", Output: &model.EmailOutput{Subject: "Refund", Body: "v1"}},
			{ID: 3, ChatType: "user", Data: &model.TurnData{
				Instruction:  "Add my order number",
				Contacts:     []model.RecipientGroup{ParseGroup("2", "x@example.com", "")},
				LanguageTone: "professional",
				Length:       "Long",
			}},
			{ID: 4, ChatType: "assistant", Output: &model.EmailOutput{Subject: "Refund", Body: "v2"}},
			{ID: 5, ChatType: "user", Data: &model.TurnData{Instruction: "thanks"}},
		},
	}
	f := NewFlow(b, NewSettings("", ""))

	require.NoError(t, f.Restore(context.Background(), 77))

	assert.Equal(t, 77, f.ChatID())
	assert.Equal(t, 9, f.OAuthID())
	assert.True(t, f.Sent())
	assert.Equal(t, "Ask for a refund", f.Instruction())
	assert.Equal(t, []model.Recipient{{ID: 2}}, f.Recipients().To)
	assert.Equal(t, []model.Recipient{{Email: "x@example.com"}}, f.Recipients().CC)
	assert.Equal(t, Settings{Tone: "professional", Length: "long"}, f.Settings())

	last, ok := f.Transcript().LastEmail()
	require.True(t, ok)
	assert.Equal(t, "v2", last.Body)
	assert.Equal(t, 4, last.MessageID)
	assert.Equal(t, 5, f.Transcript().Len())
}

func TestRestoreDeletesEmptyChat(t *testing.T) {
	b := &fakeBackend{}
	f := NewFlow(b, NewSettings("", ""))

	err := f.Restore(context.Background(), 12)
	assert.ErrorIs(t, err, ErrEmptyChat)
	assert.Equal(t, []int{12}, b.deleted)
}
