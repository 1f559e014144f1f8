package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	composer "github.com/nhle/easymail/internal/compose"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/ui"
)

type fakeBackend struct {
	generated []model.GenerateRequest
	modified  []model.ModifyRequest
	sent      []model.SendRequest
	commits   int
	deleted   []int
	messages  []model.ChatMessage
}

func (f *fakeBackend) GenerateEmail(_ context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	f.generated = append(f.generated, req)
	return &model.GenerateResponse{
		ChatID:             7,
		Output:             model.EmailOutput{Subject: "Lunch", Body: "Shall we meet at noon?"},
		AssistantMessageID: 70,
	}, nil
}

func (f *fakeBackend) ModifyEmail(_ context.Context, req model.ModifyRequest) (*model.GenerateResponse, error) {
	f.modified = append(f.modified, req)
	return &model.GenerateResponse{ChatID: req.ChatID, Output: model.EmailOutput{Subject: "Lunch", Body: "Noon?"}}, nil
}

func (f *fakeBackend) SendEmail(_ context.Context, req model.SendRequest) (*model.Message, error) {
	f.sent = append(f.sent, req)
	return &model.Message{Message: "Email sent successfully."}, nil
}

func (f *fakeBackend) GetChat(_ context.Context, id int) (*model.Chat, error) {
	return &model.Chat{ID: id}, nil
}

func (f *fakeBackend) GetChatMessages(context.Context, int) ([]model.ChatMessage, error) {
	return f.messages, nil
}

func (f *fakeBackend) DeleteChat(_ context.Context, id int) (*model.Message, error) {
	f.deleted = append(f.deleted, id)
	return &model.Message{Message: "ok"}, nil
}

func (f *fakeBackend) Paraphrase(context.Context, int, model.ParaphraseRequest) (*model.ParaphraseResponse, error) {
	return &model.ParaphraseResponse{Paraphrase: "Could we have lunch at twelve?"}, nil
}

func (f *fakeBackend) CommitParaphrase(context.Context, int) (*model.EmailOutput, error) {
	f.commits++
	return &model.EmailOutput{Subject: "Lunch", Body: "Could we have lunch at twelve?"}, nil
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newCompose(b *fakeBackend, interval time.Duration) Model {
	flow := composer.NewFlow(b, composer.NewSettings("normal", "medium"))
	m := New(flow, keys.DefaultKeyMap(), interval, "", 100, 40)
	m.SetAccounts([]model.LinkedAccount{{ID: 3, Service: model.ServiceGoogle, Email: "me@gmail.com"}})
	return m
}

// generated runs the setup form submission against b.
func generated(t *testing.T, m Model) Model {
	t.Helper()
	m.fb.to = "4, Bob <bob@example.com>"
	m.fb.instruction = "invite Bob to lunch"
	m, cmd := m.generate()
	require.True(t, m.Busy())
	m, _ = m.Update(cmd())
	require.False(t, m.Busy())
	return m
}

func TestGenerateRevealsBeforeSend(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, time.Millisecond)
	m = generated(t, m)

	require.Len(t, b.generated, 1)
	assert.Equal(t, 3, b.generated[0].OAuthID)
	assert.Equal(t, []model.Recipient{{ID: 4}, {Email: "bob@example.com"}}, b.generated[0].Contacts[0].To)

	assert.True(t, m.Revealing())
	assert.False(t, m.CanSend())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd, "send is hidden during the reveal")

	for i := 0; m.Revealing() && i < 100; i++ {
		m, _ = m.Update(revealTickMsg{gen: m.revealGen})
	}
	require.False(t, m.Revealing())
	assert.True(t, m.CanSend())
	assert.Contains(t, m.View(), "Shall we meet at noon?")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	require.Len(t, b.sent, 1)
	assert.Equal(t, "Shall we meet at noon?", b.sent[0].Body)

	msgs := collect(cmd)
	assert.Contains(t, msgs, tea.Msg(ui.ToastMsg{Level: model.LevelSuccess, Text: "Email sent successfully."}))
	assert.Contains(t, msgs, tea.Msg(SentMsg{ChatID: 7}))
	assert.False(t, m.CanSend())
}

func TestStaleRevealTickIgnored(t *testing.T) {
	m := newCompose(&fakeBackend{}, time.Millisecond)
	m = generated(t, m)

	m, cmd := m.Update(revealTickMsg{gen: m.revealGen - 1})
	assert.Nil(t, cmd)
	assert.True(t, m.Revealing())
}

func TestSlashCommandStaysLocal(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, 0)
	m = generated(t, m)
	require.False(t, m.Revealing())

	m.input.SetValue("/tone academic")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, b.modified)
	assert.Equal(t, "academic", m.Flow().Settings().Tone)
	assert.Contains(t, m.View(), "Language tone set to: academic")

	m.input.SetValue("make it shorter")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	require.Len(t, b.modified, 1)
	assert.Equal(t, "academic", b.modified[0].LanguageTone)
	assert.Equal(t, 7, b.modified[0].ChatID)
}

type nudgeMsg struct{}

func TestDetailsApplyToNextTurn(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, 0)
	m = generated(t, m)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, stageDetails, m.stage)
	assert.False(t, m.Idle())
	assert.Equal(t, 3, m.fb.oauthID)

	m.fb.to = "carol@example.com"
	m.fb.tone = "casual"
	m.detailsForm.State = huh.StateCompleted
	m, cmd := m.Update(nudgeMsg{})
	require.Equal(t, stageChat, m.stage)
	assert.Contains(t, collect(cmd), tea.Msg(ui.ToastMsg{Level: model.LevelInfo, Text: "Draft details updated"}))

	m.input.SetValue("make it warmer")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())

	require.Len(t, b.modified, 1)
	assert.Equal(t, "casual", b.modified[0].LanguageTone)
	assert.Equal(t, []model.Recipient{{Email: "carol@example.com"}}, b.modified[0].Contacts[0].To)
}

func TestDetailsAbortKeepsChat(t *testing.T) {
	m := newCompose(&fakeBackend{}, 0)
	m = generated(t, m)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m.fb.tone = "casual"
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, stageChat, m.stage)
	assert.Equal(t, "normal", m.Flow().Settings().Tone)
	assert.Equal(t, "normal", m.fb.tone)
}

func TestParaphraseDiscardMakesNoCommit(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, 0)
	m = generated(t, m)

	m.fb.target = model.TargetBody
	m.fb.selection = "meet at noon"
	span, err := m.selectedSpan()
	require.NoError(t, err)
	assert.Equal(t, "meet at noon", span.Text)

	p, err := m.Flow().Propose(context.Background(), span)
	m, _ = m.Update(proposedMsg{p: p, err: err})
	require.Equal(t, stageConfirm, m.stage)
	require.NotNil(t, m.Flow().Pending())
	assert.Equal(t, "Could we have lunch at twelve?", m.Flow().Pending().New)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, stageChat, m.stage)
	assert.Nil(t, m.Flow().Pending())
	assert.Zero(t, b.commits)
}

func TestCommitUpdatesTranscript(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, 0)
	m = generated(t, m)

	span, err := composer.NewSpan(model.TargetBody, "Shall we meet at noon?", "meet at noon", 0)
	require.NoError(t, err)
	_, err = m.Flow().Propose(context.Background(), span)
	require.NoError(t, err)
	out, err := m.Flow().Commit(context.Background())
	require.NoError(t, err)

	m, cmd := m.Update(committedMsg{out: out})
	assert.Equal(t, 1, b.commits)
	assert.Contains(t, collect(cmd), tea.Msg(ui.ToastMsg{Level: model.LevelSuccess, Text: "Paraphrase applied"}))
	assert.Contains(t, m.View(), "Could we have lunch at twelve?")
}

func TestOpenEmptyChatReturnsToHistory(t *testing.T) {
	b := &fakeBackend{}
	m := newCompose(b, 0)

	cmd := m.Open(9)
	m, cmd = m.Update(cmd())

	assert.Equal(t, []int{9}, b.deleted)
	msgs := collect(cmd)
	assert.Contains(t, msgs, tea.Msg(ui.ToastMsg{Level: model.LevelInfo, Text: ui.ErrorText(composer.ErrEmptyChat)}))
	assert.Contains(t, msgs, tea.Msg(ui.NavigateMsg{Route: ui.RouteHistory}))
	assert.Equal(t, stageSetup, m.stage)
}

func TestOpenRestoresBindings(t *testing.T) {
	b := &fakeBackend{messages: []model.ChatMessage{
		{ID: 1, ChatType: model.ChatTypeUser, Data: &model.TurnData{
			Instruction:  "ask for the report",
			Contacts:     []model.RecipientGroup{{To: []model.Recipient{{Email: "ann@example.com"}}}},
			LanguageTone: "casual",
			Length:       "Long",
		}},
		{ID: 2, Output: &model.EmailOutput{Subject: "Report", Body: "Hi Ann"}},
	}}
	m := newCompose(b, 0)

	cmd := m.Open(5)
	m, _ = m.Update(cmd())

	assert.Equal(t, stageChat, m.stage)
	assert.Equal(t, "ann@example.com", m.fb.to)
	assert.Equal(t, "casual", m.fb.tone)
	assert.Equal(t, "long", m.fb.length)
	assert.Contains(t, m.View(), "Hi Ann")
}

func TestExportWritesDraft(t *testing.T) {
	m := newCompose(&fakeBackend{}, 0)
	m.exportDir = t.TempDir()
	m = generated(t, m)

	msg, ok := m.export()().(exportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, m.exportDir, filepath.Dir(msg.path))

	raw, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Lunch")
	assert.Contains(t, string(raw), "bob@example.com")
	assert.Contains(t, string(raw), "me@gmail.com")
}
