package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/easymail/internal/model"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		raw  string
		want Address
	}{
		{"Alice Smith <alice@example.com>", Address{Name: "Alice Smith", Email: "alice@example.com"}},
		{`"Bob" <bob@example.com>`, Address{Name: "Bob", Email: "bob@example.com"}},
		{"carol@example.com", Address{Name: "carol@example.com", Email: "carol@example.com"}},
		{"", Address{Name: "Unknown"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAddress(tt.raw), tt.raw)
	}
}

func TestSenderLabel(t *testing.T) {
	assert.Equal(t, "Alice <alice@example.com>", SenderLabel("Alice <alice@example.com>"))
	assert.Equal(t, "alice@example.com", SenderLabel("alice@example.com"))
	assert.Equal(t, "alice@example.com", SenderLabel("alice@example.com <alice@example.com>"))
	assert.Equal(t, "", SenderLabel(""))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, NoSender, FromLabel(model.MessageHeader{}))
	assert.Equal(t, "x@y.z", FromLabel(model.MessageHeader{From: "x@y.z"}))
	assert.Equal(t, NoSubject, SubjectLabel("  "))
	assert.Equal(t, "Re: Lunch", ReplySubject(" Lunch "))
}
