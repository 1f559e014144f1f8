package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantTone string
		wantLen  string
	}{
		{"tone", "/tone academic", "Language tone set to: academic", "academic", "medium"},
		{"invalid tone", "/tone loud", "Invalid language tone. Please select from: normal, professional, academic, casual, or friendly.", "normal", "medium"},
		{"length", "/length long", "Email length set to: long", "normal", "long"},
		{"invalid length", "/length huge", "Invalid email length. Please select from: short, medium, or long.", "normal", "medium"},
		{"missing arg", "/length", "Invalid email length. Please select from: short, medium, or long.", "normal", "medium"},
		{"help", "/help", HelpText, "normal", "medium"},
		{"unknown", "/other", "Command not recognized: /other", "normal", "medium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings("normal", "medium")
			reply, ok := ParseCommand(tt.input, &s)
			assert.True(t, ok)
			assert.Equal(t, tt.want, reply)
			assert.Equal(t, tt.wantTone, s.Tone)
			assert.Equal(t, tt.wantLen, s.Length)
		})
	}
}

func TestParseCommandIgnoresPlainText(t *testing.T) {
	s := NewSettings("", "")
	reply, ok := ParseCommand("make it shorter", &s)
	assert.False(t, ok)
	assert.Empty(t, reply)
	assert.Equal(t, Settings{Tone: "normal", Length: "medium"}, s)
}

func TestNormalizeLength(t *testing.T) {
	assert.Equal(t, "short", NormalizeLength("Short"))
	assert.Equal(t, "medium", NormalizeLength("m"))
	assert.Equal(t, "long", NormalizeLength("longer"))
	assert.Equal(t, "medium", NormalizeLength("x"))
	assert.Equal(t, "medium", NormalizeLength(""))
}
