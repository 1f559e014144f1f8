package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/model"
)

func TestNewSpanOffsetsBoundTrimmedText(t *testing.T) {
	full := "Hi Bob,\nThanks for the quick reply. See you soon."

	tests := []struct {
		name      string
		selection string
		want      string
		lead      bool
		trail     bool
		leadNL    bool
		trailNL   bool
	}{
		{"plain", "quick reply", "quick reply", false, false, false, false},
		{"spaces", " quick reply ", "quick reply", true, true, false, false},
		{"newline", "\nThanks", "Thanks", false, false, true, false},
		{"trailing newline", "Bob,\n", "Bob,", false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := NewSpan(model.TargetBody, full, tt.selection, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, span.Text)
			assert.Equal(t, tt.want, full[span.From:span.To])
			assert.Equal(t, tt.lead, span.LeadingSpace)
			assert.Equal(t, tt.trail, span.TrailingSpace)
			assert.Equal(t, tt.leadNL, span.LeadingNewline)
			assert.Equal(t, tt.trailNL, span.TrailingNewline)
		})
	}
}

func TestNewSpanSearchesFromStart(t *testing.T) {
	full := "one two one two"
	span, err := NewSpan(model.TargetSubject, full, "one", 4)
	require.NoError(t, err)
	assert.Equal(t, 8, span.From)
	assert.Equal(t, 11, span.To)
}

func TestNewSpanPositionCountsCharacters(t *testing.T) {
	full := "Café crème brûlée"
	span, err := NewSpan(model.TargetBody, full, "brûlée", 0)
	require.NoError(t, err)

	assert.Equal(t, "brûlée", full[span.From:span.To])
	pos := span.Position()
	assert.Equal(t, 11, pos.From)
	assert.Equal(t, 17, pos.To)

	req := span.Request()
	assert.Equal(t, model.TargetBody, req.Type)
	assert.Equal(t, "brûlée", req.Text)
}

func TestNewSpanErrors(t *testing.T) {
	_, err := NewSpan(model.TargetBody, "hello", "  \n", 0)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = NewSpan(model.TargetBody, "hello", "world", 0)
	assert.ErrorIs(t, err, ErrSelectionNotFound)
}
