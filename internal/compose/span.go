package compose

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/nhle/easymail/internal/model"
)

var (
	// ErrEmptySelection is returned for a selection with no text once trimmed.
	ErrEmptySelection = errors.New("select some text to paraphrase")

	// ErrSelectionNotFound is returned when the selection does not occur in
	// the text at or after the given start.
	ErrSelectionNotFound = errors.New("selected text is not part of the email")
)

// Span is a trimmed selection inside a subject or body. From and To are
// byte offsets into the full text, so full[From:To] == Text.
type Span struct {
	Target          model.ParaphraseTarget
	Text            string
	From            int
	To              int
	LeadingSpace    bool
	TrailingSpace   bool
	LeadingNewline  bool
	TrailingNewline bool

	runeFrom int
	runeTo   int
}

// NewSpan locates selection in full, searching from byte offset start.
// The whitespace flags describe the raw selection and the offsets bound
// the trimmed text.
func NewSpan(target model.ParaphraseTarget, full, selection string, start int) (Span, error) {
	trimmed := strings.TrimSpace(selection)
	if trimmed == "" {
		return Span{}, ErrEmptySelection
	}
	if start < 0 || start > len(full) {
		start = 0
	}

	idx := strings.Index(full[start:], selection)
	lead := 0
	if idx >= 0 {
		lead = strings.Index(selection, trimmed)
	} else {
		idx = strings.Index(full[start:], trimmed)
		if idx < 0 {
			return Span{}, ErrSelectionNotFound
		}
	}
	from := start + idx + lead
	to := from + len(trimmed)

	return Span{
		Target:          target,
		Text:            trimmed,
		From:            from,
		To:              to,
		LeadingSpace:    strings.HasPrefix(selection, " "),
		TrailingSpace:   strings.HasSuffix(selection, " "),
		LeadingNewline:  strings.HasPrefix(selection, "\n"),
		TrailingNewline: strings.HasSuffix(selection, "\n"),
		runeFrom:        utf8.RuneCountInString(full[:from]),
		runeTo:          utf8.RuneCountInString(full[:to]),
	}, nil
}

// Position returns the wire position. Offsets are counted in characters
// rather than bytes.
func (s Span) Position() model.ParaphrasePosition {
	return model.ParaphrasePosition{
		From:            s.runeFrom,
		To:              s.runeTo,
		LeadingSpace:    s.LeadingSpace,
		TrailingSpace:   s.TrailingSpace,
		LeadingNewline:  s.LeadingNewline,
		TrailingNewline: s.TrailingNewline,
	}
}

// Request builds the paraphrase request for the span.
func (s Span) Request() model.ParaphraseRequest {
	return model.ParaphraseRequest{
		Text:     s.Text,
		Type:     s.Target,
		Position: s.Position(),
	}
}
