package compose

import "strings"

// Tones lists the accepted language tones in display order.
var Tones = []string{"normal", "professional", "academic", "casual", "friendly"}

// Lengths lists the accepted email lengths in display order.
var Lengths = []string{"short", "medium", "long"}

const (
	DefaultTone   = "normal"
	DefaultLength = "medium"
)

// Settings are the generation options applied to the next turn.
type Settings struct {
	Tone   string
	Length string
}

// NewSettings returns settings seeded from configured defaults. Values
// outside the accepted sets fall back to normal and medium.
func NewSettings(tone, length string) Settings {
	s := Settings{Tone: DefaultTone, Length: DefaultLength}
	if ValidTone(tone) {
		s.Tone = tone
	}
	if ValidLength(length) {
		s.Length = length
	}
	return s
}

// ValidTone reports whether tone is one of Tones.
func ValidTone(tone string) bool { return contains(Tones, tone) }

// ValidLength reports whether length is one of Lengths.
func ValidLength(length string) bool { return contains(Lengths, length) }

// NormalizeLength maps a stored length to short, medium or long by its
// first letter. Anything else becomes medium.
func NormalizeLength(length string) string {
	if length == "" {
		return DefaultLength
	}
	switch strings.ToLower(length[:1]) {
	case "s":
		return "short"
	case "m":
		return "medium"
	case "l":
		return "long"
	default:
		return DefaultLength
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
