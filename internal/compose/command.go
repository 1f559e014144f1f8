package compose

import "strings"

// HelpText lists the slash commands.
const HelpText = "Available commands:\n/length [short|medium|long]\n/tone [normal|professional|academic|casual|friendly]"

const (
	invalidLength = "Invalid email length. Please select from: short, medium, or long."
	invalidTone   = "Invalid language tone. Please select from: normal, professional, academic, casual, or friendly."
)

// IsCommand reports whether chat input is a slash command. Commands are
// handled locally and never reach the backend.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// ParseCommand runs a slash command against s and returns the bot reply.
// Invalid arguments leave s unchanged. ok is false when text is not a
// command.
func ParseCommand(text string, s *Settings) (reply string, ok bool) {
	if !IsCommand(text) {
		return "", false
	}

	fields := strings.Split(text[1:], " ")
	command := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch command {
	case "length":
		if !ValidLength(arg) {
			return invalidLength, true
		}
		s.Length = arg
		return "Email length set to: " + arg, true
	case "tone":
		if !ValidTone(arg) {
			return invalidTone, true
		}
		s.Tone = arg
		return "Language tone set to: " + arg, true
	case "help":
		return HelpText, true
	default:
		return "Command not recognized: /" + command, true
	}
}
