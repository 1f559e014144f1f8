package inbox

import (
	"strings"

	"github.com/nhle/easymail/internal/model"
)

const (
	NoSender  = "No Sender"
	NoSubject = "No Subject"
)

// Address is a parsed "Name <email>" string.
type Address struct {
	Name  string
	Email string
}

// ParseAddress splits "Name <email>" into its parts. A bare address is
// returned as both name and email, and an empty string yields "Unknown".
func ParseAddress(raw string) Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{Name: "Unknown"}
	}
	name, rest, found := strings.Cut(raw, " <")
	if !found {
		return Address{Name: raw, Email: raw}
	}
	return Address{
		Name:  strings.Trim(strings.TrimSpace(name), `"`),
		Email: strings.TrimSuffix(strings.TrimSpace(rest), ">"),
	}
}

// String renders the address for display.
func (a Address) String() string {
	if a.Name == a.Email || a.Name == "" {
		return a.Email
	}
	if a.Email == "" {
		return a.Name
	}
	return a.Name + " <" + a.Email + ">"
}

// SenderLabel returns the sender string handed to smart reply:
// "Name <email>", or the bare email when the name adds nothing.
func SenderLabel(raw string) string {
	a := ParseAddress(raw)
	if a.Email == "" {
		return ""
	}
	return a.String()
}

// FromLabel returns the list label for a message sender.
func FromLabel(h model.MessageHeader) string {
	if strings.TrimSpace(h.From) == "" {
		return NoSender
	}
	return h.From
}

// SubjectLabel returns the list label for a message subject.
func SubjectLabel(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return NoSubject
	}
	return subject
}

// ReplySubject prefixes a subject with "Re: ".
func ReplySubject(subject string) string {
	return "Re: " + strings.TrimSpace(subject)
}
