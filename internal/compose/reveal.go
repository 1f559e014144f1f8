package compose

import "strings"

// Reveal types out a generated subject and then its body one character
// per step. The send action is offered once Done reports true.
type Reveal struct {
	subject []rune
	body    []rune
	pos     int
}

// NewReveal starts a reveal of out. Newlines are dropped from the
// subject.
func NewReveal(subject, body string) *Reveal {
	return &Reveal{
		subject: []rune(strings.ReplaceAll(subject, "\n", "")),
		body:    []rune(body),
	}
}

// Step advances by n characters and reports whether the reveal finished.
func (r *Reveal) Step(n int) bool {
	total := len(r.subject) + len(r.body)
	r.pos += n
	if r.pos > total {
		r.pos = total
	}
	return r.Done()
}

// Finish reveals everything at once.
func (r *Reveal) Finish() { r.pos = len(r.subject) + len(r.body) }

// Done reports whether the subject and body are fully shown.
func (r *Reveal) Done() bool { return r.pos >= len(r.subject)+len(r.body) }

// Subject returns the part of the subject revealed so far.
func (r *Reveal) Subject() string {
	if r.pos >= len(r.subject) {
		return string(r.subject)
	}
	return string(r.subject[:r.pos])
}

// Body returns the part of the body revealed so far. It stays empty until
// the subject is complete.
func (r *Reveal) Body() string {
	n := r.pos - len(r.subject)
	if n <= 0 {
		return ""
	}
	if n > len(r.body) {
		n = len(r.body)
	}
	return string(r.body[:n])
}
