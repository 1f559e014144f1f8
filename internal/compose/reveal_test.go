package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevealSubjectThenBody(t *testing.T) {
	r := NewReveal("Hi\n", "Bob")

	assert.False(t, r.Step(1))
	assert.Equal(t, "H", r.Subject())
	assert.Empty(t, r.Body())

	assert.False(t, r.Step(2))
	assert.Equal(t, "Hi", r.Subject())
	assert.Equal(t, "B", r.Body())

	assert.True(t, r.Step(10))
	assert.Equal(t, "Bob", r.Body())
}

func TestRevealFinish(t *testing.T) {
	r := NewReveal("Café", "é")
	r.Finish()
	assert.True(t, r.Done())
	assert.Equal(t, "Café", r.Subject())
	assert.Equal(t, "é", r.Body())
}
