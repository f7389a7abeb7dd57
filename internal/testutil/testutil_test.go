package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/clinicflow/internal/engine"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("s-1")
	assert.Equal(t, "s-1", gen.Generate())
	assert.Equal(t, "s-1", gen.Generate(), "never runs out")

	assert.Equal(t, DefaultSessionToken, NewFixedSessionGenerator("").Generate())
}

func TestFixedSessionGenerator_DrivesClinic(t *testing.T) {
	var gen engine.SessionTokenGenerator = NewFixedSessionGenerator("s-2")
	c := engine.New(engine.WithTokenGenerator(gen), engine.WithLogger(engine.DiscardLogger()))
	defer c.Close()
	assert.Equal(t, "s-2", c.SessionToken())
}

func TestStepCounter(t *testing.T) {
	var c StepCounter
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
}

func TestPatient(t *testing.T) {
	rec := Patient(" Ana ", 30, "111")
	assert.Equal(t, "Ana", rec.Name)
	assert.Equal(t, FixtureEntry, rec.Entry)
}
