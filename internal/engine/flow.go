package engine

import (
	"github.com/google/uuid"
)

// SessionTokenGenerator produces the token that correlates one Clinic's log
// lines and the snapshots it saves.
// Tests inject testutil.FixedSessionGenerator.
type SessionTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens, so snapshots taken
// by later sessions sort after earlier ones when listed by token.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
