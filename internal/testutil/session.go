// Package testutil holds deterministic helpers shared by package tests and
// the scenario harness.
package testutil

// DefaultSessionToken is used when a scenario does not name its session.
const DefaultSessionToken = "test-session-default"

// FixedSessionGenerator returns the same session token every time, so a
// scenario run twice produces byte-identical transcripts. It implements
// engine.SessionTokenGenerator.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token.
// If token is empty, Generate returns DefaultSessionToken.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSessionToken
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
