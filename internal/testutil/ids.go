package testutil

import (
	"io"
	"log/slog"
)

// FixedIDGenerator returns the same root id every time, so commit records,
// journals and golden files from one scenario are byte-identical across
// runs.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id, or "root-test" when
// id is empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "root-test"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
