package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/weft/internal/engine"
)

// Transcript renders a result as stable text: one line per commit with its
// effects, then the final host tree.
//
//	commit pass=1 units=5
//	  placement div[0]
//	  placement div[0]/#text[0]
//	host
//	<main>
//	...
func Transcript(result *Result) string {
	var sb strings.Builder
	for _, rec := range result.Commits {
		fmt.Fprintf(&sb, "commit pass=%d units=%d\n", rec.Pass, rec.Units)
		for _, e := range rec.Effects {
			fmt.Fprintf(&sb, "  %s %s\n", e.Effect, e.Path)
		}
	}
	for _, p := range result.Journal {
		if !p.Committed() {
			fmt.Fprintf(&sb, "failed pass=%d code=%s fiber=%s\n", p.Seq, p.Code, p.Fiber)
		}
	}
	sb.WriteString("host\n")
	sb.WriteString(result.Dump)
	return sb.String()
}

// RunWithGolden runs a scenario and compares its transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's transcript against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(Transcript(result)))
}

// CommitSummary renders one commit as a single line.
func CommitSummary(rec engine.CommitRecord) string {
	return fmt.Sprintf("pass %d: %d units, %d placements, %d updates, %d deletions",
		rec.Pass, rec.Units,
		rec.Count(engine.EffectPlacement),
		rec.Count(engine.EffectUpdate),
		rec.Count(engine.EffectDeletion))
}

// Summary returns one line per commit.
func Summary(result *Result) []string {
	out := make([]string, 0, len(result.Commits))
	for _, rec := range result.Commits {
		out = append(out, CommitSummary(rec))
	}
	return out
}
