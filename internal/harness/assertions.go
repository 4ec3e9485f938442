package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/store"
)

// AssertionContext gives assertions access to the run's host tree and
// journal.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	RootID    string
	Container *host.Element
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string
	Actual   string
	Dump     string // Host tree at the end of the run
}

// Error implements the error interface. Multi-line expectations are shown as
// a line diff.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	if strings.Contains(e.Expected, "\n") || strings.Contains(e.Actual, "\n") {
		fmt.Fprintf(&buf, "  Diff (-expected +actual):\n")
		for _, line := range strings.SplitAfter(LineDiff(e.Expected, e.Actual), "\n") {
			if line != "" {
				buf.WriteString("    " + line)
			}
		}
	} else {
		fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
		fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	}
	if e.Dump != "" && e.Type != AssertHostDump {
		fmt.Fprintf(&buf, "\nHost tree:\n%s", e.Dump)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertHostText:
		return assertHostText(result, a, actx)
	case AssertHostAttr:
		return assertHostAttr(result, a, actx)
	case AssertHostDump:
		return compare(result, a.Type, a.Expect, result.Dump)
	case AssertHandlers:
		return assertHandlers(result, a, actx)
	case AssertOpCount:
		return assertOpCount(result, a)
	case AssertCommitCount:
		return compare(result, a.Type, strconv.Itoa(a.Count), strconv.Itoa(len(result.Commits)))
	case AssertEffectCount:
		return assertEffectCount(result, a)
	case AssertJournal:
		return assertJournal(result, a, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func compare(result *Result, typ, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{Type: typ, Expected: expected, Actual: actual, Dump: result.Dump}
}

func find(result *Result, a Assertion, actx *AssertionContext) (*host.Element, error) {
	e := host.Find(actx.Container, a.Target)
	if e == nil {
		return nil, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("an element matching %q", a.Target),
			Actual:   "no match",
			Dump:     result.Dump,
		}
	}
	return e, nil
}

func assertHostText(result *Result, a Assertion, actx *AssertionContext) error {
	e, err := find(result, a, actx)
	if err != nil {
		return err
	}
	return compare(result, a.Type, a.Expect, e.TextContent())
}

func assertHostAttr(result *Result, a Assertion, actx *AssertionContext) error {
	e, err := find(result, a, actx)
	if err != nil {
		return err
	}
	actual, ok := e.Attrs[a.Name]
	if !ok {
		actual = "<unset>"
	}
	return compare(result, a.Type, a.Expect, actual)
}

func assertHandlers(result *Result, a Assertion, actx *AssertionContext) error {
	e, err := find(result, a, actx)
	if err != nil {
		return err
	}
	return compare(result, a.Type, a.Expect, strings.Join(e.Handlers(), ","))
}

func assertOpCount(result *Result, a Assertion) error {
	n := host.Count(result.Ops(a.Step), opKinds[a.Op])
	if n == a.Count {
		return nil
	}
	scope := "run"
	if a.Step > 0 {
		scope = fmt.Sprintf("step %d", a.Step)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s ops in %s", a.Count, a.Op, scope),
		Actual:   fmt.Sprintf("%d", n),
		Dump:     result.Dump,
	}
}

func assertEffectCount(result *Result, a Assertion) error {
	effect, _ := engine.ParseEffect(a.Effect)
	n := 0
	for _, rec := range result.Commits {
		if a.Pass > 0 && rec.Pass != a.Pass {
			continue
		}
		n += rec.Count(effect)
	}
	if n == a.Count {
		return nil
	}
	scope := "all passes"
	if a.Pass > 0 {
		scope = fmt.Sprintf("pass %d", a.Pass)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s effects in %s", a.Count, a.Effect, scope),
		Actual:   fmt.Sprintf("%d", n),
		Dump:     result.Dump,
	}
}

// assertJournal matches expect against the pass status or its error code.
func assertJournal(result *Result, a Assertion, actx *AssertionContext) error {
	passes, err := actx.Store.ReadPasses(actx.Ctx, actx.RootID)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	for _, p := range passes {
		if p.Seq != a.Pass {
			continue
		}
		if a.Expect == p.Status || a.Expect == string(p.Code) {
			return nil
		}
		actual := p.Status
		if p.Code != "" {
			actual += " " + string(p.Code)
		}
		return &AssertionError{Type: a.Type, Expected: a.Expect, Actual: actual, Dump: result.Dump}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("pass %d %s", a.Pass, a.Expect),
		Actual:   "pass not journaled",
		Dump:     result.Dump,
	}
}
