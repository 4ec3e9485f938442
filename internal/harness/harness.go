package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/markup"
	"github.com/roach88/weft/internal/store"
	"github.com/roach88/weft/internal/testutil"
)

// ErrInjected is the error returned by host operations failed with a fail
// step.
var ErrInjected = errors.New("injected host failure")

// appendOnly hides host.Inserter.
type appendOnly struct{ host.Host }

// Harness holds the state of one scenario run.
type Harness struct {
	scenario  *Scenario
	registry  *markup.Registry
	mem       *host.Memory
	container *host.Element
	root      *engine.Root
	store     *store.Store
	recorder  *store.Recorder
	result    *Result
}

// Run executes a scenario and returns its result. The returned error is
// non-nil only when the scenario could not be set up; step and assertion
// failures are reported in the result.
//
// Each run uses a fresh in-memory journal, a fixed root id (the scenario
// name) and a discard logger, so results are reproducible.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for journal writes.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		scenario: scenario,
		registry: Registry(),
		mem:      host.NewMemory(),
		store:    st,
		result:   NewResult(),
	}
	h.container = h.mem.Container("main")
	h.recorder = store.NewRecorder(ctx, st, h.snapshot)

	tree, err := markup.Load(scenario.Tree, h.registry)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	opts := []engine.Option{
		engine.WithLogger(testutil.DiscardLogger()),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)),
		engine.WithMaxUnits(scenario.Options.MaxUnits),
		engine.WithObserver(h.recorder),
		engine.WithObserver(engine.CommitObserverFunc(func(rec engine.CommitRecord) {
			h.result.Commits = append(h.result.Commits, rec)
		})),
	}
	if scenario.Options.HookOrderCheck {
		opts = append(opts, engine.WithHookOrderCheck())
	}
	var target host.Host = h.mem
	if scenario.Options.AppendOnly {
		target = appendOnly{h.mem}
	}
	h.root = engine.New(target, opts...)

	if err := st.WriteRoot(ctx, h.root.ID(), scenario.Description); err != nil {
		return nil, err
	}
	h.root.Render(tree, h.container)

	for i, step := range scenario.Steps {
		h.mem.ResetOps()
		err := h.step(step)
		h.result.StepOps = append(h.result.StepOps, h.mem.Ops())
		if err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			break
		}
	}

	if err := h.recorder.Err(); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	h.result.Dump = host.DumpString(h.container)
	h.result.Snapshot = h.snapshot()
	h.result.Journal, err = st.ReadPasses(ctx, h.root.ID())
	if err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Store:     st,
		Ctx:       ctx,
		RootID:    h.root.ID(),
		Container: h.container,
	}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *Harness) snapshot() string {
	s, err := host.CanonicalSnapshot(h.container)
	if err != nil {
		return ""
	}
	return s
}

func (h *Harness) step(step Step) error {
	switch {
	case step.Flush:
		return h.checkPass(step, h.root.Flush())
	case step.Tick > 0:
		return h.checkPass(step, h.root.Tick(testutil.NewUnitDeadline(step.Tick)))
	case step.Dispatch != nil:
		return h.dispatch(step.Dispatch)
	case step.Render != "":
		tree, err := markup.Load(step.Render, h.registry)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		h.root.Render(tree, h.container)
		return nil
	case step.Fail != "":
		h.mem.FailNext(opKinds[step.Fail], ErrInjected)
		return nil
	}
	return fmt.Errorf("empty step")
}

func (h *Harness) dispatch(d *DispatchStep) error {
	target := host.Find(h.container, d.Target)
	if target == nil {
		return fmt.Errorf("dispatch: no element matches %q", d.Target)
	}
	n, err := h.mem.Dispatch(target, d.Event, d.Data)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dispatch: no %s handler on %q", d.Event, d.Target)
	}
	return nil
}

// checkPass journals a pass failure and compares it with the step's
// expectation.
func (h *Harness) checkPass(step Step, err error) error {
	if err != nil {
		h.recorder.RecordFailure(err)
	}
	if step.ExpectError == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("expected %s error, pass succeeded", step.ExpectError)
	}
	var pe *engine.PassError
	if !errors.As(err, &pe) || string(pe.Code) != step.ExpectError {
		return fmt.Errorf("expected %s error, got: %w", step.ExpectError, err)
	}
	return nil
}
