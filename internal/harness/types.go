package harness

import (
	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/store"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when no step failed unexpectedly and all assertions held.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Commits lists every commit in order.
	Commits []engine.CommitRecord `json:"-"`

	// StepOps holds the host ops recorded by each step, indexed like
	// Scenario.Steps.
	StepOps [][]host.Op `json:"-"`

	// Journal is the journaled pass list at the end of the run.
	Journal []store.Pass `json:"-"`

	// Dump is the final host tree under the container.
	Dump string `json:"dump"`

	// Snapshot is the final host tree as canonical JSON.
	Snapshot string `json:"snapshot"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Ops returns every op of the run, or of one step when step is 1 or more.
func (r *Result) Ops(step int) []host.Op {
	if step > 0 {
		if step > len(r.StepOps) {
			return nil
		}
		return r.StepOps[step-1]
	}
	var all []host.Op
	for _, ops := range r.StepOps {
		all = append(all, ops...)
	}
	return all
}
