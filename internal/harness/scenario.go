package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
)

// Scenario is one render test.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Tree is the tree file rendered before the first step.
	Tree string `yaml:"tree"`

	// Options configure the engine and host.
	Options Options `yaml:"options,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Options configure a scenario run.
type Options struct {
	// MaxUnits caps the units of one pass. 0 disables the cap.
	MaxUnits int `yaml:"max_units,omitempty"`

	// HookOrderCheck enables state-cell shape checking.
	HookOrderCheck bool `yaml:"hook_order_check,omitempty"`

	// AppendOnly hides InsertBefore from the engine so placements append.
	AppendOnly bool `yaml:"append_only,omitempty"`
}

// Step is exactly one action.
type Step struct {
	Flush    bool          `yaml:"flush,omitempty"`
	Tick     int           `yaml:"tick,omitempty"`
	Dispatch *DispatchStep `yaml:"dispatch,omitempty"`
	Render   string        `yaml:"render,omitempty"`
	Fail     string        `yaml:"fail,omitempty"`

	// ExpectError is the pass error code a flush or tick must return.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// DispatchStep fires an event on the host.
type DispatchStep struct {
	Target string         `yaml:"target"`
	Event  string         `yaml:"event"`
	Data   map[string]any `yaml:"data,omitempty"`
}

// Assertion validates the final state of a run.
type Assertion struct {
	Type   string `yaml:"type"`
	Target string `yaml:"target,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Expect string `yaml:"expect,omitempty"`
	Op     string `yaml:"op,omitempty"`
	Effect string `yaml:"effect,omitempty"`
	Step   int    `yaml:"step,omitempty"`
	Pass   int64  `yaml:"pass,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertHostText    = "host_text"
	AssertHostAttr    = "host_attr"
	AssertHostDump    = "host_dump"
	AssertHandlers    = "handlers"
	AssertOpCount     = "op_count"
	AssertCommitCount = "commit_count"
	AssertEffectCount = "effect_count"
	AssertJournal     = "journal"
)

var opKinds = map[string]host.OpKind{
	string(host.OpCreate):       host.OpCreate,
	string(host.OpSetProperty):  host.OpSetProperty,
	string(host.OpRemoveProp):   host.OpRemoveProp,
	string(host.OpBindEvent):    host.OpBindEvent,
	string(host.OpUnbindEvent):  host.OpUnbindEvent,
	string(host.OpAppendChild):  host.OpAppendChild,
	string(host.OpInsertBefore): host.OpInsertBefore,
	string(host.OpRemoveChild):  host.OpRemoveChild,
}

// LoadScenario reads and validates a scenario file. Tree paths are resolved
// relative to the file's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Tree = resolve(base, scenario.Tree)
	for i := range scenario.Steps {
		if scenario.Steps[i].Render != "" {
			scenario.Steps[i].Render = resolve(base, scenario.Steps[i].Render)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Tree == "" {
		return fmt.Errorf("tree is required")
	}
	if err := requireFile(s.Tree, "tree"); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Options.MaxUnits < 0 {
		return fmt.Errorf("options.max_units must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	actions := 0
	if step.Flush {
		actions++
	}
	if step.Tick != 0 {
		actions++
		if step.Tick < 0 {
			return fmt.Errorf("steps[%d]: tick must be positive", i)
		}
	}
	if step.Dispatch != nil {
		actions++
		if step.Dispatch.Target == "" || step.Dispatch.Event == "" {
			return fmt.Errorf("steps[%d]: dispatch needs target and event", i)
		}
	}
	if step.Render != "" {
		actions++
		if err := requireFile(step.Render, fmt.Sprintf("steps[%d].render", i)); err != nil {
			return err
		}
	}
	if step.Fail != "" {
		actions++
		if _, ok := opKinds[step.Fail]; !ok {
			return fmt.Errorf("steps[%d]: unknown host op %q", i, step.Fail)
		}
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one of flush, tick, dispatch, render, fail is required", i)
	}
	if step.ExpectError != "" && !step.Flush && step.Tick == 0 {
		return fmt.Errorf("steps[%d]: expect_error only applies to flush and tick", i)
	}
	return nil
}

func validateAssertion(i int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	case AssertHostText, AssertHandlers:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for %s", i, a.Type)
		}
	case AssertHostAttr:
		if a.Target == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: target and name are required for host_attr", i)
		}
	case AssertHostDump:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for host_dump", i)
		}
	case AssertOpCount:
		if _, ok := opKinds[a.Op]; !ok {
			return fmt.Errorf("assertions[%d]: unknown host op %q", i, a.Op)
		}
	case AssertCommitCount:
	case AssertEffectCount:
		if _, ok := engine.ParseEffect(a.Effect); !ok {
			return fmt.Errorf("assertions[%d]: unknown effect %q", i, a.Effect)
		}
	case AssertJournal:
		if a.Pass <= 0 || a.Expect == "" {
			return fmt.Errorf("assertions[%d]: pass and expect are required for journal", i)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", i)
	}
	return nil
}
