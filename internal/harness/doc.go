// Package harness runs render scenarios against the engine and an in-memory
// host, then checks the resulting host tree, op log and commit journal.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: counter_increments
//	description: "Clicking + twice shows Count: 2"
//	tree: ../trees/counter.cue
//	options:
//	  max_units: 500
//	steps:
//	  - flush: true
//	  - dispatch: {target: "#inc", event: click}
//	  - tick: 3
//	  - flush: true
//	  - fail: append
//	  - render: ../trees/other.cue
//	  - flush: true
//	    expect_error: HOST_FAILURE
//	assertions:
//	  - type: host_text
//	    target: "#count"
//	    expect: "Count: 1"
//	  - type: op_count
//	    step: 3
//	    op: set
//	    count: 1
//
// Tree and render paths are resolved relative to the scenario file. The
// initial tree is rendered before the first step but nothing runs until a
// flush or tick step.
//
// # Steps
//
//   - flush: run the pending pass to completion
//   - tick: run one idle slice that allows N units of work
//   - dispatch: fire an event on the first element matching target
//   - render: render a new tree file into the container
//   - fail: make the next host operation of that kind fail
//
// A flush or tick that returns a pass error fails the scenario unless the
// step names the error code in expect_error.
//
// # Assertion Types
//
//   - host_text: text content of target equals expect
//   - host_attr: attribute name of target equals expect
//   - host_dump: the whole container dump equals expect
//   - handlers: comma-separated bound events of target equal expect
//   - op_count: number of host ops of kind op (optionally in one step)
//   - commit_count: number of commits
//   - effect_count: number of effects of a kind (optionally in one pass)
//   - journal: journaled status or error code of a pass
//
// Every scenario is journaled to an in-memory store so journal assertions see
// exactly what the CLI would write to disk.
package harness
