package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/node"
	"github.com/roach88/weft/internal/testutil"
)

type counterProbe struct {
	seen []int
	set  func(func(int) int)
}

func (p *counterProbe) component() *node.ComponentType {
	return node.Define("Counter", func(s node.Scope, _ node.Props) *node.Descriptor {
		count, set := UseState(s, 0)
		p.seen = append(p.seen, count)
		p.set = set
		return node.H("div", nil,
			node.H("h1", nil, "Count: ", count),
			node.H("button", node.Props{"onClick": func() {
				set(func(n int) int { return n + 1 })
			}}, "+"),
		)
	})
}

func inc(n int) int { return n + 1 }

func TestUseState_PersistsAcrossRenders(t *testing.T) {
	fx := newFixture(t)
	probe := &counterProbe{}
	fx.mount(t, node.H(probe.component(), nil))

	for i := 0; i < 3; i++ {
		probe.set(inc)
		require.NoError(t, fx.root.Flush())
	}
	assert.Equal(t, []int{0, 1, 2, 3}, probe.seen)
}

func TestUseState_CounterScenario(t *testing.T) {
	fx := newFixture(t)
	probe := &counterProbe{}
	fx.mount(t, node.H(probe.component(), nil))

	h1 := host.Find(fx.container, "h1")
	btn := host.Find(fx.container, "button")
	require.NotNil(t, btn)
	assert.Equal(t, "Count: 0", h1.TextContent())
	fx.mem.ResetOps()

	n, err := fx.mem.Dispatch(btn, "click", nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, "Count: 0", h1.TextContent(), "nothing changes before the pass commits")

	require.NoError(t, fx.root.Flush())

	assert.Equal(t, "Count: 1", h1.TextContent())
	assert.Same(t, btn, host.Find(fx.container, "button"), "button handle is reused")

	ops := fx.mem.Ops()
	assert.Zero(t, host.Count(ops, host.OpCreate))
	assert.Zero(t, host.Count(ops, host.OpRemoveChild))
	assert.Equal(t, []host.Op{
		{Kind: host.OpSetProperty, Target: h1.Children[1].ID, Name: node.NodeValueKey, Value: "1"},
		{Kind: host.OpUnbindEvent, Target: btn.ID, Name: "click"},
		{Kind: host.OpBindEvent, Target: btn.ID, Name: "click"},
	}, ops)
	assert.Equal(t, []string{"click"}, btn.Handlers())
}

func TestUseState_QueuedUpdatesFoldFIFO(t *testing.T) {
	fx := newFixture(t)
	var seen []string
	var set func(func(string) string)
	comp := node.Define("Log", func(s node.Scope, _ node.Props) *node.Descriptor {
		v, setV := UseState(s, "")
		seen = append(seen, v)
		set = setV
		return node.H("p", nil, v)
	})
	fx.mount(t, node.H(comp, nil))

	set(func(v string) string { return v + "a" })
	set(func(v string) string { return v + "b" })
	set(func(v string) string { return v + "c" })
	require.NoError(t, fx.root.Flush())

	assert.Equal(t, []string{"", "abc"}, seen, "each setter restarts the pass; only the last one renders")
	assert.Equal(t, "abc", fx.container.TextContent())
	assert.Len(t, fx.commits, 2)
}

func TestUseState_SetterAbandonsInFlightPass(t *testing.T) {
	fx := newFixture(t)
	probe := &counterProbe{}
	fx.mount(t, node.H(probe.component(), nil))
	btn := host.Find(fx.container, "button")

	_, err := fx.mem.Dispatch(btn, "click", nil)
	require.NoError(t, err)
	// root, Counter, div: the counter has rendered 1
	require.NoError(t, fx.root.Tick(testutil.NewUnitDeadline(3)))
	require.True(t, fx.root.Pending())

	_, err = fx.mem.Dispatch(btn, "click", nil)
	require.NoError(t, err)
	require.NoError(t, fx.root.Flush())

	assert.Equal(t, []int{0, 1, 2}, probe.seen)
	assert.Equal(t, "Count: 2+", fx.container.TextContent())
	assert.Len(t, fx.commits, 2)
}

func TestUseState_IndependentCellsAndInstances(t *testing.T) {
	fx := newFixture(t)
	sets := map[string]func(func(int) int){}
	item := node.Define("Item", func(s node.Scope, p node.Props) *node.Descriptor {
		name := p["name"].(string)
		n, setN := UseState(s, 0)
		label, _ := UseState(s, name+":")
		sets[name] = setN
		return node.H("li", nil, label, n)
	})
	list := node.H("ul", nil,
		node.H(item, node.Props{"name": "a"}),
		node.H(item, node.Props{"name": "b"}),
	)
	fx.mount(t, list)

	sets["b"](func(n int) int { return n + 5 })
	require.NoError(t, fx.root.Flush())
	sets["a"](inc)
	require.NoError(t, fx.root.Flush())

	assert.Equal(t, "a:1b:5", fx.container.TextContent())
}

// Conditional state calls are not detected by default: the second render
// reads the string cell through an int accessor and silently gets 0.
func TestUseState_CallOrderCorruptionIsSilent(t *testing.T) {
	fx := newFixture(t)
	var got []int
	comp := node.Define("Flaky", func(s node.Scope, p node.Props) *node.Descriptor {
		if p["withName"] == true {
			UseState(s, "name")
		}
		n, _ := UseState(s, 7)
		got = append(got, n)
		return node.H("span", nil, n)
	})

	fx.mount(t, node.H(comp, node.Props{"withName": true}))
	fx.mount(t, node.H(comp, node.Props{"withName": false}))

	assert.Equal(t, []int{7, 0}, got)
	assert.Equal(t, "0", fx.container.TextContent())
}

func TestUseState_HookOrderCheck(t *testing.T) {
	fx := newFixture(t, WithHookOrderCheck())
	comp := node.Define("Flaky", func(s node.Scope, p node.Props) *node.Descriptor {
		if p["withName"] == true {
			UseState(s, "name")
		}
		n, _ := UseState(s, 7)
		return node.H("span", nil, n)
	})
	fx.mount(t, node.H(comp, node.Props{"withName": true}))
	before := fx.dump()

	fx.root.Render(node.H(comp, node.Props{"withName": false}), fx.container)
	err := fx.root.Flush()
	require.Error(t, err)
	assert.True(t, IsHookOrderError(err))

	var pe *PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "<Flaky>[0]", pe.Fiber)
	assert.Equal(t, "1", pe.Details["current"])
	assert.Equal(t, before, fx.dump(), "failed pass leaves the committed tree")
	assert.False(t, fx.root.Pending())
}

func TestUseState_HookOrderCheckTypeChange(t *testing.T) {
	fx := newFixture(t, WithHookOrderCheck())
	comp := node.Define("Swap", func(s node.Scope, p node.Props) *node.Descriptor {
		if p["swap"] == true {
			UseState(s, "x")
			UseState(s, 1)
		} else {
			UseState(s, 1)
			UseState(s, "x")
		}
		return nil
	})
	fx.mount(t, node.H(comp, node.Props{"swap": false}))

	fx.root.Render(node.H(comp, node.Props{"swap": true}), fx.container)
	err := fx.root.Flush()
	assert.True(t, IsHookOrderError(err))
}

func TestUseState_SetDuringRenderIgnored(t *testing.T) {
	fx := newFixture(t)
	renders := 0
	comp := node.Define("Eager", func(s node.Scope, _ node.Props) *node.Descriptor {
		n, set := UseState(s, 0)
		renders++
		set(inc)
		return node.H("i", nil, n)
	})
	fx.mount(t, node.H(comp, nil))

	assert.Equal(t, 1, renders)
	assert.False(t, fx.root.Pending())
	assert.Equal(t, "0", fx.container.TextContent())
}

func TestUseState_NilUpdateIgnored(t *testing.T) {
	fx := newFixture(t)
	probe := &counterProbe{}
	fx.mount(t, node.H(probe.component(), nil))

	probe.set(nil)
	assert.False(t, fx.root.Pending())
}
