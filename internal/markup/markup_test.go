package markup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/node"
	"github.com/roach88/weft/internal/testutil"
)

var greeting = node.Define("Greeting", func(_ node.Scope, props node.Props) *node.Descriptor {
	return node.H("b", nil, "hi ", props["name"])
})

func testRegistry(clicks *int) *Registry {
	return NewRegistry().
		Register(greeting).
		Handle("count", func(node.Event) { *clicks++ })
}

func render(t *testing.T, d *node.Descriptor) (*host.Memory, *host.Element) {
	t.Helper()
	mem := host.NewMemory()
	container := mem.Container("main")
	root := engine.New(mem,
		engine.WithLogger(testutil.DiscardLogger()),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator("")),
	)
	root.Render(d, container)
	require.NoError(t, root.Flush())
	return mem, container
}

const cueTree = `
tree: {
	tag: "div"
	props: {id: "app", className: "box", style: {color: "red"}, tabIndex: 2}
	children: [
		"Hello, ",
		{component: "Greeting", props: {name: "ada"}},
		{tag: "button", on: {click: "count"}, children: [{text: 3}]},
	]
}
`

const yamlTree = `
tree:
  tag: div
  props:
    id: app
    className: box
    style:
      color: red
    tabIndex: 2
  children:
    - "Hello, "
    - component: Greeting
      props:
        name: ada
    - tag: button
      on:
        click: count
      children:
        - text: 3
`

func TestParse_FormatsAgree(t *testing.T) {
	want := "" +
		"<main>\n" +
		"  <div class=\"box\" id=\"app\" style=\"color: red\" tabIndex=\"2\">\n" +
		"    \"Hello, \"\n" +
		"    <b>\n" +
		"      \"hi \"\n" +
		"      \"ada\"\n" +
		"    </b>\n" +
		"    <button @click>\n" +
		"      \"3\"\n" +
		"    </button>\n" +
		"  </div>\n" +
		"</main>\n"

	for _, tc := range []struct {
		name string
		file string
		src  string
	}{
		{"cue", "tree.cue", cueTree},
		{"yaml", "tree.yaml", yamlTree},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clicks := 0
			d, err := Parse(tc.file, []byte(tc.src), testRegistry(&clicks))
			require.NoError(t, err)

			mem, container := render(t, d)
			assert.Equal(t, want, host.DumpString(container))

			n, err := mem.Dispatch(host.Find(container, "button"), "click", nil)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, 1, clicks)
		})
	}
}

func TestParse_ComponentKind(t *testing.T) {
	d, err := Parse("t.cue", []byte(`tree: {component: "Greeting", props: {name: "x"}}`), testRegistry(new(int)))
	require.NoError(t, err)

	assert.Equal(t, node.Component(greeting), d.Kind)
	assert.Equal(t, "x", d.Props["name"])
	assert.Empty(t, d.Children)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		code string
		path string
	}{
		{"unknown extension", "tree.json", `{}`, ErrCodeFormat, ""},
		{"cue syntax", "tree.cue", `tree: {`, ErrCodeSyntax, ""},
		{"yaml syntax", "tree.yaml", "tree: [\n", ErrCodeSyntax, ""},
		{"no tree", "tree.cue", `other: 1`, ErrCodeNoTree, ""},
		{"two kinds", "tree.cue", `tree: {tag: "p", text: "x"}`, ErrCodeNodeShape, "tree"},
		{"no kind", "tree.cue", `tree: {props: {}}`, ErrCodeNodeShape, "tree"},
		{"not a node", "tree.cue", `tree: 3`, ErrCodeNodeShape, "tree"},
		{"float prop", "tree.cue", `tree: {tag: "p", props: {w: 1.5}}`, ErrCodeInvalidValue, "tree.props.w"},
		{"unknown component", "tree.cue", `tree: {tag: "p", children: [{component: "Nope"}]}`, ErrCodeUnknownComponent, "tree.children[0].component"},
		{"unknown handler", "tree.cue", `tree: {tag: "p", on: {click: "nope"}}`, ErrCodeUnknownHandler, "tree.on.click"},
		{"component children", "tree.cue", `tree: {component: "Greeting", children: ["x"]}`, ErrCodeComponentKids, "tree.children"},
		{"nested float", "tree.yaml", "tree:\n  tag: p\n  props:\n    style:\n      w: 1.5\n", ErrCodeInvalidValue, "tree.props.style.w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, []byte(tt.src), testRegistry(new(int)))
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.Equal(t, tt.code, le.Code)
			assert.Equal(t, tt.path, le.Path)
		})
	}
}

func TestParse_ErrorPositions(t *testing.T) {
	src := "tree: {\n\ttag: \"p\"\n\tchildren: [\n\t\t{component: \"Nope\"},\n\t]\n}\n"
	_, err := Parse("page.cue", []byte(src), NewRegistry())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	require.True(t, le.Pos.IsValid())
	assert.Equal(t, "page.cue", le.Pos.Filename())
	assert.Equal(t, 4, le.Pos.Line())
	assert.Contains(t, err.Error(), "page.cue:4:")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yml")
	require.NoError(t, os.WriteFile(path, []byte("tree:\n  tag: p\n  children: [hi]\n"), 0o644))

	d, err := Load(path, nil)
	require.NoError(t, err)
	_, container := render(t, d)
	assert.Equal(t, "hi", container.TextContent())

	_, err = Load(filepath.Join(dir, "missing.cue"), nil)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeRead, le.Code)
}

func TestRegistry(t *testing.T) {
	other := node.Define("Another", func(node.Scope, node.Props) *node.Descriptor { return nil })
	r := NewRegistry().Register(greeting, other)

	assert.Equal(t, []string{"Another", "Greeting"}, r.Components())
	c, ok := r.Component("Greeting")
	assert.True(t, ok)
	assert.Same(t, greeting, c)
	_, ok = r.Handler("x")
	assert.False(t, ok)
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "onClick", eventKey("click"))
	assert.Equal(t, "onInput", eventKey("input"))
	assert.Equal(t, "click", node.EventName(eventKey("click")))
}
