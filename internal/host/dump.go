package host

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/weft/internal/node"
)

// DumpOptions controls Dump output.
type DumpOptions struct {
	Color  bool // ANSI colours for tags, attributes and text
	IDs    bool // include "#id" after each tag
	Indent string
}

type palette struct {
	tag, attr, value, event, text func(string, ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(string, ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintfFunc()
	}
	return palette{
		tag:   mk(color.FgBlue, color.Bold),
		attr:  mk(color.FgCyan),
		value: mk(color.FgGreen),
		event: mk(color.FgMagenta),
		text:  mk(color.FgYellow),
	}
}

// Dump writes an indented rendering of the subtree rooted at e:
//
//	<div class="app" @click>
//	  "hello"
//	  <br/>
//	</div>
//
// Attributes and bound events are listed in sorted order.
func Dump(w io.Writer, e *Element, opts DumpOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var sb strings.Builder
	writeElement(&sb, e, 0, opts, newPalette(opts.Color))
	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpString is Dump into a string without colour.
func DumpString(e *Element) string {
	var sb strings.Builder
	_ = Dump(&sb, e, DumpOptions{})
	return sb.String()
}

func writeElement(sb *strings.Builder, e *Element, depth int, opts DumpOptions, p palette) {
	pad := strings.Repeat(opts.Indent, depth)
	if e.IsText() {
		fmt.Fprintf(sb, "%s%s\n", pad, p.text("%s", strconv.Quote(e.Text)))
		return
	}
	sb.WriteString(pad)
	sb.WriteString(p.tag("<%s", e.Tag))
	if opts.IDs {
		sb.WriteString(p.tag("#%d", e.ID))
	}
	for _, k := range node.SortedKeys(e.Attrs) {
		fmt.Fprintf(sb, " %s=%s", p.attr("%s", k), p.value("%s", strconv.Quote(e.Attrs[k])))
	}
	for _, ev := range e.Handlers() {
		sb.WriteString(" " + p.event("@%s", ev))
	}
	if len(e.Children) == 0 {
		sb.WriteString(p.tag("/>") + "\n")
		return
	}
	sb.WriteString(p.tag(">") + "\n")
	for _, c := range e.Children {
		writeElement(sb, c, depth+1, opts, p)
	}
	fmt.Fprintf(sb, "%s%s\n", pad, p.tag("</%s>", e.Tag))
}
