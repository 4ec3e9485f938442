package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/harness"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/idle"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Clicks      []string
	Event       string
	Diff        bool
	Slice       time.Duration
	Database    string
	MetricsAddr string
	Timeout     time.Duration
}

// PlayFrame is the host tree after the initial render or one dispatched
// event.
type PlayFrame struct {
	Target  string          `json:"target,omitempty"` // empty for the initial render
	Summary string          `json:"summary,omitempty"`
	Tree    json.RawMessage `json:"tree"`

	dump string // plain, for diffs
	view string // as printed
}

// PlayResult is the JSON payload of play.
type PlayResult struct {
	Root    string             `json:"root"`
	Frames  []PlayFrame        `json:"frames"`
	Slices  int64              `json:"slices"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <tree-file>",
		Short: "Render a tree on the idle loop and dispatch scripted events",
		Long: `Render a markup tree on an idle loop, then dispatch events to host
elements one at a time, waiting for each resulting pass to commit.
A frame is printed for the initial render and for every event.

Elements are selected by tag ("button"), id ("#inc"), class (".item")
or tag with a zero-based index ("li:2").

Examples:
  weft play ./testdata/trees/counter.cue --click '#inc' --click '#inc'
  weft play ./testdata/trees/toggle.cue --click '#toggle' --diff
  weft play ./page.cue --click '#add' --metrics-addr localhost:9464`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Clicks, "click", nil, "dispatch the event to this element (repeatable)")
	cmd.Flags().StringVar(&opts.Event, "event", "click", "event name to dispatch")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "print each frame as a diff against the previous one")
	cmd.Flags().DurationVar(&opts.Slice, "slice", idle.DefaultSliceBudget, "idle slice budget")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal passes to this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while playing")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "give up after this long")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.Slice <= 0 {
		return NewExitError(ExitCommandError, "--slice must be positive")
	}
	tree, err := loadTree(f, path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	ms, err := startMetrics(opts.MetricsAddr, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start metrics", err)
	}
	defer ms.Close()

	j, err := openJournal(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	s := newSession(logger, j, ms.option())
	defer func() {
		if cerr := j.Close(); cerr != nil {
			logger.Error("journal", "error", cerr)
		}
	}()
	if err := j.begin(s.root.ID(), path); err != nil {
		return WrapExitError(ExitCommandError, "failed to write root", err)
	}

	p := &player{session: s, clicks: opts.Clicks, event: opts.Event, color: f.Color}
	s.root.Render(tree, s.container)
	slices, err := s.drive(ctx, opts.Slice, p.onCommit)
	if err == nil {
		err = p.err
	}
	if err != nil {
		if p.err != nil {
			_ = f.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitFailure, "play failed", err)
		}
		return reportPassError(f, err)
	}

	totals, err := ms.Totals()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to gather metrics", err)
	}

	if f.JSON() {
		return f.Success(PlayResult{
			Root:    s.root.ID(),
			Frames:  p.frames,
			Slices:  slices,
			Metrics: totals,
		})
	}
	printFrames(f, p.frames, opts.Diff)
	if f.Verbose {
		names := make([]string, 0, len(totals))
		for name := range totals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f.VerboseLog("%s %g", name, totals[name])
		}
	}
	return nil
}

// player dispatches one scripted event per commit. All of its methods run
// on the loop goroutine.
type player struct {
	*session
	clicks []string
	event  string
	color  bool
	next   int
	frames []PlayFrame
	err    error
}

func (p *player) onCommit(loop *idle.Loop, rec engine.CommitRecord) bool {
	target := ""
	if len(p.frames) > 0 {
		target = p.clicks[p.next-1]
	}
	p.capture(target, harness.CommitSummary(rec))
	return p.dispatchNext(loop)
}

func (p *player) view() string {
	var sb strings.Builder
	_ = host.Dump(&sb, p.container, host.DumpOptions{Color: p.color})
	return sb.String()
}

func (p *player) capture(target, summary string) {
	p.frames = append(p.frames, PlayFrame{
		Target:  target,
		Summary: summary,
		Tree:    json.RawMessage(p.snapshot()),
		dump:    host.DumpString(p.container),
		view:    p.view(),
	})
}

// dispatchNext queues the next event. Returns false when the script is
// done.
func (p *player) dispatchNext(loop *idle.Loop) bool {
	if p.next >= len(p.clicks) {
		return false
	}
	sel := p.clicks[p.next]
	p.next++
	return loop.Submit(func() {
		if err := p.dispatch(sel); err != nil {
			p.err = err
			loop.Stop()
			return
		}
		if !p.root.Pending() {
			// The handler changed no state; nothing will commit.
			p.capture(sel, "")
			if !p.dispatchNext(loop) {
				loop.Stop()
			}
		}
	})
}

func (p *player) dispatch(sel string) error {
	target := host.Find(p.container, sel)
	if target == nil {
		return fmt.Errorf("no element matches %q", sel)
	}
	n, err := p.mem.Dispatch(target, p.event, nil)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no %s handler on %q", p.event, sel)
	}
	return nil
}

func printFrames(f *OutputFormatter, frames []PlayFrame, diff bool) {
	prev := ""
	for i, fr := range frames {
		title := "initial render"
		if fr.Target != "" {
			title = fr.Target
		}
		fmt.Fprintf(f.Writer, "== frame %d: %s ==\n", i, title)
		if fr.Summary != "" {
			fmt.Fprintln(f.Writer, fr.Summary)
		} else {
			fmt.Fprintln(f.Writer, "no pass scheduled")
		}
		if diff && i > 0 {
			fmt.Fprint(f.Writer, changedLines(harness.LineDiff(prev, fr.dump)))
		} else {
			fmt.Fprint(f.Writer, fr.view)
		}
		prev = fr.dump
	}
}

// changedLines keeps the added and removed lines of a line diff.
func changedLines(diff string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "+ ") {
			sb.WriteString(line)
		}
	}
	if sb.Len() == 0 {
		return "  (no host changes)\n"
	}
	return sb.String()
}
