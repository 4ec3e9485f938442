package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Root     string // optional - list the passes of one root
	Pass     int64  // optional - list the effects of one pass
}

// TraceRoot is one journaled root.
type TraceRoot struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Passes int    `json:"passes"`
	Last   string `json:"last_status,omitempty"`
}

// TracePass is one journaled pass.
type TracePass struct {
	Pass    int64             `json:"pass"`
	Status  string            `json:"status"`
	Units   int               `json:"units"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Fiber   string            `json:"fiber,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	Effects []TraceEffect     `json:"effects,omitempty"`
	Tree    json.RawMessage   `json:"tree,omitempty"`
}

// TraceEffect is one applied effect of a committed pass.
type TraceEffect struct {
	Effect string `json:"effect"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
}

// TraceResult holds the trace output. Exactly one of Roots and Passes is
// set.
type TraceResult struct {
	Roots  []TraceRoot `json:"roots,omitempty"`
	Root   string      `json:"root,omitempty"`
	Passes []TracePass `json:"passes,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a pass journal",
		Long: `Read the pass journal written by "weft render --db" or
"weft play --db".

Without --root, lists the journaled roots. With --root, lists the
root's passes, committed and failed. With --pass as well, lists the
effects that pass applied and the host tree it left behind.

Examples:
  weft trace --db ./weft.db
  weft trace --db ./weft.db --root 0192f5c4-...
  weft trace --db ./weft.db --root 0192f5c4-... --pass 2 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Root, "root", "", "root id to trace")
	cmd.Flags().Int64Var(&opts.Pass, "pass", 0, "pass number to expand (requires --root)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Pass != 0 && opts.Root == "" {
		return NewExitError(ExitCommandError, "--pass requires --root")
	}

	st, err := store.OpenExisting(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Root == "" {
		roots, err := traceRoots(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read roots", err)
		}
		if formatter.JSON() {
			return formatter.Success(TraceResult{Roots: roots})
		}
		if len(roots) == 0 {
			fmt.Fprintln(formatter.Writer, "No roots journaled.")
			return nil
		}
		for _, r := range roots {
			fmt.Fprintf(formatter.Writer, "%s  %d passes  last=%s  %s\n", r.ID, r.Passes, r.Last, r.Label)
		}
		return nil
	}

	passes, err := tracePasses(ctx, st, opts.Root, opts.Pass)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read passes", err)
	}
	if len(passes) == 0 {
		msg := fmt.Sprintf("no passes found for root %s", opts.Root)
		if opts.Pass != 0 {
			msg = fmt.Sprintf("pass %d not found for root %s", opts.Pass, opts.Root)
		}
		_ = formatter.Error(ErrCodeStore, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	if formatter.JSON() {
		return formatter.Success(TraceResult{Root: opts.Root, Passes: passes})
	}
	for _, p := range passes {
		printTracePass(formatter, p)
	}
	return nil
}

func traceRoots(ctx context.Context, st *store.Store) ([]TraceRoot, error) {
	roots, err := st.ReadRoots(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TraceRoot, 0, len(roots))
	for _, r := range roots {
		passes, err := st.ReadPasses(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		tr := TraceRoot{ID: r.ID, Label: r.Label, Passes: len(passes)}
		if len(passes) > 0 {
			tr.Last = passes[len(passes)-1].Status
		}
		out = append(out, tr)
	}
	return out, nil
}

// tracePasses returns the root's passes, or only pass when it is non-zero.
// A single pass is expanded with its effects and host tree.
func tracePasses(ctx context.Context, st *store.Store, rootID string, pass int64) ([]TracePass, error) {
	passes, err := st.ReadPasses(ctx, rootID)
	if err != nil {
		return nil, err
	}
	out := make([]TracePass, 0, len(passes))
	for _, p := range passes {
		if pass != 0 && p.Seq != pass {
			continue
		}
		tp := TracePass{
			Pass:    p.Seq,
			Status:  p.Status,
			Units:   p.Units,
			Code:    string(p.Code),
			Message: p.Message,
			Fiber:   p.Fiber,
			Details: p.Details,
		}
		if pass != 0 && p.Committed() {
			effects, err := st.ReadEffects(ctx, rootID, p.Seq)
			if err != nil {
				return nil, err
			}
			for _, e := range effects {
				tp.Effects = append(tp.Effects, TraceEffect{Effect: e.Effect.String(), Kind: e.Kind, Path: e.Path})
			}
			if p.Snapshot != "" {
				tp.Tree = json.RawMessage(p.Snapshot)
			}
		}
		out = append(out, tp)
	}
	return out, nil
}

func printTracePass(f *OutputFormatter, p TracePass) {
	w := f.Writer
	if p.Status == store.StatusCommitted {
		fmt.Fprintf(w, "%s pass %d committed, %d units\n", f.Mark(true), p.Pass, p.Units)
	} else {
		fmt.Fprintf(w, "%s pass %d failed [%s]\n", f.Mark(false), p.Pass, p.Code)
		if p.Fiber != "" {
			fmt.Fprintf(w, "  fiber: %s\n", p.Fiber)
		}
		fmt.Fprintf(w, "  %s\n", p.Message)
	}
	for _, e := range p.Effects {
		fmt.Fprintf(w, "  %-9s %s\n", e.Effect, e.Path)
	}
	if len(p.Tree) > 0 && f.Verbose {
		fmt.Fprintf(w, "  tree: %s\n", p.Tree)
	}
}
