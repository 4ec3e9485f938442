package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/harness"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/idle"
	"github.com/roach88/weft/internal/markup"
	"github.com/roach88/weft/internal/node"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Database string
	Slice    time.Duration // 0 renders in one synchronous flush
	MaxUnits int
	IDs      bool
	Timeout  time.Duration
}

// RenderResult is the JSON payload of render.
type RenderResult struct {
	Root       string          `json:"root"`
	Pass       int64           `json:"pass"`
	Units      int             `json:"units"`
	Placements int             `json:"placements"`
	Updates    int             `json:"updates"`
	Deletions  int             `json:"deletions"`
	Slices     int64           `json:"slices,omitempty"`
	Tree       json.RawMessage `json:"tree"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <tree-file>",
		Short: "Render a markup tree and print the host tree",
		Long: `Render a CUE or YAML markup tree into an in-memory host and print
the committed host tree.

With --slice the pass runs on an idle loop, yielding at the end of
every slice of the given length; otherwise it is flushed in one go.
With --db every pass is journaled to a SQLite database that
"weft trace" can read.

Examples:
  weft render ./testdata/trees/counter.cue
  weft render ./page.yaml --slice 2ms --db ./weft.db
  weft render ./page.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal passes to this SQLite database")
	cmd.Flags().DurationVar(&opts.Slice, "slice", 0, "idle slice budget (0 flushes synchronously)")
	cmd.Flags().IntVar(&opts.MaxUnits, "max-units", 0, "fail a pass after this many units (0 = no limit)")
	cmd.Flags().BoolVar(&opts.IDs, "ids", false, "show host node ids in the dump")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "give up when the pass has not committed by then")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	tree, err := loadTree(f, path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	j, err := openJournal(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	s := newSession(logger, j, engine.WithMaxUnits(opts.MaxUnits))
	defer func() {
		if cerr := j.Close(); cerr != nil {
			logger.Error("journal", "error", cerr)
		}
	}()
	if err := j.begin(s.root.ID(), path); err != nil {
		return WrapExitError(ExitCommandError, "failed to write root", err)
	}

	f.VerboseLog("Rendering %s into root %s", path, s.root.ID())
	s.root.Render(tree, s.container)

	var slices int64
	if opts.Slice > 0 {
		slices, err = s.drive(ctx, opts.Slice, func(*idle.Loop, engine.CommitRecord) bool { return false })
	} else {
		err = s.flush()
	}
	if err != nil {
		return reportPassError(f, err)
	}

	rec, _ := s.last()
	f.VerboseLog("%s", harness.CommitSummary(rec))
	if f.JSON() {
		return f.Success(RenderResult{
			Root:       rec.RootID,
			Pass:       rec.Pass,
			Units:      rec.Units,
			Placements: rec.Count(engine.EffectPlacement),
			Updates:    rec.Count(engine.EffectUpdate),
			Deletions:  rec.Count(engine.EffectDeletion),
			Slices:     slices,
			Tree:       json.RawMessage(s.snapshot()),
		})
	}
	return host.Dump(f.Writer, s.container, host.DumpOptions{Color: f.Color, IDs: opts.IDs})
}

// loadTree loads a markup file with the built-in components. Markup errors
// are printed with their code and position.
func loadTree(f *OutputFormatter, path string) (*node.Descriptor, error) {
	tree, err := markup.Load(path, harness.Registry())
	if err == nil {
		return tree, nil
	}
	var le *markup.LoadError
	if !errors.As(err, &le) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load tree", err)
	}
	_ = f.Error(le.Code, le.Error(), loadErrorDetails(le))
	if le.Code == markup.ErrCodeRead {
		return nil, WrapExitError(ExitCommandError, "failed to read tree", err)
	}
	return nil, WrapExitError(ExitFailure, "invalid tree", err)
}

func loadErrorDetails(le *markup.LoadError) map[string]any {
	details := map[string]any{}
	if le.Path != "" {
		details["path"] = le.Path
	}
	if le.Pos.IsValid() {
		details["file"] = le.Pos.Filename()
		details["line"] = le.Pos.Line()
		details["column"] = le.Pos.Column()
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// reportPassError prints a failed pass and maps it to ExitFailure.
func reportPassError(f *OutputFormatter, err error) error {
	var pe *engine.PassError
	if !errors.As(err, &pe) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "render failed", err)
	}
	details := map[string]any{"pass": pe.Pass}
	if pe.Fiber != "" {
		details["fiber"] = pe.Fiber
	}
	for k, v := range pe.Details {
		details[k] = v
	}
	_ = f.Error(string(pe.Code), pe.Error(), details)
	return WrapExitError(ExitFailure, fmt.Sprintf("pass %d failed", pe.Pass), err)
}
