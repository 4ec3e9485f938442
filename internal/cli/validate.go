package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/harness"
	"github.com/roach88/weft/internal/markup"
)

// ValidationError is one markup problem in a file.
type ValidationError struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"` // field path, e.g. "tree.children[1]"
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// FileValidation is the outcome for one tree file.
type FileValidation struct {
	File  string           `json:"file"`
	Valid bool             `json:"valid"`
	Error *ValidationError `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <tree-file-or-dir>...",
		Short: "Check markup trees without rendering them",
		Long: `Parse CUE and YAML markup trees and check their node shapes,
prop values, component names and handler names.

Directories are searched (non-recursively) for .cue, .yaml and .yml
files. Every file is checked; errors carry a code and a source
position.

Examples:
  weft validate ./testdata/trees
  weft validate ./page.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := treeFiles(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find trees", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeGeneric, "no tree files found", nil)
		return NewExitError(ExitCommandError, "no tree files found")
	}

	reg := harness.Registry()
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := FileValidation{File: file, Valid: true}
		if _, err := markup.Load(file, reg); err != nil {
			fv.Valid = false
			fv.Error = toValidationError(err)
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputValidationText(formatter, result)
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func toValidationError(err error) *ValidationError {
	var le *markup.LoadError
	if !errors.As(err, &le) {
		return &ValidationError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	ve := &ValidationError{Code: le.Code, Path: le.Path, Message: le.Message}
	if le.Pos.IsValid() {
		ve.Line = le.Pos.Line()
		ve.Column = le.Pos.Column()
	}
	return ve
}

func outputValidationText(f *OutputFormatter, result ValidationResult) {
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(f.Writer, "%s %s\n", f.Mark(true), fv.File)
			continue
		}
		ve := fv.Error
		where := fv.File
		if ve.Line > 0 {
			where = fmt.Sprintf("%s:%d:%d", fv.File, ve.Line, ve.Column)
		}
		fmt.Fprintf(f.Writer, "%s %s\n", f.Mark(false), where)
		if ve.Path != "" {
			fmt.Fprintf(f.Writer, "  [%s] %s: %s\n", ve.Code, ve.Path, ve.Message)
		} else {
			fmt.Fprintf(f.Writer, "  [%s] %s\n", ve.Code, ve.Message)
		}
	}
}

// treeFiles expands directories to the markup files they contain.
func treeFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".cue", ".yaml", ".yml":
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
