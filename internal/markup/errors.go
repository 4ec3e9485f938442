package markup

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for markup failures.
const (
	ErrCodeRead             = "M001" // File could not be read
	ErrCodeFormat           = "M002" // Unknown file extension
	ErrCodeSyntax           = "M003" // CUE or YAML syntax error
	ErrCodeNoTree           = "M004" // Missing top-level tree field
	ErrCodeNodeShape        = "M101" // Node needs exactly one of tag, text, component
	ErrCodeInvalidValue     = "M102" // Unsupported prop value (e.g. float)
	ErrCodeUnknownComponent = "M103" // Component not in registry
	ErrCodeUnknownHandler   = "M104" // Handler not in registry
	ErrCodeComponentKids    = "M105" // Component node with children
)

// LoadError is a markup failure with the source position it refers to.
type LoadError struct {
	Code    string
	Path    string // field path inside the tree, e.g. "tree.children[1]"
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	where := e.Code
	if e.Path != "" {
		where += " " + e.Path
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
