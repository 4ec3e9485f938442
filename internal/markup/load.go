package markup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/weft/internal/node"
)

// Load reads a tree file and builds its descriptor tree. The format is chosen
// by extension.
func Load(path string, reg *Registry) (*node.Descriptor, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error()}
	}
	return Parse(path, src, reg)
}

// Parse builds a descriptor tree from tree file source. filename selects the
// format and appears in error positions.
func Parse(filename string, src []byte, reg *Registry) (*node.Descriptor, error) {
	v, err := compile(filename, src)
	if err != nil {
		return nil, err
	}
	tree := v.LookupPath(cue.ParsePath("tree"))
	if !tree.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeNoTree,
			Message: "top-level tree field is required",
			Pos:     v.Pos(),
		}
	}
	return Build(tree, reg)
}

func compile(filename string, src []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		v := ctx.CompileBytes(src, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return cue.Value{}, formatCUEError(ErrCodeSyntax, err)
		}
		return v, nil
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(filename, src)
		if err != nil {
			return cue.Value{}, formatCUEError(ErrCodeSyntax, err)
		}
		v := ctx.BuildFile(f)
		if err := v.Err(); err != nil {
			return cue.Value{}, formatCUEError(ErrCodeSyntax, err)
		}
		return v, nil
	default:
		return cue.Value{}, &LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported tree file %q (want .cue, .yaml or .yml)", filename),
		}
	}
}
