// Package catalog loads declarative storefront definitions written in CUE
// and compiles them into engine commands.
//
// A catalog is either a single .cue file or a directory of .cue files
// forming one CUE package. Every field under the top-level "storefront"
// struct becomes one storefront instance; categories, items and settings
// keep their declaration order.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/storefront/internal/command"
)

// Catalog is a compiled set of storefront definitions.
type Catalog struct {
	Storefronts []Storefront
	FileCount   int
}

// Commands returns the commands of every storefront, in order.
func (c *Catalog) Commands() []command.Command {
	var cmds []command.Command
	for _, sf := range c.Storefronts {
		cmds = append(cmds, sf.Commands...)
	}
	return cmds
}

// IDs returns the storefront ids in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Storefronts))
	for i, sf := range c.Storefronts {
		ids[i] = sf.ID
	}
	return ids
}

// Apply runs every command of the catalog through d.
func (c *Catalog) Apply(d *command.Dispatcher) ([]command.Outcome, error) {
	return d.ApplyAll(c.Commands())
}

// Load reads a catalog from a .cue file or a directory.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog: %v", err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile compiles a single .cue file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading catalog: %v", err)}
	}
	cat, err := CompileBytes(data, path)
	if err != nil {
		return nil, err
	}
	cat.FileCount = 1
	return cat, nil
}

// CompileBytes compiles CUE source. filename is used in error positions.
func CompileBytes(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, toLoadError(ErrCodeBuildFailed, formatCUEError("cue", err))
	}
	return compileValue(value)
}

// LoadDir loads every .cue file in dir as one CUE instance.
func LoadDir(dir string) (*Catalog, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, toLoadError(ErrCodeBuildFailed, formatCUEError("cue", err))
	}

	cat, err := compileValue(value)
	if err != nil {
		return nil, err
	}
	cat.FileCount = len(files)
	return cat, nil
}

func compileValue(v cue.Value) (*Catalog, error) {
	sfs, err := Compile(v)
	if err != nil {
		return nil, toLoadError(ErrCodeGeneric, err)
	}
	return &Catalog{Storefronts: sfs}, nil
}

// toLoadError converts a compile error to a LoadError with position info.
func toLoadError(fallback string, err error) *LoadError {
	var ce *CompileError
	if errors.As(err, &ce) {
		code := ce.Code()
		if code == ErrCodeGeneric {
			code = fallback
		}
		if ce.Message == msgNoStorefronts {
			code = ErrCodeEmpty
		}
		return &LoadError{Code: code, Message: fmt.Sprintf("%s: %s", ce.Field, ce.Message), Pos: ce.Pos}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}

// FindCUEFiles returns the .cue files directly inside dir. Subdirectories
// are separate CUE packages and are not part of the catalog.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
