package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// LoadFile reads a model from path.
//
// Accepted inputs: a .cue file, a directory holding one CUE package, or a
// .yaml/.yml file. CUE inputs declare the model under the top-level
// `model` field; YAML files may use the same wrapper or hold the model
// fields directly.
func LoadFile(path string) (*model.Spec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if info.IsDir() {
		return loadCUEPackage(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	ctx := cuecontext.New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		root := ctx.CompileBytes(data, cue.Filename(path))
		if err := root.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		return CompileCUE(root)
	case ".yaml", ".yml":
		return CompileYAML(ctx, data, path)
	default:
		return nil, fmt.Errorf("load model: unsupported file %q: want .cue, .yaml or .yml", path)
	}
}

// loadCUEPackage builds the CUE package in dir.
func loadCUEPackage(dir string) (*model.Spec, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load model: no CUE instances in %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, formatCUEError(err)
	}

	root := cuecontext.New().BuildInstance(instances[0])
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCUE(root)
}

// CompileCUE compiles the `model` field of a CUE document.
func CompileCUE(root cue.Value) (*model.Spec, error) {
	mv := root.LookupPath(cue.ParsePath("model"))
	if !mv.Exists() {
		return nil, &CompileError{
			Field:   "model",
			Message: "model is required",
			Pos:     root.Pos(),
		}
	}
	return CompileModel(mv)
}

// CompileYAML decodes a YAML model and compiles it through the same schema
// as CUE input. Positions are lost in the conversion.
func CompileYAML(ctx *cue.Context, data []byte, filename string) (*model.Spec, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if len(doc) == 0 {
		return nil, &CompileError{Field: "model", Message: filename + " is empty"}
	}
	if wrapped, ok := doc["model"].(map[string]any); ok && len(doc) == 1 {
		doc = wrapped
	}

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModel(v)
}
