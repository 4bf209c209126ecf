package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL configuration loading process. Blocks
// may be spread over any number of files; processes keep the order in
// which the files and blocks appear.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(hclFiles) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		// Translate and merge all discovered blocks into the model.
		for _, clock := range root.Clocks {
			if model.Clock != nil {
				return nil, nil, fmt.Errorf("%s: only one clock block is allowed", file)
			}
			model.Clock, err = l.translateClock(clock)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		for _, out := range root.Outputs {
			if model.Output != nil {
				return nil, nil, fmt.Errorf("%s: only one output block is allowed", file)
			}
			model.Output = l.translateOutput(out)
		}
		for _, p := range root.Processes {
			proc, err := l.translateProcess(ctx, p, file)
			if err != nil {
				return nil, nil, err
			}
			model.Processes = append(model.Processes, proc)
		}
	}

	logger.Debug("HCL loading complete.", "processes", len(model.Processes), "clock", model.Clock != nil, "output", model.Output != nil)
	return model, NewConverter(), nil
}

// findAllHCLFiles walks all given paths and returns a flat, deduplicated
// list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
