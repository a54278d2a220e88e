package cmake

import (
	"fmt"
	"path/filepath"

	"github.com/goplus/stext/pkgs/buildsys"
	"github.com/goplus/stext/recipe"
)

// Options tunes the generators ForName returns.
type Options struct {
	// CMakeGenerator is the CMake generator recorded in the presets.
	CMakeGenerator string
}

// ForName returns the generator a recipe requests by name.
func ForName(name string, opts Options) (buildsys.Generator, error) {
	switch name {
	case recipe.CMakeToolchain:
		return &Toolchain{CMakeGenerator: opts.CMakeGenerator}, nil
	case recipe.CMakeDeps:
		return &Deps{}, nil
	}
	return nil, fmt.Errorf("unknown generator %q", name)
}

// Generate runs every named generator into the generators folder of req,
// resolved against root.
func Generate(root string, names []string, req *buildsys.GenerateRequest, opts Options) ([]string, error) {
	dir := filepath.Join(root, req.Folders.Generators)
	var written []string
	for _, name := range names {
		g, err := ForName(name, opts)
		if err != nil {
			return written, err
		}
		files, err := g.Generate(dir, req)
		if err != nil {
			return written, fmt.Errorf("%s: %w", name, err)
		}
		written = append(written, files...)
	}
	return written, nil
}
