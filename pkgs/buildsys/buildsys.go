package buildsys

import (
	"github.com/goplus/stext/mod/module"
	"github.com/goplus/stext/recipe"
)

// BuildSystem captures shared capabilities of build helpers.
// It keeps the common lifecycle and dependency/env setup; implementations add their own extras.
type BuildSystem interface {
	// Use injects an installed dependency prefix into the environment.
	Use(root string)

	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Configure(args ...string) error
	Build(args ...string) error
	Install(args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// GenerateRequest is everything a generator needs to know about one
// evaluated recipe.
type GenerateRequest struct {
	Settings recipe.Settings
	Folders  recipe.Folders
	Requires []module.Version

	// Roots maps a requirement name to its install prefix, when known.
	Roots map[string]string
}

// Generator emits build-system input files (toolchain definitions,
// dependency configs) consumed by a separate build step.
type Generator interface {
	// Name is the name recipes request the generator by.
	Name() string

	// Generate writes the generator output into dir and returns the written
	// file paths.
	Generate(dir string, req *GenerateRequest) ([]string, error)
}
