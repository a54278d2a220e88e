// Package recipe describes what a project needs from the package manager:
// the settings it is evaluated against, the native libraries it requires and
// where generated build files are placed.
package recipe

import (
	"path/filepath"
	"slices"

	"github.com/goplus/stext/mod/module"
)

// Generator names understood by pkgs/buildsys/cmake.
const (
	CMakeToolchain = "CMakeToolchain"
	CMakeDeps      = "CMakeDeps"
)

// -----------------------------------------------------------------------------

// Recipe represents the build recipe of a project.
type Recipe struct {
	settings   []string
	generators []string

	fOnRequire func(deps *Deps)
	fOnLayout  func(s Settings, f *Folders)
}

// New returns an empty recipe.
func New() *Recipe {
	return &Recipe{}
}

// Default returns the recipe of the stretch extension: three pinned native
// libraries and a CMake layout.
func Default() *Recipe {
	r := New()
	r.Settings(OS, Compiler, BuildType, Arch)
	r.Generators(CMakeToolchain, CMakeDeps)
	r.OnRequire(func(deps *Deps) {
		deps.Require("audiofile", "1.1.1")
		deps.Require("glog", "0.7.0")
		deps.Require("soundtouch", "2.3.2")
	})
	r.OnLayout(CMakeLayout)
	return r
}

// Settings declares the setting names the recipe reads.
func (r *Recipe) Settings(names ...string) {
	r.settings = append(r.settings, names...)
}

// SettingNames returns the declared setting names.
func (r *Recipe) SettingNames() []string {
	return slices.Clone(r.settings)
}

// Generators requests build-system generators as output artifacts.
func (r *Recipe) Generators(names ...string) {
	r.generators = append(r.generators, names...)
}

// GeneratorNames returns the requested generator names.
func (r *Recipe) GeneratorNames() []string {
	return slices.Clone(r.generators)
}

// -----------------------------------------------------------------------------

// Deps collects the requirements of a recipe.
type Deps struct {
	deps []module.Version
}

// Deps returns the collected requirements.
func (p *Deps) Deps() []module.Version {
	return slices.Clone(p.deps)
}

// Require declares that the project depends on the named library pinned at
// ver.
func (p *Deps) Require(path, ver string) {
	p.deps = append(p.deps, module.Version{Path: path, Version: ver})
}

// OnRequire event is used to retrieve all direct requirements of the project.
func (r *Recipe) OnRequire(f func(deps *Deps)) {
	r.fOnRequire = f
}

// Requirements evaluates the OnRequire event and returns the declared
// requirements in declaration order.
func (r *Recipe) Requirements() []module.Version {
	var deps Deps
	if r.fOnRequire != nil {
		r.fOnRequire(&deps)
	}
	return deps.Deps()
}

// -----------------------------------------------------------------------------

// Folders is the folder layout of a project for one settings combination.
// All paths are relative to the project root.
type Folders struct {
	Source     string `json:"source"`
	Build      string `json:"build"`
	Generators string `json:"generators"`
}

// OnLayout event is used to place build and generated files.
func (r *Recipe) OnLayout(f func(s Settings, f *Folders)) {
	r.fOnLayout = f
}

// Layout evaluates the OnLayout event for s.
func (r *Recipe) Layout(s Settings) Folders {
	f := Folders{Source: "."}
	if r.fOnLayout != nil {
		r.fOnLayout(s, &f)
	}
	return f
}

// IsMultiConfig reports whether s selects a multi-configuration toolchain.
func IsMultiConfig(s Settings) bool {
	return s.GetSafe(Compiler) == MultiConfigCompiler
}

// CMakeLayout places generated files under build/generators for
// multi-configuration toolchains and under build/<build_type>/generators
// otherwise.
func CMakeLayout(s Settings, f *Folders) {
	if IsMultiConfig(s) {
		f.Build = "build"
		f.Generators = filepath.Join("build", "generators")
		return
	}
	buildType := s.GetSafe(BuildType)
	if buildType == "" {
		buildType = unset
	}
	f.Build = filepath.Join("build", buildType)
	f.Generators = filepath.Join("build", buildType, "generators")
}
