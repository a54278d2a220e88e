package cmake

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/goplus/stext/pkgs/buildsys"
	"github.com/goplus/stext/recipe"
)

// Files written by the CMakeToolchain generator.
const (
	ToolchainFile = "stext_toolchain.cmake"
	PresetsFile   = "CMakePresets.json"
)

// Toolchain is the CMakeToolchain generator.
type Toolchain struct {
	// CMakeGenerator is written into the configure preset when set.
	CMakeGenerator string
}

var _ buildsys.Generator = (*Toolchain)(nil)

func (*Toolchain) Name() string { return recipe.CMakeToolchain }

var toolchainTmpl = template.Must(template.New(ToolchainFile).Parse(`# Generated by stext {{.Generator}} for {{.Settings}}. Do not edit.
{{- if .BuildType}}
set(CMAKE_BUILD_TYPE "{{.BuildType}}" CACHE STRING "Choose the type of build." FORCE)
{{- end}}
{{- if .CCompiler}}
set(CMAKE_C_COMPILER "{{.CCompiler}}")
set(CMAKE_CXX_COMPILER "{{.CXXCompiler}}")
{{- end}}
{{- if .OSXArch}}
set(CMAKE_OSX_ARCHITECTURES "{{.OSXArch}}" CACHE STRING "" FORCE)
{{- end}}
set(CMAKE_CXX_STANDARD 17)
set(CMAKE_CXX_STANDARD_REQUIRED ON)
set(CMAKE_POSITION_INDEPENDENT_CODE ON)
set(CMAKE_FIND_PACKAGE_PREFER_CONFIG ON)
list(PREPEND CMAKE_PREFIX_PATH "${CMAKE_CURRENT_LIST_DIR}")
list(PREPEND CMAKE_MODULE_PATH "${CMAKE_CURRENT_LIST_DIR}")
`))

type toolchainData struct {
	Generator   string
	Settings    string
	BuildType   string
	CCompiler   string
	CXXCompiler string
	OSXArch     string
}

// Generate writes the toolchain file and a CMakePresets.json pointing at it.
func (t *Toolchain) Generate(dir string, req *buildsys.GenerateRequest) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := req.Settings
	data := toolchainData{
		Generator: t.Name(),
		Settings:  s.String(),
		OSXArch:   osxArch(s),
	}
	if !recipe.IsMultiConfig(s) {
		data.BuildType = s.GetSafe(recipe.BuildType)
	}
	data.CCompiler, data.CXXCompiler = compilers(s.GetSafe(recipe.Compiler))

	toolchainPath := filepath.Join(dir, ToolchainFile)
	f, err := os.Create(toolchainPath)
	if err != nil {
		return nil, err
	}
	if err := toolchainTmpl.Execute(f, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	presetsPath := filepath.Join(dir, PresetsFile)
	presets, err := json.MarshalIndent(t.presets(req), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(presetsPath, append(presets, '\n'), 0o644); err != nil {
		return nil, err
	}
	return []string{toolchainPath, presetsPath}, nil
}

type presets struct {
	Version          int               `json:"version"`
	CMakeMinimum     cmakeVersion      `json:"cmakeMinimumRequired"`
	ConfigurePresets []configurePreset `json:"configurePresets"`
	BuildPresets     []buildPreset     `json:"buildPresets"`
}

type cmakeVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

type presetArch struct {
	Value    string `json:"value"`
	Strategy string `json:"strategy"`
}

type configurePreset struct {
	Name           string            `json:"name"`
	DisplayName    string            `json:"displayName"`
	Generator      string            `json:"generator,omitempty"`
	Architecture   *presetArch       `json:"architecture,omitempty"`
	BinaryDir      string            `json:"binaryDir"`
	ToolchainFile  string            `json:"toolchainFile"`
	CacheVariables map[string]string `json:"cacheVariables,omitempty"`
}

type buildPreset struct {
	Name            string `json:"name"`
	ConfigurePreset string `json:"configurePreset"`
	Configuration   string `json:"configuration,omitempty"`
}

// PresetName returns the preset name the generator uses for s.
func PresetName(s recipe.Settings) string {
	if recipe.IsMultiConfig(s) {
		return "stext-default"
	}
	bt := s.GetSafe(recipe.BuildType)
	if bt == "" {
		bt = "none"
	}
	return "stext-" + strings.ToLower(bt)
}

func (t *Toolchain) presets(req *buildsys.GenerateRequest) *presets {
	s := req.Settings
	name := PresetName(s)
	cp := configurePreset{
		Name:          name,
		DisplayName:   "stext " + s.String(),
		Generator:     t.CMakeGenerator,
		BinaryDir:     sourceRel(req.Folders.Build),
		ToolchainFile: sourceRel(filepath.Join(req.Folders.Generators, ToolchainFile)),
	}
	bp := buildPreset{Name: name, ConfigurePreset: name}
	if recipe.IsMultiConfig(s) {
		if a := msvcArch(s.GetSafe(recipe.Arch)); a != "" {
			cp.Architecture = &presetArch{Value: a, Strategy: "set"}
		}
		bp.Configuration = s.GetSafe(recipe.BuildType)
	} else if bt := s.GetSafe(recipe.BuildType); bt != "" {
		cp.CacheVariables = map[string]string{"CMAKE_BUILD_TYPE": bt}
	}
	return &presets{
		Version:          3,
		CMakeMinimum:     cmakeVersion{Major: 3, Minor: 21},
		ConfigurePresets: []configurePreset{cp},
		BuildPresets:     []buildPreset{bp},
	}
}

func sourceRel(p string) string {
	return "${sourceDir}/" + filepath.ToSlash(p)
}

func compilers(compiler string) (cc, cxx string) {
	switch compiler {
	case "gcc":
		return "gcc", "g++"
	case "clang", "apple-clang":
		return "clang", "clang++"
	}
	return "", ""
}

func osxArch(s recipe.Settings) string {
	if s.GetSafe(recipe.OS) != "Macos" {
		return ""
	}
	switch a := s.GetSafe(recipe.Arch); a {
	case "armv8":
		return "arm64"
	default:
		return a
	}
}

func msvcArch(arch string) string {
	switch arch {
	case "x86_64":
		return "x64"
	case "x86":
		return "Win32"
	case "armv8":
		return "ARM64"
	}
	return ""
}
