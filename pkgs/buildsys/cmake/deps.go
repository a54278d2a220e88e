package cmake

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/goplus/stext/mod/module"
	"github.com/goplus/stext/pkgs/buildsys"
	"github.com/goplus/stext/recipe"
)

// Deps is the CMakeDeps generator: one find_package config per requirement.
type Deps struct{}

var _ buildsys.Generator = (*Deps)(nil)

func (*Deps) Name() string { return recipe.CMakeDeps }

// libraryNames lists the link library names of known requirements. A known
// requirement with no names is header-only.
var libraryNames = map[string][]string{
	"audiofile":  nil,
	"glog":       {"glog", "glogd"},
	"soundtouch": {"SoundTouch", "SoundTouchD", "soundtouch"},
}

var configTmpl = template.Must(template.New("config").Parse(`# Generated by stext CMakeDeps for {{.Ref}}. Do not edit.
set({{.Name}}_VERSION_STRING "{{.Version}}")
set({{.RootVar}} "{{.RootValue}}")
if(NOT TARGET {{.Target}})
  add_library({{.Target}} INTERFACE IMPORTED)
  if({{.RootVar}})
    set_target_properties({{.Target}} PROPERTIES
      INTERFACE_INCLUDE_DIRECTORIES "{{.RootRef}}/include")
{{- if .Libs}}
    find_library({{.LibVar}} NAMES {{.Libs}} PATHS "{{.RootRef}}/lib" NO_DEFAULT_PATH)
    if({{.LibVar}})
      set_property(TARGET {{.Target}} APPEND PROPERTY INTERFACE_LINK_LIBRARIES "{{.LibRef}}")
    endif()
{{- end}}
  endif()
endif()
set({{.Name}}_FOUND TRUE)
`))

var versionTmpl = template.Must(template.New("version").Parse(`# Generated by stext CMakeDeps for {{.Ref}}. Do not edit.
set(PACKAGE_VERSION "{{.Version}}")
if(PACKAGE_FIND_VERSION VERSION_GREATER PACKAGE_VERSION)
  set(PACKAGE_VERSION_COMPATIBLE FALSE)
else()
  set(PACKAGE_VERSION_COMPATIBLE TRUE)
  if(PACKAGE_FIND_VERSION STREQUAL PACKAGE_VERSION)
    set(PACKAGE_VERSION_EXACT TRUE)
  endif()
endif()
`))

type depData struct {
	Ref       string
	Name      string
	Version   string
	Target    string
	RootVar   string
	RootRef   string
	RootValue string
	Libs      string
	LibVar    string
	LibRef    string
}

func newDepData(dep module.Version, root string) depData {
	name := dep.Path
	d := depData{
		Ref:     dep.String(),
		Name:    name,
		Version: dep.Version,
		Target:  name + "::" + name,
		RootVar: name + "_ROOT",
		LibVar:  name + "_LIBRARY",
	}
	d.RootRef = "${" + d.RootVar + "}"
	d.LibRef = "${" + d.LibVar + "}"
	if root != "" {
		d.RootValue = filepath.ToSlash(root)
	} else {
		d.RootValue = "$ENV{" + EnvRoot(name) + "}"
	}
	libs, known := libraryNames[name]
	if !known {
		libs = []string{name}
	}
	d.Libs = strings.Join(libs, " ")
	return d
}

// EnvRoot returns the environment variable consulted for the install prefix
// of name when the generator was not given one.
func EnvRoot(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_ROOT"
}

// ConfigFiles returns the file names written for dep.
func ConfigFiles(dep module.Version) (config, version string) {
	return dep.Path + "-config.cmake", dep.Path + "-config-version.cmake"
}

// Generate writes <name>-config.cmake and <name>-config-version.cmake for
// every requirement.
func (g *Deps) Generate(dir string, req *buildsys.GenerateRequest) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, dep := range req.Requires {
		if err := module.Check(dep); err != nil {
			return written, err
		}
		data := newDepData(dep, req.Roots[dep.Path])
		configName, versionName := ConfigFiles(dep)
		for _, out := range []struct {
			name string
			tmpl *template.Template
		}{
			{configName, configTmpl},
			{versionName, versionTmpl},
		} {
			path := filepath.Join(dir, out.name)
			if err := writeTemplate(path, out.tmpl, data); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func writeTemplate(path string, tmpl *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
