package recipe

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Well-known setting names.
const (
	OS        = "os"
	Compiler  = "compiler"
	BuildType = "build_type"
	Arch      = "arch"
)

// MultiConfigCompiler is the compiler whose toolchain selects the build type
// at build time rather than at configure time.
const MultiConfigCompiler = "msvc"

// unset is how an absent setting renders inside a path.
const unset = "None"

// Settings is the read-only settings bag a recipe is evaluated against.
type Settings map[string]string

// Get returns the value of name and whether it is set.
func (s Settings) Get(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// GetSafe returns the value of name, or "" when it is not set.
func (s Settings) GetSafe(name string) string {
	v, _ := s.Get(name)
	return v
}

// Validate reports the first of names that has no value.
func (s Settings) Validate(names ...string) error {
	for _, name := range names {
		if _, ok := s.Get(name); !ok {
			return fmt.Errorf("setting %q is not defined", name)
		}
	}
	return nil
}

// String returns the matrix string of s: values ordered by setting name and
// joined with "-", the same form Matrix.Combinations produces.
func (s Settings) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		v := s[k]
		if v == "" {
			v = unset
		}
		vals = append(vals, v)
	}
	return strings.Join(vals, "-")
}

// Merge returns a copy of s with every non-empty value of o applied on top.
func (s Settings) Merge(o Settings) Settings {
	out := make(Settings, len(s)+len(o))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range o {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// ParseSetting parses a "key=value" argument.
func ParseSetting(arg string) (key, value string, err error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid setting %q, want key=value", arg)
	}
	return key, strings.TrimSpace(value), nil
}

// HostSettings returns the settings describing the running host with a
// Release build type.
func HostSettings() Settings {
	return Settings{
		OS:        hostOS(runtime.GOOS),
		Arch:      hostArch(runtime.GOARCH),
		Compiler:  hostCompiler(runtime.GOOS),
		BuildType: "Release",
	}
}

func hostOS(goos string) string {
	switch goos {
	case "darwin":
		return "Macos"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "linux":
		return "Linux"
	}
	return goos
}

func hostArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "armv8"
	case "arm":
		return "armv7"
	}
	return goarch
}

func hostCompiler(goos string) string {
	switch goos {
	case "windows":
		return MultiConfigCompiler
	case "darwin":
		return "apple-clang"
	}
	return "gcc"
}
