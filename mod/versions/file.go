// Package versions provides functionality for parsing and managing the
// resolved-requirements lock file written by "stext install".
package versions

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/goplus/stext/mod/module"
)

// FileName is the lock file name, relative to the project root.
const FileName = "stext.lock.json"

// Versions represents a project's lock file: the requirements resolved for
// each settings combination it was installed with.
type Versions struct {
	Path         string                      `json:"path"` // Project path
	Dependencies map[string][]module.Version `json:"deps"` // Settings string to resolved requirements
}

// Parse reads and parses a version file from either provided data or a file path.
// If data is non-nil, it is used directly and the file parameter is ignored.
// Otherwise, the file is read from the provided path.
// Returns the parsed Versions struct or an error if parsing fails.
func Parse(file string, data []byte) (*Versions, error) {
	var reader io.Reader

	if data != nil {
		reader = bytes.NewBuffer(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		reader = f
	}

	var v Versions

	if err := json.NewDecoder(reader).Decode(&v); err != nil {
		return nil, err
	}

	return &v, nil
}

// Load is like Parse but returns an empty lock for path when the file does
// not exist yet.
func Load(file, path string) (*Versions, error) {
	v, err := Parse(file, nil)
	if os.IsNotExist(err) {
		return &Versions{Path: path}, nil
	}
	return v, err
}

// Set records deps under key, replacing any previous entry.
func (v *Versions) Set(key string, deps []module.Version) {
	if v.Dependencies == nil {
		v.Dependencies = make(map[string][]module.Version)
	}
	v.Dependencies[key] = slices.Clone(deps)
}

// WriteFile writes the lock file with stable, indented output.
func (v *Versions) WriteFile(file string) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(file, append(data, '\n'), 0o644)
}
