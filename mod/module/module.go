// Copyright 2024 The stext Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package module defines the module.Version type along with support code.
package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// A Version (for clients, a module.Version) represents a specific version
// of a native dependency identified by its name.
type Version struct {
	Path    string `json:"path"`    // Package name, e.g. "soundtouch"
	Version string `json:"version"` // Version string (e.g., "2.3.2")
}

// String returns the reference form "name/version" used by recipes.
func (v Version) String() string {
	if v.Version == "" {
		return v.Path
	}
	return v.Path + "/" + v.Version
}

// Parse parses a reference in the form "name/version".
func Parse(ref string) (Version, error) {
	path, ver, ok := strings.Cut(ref, "/")
	if !ok {
		return Version{}, fmt.Errorf("invalid reference %q: missing version", ref)
	}
	v := Version{Path: path, Version: ver}
	if err := Check(v); err != nil {
		return Version{}, err
	}
	return v, nil
}

// MustParse is like Parse but panics on a malformed reference.
func MustParse(ref string) Version {
	v, err := Parse(ref)
	if err != nil {
		panic(err)
	}
	return v
}

// Check reports whether v is a well-formed pinned reference: a non-empty name
// without separators and a semantic version ("v" prefix optional).
func Check(v Version) error {
	if v.Path == "" {
		return errors.New("empty module path")
	}
	if strings.ContainsAny(v.Path, "/@ \t") {
		return fmt.Errorf("invalid module path %q", v.Path)
	}
	if !semver.IsValid(CanonicalVersion(v.Version)) {
		return fmt.Errorf("invalid version %q for %s", v.Version, v.Path)
	}
	return nil
}

// CanonicalVersion returns ver with the "v" prefix semver expects.
func CanonicalVersion(ver string) string {
	if ver == "" || strings.HasPrefix(ver, "v") {
		return ver
	}
	return "v" + ver
}

// Compare compares two versions of the same module using semver ordering.
func Compare(v1, v2 string) int {
	return semver.Compare(CanonicalVersion(v1), CanonicalVersion(v2))
}

// EscapePath returns the escaped form of the given module path as a valid
// file system path. It fails if the module path is invalid.
func EscapePath(path string) (escaped string, err error) {
	return filepath.Localize(path)
}
