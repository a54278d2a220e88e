// Copyright 2024 The stext Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package versions

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goplus/stext/mod/module"
)

func TestParse_WithData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *Versions
		wantErr bool
	}{
		{
			name: "basic lock file",
			data: `{
				"path": "example/project",
				"deps": {
					"x86_64-Release-gcc-Linux": [{"path": "audiofile", "version": "1.1.1"}],
					"x86_64-Release-msvc-Windows": [{"path": "soundtouch", "version": "2.3.2"}]
				}
			}`,
			want: &Versions{
				Path: "example/project",
				Dependencies: map[string][]module.Version{
					"x86_64-Release-gcc-Linux": {{Path: "audiofile", Version: "1.1.1"}},
					"x86_64-Release-msvc-Windows": {{Path: "soundtouch", Version: "2.3.2"}},
				},
			},
			wantErr: false,
		},
		{
			name: "empty deps",
			data: `{"path": "example/project", "deps": {}}`,
			want: &Versions{
				Path:         "example/project",
				Dependencies: map[string][]module.Version{},
			},
			wantErr: false,
		},
		{
			name: "no deps field",
			data: `{"path": "example/project"}`,
			want: &Versions{
				Path:         "example/project",
				Dependencies: nil,
			},
			wantErr: false,
		},
		{
			name:    "invalid json",
			data:    `{"path": invalid}`,
			want:    nil,
			wantErr: true,
		},
		{
			name:    "empty json",
			data:    `{}`,
			want:    &Versions{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("", []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.Path != tt.want.Path {
				t.Errorf("Parse() Path = %v, want %v", got.Path, tt.want.Path)
			}
			if len(got.Dependencies) != len(tt.want.Dependencies) {
				t.Errorf("Parse() Dependencies len = %v, want %v", len(got.Dependencies), len(tt.want.Dependencies))
				return
			}
			for k, v := range tt.want.Dependencies {
				if gotDep, ok := got.Dependencies[k]; !ok {
					t.Errorf("Parse() missing dependency %q", k)
				} else if !reflect.DeepEqual(gotDep, v) {
					t.Errorf("Parse() dependency %q = %v, want %v", k, gotDep, v)
				}
			}
		})
	}
}

func TestParse_WithFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		content := `{"path": "test/project", "deps": {"a": [{"path": "glog", "version": "1.1.1"}]}}`
		file := filepath.Join(tmpDir, "versions.json")
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		got, err := Parse(file, nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if got.Path != "test/project" {
			t.Errorf("Parse() Path = %v, want %v", got.Path, "test/project")
		}
		if len(got.Dependencies) != 1 {
			t.Errorf("Parse() Dependencies len = %v, want 1", len(got.Dependencies))
		}
		if dep := got.Dependencies["a"]; dep[0].Path != "glog" || dep[0].Version != "1.1.1" {
			t.Errorf("Parse() dependency a = %v, want {glog 1.1.1}", dep)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := Parse(filepath.Join(tmpDir, "nonexistent.json"), nil)
		if err == nil {
			t.Error("Parse() expected error for nonexistent file")
		}
	})

	t.Run("invalid json file", func(t *testing.T) {
		file := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(file, []byte(`{invalid`), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Parse(file, nil)
		if err == nil {
			t.Error("Parse() expected error for invalid json")
		}
	})
}

func TestParse_DataTakesPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	fileContent := `{"path": "from/file"}`
	file := filepath.Join(tmpDir, "versions.json")
	if err := os.WriteFile(file, []byte(fileContent), 0644); err != nil {
		t.Fatal(err)
	}

	dataContent := `{"path": "from/data"}`
	got, err := Parse(file, []byte(dataContent))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// data should take precedence over file
	if got.Path != "from/data" {
		t.Errorf("Parse() Path = %v, want from/data (data should take precedence)", got.Path)
	}
}

func TestSetAndWriteFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", FileName)

	v, err := Load(file, "example/project")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v.Path != "example/project" || v.Dependencies != nil {
		t.Fatalf("Load() on missing file = %+v, want empty lock", v)
	}

	deps := []module.Version{{Path: "glog", Version: "0.7.0"}}
	v.Set("x86_64-Release-gcc-Linux", deps)
	deps[0].Version = "mutated"

	if err := v.WriteFile(file); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := Load(file, "ignored")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string][]module.Version{
		"x86_64-Release-gcc-Linux": {{Path: "glog", Version: "0.7.0"}},
	}
	if got.Path != "example/project" {
		t.Errorf("Path = %q, want %q", got.Path, "example/project")
	}
	if !reflect.DeepEqual(got.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", got.Dependencies, want)
	}
}
