// Copyright 2024 The stext Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		ref     string
		want    Version
		wantErr bool
	}{
		{"audiofile/1.1.1", Version{Path: "audiofile", Version: "1.1.1"}, false},
		{"glog/0.7.0", Version{Path: "glog", Version: "0.7.0"}, false},
		{"soundtouch/v2.3.2", Version{Path: "soundtouch", Version: "v2.3.2"}, false},
		{"soundtouch", Version{}, true},
		{"/1.0.0", Version{}, true},
		{"zlib/latest", Version{}, true},
		{"a/b/1.0.0", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Parse(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	if got := (Version{Path: "glog", Version: "0.7.0"}).String(); got != "glog/0.7.0" {
		t.Errorf("String() = %q, want %q", got, "glog/0.7.0")
	}
	if got := (Version{Path: "glog"}).String(); got != "glog" {
		t.Errorf("String() = %q, want %q", got, "glog")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.1.1", "1.1.1", 0},
		{"2.3.2", "v2.3.10", -1},
		{"0.7.0", "0.6.9", 1},
	}
	for _, tt := range tests {
		if got := Compare(tt.v1, tt.v2); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on a malformed reference")
		}
	}()
	MustParse("no-version")
}
