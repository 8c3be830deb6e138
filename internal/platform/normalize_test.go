package platform

import (
	"testing"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "amd64", want: "amd64"},
		{input: "x86_64", want: "amd64"},
		{input: "X64", want: "amd64"},
		{input: "arm64", want: "arm64"},
		{input: "aarch64", want: "arm64"},
		{input: "386", want: "386"},
		{input: "i686", want: "386"},
		{input: "armv7l", want: "arm"},
		{input: " arm ", want: "arm"},
		{input: "mips", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizeArch(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeArch(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "linux", want: "linux"},
		{input: "Darwin", want: "darwin"},
		{input: "macos", want: "darwin"},
		{input: "windows", want: "windows"},
		{input: "freebsd", want: "freebsd"},
		{input: "plan9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizeOS(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeOS(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("normalizeOS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePlatform(t *testing.T) {
	tests := map[string]string{
		"ubuntu":     "ubuntu",
		"  Ubuntu  ": "ubuntu",
		"ARCH":       "arch",
		"":           "",
	}
	for input, want := range tests {
		if got := normalizePlatform(input); got != want {
			t.Errorf("normalizePlatform(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMapFamily(t *testing.T) {
	tests := map[string]string{
		"debian":   FamilyDebian,
		"Ubuntu":   FamilyDebian,
		"centos":   FamilyRHEL,
		"fedora":   FamilyFedora,
		"opensuse": FamilySUSE,
		"manjaro":  FamilyArch,
		"alpine":   FamilyAlpine,
		"gentoo":   FamilyGentoo,
		"nixos":    FamilyUnknown,
		"":         FamilyUnknown,
	}
	for input, want := range tests {
		if got := mapFamily(input); got != want {
			t.Errorf("mapFamily(%q) = %q, want %q", input, got, want)
		}
	}
}
