package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveUnder(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		rel  string
		want string
	}{
		{"v1.mp4", filepath.Join(root, "v1.mp4")},
		{"talks/v2.mp4", filepath.Join(root, "talks", "v2.mp4")},
		{"../etc/passwd", filepath.Join(root, "etc", "passwd")},
		{"a/../../b", filepath.Join(root, "b")},
	}
	for _, tc := range tests {
		got, err := ResolveUnder(root, tc.rel)
		if err != nil {
			t.Fatalf("ResolveUnder(%q): %v", tc.rel, err)
		}
		want, _ := filepath.Abs(tc.want)
		if got != want {
			t.Fatalf("ResolveUnder(%q) = %q, want %q", tc.rel, got, want)
		}
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "x.json")
	if err := os.WriteFile(f, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(f) || FileExists(dir) || FileExists(filepath.Join(dir, "nope")) {
		t.Fatal("FileExists misreported")
	}
	if !DirExists(dir) || DirExists(f) {
		t.Fatal("DirExists misreported")
	}
}
