package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "relative path",
			path: "data",
			want: filepath.Join(cwd, "data"),
		},
		{
			name: "redundant segments",
			path: filepath.Join(cwd, "a", "b", "..", "c"),
			want: filepath.Join(cwd, "a", "c"),
		},
		{
			name: "home shorthand",
			path: "~/datasets",
			want: filepath.Join(home, "datasets"),
		},
		{
			name: "bare tilde",
			path: "~",
			want: home,
		},
		{
			name: "already absolute",
			path: filepath.Join(cwd, "data"),
			want: filepath.Join(cwd, "data"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.path)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	got, err := EnsureDir(dir)
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("EnsureDir() = %q, want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}

	// Calling again on an existing directory is a no-op.
	if _, err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}

func TestEnsureDirFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := EnsureDir(file); err == nil {
		t.Error("EnsureDir() over an existing file should fail")
	}
}
