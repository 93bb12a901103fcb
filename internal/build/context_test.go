package build

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeContextDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.py":           "print('hi')\n",
		"requirements.txt": "streamlit\n",
		".env":             "GOOGLE_API_KEY=secret\n",
		".dockerignore":    "notes.md\n",
		"notes.md":         "scratch\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func readTarEntries(t *testing.T, rc io.ReadCloser) map[string]string {
	t.Helper()
	defer rc.Close()

	entries := make(map[string]string)
	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries
		}
		if err != nil {
			t.Fatalf("read tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = string(data)
	}
}

func TestContextInjectsDockerfile(t *testing.T) {
	dir := writeContextDir(t)

	rc, err := Context(dir, ".slipway.dockerfile.test", "FROM python:3.11-slim\n")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	entries := readTarEntries(t, rc)

	if got := entries[".slipway.dockerfile.test"]; got != "FROM python:3.11-slim\n" {
		t.Fatalf("injected dockerfile = %q, want rendered content", got)
	}
	if _, ok := entries["app.py"]; !ok {
		t.Fatal("app.py missing from build context")
	}
	if _, ok := entries["requirements.txt"]; !ok {
		t.Fatal("requirements.txt missing from build context")
	}
}

func TestContextHonorsIgnoreRules(t *testing.T) {
	dir := writeContextDir(t)

	rc, err := Context(dir, ".slipway.dockerfile.test", "FROM scratch\n")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	entries := readTarEntries(t, rc)

	if _, ok := entries["notes.md"]; ok {
		t.Fatal("notes.md in build context despite .dockerignore")
	}
	// Credentials never enter the image regardless of ignore rules.
	if _, ok := entries[".env"]; ok {
		t.Fatal(".env leaked into the build context")
	}
}

func TestContextNoDockerignore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write app.py: %v", err)
	}

	rc, err := Context(dir, ".slipway.dockerfile.test", "FROM scratch\n")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	entries := readTarEntries(t, rc)
	if _, ok := entries["app.py"]; !ok {
		t.Fatal("app.py missing from build context")
	}
}
