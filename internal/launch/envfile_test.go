package launch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadEnvFile(t *testing.T) {
	content := `# upstream credentials
GOOGLE_API_KEY=abc123

export SERPAPI_KEY="k-456"
QUOTED='single'
SPACED = padded
no-equals-line
=missing-key
EMPTY=
`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	got, err := ReadEnvFile(path)
	if err != nil {
		t.Fatalf("ReadEnvFile() error = %v", err)
	}
	want := []string{
		"GOOGLE_API_KEY=abc123",
		"SERPAPI_KEY=k-456",
		"QUOTED=single",
		"SPACED=padded",
		"EMPTY=",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadEnvFile() = %v, want %v", got, want)
	}
}

func TestReadEnvFileMissing(t *testing.T) {
	if _, err := ReadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("ReadEnvFile() error = nil, want error for missing file")
	}
}
