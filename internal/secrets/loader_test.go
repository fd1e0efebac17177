package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("TALENT_SCREENER_TEST_KEY", " from-env ")

	tests := []struct {
		name          string
		src           Source
		expect        string
		expectErr     bool
		notConfigured bool
	}{
		{name: "file wins", src: Source{File: keyFile, Value: "inline", Env: "TALENT_SCREENER_TEST_KEY"}, expect: "from-file"},
		{name: "value beats env", src: Source{Value: " inline ", Env: "TALENT_SCREENER_TEST_KEY"}, expect: "inline"},
		{name: "env", src: Source{Env: "TALENT_SCREENER_TEST_KEY"}, expect: "from-env"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "nope")}, expectErr: true},
		{name: "empty file", src: Source{File: emptyFile, Value: "inline"}, expectErr: true},
		{name: "unset env", src: Source{Name: "api key", Env: "TALENT_SCREENER_UNSET_KEY"}, expectErr: true, notConfigured: true},
		{name: "nothing", src: Source{}, expectErr: true, notConfigured: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if errors.Is(err, ErrNotConfigured) != tt.notConfigured {
					t.Fatalf("unexpected ErrNotConfigured match for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
