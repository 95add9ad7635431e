package session

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "token.json"), nil)
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	cred, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred != "" {
		t.Errorf("Load = %q, want empty", cred)
	}
	if s.Active() {
		t.Error("Active = true with no file")
	}
}

func TestSaveLoadClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Active() {
		t.Error("Active = false after Save")
	}
	cred, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred != "tok-123" {
		t.Errorf("Load = %q, want %q", cred, "tok-123")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Active() {
		t.Error("Active = true after Clear")
	}
	// Clearing again is not an error.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestSaveFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	s := NewStore(path, nil)

	if err := s.Save("tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Errorf("file mode = %o, want 0600", got)
	}
}

func TestSaveRefusesEmptyCredential(t *testing.T) {
	s := newTestStore(t)
	for _, cred := range []string{"", "null", "undefined", "  "} {
		if err := s.Save(cred); err == nil {
			t.Errorf("Save(%q) succeeded, want error", cred)
		}
	}
}

func TestLoadNormalizesStringifiedAbsence(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null literal", `{"access_token": "null", "token_type": "Bearer"}`},
		{"undefined literal", `{"access_token": "undefined", "token_type": "Bearer"}`},
		{"empty token", `{"access_token": "", "token_type": "Bearer"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "token.json")
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatal(err)
			}
			s := NewStore(path, nil)
			cred, err := s.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cred != "" {
				t.Errorf("Load = %q, want empty", cred)
			}
			if s.Active() {
				t.Error("Active = true for stringified absent credential")
			}
		})
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	if err := os.WriteFile(path, []byte("not json{"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, nil)
	cred, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred != "" {
		t.Errorf("Load = %q, want empty for corrupt file", cred)
	}
}

func TestEnsureDirCalledOnSave(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub")
	path := filepath.Join(nested, "token.json")
	s := NewStore(path, func() error { return os.MkdirAll(nested, 0700) })

	if err := s.Save("tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Active() {
		t.Error("Active = false after Save into created dir")
	}
}
