package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv(ServerEnv, "")
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if got := cfg.TokenPath(); got != filepath.Join(dir, TokenFile) {
		t.Errorf("TokenPath = %q", got)
	}
	if got := cfg.SettingsPath(); got != filepath.Join(dir, SettingsFile) {
		t.Errorf("SettingsPath = %q", got)
	}
}

func TestNewReadsSettingsFile(t *testing.T) {
	t.Setenv(ServerEnv, "")
	dir := t.TempDir()
	body := "server: https://tasks.example.com/\n"
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.ServerURL != "https://tasks.example.com" {
		t.Errorf("ServerURL = %q, want trailing slash trimmed", cfg.ServerURL)
	}
}

func TestEnvOverridesSettingsFile(t *testing.T) {
	dir := t.TempDir()
	body := "server: https://from-file.example.com\n"
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ServerEnv, "https://from-env.example.com")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.ServerURL != "https://from-env.example.com" {
		t.Errorf("ServerURL = %q, want env value", cfg.ServerURL)
	}
}

func TestNewInvalidSettingsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(":\tnot yaml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Error("New succeeded with invalid settings file")
	}
}

func TestDefaultConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	want := filepath.Join("/tmp/xdg", AppName)
	if got := DefaultConfigDir(); got != want {
		t.Errorf("DefaultConfigDir = %q, want %q", got, want)
	}
}

func TestDefaultConfigDirHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	want := filepath.Join("/home/tester", ".config", AppName)
	if got := DefaultConfigDir(); got != want {
		t.Errorf("DefaultConfigDir = %q, want %q", got, want)
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	t.Setenv(ServerEnv, "")
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := &Config{Dir: dir, ServerURL: "https://saved.example.com"}
	if err := cfg.SaveSettings(); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if reloaded.ServerURL != "https://saved.example.com" {
		t.Errorf("ServerURL = %q after round trip", reloaded.ServerURL)
	}
}
