package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DreamCats/docqa/internal/config"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "handbook", want: "handbook"},
		{in: "my notes v2", want: "my_notes_v2"},
		{in: "", want: "document"},
		{in: ".", want: "document"},
		{in: "دليل", want: "____"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeName(tt.in); got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogFileName(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC)
	name := LogFileName("/tmp/docs/handbook.pdf", now)
	if !strings.HasPrefix(name, "docqa-handbook-20250301-140509-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("LogFileName() = %q", name)
	}
	if other := LogFileName("/tmp/other/handbook.pdf", now); other == name {
		t.Error("different paths should produce different names")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	loaded, err := LoadDotEnv(filepath.Join(dir, ".env"))
	if err != nil || loaded {
		t.Errorf("LoadDotEnv(missing) = %v, %v; want false, nil", loaded, err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOCQA_TEST_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("DOCQA_TEST_KEY", "")
	os.Unsetenv("DOCQA_TEST_KEY")

	loaded, err = LoadDotEnv(path)
	if err != nil || !loaded {
		t.Fatalf("LoadDotEnv() = %v, %v; want true, nil", loaded, err)
	}
	if got := os.Getenv("DOCQA_TEST_KEY"); got != "from-dotenv" {
		t.Errorf("DOCQA_TEST_KEY = %q, want from-dotenv", got)
	}
}

func TestResolveCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.APIKeyEnv = "DOCQA_TEST_GENERATOR_KEY"

	t.Setenv("DOCQA_TEST_GENERATOR_KEY", "")
	_, err := ResolveCredentials(cfg)
	var missing *config.MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *config.MissingCredentialError", err)
	}
	if missing.EnvVar != "DOCQA_TEST_GENERATOR_KEY" {
		t.Errorf("EnvVar = %q", missing.EnvVar)
	}

	t.Setenv("DOCQA_TEST_GENERATOR_KEY", "secret")
	creds, err := ResolveCredentials(cfg)
	if err != nil {
		t.Fatalf("ResolveCredentials() error = %v", err)
	}
	if creds.Generator != "secret" || creds.Embedding != "" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestResolveCredentials_LocalProviders(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Provider = "ollama"
	cfg.Embedding.Provider = "hash"

	if _, err := ResolveCredentials(cfg); err != nil {
		t.Errorf("local providers need no credential, got %v", err)
	}
}
