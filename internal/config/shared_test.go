package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, k := range keys {
		env := "ARCHIVE_" + strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestReadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if cfg.Server.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != ":9091" {
		t.Errorf("MetricsPort = %q, want :9091", cfg.Server.MetricsPort)
	}
	if cfg.Server.MaxUploadMB != 2048 {
		t.Errorf("MaxUploadMB = %d, want 2048", cfg.Server.MaxUploadMB)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("Provider = %q, want local", cfg.Storage.Provider)
	}
	if cfg.Archive.MoodLimit != 10 {
		t.Errorf("MoodLimit = %d, want 10", cfg.Archive.MoodLimit)
	}
	if cfg.Archive.MediaPrefix != "/media/" {
		t.Errorf("MediaPrefix = %q, want /media/", cfg.Archive.MediaPrefix)
	}
	if cfg.Server.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want empty default", cfg.Server.JWTSecret)
	}
}

func TestReadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARCHIVE_SERVER_PORT", ":9000")
	t.Setenv("ARCHIVE_SERVER_JWT_SECRET", "s3cret")
	t.Setenv("ARCHIVE_ARCHIVE_MOOD_LIMIT", "5")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Server.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", cfg.Server.Port)
	}
	if cfg.Server.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q", cfg.Server.JWTSecret)
	}
	if cfg.Archive.MoodLimit != 5 {
		t.Errorf("MoodLimit = %d, want 5", cfg.Archive.MoodLimit)
	}
}

func TestReadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `
server:
  port: ":7070"
archive:
  vocabulary_file: "/etc/xr/vocabulary.yaml"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Read(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Server.Port != ":7070" {
		t.Errorf("Port = %q, want :7070", cfg.Server.Port)
	}
	if cfg.Archive.VocabularyFile != "/etc/xr/vocabulary.yaml" {
		t.Errorf("VocabularyFile = %q", cfg.Archive.VocabularyFile)
	}
}

func TestReadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"s3 without credentials", map[string]string{"ARCHIVE_STORAGE_PROVIDER": "s3", "ARCHIVE_STORAGE_BUCKET": "music"}},
		{"s3 without bucket", map[string]string{"ARCHIVE_STORAGE_PROVIDER": "s3", "ARCHIVE_STORAGE_KEY_ID": "k", "ARCHIVE_STORAGE_APP_KEY": "a"}},
		{"unknown provider", map[string]string{"ARCHIVE_STORAGE_PROVIDER": "ftp"}},
		{"bad media prefix", map[string]string{"ARCHIVE_ARCHIVE_MEDIA_PREFIX": "media"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Read(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
