package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CreatesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
	cfg := manager.Get()
	if cfg.Resolve.TimelineName != "Timeline 1" {
		t.Errorf("expected default timeline name, got %q", cfg.Resolve.TimelineName)
	}
	if cfg.Server.Port != 3636 {
		t.Errorf("expected default port 3636, got %d", cfg.Server.Port)
	}
}

func TestLoad_KeepsDefaultsForMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "settingsPath: ./s.json\nwatch:\n  extensions: [MOV, .mp4]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := manager.Get()
	if cfg.SettingsPath != "./s.json" {
		t.Errorf("expected settings path from file, got %q", cfg.SettingsPath)
	}
	if cfg.Resolve.Python != "python3" {
		t.Errorf("expected default python, got %q", cfg.Resolve.Python)
	}
	want := []string{".mov", ".mp4"}
	for i, ext := range want {
		if cfg.Watch.Extensions[i] != ext {
			t.Errorf("extension %d: expected %q, got %q", i, ext, cfg.Watch.Extensions[i])
		}
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  level: verbose\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestManager_RedactsToken(t *testing.T) {
	cfg := createDefaultConfig()
	cfg.Telegram.Token = "secret-token"
	manager := NewManager(cfg)

	if strings.Contains(manager.GetYAML(), "secret-token") {
		t.Error("expected token to be redacted from YAML output")
	}
	if manager.Get().Telegram.Token != "secret-token" {
		t.Error("redaction must not modify the live config")
	}
}

func TestLoad_DefaultFileOmitsEnvToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:secret-token")
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if manager.Get().Telegram.Token != "123:secret-token" {
		t.Errorf("expected token from the environment, got %q", manager.Get().Telegram.Token)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret-token") {
		t.Error("expected the token to stay out of the written config file")
	}
}
