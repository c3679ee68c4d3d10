package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Persistence != PersistenceLocal {
		t.Fatalf("Persistence = %q, want %q", cfg.Persistence, PersistenceLocal)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ServiceURL != "" {
		t.Fatalf("ServiceURL = %q, want empty", cfg.ServiceURL)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"service_url": "http://localhost:8765", "persistence": "remote", "request_timeout_seconds": 30}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServiceURL != "http://localhost:8765" {
		t.Errorf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.Persistence != PersistenceRemote {
		t.Errorf("Persistence = %q, want remote", cfg.Persistence)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("RequestTimeoutSeconds = %d, want 30", cfg.RequestTimeoutSeconds)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["elements_restore", " calc_export "]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "elements_restore" {
		t.Errorf("DisabledTools[0] = %q", cfg.DisabledTools[0])
	}
	if cfg.DisabledTools[1] != "calc_export" {
		t.Errorf("DisabledTools[1] = %q, want trimmed calc_export", cfg.DisabledTools[1])
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"service_url": "http://global:1", "disabled_tools": ["calc_export"], "allow_unsafe_paths": true}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	repoDir := filepath.Join(repoRoot, ".masscalc")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"service_url": "http://repo:2", "disabled_tools": ["elements_restore", "calc_export"]}`
	if err := os.WriteFile(filepath.Join(repoDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.ServiceURL != "http://repo:2" {
		t.Errorf("ServiceURL = %q, want repo override", cfg.ServiceURL)
	}
	if !cfg.AllowUnsafePaths {
		t.Errorf("AllowUnsafePaths = false, want true from global")
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 merged entries", cfg.DisabledTools)
	}
	if cfg.Persistence != PersistenceLocal {
		t.Errorf("Persistence = %q, want default local", cfg.Persistence)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Persistence != PersistenceLocal {
		t.Errorf("Persistence = %q, want default", cfg.Persistence)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		t.Errorf("FindRepoConfig() = %q, want empty", got)
	}
	if got := FindRepoConfig(""); got != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty", got)
	}
}

func TestMerge_Scalars(t *testing.T) {
	base := &Config{ExportDir: "/base", DBMaxOpenConns: 4, LogLevel: "info"}
	overlay := &Config{ExportDir: "  ", DBMaxOpenConns: 1, LogLevel: "debug"}

	got := Merge(base, overlay)
	if got.ExportDir != "/base" {
		t.Errorf("ExportDir = %q, want /base (blank overlay ignored)", got.ExportDir)
	}
	if got.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", got.DBMaxOpenConns)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", got.LogLevel)
	}
}
