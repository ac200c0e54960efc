package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/mauropereiira/Moldavite-sub001/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if got := len(cfg.Editor.LifecycleOptions()); got != 4 {
		t.Errorf("lifecycle options = %d, want 4", got)
	}
}

func TestEditorConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *EditorConfig)
	}{
		{"delay too short", func(c *EditorConfig) { c.AutoSaveDelay = time.Millisecond }},
		{"negative auto-lock", func(c *EditorConfig) { c.AutoLockMinutes = -1 }},
		{"no activity events", func(c *EditorConfig) { c.ActivityEvents = nil }},
		{"no pinned tabs", func(c *EditorConfig) { c.MaxPinnedTabs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg.Editor)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestVaultConfig_TrashDays(t *testing.T) {
	cfg := VaultConfig{Path: "./vault", TrashDays: 400}
	if err := cfg.Validate(); err == nil {
		t.Error("trash_days above a year should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	t.Setenv("MOLDAVITE_TEST_VAULT", "/tmp/notes")
	content := `
vault:
  path: ${MOLDAVITE_TEST_VAULT}
  trash_days: 30
editor:
  auto_save_delay: 2s
  auto_lock_minutes: 5
  daily_template: daily-log
`
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(file, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vault.Path != "/tmp/notes" || cfg.Vault.TrashDays != 30 {
		t.Errorf("vault = %+v", cfg.Vault)
	}
	if cfg.Editor.AutoSaveDelay != 2*time.Second || cfg.Editor.AutoLockMinutes != 5 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Editor.MaxPinnedTabs != 5 || len(cfg.Editor.ActivityEvents) != 4 {
		t.Errorf("defaults lost: %+v", cfg.Editor)
	}
	if cfg.Editor.DailyTemplate != "daily-log" {
		t.Errorf("daily template = %q", cfg.Editor.DailyTemplate)
	}
}
