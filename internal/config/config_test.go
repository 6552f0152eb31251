package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Panel.FullWidth != DefaultFullWidth || cfg.Panel.HalfWidth != DefaultHalfWidth {
		t.Errorf("Expected default widths, got %d/%d", cfg.Panel.FullWidth, cfg.Panel.HalfWidth)
	}
	if cfg.CRM.RecordID != DefaultRecordID {
		t.Errorf("Expected default record ID, got %q", cfg.CRM.RecordID)
	}
}

func TestLoadFrom_OverridesAndExpandsHome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[crm]
origin = "https://acme.my.salesforce.com"
record_id = "00TXYZ"

[panel]
full_width = 900
half_width = 450

[database]
path = "~/crm/test.db"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.CRM.Origin != "https://acme.my.salesforce.com" {
		t.Errorf("Unexpected origin %q", cfg.CRM.Origin)
	}
	if cfg.CRM.RecordID != "00TXYZ" {
		t.Errorf("Unexpected record ID %q", cfg.CRM.RecordID)
	}
	if cfg.CRM.APIVersion != DefaultAPIVersion {
		t.Errorf("Expected default API version to survive partial config, got %q", cfg.CRM.APIVersion)
	}
	if cfg.Panel.FullWidth != 900 || cfg.Panel.HalfWidth != 450 {
		t.Errorf("Unexpected widths %d/%d", cfg.Panel.FullWidth, cfg.Panel.HalfWidth)
	}
	if strings.HasPrefix(cfg.Database.Path, "~") {
		t.Errorf("Expected ~ to be expanded, got %q", cfg.Database.Path)
	}
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[panel]
full_width = 400
half_width = 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("Expected validation error for half width above full width")
	}
	if !strings.Contains(err.Error(), "half_width") {
		t.Errorf("Expected error to mention half_width, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero full width", func(c *Config) { c.Panel.FullWidth = 0 }, true},
		{"negative half width", func(c *Config) { c.Panel.HalfWidth = -1 }, true},
		{"empty api version", func(c *Config) { c.CRM.APIVersion = "" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"empty log level", func(c *Config) { c.Log.Level = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.CRM.RecordID = "00TROUND"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.CRM.RecordID != "00TROUND" {
		t.Errorf("Expected record ID to persist, got %q", loaded.CRM.RecordID)
	}
}
