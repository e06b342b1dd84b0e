package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/kcalibrator/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultProfile = "Klipper"
	cfg.OutputDir = "/tmp/kf"
	cfg.WritePDF = true
	cfg.RecentOutputs = []string{"/tmp/kf/KF_0.2_0.6_0.02.gcode", "/tmp/kf/KF_0_0.1_0.005.gcode"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultProfile != "Klipper" {
		t.Errorf("expected DefaultProfile=Klipper, got %s", loaded.DefaultProfile)
	}
	if loaded.OutputDir != "/tmp/kf" {
		t.Errorf("expected OutputDir=/tmp/kf, got %s", loaded.OutputDir)
	}
	if !loaded.WritePDF || loaded.WriteXLSX {
		t.Errorf("artefact toggles not preserved: pdf=%v xlsx=%v", loaded.WritePDF, loaded.WriteXLSX)
	}
	if len(loaded.RecentOutputs) != 2 {
		t.Errorf("expected 2 recent outputs, got %d", len(loaded.RecentOutputs))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.DefaultProfile != "" {
		t.Errorf("expected no default profile, got %s", cfg.DefaultProfile)
	}
	if cfg.RecentOutputs == nil {
		t.Error("expected non-nil RecentOutputs")
	}
}

func TestLoadAppConfigNullRecentOutputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_profile":"x","recent_outputs":null}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentOutputs == nil {
		t.Error("expected RecentOutputs to be initialized")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveAppConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.json")
	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	dir := DefaultDataDir()
	if filepath.Base(string(dir)) != ".kcalibrator" {
		t.Errorf("expected .kcalibrator directory, got %s", dir)
	}
	if filepath.Dir(dir.AppConfigPath()) != string(dir) || filepath.Base(dir.AppConfigPath()) != "config.json" {
		t.Errorf("unexpected app config path %s", dir.AppConfigPath())
	}
	if filepath.Base(dir.ProfilesPath()) != "profiles.json" {
		t.Errorf("unexpected profiles path %s", dir.ProfilesPath())
	}
}

func TestDefaultDataDirFromEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv(DataDirEnv, home)
	if got := DefaultDataDir(); string(got) != home {
		t.Errorf("expected %s, got %s", home, got)
	}
}

func TestDataDirLoadDefaults(t *testing.T) {
	dir := DataDir(filepath.Join(t.TempDir(), "fresh"))

	settings, profiles, err := dir.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.RecentOutputs) != 0 || settings.DefaultProfile != "" {
		t.Errorf("expected default app config, got %+v", settings)
	}
	if len(profiles.Profiles) != len(model.Firmwares) {
		t.Errorf("expected one profile per firmware, got %d", len(profiles.Profiles))
	}
}

func TestDataDirRestore(t *testing.T) {
	dir := DataDir(t.TempDir())

	app := model.DefaultAppConfig()
	app.DefaultProfile = "Voron"
	profiles := model.NewProfileStore()
	profiles.Upsert("Voron", model.DefaultConfig())

	if err := dir.Restore(BackupData{App: app, Profiles: profiles}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	settings, loaded, err := dir.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.DefaultProfile != "Voron" {
		t.Errorf("expected DefaultProfile=Voron, got %s", settings.DefaultProfile)
	}
	if loaded.FindByName("Voron") == nil {
		t.Error("restored profile not found")
	}
}

func TestSaveAppConfigLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	for range 2 {
		if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
			t.Fatalf("SaveAppConfig failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("expected only config.json, got %v", entries)
	}
}
