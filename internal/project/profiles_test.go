package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/kcalibrator/internal/model"
)

func TestSaveAndLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	ender := model.DefaultConfig()
	voron := model.DefaultConfig()
	voron.Firmware = model.FirmwareKlipper
	voron.BedSize = model.Size2D{X: 350, Y: 350}

	store := model.NewProfileStore()
	store.Add(model.NewPrinterProfile("Ender 3", ender))
	store.Add(model.NewPrinterProfile("Voron 2.4", voron))

	// Save
	if err := SaveProfiles(path, store); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("profiles file was not created")
	}

	// Load
	loaded, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	if len(loaded.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded.Profiles))
	}
	p := loaded.FindByName("Voron 2.4")
	if p == nil {
		t.Fatal("expected to find Voron 2.4")
	}
	if p.Config.Firmware != model.FirmwareKlipper {
		t.Errorf("expected Klipper firmware, got %s", p.Config.Firmware)
	}
	if p.Config.BedSize.X != 350 {
		t.Errorf("expected bed width 350, got %f", p.Config.BedSize.X)
	}
	if p.ID != store.Profiles[1].ID {
		t.Errorf("expected ID %s, got %s", store.Profiles[1].ID, p.ID)
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	store, err := LoadProfiles(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if len(store.Profiles) != len(model.Firmwares) {
		t.Errorf("expected %d default profiles, got %d", len(model.Firmwares), len(store.Profiles))
	}
}

func TestLoadProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfiles(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExportImportProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.json")

	cfg := model.DefaultConfig()
	cfg.Firmware = model.FirmwareRepRap
	cfg.KEnd = 0.1
	profile := model.NewPrinterProfile("Duet", cfg)

	if err := ExportProfile(path, profile); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}

	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if imported.Name != "Duet" {
		t.Errorf("expected name Duet, got %s", imported.Name)
	}
	if imported.ID != profile.ID {
		t.Errorf("expected ID %s, got %s", profile.ID, imported.ID)
	}
	if imported.Config != cfg {
		t.Errorf("imported config differs: %+v", imported.Config)
	}
}

func TestImportProfileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.json")
	doc := `{"name": "Minimal", "config": {"firmware": "Klipper", "k_end": 0.08}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if p.ID == "" {
		t.Error("expected a generated ID")
	}
	if p.Config.KEnd != 0.08 {
		t.Errorf("expected k_end 0.08, got %f", p.Config.KEnd)
	}
	if p.Config.LayersPerK != model.DefaultConfig().LayersPerK {
		t.Errorf("expected default layers_per_k, got %d", p.Config.LayersPerK)
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"name": ""}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Error("expected error for profile with no name")
	}
}

func TestImportProfileMissingFile(t *testing.T) {
	if _, err := ImportProfile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
