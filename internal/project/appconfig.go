package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// DataDirEnv names the environment variable that overrides DefaultDataDir.
const DataDirEnv = "KCALIBRATOR_HOME"

const (
	appConfigFile = "config.json"
	profilesFile  = "profiles.json"
)

// DataDir is the directory holding kcalibrator's persistent state: the app
// config and the printer profile store.
type DataDir string

// DefaultDataDir returns $KCALIBRATOR_HOME, or ~/.kcalibrator when unset.
func DefaultDataDir() DataDir {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return DataDir(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return DataDir(filepath.Join(home, ".kcalibrator"))
}

// AppConfigPath is the file holding the AppConfig.
func (d DataDir) AppConfigPath() string { return filepath.Join(string(d), appConfigFile) }

// ProfilesPath is the file holding the ProfileStore.
func (d DataDir) ProfilesPath() string { return filepath.Join(string(d), profilesFile) }

// Load reads the app config and the profile store. Missing files yield
// their defaults.
func (d DataDir) Load() (model.AppConfig, model.ProfileStore, error) {
	settings, err := LoadAppConfig(d.AppConfigPath())
	if err != nil {
		return model.AppConfig{}, model.ProfileStore{}, err
	}
	profiles, err := LoadProfiles(d.ProfilesPath())
	if err != nil {
		return model.AppConfig{}, model.ProfileStore{}, fmt.Errorf("failed to load profiles: %w", err)
	}
	return settings, profiles, nil
}

// Restore overwrites the app config and the profile store with a backup.
func (d DataDir) Restore(b BackupData) error {
	if err := SaveAppConfig(d.AppConfigPath(), b.App); err != nil {
		return err
	}
	if err := SaveProfiles(d.ProfilesPath(), b.Profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	return nil
}

// SaveAppConfig writes config to path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := writeJSON(path, config); err != nil {
		return fmt.Errorf("failed to save app config: %w", err)
	}
	return nil
}

// LoadAppConfig reads an AppConfig from path. Fields absent from the file
// keep their defaults, and a missing file yields DefaultAppConfig.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to read app config: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse app config %s: %w", path, err)
	}
	if config.RecentOutputs == nil {
		config.RecentOutputs = []string{}
	}
	return config, nil
}
