package project

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// SaveProfiles saves the profile store to a JSON file.
func SaveProfiles(path string, store model.ProfileStore) error {
	return writeJSON(path, store)
}

// LoadProfiles loads the profile store from a JSON file.
// Returns the default store, one profile per firmware, if the file does not
// exist.
func LoadProfiles(path string) (model.ProfileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultProfileStore(), nil
		}
		return model.ProfileStore{}, err
	}

	var store model.ProfileStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.ProfileStore{}, err
	}
	if store.Profiles == nil {
		store.Profiles = []model.PrinterProfile{}
	}
	return store, nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.PrinterProfile) error {
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file. Settings missing
// from the file keep their DefaultConfig values.
func ImportProfile(path string) (model.PrinterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PrinterProfile{}, err
	}

	profile := model.PrinterProfile{Config: model.DefaultConfig()}
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.PrinterProfile{}, err
	}

	if profile.Name == "" {
		return model.PrinterProfile{}, errors.New("imported profile has no name")
	}
	if profile.ID == "" {
		fresh := model.NewPrinterProfile(profile.Name, profile.Config)
		profile.ID = fresh.ID
		profile.CreatedAt, profile.UpdatedAt = fresh.CreatedAt, fresh.UpdatedAt
	}
	return profile, nil
}
