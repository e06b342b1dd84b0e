package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// backupFormat is the layout version written into every backup.
const backupFormat = 1

// ErrBackupFormat is returned for backups without a format version or with
// a newer one than this build reads.
var ErrBackupFormat = errors.New("unsupported backup format")

// BackupData is a snapshot of a DataDir: the app config and every printer
// profile.
type BackupData struct {
	Format    int                `json:"format"`
	CreatedAt time.Time          `json:"created_at"`
	App       model.AppConfig    `json:"app"`
	Profiles  model.ProfileStore `json:"profiles"`
}

// WriteBackup stores app and profiles in a single JSON file at path.
func WriteBackup(path string, app model.AppConfig, profiles model.ProfileStore) error {
	backup := BackupData{
		Format:    backupFormat,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		App:       app,
		Profiles:  profiles,
	}
	if err := writeJSON(path, backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ReadBackup loads a backup written by WriteBackup. Profiles that lost their
// ID get a fresh one, so the restored store can be addressed by ID.
func ReadBackup(path string) (BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}

	backup := BackupData{App: model.DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Format < 1 || backup.Format > backupFormat {
		return BackupData{}, fmt.Errorf("%s: %w %d", path, ErrBackupFormat, backup.Format)
	}

	if backup.App.RecentOutputs == nil {
		backup.App.RecentOutputs = []string{}
	}
	if backup.Profiles.Profiles == nil {
		backup.Profiles.Profiles = []model.PrinterProfile{}
	}
	for i, p := range backup.Profiles.Profiles {
		if p.ID == "" {
			backup.Profiles.Profiles[i].ID = model.NewPrinterProfile(p.Name, p.Config).ID
		}
	}
	return backup, nil
}
