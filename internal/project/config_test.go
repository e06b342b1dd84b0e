package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/kcalibrator/internal/model"
)

func TestSaveAndLoadConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Firmware = model.FirmwareKlipper
	cfg.KStart, cfg.KEnd, cfg.KStep = 0, 0.1, 0.005
	cfg.PathSpeedFractions = [3]float64{0.25, 0.5, 0.25}
	cfg.ABLCommand = "G29 L1"

	for _, name := range []string{"kf.json", "kf.yaml", "kf.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "printers", name)
			require.NoError(t, SaveConfig(path, cfg))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kf.yaml")
	doc := "firmware: RepRapFirmware\nk_end: 0.3\nbed_size:\n  x: 300\n  y: 300\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := model.DefaultConfig()
	want.Firmware = model.FirmwareRepRap
	want.KEnd = 0.3
	want.BedSize = model.Size2D{X: 300, Y: 300}
	assert.Equal(t, want, cfg)
}

func TestLoadConfigPartialJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"layers_per_k": 3, "double_perimeter": false}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LayersPerK)
	assert.False(t, cfg.DoublePerimeter)
	assert.Equal(t, model.DefaultConfig().PatternSize, cfg.PatternSize)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("k_start: [1, 2"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigUnknownFormat(t *testing.T) {
	_, err := LoadConfig("printer.toml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	err = SaveConfig(filepath.Join(t.TempDir(), "printer.ini"), model.DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
