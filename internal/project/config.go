package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/kcalibrator/internal/model"
)

// ErrUnknownFormat is returned for config files that are neither JSON nor YAML.
var ErrUnknownFormat = errors.New("unknown config file format")

type configFormat int

const (
	formatJSON configFormat = iota
	formatYAML
)

func formatOf(path string) (configFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// LoadConfig reads a calibration Config from a JSON or YAML file, chosen by
// extension. Fields missing from the file keep their DefaultConfig values.
// A missing file is an error wrapping os.ErrNotExist.
func LoadConfig(path string) (model.Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return model.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := model.DefaultConfig()
	switch format {
	case formatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as JSON or YAML, chosen by extension.
// It creates any missing parent directories automatically.
func SaveConfig(path string, cfg model.Config) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatYAML:
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return writeFile(path, data)
}
