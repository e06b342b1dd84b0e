package model

// AppConfig holds application-wide preferences.
type AppConfig struct {
	// Name of the printer profile used when no --profile flag is given
	DefaultProfile string `json:"default_profile"`
	// Directory generated files are written to; empty means the working directory
	OutputDir string `json:"output_dir"`

	// Companion artefacts written next to every G-code file
	WritePDF  bool `json:"write_pdf"`
	WriteXLSX bool `json:"write_xlsx"`
	WriteDXF  bool `json:"write_dxf"`

	RecentOutputs []string `json:"recent_outputs"`
}

// maxRecentOutputs bounds the RecentOutputs history.
const maxRecentOutputs = 10

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultProfile: "",
		OutputDir:      "",
		WritePDF:       false,
		WriteXLSX:      false,
		WriteDXF:       false,
		RecentOutputs:  []string{},
	}
}

// AddRecentOutput records path as the most recent output, dropping any older
// entry for the same path and trimming the history.
func (c *AppConfig) AddRecentOutput(path string) {
	recent := []string{path}
	for _, p := range c.RecentOutputs {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentOutputs {
		recent = recent[:maxRecentOutputs]
	}
	c.RecentOutputs = recent
}
