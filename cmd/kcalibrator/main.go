// kcalibrator generates pressure-advance (K-factor) calibration G-code: a
// test tower whose K-factor changes every few layers, together
// with an optional calibration sheet (PDF), height table (XLSX) and first
// layer footprint (DXF).
//
// Build:
//   go build -o kcalibrator ./cmd/kcalibrator
//
// Example:
//   kcalibrator --firmware klipper --k-start 0 --k-end 0.1 --k-step 0.005 --pdf
//   kcalibrator --firmware klipper --k-start 0 --k-end 0.1 --k-step 0.005 --k-at 7.4

package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/piwi3910/kcalibrator/internal/export"
	"github.com/piwi3910/kcalibrator/internal/gcode"
	"github.com/piwi3910/kcalibrator/internal/model"
	"github.com/piwi3910/kcalibrator/internal/project"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "development"

type mainOptions struct {
	DataDir     string
	ConfigPath  string
	Profile     string
	SaveProfile string
	SaveConfig  string
	OutputDir   string
	Stdout      bool
	Verbose     bool

	PDF, XLSX, DXF bool

	ImportProfile string
	ExportProfile string
	Backup        string
	Restore       string

	// Measured height of the best looking band, mm
	KAt float64

	// Overrides, applied only when the flag is given
	Firmware        string
	KStart          float64
	KEnd            float64
	KStep           float64
	LayersPerK      int
	DoublePerimeter bool
}

func newFlagSet(options *mainOptions) *flag.FlagSet {
	fs := flag.NewFlagSet("kcalibrator", flag.ContinueOnError)

	fs.StringVar(&options.DataDir, "data-dir", string(project.DefaultDataDir()), "Directory holding config.json and profiles.json (env "+project.DataDirEnv+")")
	fs.StringVarP(&options.ConfigPath, "config", "c", "", "Calibration settings file (.json, .yaml)")
	fs.StringVarP(&options.Profile, "profile", "p", "", "Printer profile to start from")
	fs.StringVar(&options.SaveProfile, "save-profile", "", "Save the effective settings as a printer profile")
	fs.StringVar(&options.SaveConfig, "save-config", "", "Save the effective settings to a file (.json, .yaml)")
	fs.StringVarP(&options.OutputDir, "output", "o", "", "Output directory (default from app config, else current directory)")
	fs.BoolVar(&options.Stdout, "stdout", false, "Write G-code to standard output instead of a file")
	fs.BoolVarP(&options.Verbose, "verbose", "v", false, "Debug logging")

	fs.BoolVar(&options.PDF, "pdf", false, "Also write a PDF calibration sheet")
	fs.BoolVar(&options.XLSX, "xlsx", false, "Also write an XLSX band table")
	fs.BoolVar(&options.DXF, "dxf", false, "Also write a DXF first layer footprint")

	fs.StringVar(&options.ImportProfile, "import-profile", "", "Import a shared profile file into the profile store")
	fs.StringVar(&options.ExportProfile, "export-profile", "", "Export the --profile profile to this file")
	fs.StringVar(&options.Backup, "backup", "", "Export app config and profiles to this file")
	fs.StringVar(&options.Restore, "restore", "", "Restore app config and profiles from this backup file")
	fs.Float64Var(&options.KAt, "k-at", 0, "Print the K-factor of the tower at this measured height (mm) and exit")

	fs.StringVar(&options.Firmware, "firmware", "", "Firmware: marlin, klipper or reprap")
	fs.Float64Var(&options.KStart, "k-start", 0, "First K-factor")
	fs.Float64Var(&options.KEnd, "k-end", 0, "Last K-factor")
	fs.Float64Var(&options.KStep, "k-step", 0, "K-factor increment")
	fs.IntVar(&options.LayersPerK, "layers-per-k", 0, "Layers printed with each K-factor")
	fs.BoolVar(&options.DoublePerimeter, "double-perimeter", false, "Print a second tower perimeter")
	fs.SetInterspersed(true)

	return fs
}

// app bundles the persisted state a run works on.
type app struct {
	options  *mainOptions
	dir      project.DataDir
	logger   *slog.Logger
	stdout   io.Writer
	settings model.AppConfig
	profiles model.ProfileStore
}

func (a *app) load() (err error) {
	a.settings, a.profiles, err = a.dir.Load()
	return err
}

func (a *app) saveProfiles() error {
	if err := project.SaveProfiles(a.dir.ProfilesPath(), a.profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	return nil
}

// maintenance runs the profile and backup commands. It reports whether the
// run should stop without generating.
func (a *app) maintenance() (bool, error) {
	opts := a.options

	if opts.Restore != "" {
		backup, err := project.ReadBackup(opts.Restore)
		if err != nil {
			return true, err
		}
		if err := a.dir.Restore(backup); err != nil {
			return true, err
		}
		a.settings, a.profiles = backup.App, backup.Profiles
		a.logger.Info("restored backup", "path", opts.Restore, "created_at", backup.CreatedAt, "profiles", len(a.profiles.Profiles))
		return true, nil
	}

	if opts.Backup != "" {
		if err := project.WriteBackup(opts.Backup, a.settings, a.profiles); err != nil {
			return true, err
		}
		a.logger.Info("wrote backup", "path", opts.Backup)
		return true, nil
	}

	if opts.ImportProfile != "" {
		p, err := project.ImportProfile(opts.ImportProfile)
		if err != nil {
			return true, fmt.Errorf("failed to import profile: %w", err)
		}
		saved := a.profiles.Upsert(p.Name, p.Config)
		if err := a.saveProfiles(); err != nil {
			return true, err
		}
		a.logger.Info("imported profile", "name", saved.Name, "id", saved.ID)
		return true, nil
	}

	if opts.ExportProfile != "" {
		p := a.profiles.FindByName(opts.Profile)
		if p == nil {
			return true, fmt.Errorf("--export-profile: %w", errUnknownProfile(opts.Profile, a.profiles))
		}
		if err := project.ExportProfile(opts.ExportProfile, *p); err != nil {
			return true, fmt.Errorf("failed to export profile: %w", err)
		}
		a.logger.Info("exported profile", "name", p.Name, "path", opts.ExportProfile)
		return true, nil
	}

	return false, nil
}

var errProfileNotFound = errors.New("profile not found")

func errUnknownProfile(name string, store model.ProfileStore) error {
	return fmt.Errorf("%w: %q (available: %s)", errProfileNotFound, name, strings.Join(store.Names(), ", "))
}

// resolveConfig builds the effective settings: a settings file or a profile
// (the --profile flag, else the app's default profile), then flag overrides.
func (a *app) resolveConfig(fs *flag.FlagSet) (model.Config, error) {
	opts := a.options
	if opts.ConfigPath != "" && opts.Profile != "" {
		return model.Config{}, errors.New("--config and --profile are mutually exclusive")
	}

	cfg := model.DefaultConfig()
	switch name := cmp.Or(opts.Profile, a.settings.DefaultProfile); {
	case opts.ConfigPath != "":
		var err error
		if cfg, err = project.LoadConfig(opts.ConfigPath); err != nil {
			return model.Config{}, err
		}
		a.logger.Debug("loaded settings", "path", opts.ConfigPath)
	case name != "":
		p := a.profiles.FindByName(name)
		if p == nil {
			return model.Config{}, errUnknownProfile(name, a.profiles)
		}
		cfg = p.Config
		a.logger.Debug("using profile", "name", p.Name, "id", p.ID)
	}

	if fs.Changed("firmware") {
		fw, err := model.ParseFirmware(opts.Firmware)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Firmware = fw
	}
	if fs.Changed("k-start") {
		cfg.KStart = opts.KStart
	}
	if fs.Changed("k-end") {
		cfg.KEnd = opts.KEnd
	}
	if fs.Changed("k-step") {
		cfg.KStep = opts.KStep
	}
	if fs.Changed("layers-per-k") {
		cfg.LayersPerK = opts.LayersPerK
	}
	if fs.Changed("double-perimeter") {
		cfg.DoublePerimeter = opts.DoublePerimeter
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, fmt.Errorf("invalid settings:\n%w", err)
	}
	return cfg, nil
}

// generate writes the program and its artefacts.
func (a *app) generate(cfg model.Config) error {
	opts := a.options

	prog := gcode.New(cfg, gcode.WithVersion("kcalibrator "+Version), gcode.WithLogger(a.logger)).Generate()

	moves := gcode.ParseGCode(prog.String())
	summary := gcode.Summarize(moves)
	a.logger.Info("generated program",
		"lines", len(prog),
		"firmware", cfg.Firmware,
		"k_values", len(summary.KValues)-1,
		"layers", summary.Layers,
		"filament_mm", fmt.Sprintf("%.0f", summary.FilamentMM))
	for _, w := range gcode.FormatViolations(gcode.CheckBedBounds(moves, cfg)) {
		a.logger.Warn(w)
	}

	if opts.Stdout {
		if _, err := prog.WriteTo(a.stdout); err != nil {
			return fmt.Errorf("failed to write program: %w", err)
		}
	} else {
		path, err := project.WriteProgram(cmp.Or(opts.OutputDir, a.settings.OutputDir), cfg, prog)
		if err != nil {
			return err
		}
		a.logger.Info("wrote G-code", "path", path)
		a.settings.AddRecentOutput(path)
		if err := project.SaveAppConfig(a.dir.AppConfigPath(), a.settings); err != nil {
			a.logger.Warn("failed to save app config", "err", err)
		}
	}

	if err := a.writeArtefacts(cfg, prog); err != nil {
		return err
	}

	if opts.SaveConfig != "" {
		if err := project.SaveConfig(opts.SaveConfig, cfg); err != nil {
			return err
		}
		a.logger.Info("saved settings", "path", opts.SaveConfig)
	}

	if opts.SaveProfile != "" {
		p := a.profiles.Upsert(opts.SaveProfile, cfg)
		if err := a.saveProfiles(); err != nil {
			return err
		}
		a.logger.Info("saved profile", "name", p.Name, "id", p.ID)
	}
	return nil
}

// lookup reports the K-factor printed at the measured tower height.
func (a *app) lookup(cfg model.Config) error {
	z := a.options.KAt
	bands := gcode.Schedule(cfg)
	k, ok := gcode.KAtHeight(bands, z, cfg.LayerHeight)
	if !ok {
		first, last := bands[0], bands[len(bands)-1]
		return fmt.Errorf("height %.3f mm is outside the tower (%.3f to %.3f mm)",
			z, first.ZStart-cfg.LayerHeight, last.ZEnd)
	}
	_, err := fmt.Fprintf(a.stdout, "K=%.3f at %.3f mm\n", k, z)
	return err
}

func (a *app) writeArtefacts(cfg model.Config, prog gcode.Program) error {
	opts := a.options
	writePDF := opts.PDF || a.settings.WritePDF
	writeXLSX := opts.XLSX || a.settings.WriteXLSX
	writeDXF := opts.DXF || a.settings.WriteDXF
	if !writePDF && !writeXLSX && !writeDXF {
		return nil
	}

	dir := cmp.Or(opts.OutputDir, a.settings.OutputDir, ".")
	base := filepath.Join(dir, strings.TrimSuffix(cfg.FileName(), ".gcode"))
	report := export.NewReport(cfg, prog, "kcalibrator "+Version)

	artefacts := []struct {
		enabled bool
		ext     string
		write   func(string) error
	}{
		{writePDF, ".pdf", func(p string) error { return export.ExportPDF(p, report) }},
		{writeXLSX, ".xlsx", func(p string) error { return export.ExportXLSX(p, report) }},
		{writeDXF, ".dxf", func(p string) error { return export.ExportDXF(p, cfg) }},
	}
	for _, art := range artefacts {
		if !art.enabled {
			continue
		}
		path := base + art.ext
		if err := art.write(path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		a.logger.Info("wrote artefact", "path", path)
	}
	return nil
}

func execute(args []string, stdout, stderr io.Writer) error {
	var options mainOptions
	fs := newFlagSet(&options)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	level := slog.LevelInfo
	if options.Verbose {
		level = slog.LevelDebug
	}
	a := &app{
		options: &options,
		dir:     project.DataDir(options.DataDir),
		logger:  slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		stdout:  stdout,
	}

	if err := a.load(); err != nil {
		return err
	}
	if done, err := a.maintenance(); done || err != nil {
		return err
	}

	cfg, err := a.resolveConfig(fs)
	if err != nil {
		return err
	}
	if fs.Changed("k-at") {
		return a.lookup(cfg)
	}
	return a.generate(cfg)
}

func main() {
	err := execute(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
