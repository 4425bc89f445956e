// depotsim populates a storage from a YAML manifest and ticks a movement system
// over it.
//
//	go run ./cmd/depotsim -config depot.toml -manifest world.yaml -frames 600
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TheBitDrifter/depot"
	"github.com/TheBitDrifter/depot/manifest"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:embed world.yaml
var defaultManifest []byte

type flags struct {
	config   string
	manifest string
	frames   int
	dt       time.Duration
	report   int
	profile  string
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML settings file (defaults when empty)")
	flag.StringVar(&f.manifest, "manifest", "", "YAML manifest (built-in world when empty)")
	flag.IntVar(&f.frames, "frames", 600, "number of ticks to run")
	flag.DurationVar(&f.dt, "dt", time.Second/60, "simulated time per tick")
	flag.IntVar(&f.report, "report", 120, "log stats every N frames, 0 to disable")
	flag.StringVar(&f.profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "depotsim: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// 1. Load settings
	settings := depot.DefaultSettings()
	if f.config != "" {
		loaded, err := depot.LoadSettings(f.config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		settings = loaded
	}

	// 2. Init logger
	log, err := newLogger(settings.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	depot.Config.SetLogger(log.Named("depot"))

	// 3. Load manifest
	var m *manifest.Manifest
	if f.manifest != "" {
		m, err = manifest.Load(f.manifest)
	} else {
		m, err = manifest.Parse(defaultManifest)
	}
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	// 4. Populate storage
	storage, err := depot.Factory.NewStorage(settings.Storage)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	res, err := m.Populate(storage)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	log.Info("storage populated",
		zap.Int("entities", res.Total),
		zap.Int("archetypes", len(res.Archetypes)),
	)

	// 5. Register systems
	move, err := newMovement(m)
	if err != nil {
		return err
	}
	driver := depot.Factory.NewSystemDriver(storage)
	driver.Register(move)
	driver.Register(newReporter(log, move, f.report))

	// 6. Tick
	switch f.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", f.profile)
	}

	start := time.Now()
	for range f.frames {
		if err := driver.Tick(f.dt); err != nil {
			return fmt.Errorf("frame %d: %w", driver.Frame(), err)
		}
	}
	elapsed := time.Since(start)

	stats := storage.Stats()
	log.Info("simulation finished",
		zap.Uint64("frames", driver.Frame()),
		zap.Duration("elapsed", elapsed),
		zap.Int("entities", stats.Entities),
		zap.Int("chunks", stats.Chunks),
		zap.Int("arena_used", stats.ArenaUsed),
		zap.Int("arena_size", stats.ArenaSize),
	)
	return nil
}

func newLogger(cfg depot.LoggingSettings) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
