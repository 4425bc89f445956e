package depot

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultArenaSize     = 64 << 20
	DefaultChunkCapacity = 10000

	// MaxComponentTypes bounds the number of distinct TypeKeys one storage can
	// register; each key owns one bit of an archetype signature mask.
	MaxComponentTypes = 64
)

// Options sizes one storage. Both values are fixed for the storage's lifetime.
type Options struct {
	ArenaSize     int `toml:"arena_size"`
	ChunkCapacity int `toml:"chunk_capacity"`
}

func DefaultOptions() Options {
	return Options{
		ArenaSize:     DefaultArenaSize,
		ChunkCapacity: DefaultChunkCapacity,
	}
}

// Validate requires a chunk capacity that is a multiple of 8, which keeps every
// column of every chunk 8-byte aligned.
func (o Options) Validate() error {
	if o.ArenaSize <= 0 {
		return fmt.Errorf("arena size must be positive, got %d", o.ArenaSize)
	}
	if o.ChunkCapacity <= 0 || o.ChunkCapacity%8 != 0 {
		return fmt.Errorf("chunk capacity must be a positive multiple of 8, got %d", o.ChunkCapacity)
	}
	return nil
}

// Settings is the on-disk configuration read by LoadSettings.
type Settings struct {
	Storage Options         `toml:"storage"`
	Logging LoggingSettings `toml:"logging"`
}

type LoggingSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func DefaultSettings() *Settings {
	return &Settings{
		Storage: DefaultOptions(),
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadSettings reads a TOML file over the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return ParseSettings(data)
}

func ParseSettings(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage settings: %w", err)
	}
	return s, nil
}
