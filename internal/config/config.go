package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPaths     []string      `toml:"scan_paths"`
	Exclude       Exclude       `toml:"exclude"`
	Patterns      Patterns      `toml:"patterns"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
	Alerts        Alerts        `toml:"alerts"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Patterns struct {
	Enabled            []string `toml:"enabled"` // empty = all registered types
	MinConfidence      string   `toml:"min_confidence"`
	IncludeSuggestions bool     `toml:"include_suggestions"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	RescansPerSecond float64       `toml:"rescans_per_second"`
	RescanBurst      int           `toml:"rescan_burst"`
}

type Output struct {
	JSON     string `toml:"json"`
	Markdown string `toml:"markdown"`
}

type History struct {
	Path string `toml:"path"` // empty disables snapshot persistence
}

type Observability struct {
	Listen       string `toml:"listen"` // empty disables the HTTP endpoint
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

type Alerts struct {
	Beep     bool `toml:"beep"`
	Terminal bool `toml:"terminal"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	applyFallbacks(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := defaults()
	applyFallbacks(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Patterns: Patterns{
			MinConfidence:      "low",
			IncludeSuggestions: true,
		},
		Alerts: Alerts{
			Terminal: true,
		},
	}
}

func applyFallbacks(cfg *Config) {
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescansPerSecond <= 0 {
		cfg.Watch.RescansPerSecond = 2
	}
	if cfg.Watch.RescanBurst <= 0 {
		cfg.Watch.RescanBurst = 1
	}
	if cfg.Patterns.MinConfidence == "" {
		cfg.Patterns.MinConfidence = "low"
	}
}
