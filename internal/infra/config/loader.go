// Package config loads TOML configuration, merging the global file
// (~/.config/minute/config.toml) and the repository file
// (.minute/config.toml) over the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/hseto/minute/internal/domain"
)

// ConfigFileName is the file name used for both global and repo config.
const ConfigFileName = "config.toml"

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	rootDir       string // path to the .minute directory
	globalConfDir string // path to the global config directory
}

// NewLoader creates a Loader for the given store root.
func NewLoader(rootDir string) *Loader {
	return &Loader{
		rootDir:       rootDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a Loader with a custom global config
// directory. This is useful for testing.
func NewLoaderWithGlobalDir(rootDir, globalConfDir string) *Loader {
	return &Loader{
		rootDir:       rootDir,
		globalConfDir: globalConfDir,
	}
}

func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "minute")
}

// Load returns the merged configuration. Later sources override earlier
// ones field by field: defaults, then the global file, then the repo file.
// Missing files are fine; malformed files are not.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if l.globalConfDir != "" {
		if err := mergeFile(cfg, filepath.Join(l.globalConfDir, ConfigFileName)); err != nil {
			return nil, err
		}
	}
	if err := mergeFile(cfg, filepath.Join(l.rootDir, ConfigFileName)); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes path into cfg. TOML decoding only assigns keys present
// in the document, which is exactly the merge semantics wanted here.
func mergeFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func validate(cfg *domain.Config) error {
	if cfg.Extract.ConfidenceThreshold < 0 || cfg.Extract.ConfidenceThreshold > 1 {
		return fmt.Errorf("extract.confidence_threshold %.2f outside [0,1]", cfg.Extract.ConfidenceThreshold)
	}
	switch cfg.Store.Backend {
	case "", "file", "sqlite", "tracker":
	default:
		return fmt.Errorf("store.backend %q is not one of file, sqlite, tracker", cfg.Store.Backend)
	}
	switch cfg.Oracle.Kind {
	case "", "heuristic", "http":
	default:
		return fmt.Errorf("oracle.kind %q is not one of heuristic, http", cfg.Oracle.Kind)
	}
	if cfg.Oracle.Kind == "http" && cfg.Oracle.URL == "" {
		return errors.New("oracle.url is required when oracle.kind is http")
	}
	for kw, v := range cfg.Scoring.UrgencyKeywords {
		if v < domain.RubricMin || v > domain.RubricMax {
			return fmt.Errorf("scoring.urgency_keywords[%q] = %d outside [%d,%d]", kw, v, domain.RubricMin, domain.RubricMax)
		}
	}
	prev := -1
	for _, band := range cfg.Scoring.DeadlineBands {
		if band.MaxDays <= prev {
			return errors.New("scoring.deadline_bands must have strictly ascending max_days")
		}
		if band.Value < domain.RubricMin || band.Value > domain.RubricMax {
			return fmt.Errorf("scoring.deadline_bands value %d outside [%d,%d]", band.Value, domain.RubricMin, domain.RubricMax)
		}
		prev = band.MaxDays
	}
	return nil
}
