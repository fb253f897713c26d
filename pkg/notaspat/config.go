package notaspat

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the config file looked up in the data directory.
const ConfigFileName = "notaspat.yaml"

// Config is the on-disk daemon configuration.
type Config struct {
	// Path overrides the data directory.
	Path string `yaml:"path"`
	// Adapter selects the storage backend: fs, bolt or memory.
	Adapter string `yaml:"adapter"`
	// DebounceMS is the page rescan quiet period in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
	// LookupTimeoutS is the note lookup deadline in seconds.
	LookupTimeoutS int `yaml:"lookup_timeout_s"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Adapter:        "fs",
		DebounceMS:     300,
		LookupTimeoutS: 5,
	}
}

// LoadConfig reads a YAML config file, returning defaults when the file does
// not exist. Unset fields fall back to their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Adapter == "" {
		cfg.Adapter = "fs"
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = DefaultConfig().DebounceMS
	}
	if cfg.LookupTimeoutS <= 0 {
		cfg.LookupTimeoutS = DefaultConfig().LookupTimeoutS
	}
	return cfg, nil
}

// Debounce returns the rescan quiet period as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LookupTimeout returns the lookup deadline as a duration.
func (c Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutS) * time.Second
}
