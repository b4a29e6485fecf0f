package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/analysis"
)

// Config is the full service configuration. Analysis thresholds live in
// the file rather than in code because the exact cut-offs are operational
// policy, tuned per deployment.
type Config struct {
	Port           string   `yaml:"port"`
	DataDir        string   `yaml:"data_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimitRPS / RateLimitBurst bound per-client request rates on the
	// analyze endpoint; a full analysis run is not free.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	Analysis analysis.Config `yaml:"analysis"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:           "8080",
		DataDir:        "./data",
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   2,
		RateLimitBurst: 5,
		Analysis:       analysis.DefaultConfig(),
	}
}

// Load reads the YAML file at path, if it exists, over the defaults, then
// applies environment overrides and validates. A structurally invalid
// configuration is fatal here, before any analysis can run.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("rate limit settings must be positive, got rps=%v burst=%d",
			cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return cfg, nil
}
