package qtm

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

/*
Config carries the tunables shared by the builder, the checker and the
runtime. The zero tolerance is the one "is this amplitude zero" policy used
everywhere: the builder drops cells at or below it, the runtime leaves
vector entries at or below it out of superpositions and halting checks.
*/
type Config struct {
	Tolerance         float64
	ZeroTolerance     float64
	ParallelThreshold int
	Workers           int
	MaxSteps          int
	LogLevel          string
	LogFile           string
}

func NewConfig() *Config {
	return &Config{
		Tolerance:         DefaultTolerance,
		ZeroTolerance:     1e-12,
		ParallelThreshold: 1 << 16,
		Workers:           runtime.GOMAXPROCS(0),
		MaxSteps:          10,
		LogLevel:          "info",
	}
}

/*
LoadConfig layers a config file and QTM_* environment variables over the
defaults. A .env file in the working directory is loaded first. With an
empty path a qtm.{yaml,toml,json} in the working directory is used when one
exists.
*/
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	defaults := NewConfig()

	v := viper.New()
	v.SetEnvPrefix("QTM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("tolerance", defaults.Tolerance)
	v.SetDefault("zero_tolerance", defaults.ZeroTolerance)
	v.SetDefault("parallel_threshold", defaults.ParallelThreshold)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("max_steps", defaults.MaxSteps)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("qtm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{
		Tolerance:         v.GetFloat64("tolerance"),
		ZeroTolerance:     v.GetFloat64("zero_tolerance"),
		ParallelThreshold: v.GetInt("parallel_threshold"),
		Workers:           v.GetInt("workers"),
		MaxSteps:          v.GetInt("max_steps"),
		LogLevel:          v.GetString("log_level"),
		LogFile:           v.GetString("log_file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the runtime cannot honour.
func (c *Config) Validate() error {
	switch {
	case c.Tolerance <= 0:
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	case c.ZeroTolerance < 0:
		return fmt.Errorf("zero tolerance must not be negative, got %g", c.ZeroTolerance)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.MaxSteps < 0:
		return fmt.Errorf("max steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}
