// Package config loads engine limits and service settings for the regvm
// command from defaults, an optional config file, REGVM_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KromDaniel/regvm/internal/compiler"
	"github.com/KromDaniel/regvm/pkg/regvm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REGVM"

// Config keys. Flags bound by Load use the same names with '-' for '_'.
const (
	KeyBlocks          = "blocks"
	KeyInitialThreads  = "initial_threads"
	KeyMaxThreads      = "max_threads"
	KeyMaxSteps        = "max_steps"
	KeyMaxProgramWords = "max_program_words"
	KeyCacheTTL        = "cache_ttl"
	KeyVerbose         = "verbose"
	KeyMetricsAddr     = "metrics_addr"
)

// Config holds the settings of a regvm process.
type Config struct {
	Blocks          int           `mapstructure:"blocks"`
	InitialThreads  int           `mapstructure:"initial_threads"`
	MaxThreads      int           `mapstructure:"max_threads"`
	MaxSteps        int64         `mapstructure:"max_steps"`
	MaxProgramWords int           `mapstructure:"max_program_words"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	Verbose         bool          `mapstructure:"verbose"`
	MetricsAddr     string        `mapstructure:"metrics_addr"` // empty disables the endpoint
}

// Default returns the built-in configuration.
func Default() *Config {
	l := regvm.DefaultLimits()
	return &Config{
		Blocks:          regvm.DefaultBlocks,
		InitialThreads:  l.InitialThreads,
		MaxThreads:      l.MaxThreads,
		MaxProgramWords: compiler.MaxProgramWords,
		CacheTTL:        10 * time.Minute,
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.Blocks <= 0:
		return errors.Errorf("blocks must be positive, got %d", c.Blocks)
	case c.InitialThreads <= 0:
		return errors.Errorf("initial_threads must be positive, got %d", c.InitialThreads)
	case c.MaxThreads <= 0:
		return errors.Errorf("max_threads must be positive, got %d", c.MaxThreads)
	case c.InitialThreads > c.MaxThreads:
		return errors.Errorf("initial_threads %d exceeds max_threads %d", c.InitialThreads, c.MaxThreads)
	case c.MaxSteps < 0:
		return errors.Errorf("max_steps cannot be negative, got %d", c.MaxSteps)
	case c.MaxProgramWords <= 0:
		return errors.Errorf("max_program_words must be positive, got %d", c.MaxProgramWords)
	case c.CacheTTL < 0:
		return errors.Errorf("cache_ttl cannot be negative, got %s", c.CacheTTL)
	}
	return nil
}

// Limits returns the per-match limits.
func (c *Config) Limits() regvm.Limits {
	return regvm.Limits{
		InitialThreads: c.InitialThreads,
		MaxThreads:     c.MaxThreads,
		MaxSteps:       c.MaxSteps,
	}
}

// CompileOptions returns the compile options.
func (c *Config) CompileOptions() regvm.Options {
	return regvm.Options{Verbose: c.Verbose, MaxWords: c.MaxProgramWords}
}

// Load reads the configuration. path names a config file; when it is
// empty, regvm.{yaml,toml,json} is looked up in the working directory and
// skipped if absent. Flags in fs named after a key override every other
// source once set on the command line. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("regvm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault(KeyBlocks, d.Blocks)
	v.SetDefault(KeyInitialThreads, d.InitialThreads)
	v.SetDefault(KeyMaxThreads, d.MaxThreads)
	v.SetDefault(KeyMaxSteps, d.MaxSteps)
	v.SetDefault(KeyMaxProgramWords, d.MaxProgramWords)
	v.SetDefault(KeyCacheTTL, d.CacheTTL)
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{
		KeyBlocks, KeyInitialThreads, KeyMaxThreads, KeyMaxSteps,
		KeyMaxProgramWords, KeyCacheTTL, KeyVerbose, KeyMetricsAddr,
	} {
		f := fs.Lookup(FlagName(key))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag --%s", f.Name)
		}
	}
	return nil
}

// FlagName returns the command-line flag name of a config key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
