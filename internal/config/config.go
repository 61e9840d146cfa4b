// Package config loads the storefront configuration from config.yaml, the
// environment, an optional .env file, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// FileName is the configuration file inside the config directory.
	FileName = "config.yaml"

	// DotEnvFileName is loaded from the config directory when present.
	// Variables already set in the process environment win.
	DotEnvFileName = ".env"

	// EnvPrefix prefixes every environment override, e.g. STOREFRONT_API_URL.
	EnvPrefix = "STOREFRONT"
)

// Config keys.
const (
	KeyAPIURL        = "api_url"
	KeyDataDir       = "data_dir"
	KeyTimeout       = "timeout"
	KeyRateLimit     = "rate_limit"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age_days"
	KeyLogCompress   = "log.compress"
)

// FlagAPIURL is the flag bound over the api_url key.
const FlagAPIURL = "api-url"

// Defaults returns the configuration used when nothing overrides it.
func Defaults() types.Config {
	return types.Config{
		APIURL: types.DefaultAPIURL,
		Log: types.LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads config.yaml from configDir and applies, from lowest to highest
// precedence, defaults, the file, STOREFRONT_* environment variables
// (including those from configDir/.env) and the --api-url flag when flags is
// non-nil and the flag was set. A missing config.yaml or .env is not an error.
// The returned Config is validated.
func Load(configDir string, flags *pflag.FlagSet) (types.Config, error) {
	if err := loadDotEnv(configDir); err != nil {
		return types.Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup(FlagAPIURL); f != nil {
			if err := v.BindPFlag(KeyAPIURL, f); err != nil {
				return types.Config{}, fmt.Errorf("bind flag %s: %w", FlagAPIURL, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyAPIURL, d.APIURL)
	v.SetDefault(KeyDataDir, d.DataDir)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyRateLimit, d.RateLimit)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFile, d.Log.File)
	v.SetDefault(KeyLogMaxSize, d.Log.MaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, d.Log.MaxBackups)
	v.SetDefault(KeyLogMaxAge, d.Log.MaxAgeDays)
	v.SetDefault(KeyLogCompress, d.Log.Compress)
}

func loadDotEnv(configDir string) error {
	path := filepath.Join(configDir, DotEnvFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", DotEnvFileName, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", DotEnvFileName, err)
	}
	return nil
}
