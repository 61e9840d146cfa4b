package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds everything the storefront client needs to reach the API and
// keep its local state.
type Config struct {
	APIURL    string        `json:"api_url" yaml:"api_url" mapstructure:"api_url"`
	DataDir   string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	RateLimit float64       `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
	Log       LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// LogConfig selects the log level and the optional rotated log file.
type LogConfig struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	File       string `json:"file" yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// DefaultAPIURL is the address of a locally running bookstore API.
const DefaultAPIURL = "http://127.0.0.1:5000"

// Config validation errors.
var (
	ErrAPIURLEmpty      = errors.New("api_url must not be empty")
	ErrAPIURLInvalid    = errors.New("api_url must be an absolute http or https URL")
	ErrTimeoutInvalid   = errors.New("timeout must not be negative")
	ErrRateLimitInvalid = errors.New("rate_limit must not be negative")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLEmpty
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrAPIURLInvalid
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if c.RateLimit < 0 {
		return ErrRateLimitInvalid
	}
	return nil
}
