package config

import (
	"time"

	"codeberg.org/mutker/extkit/internal/lifecycle"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Provider defines the interface for accessing configuration values.
// Values are fixed after loading, except display.density which
// density.ConfigProvider re-reads from the underlying viper instance.
type Provider interface {
	// GetLogLevel returns the configured logging level
	GetLogLevel() string

	// GetLocale returns the locale used for number and date formatting
	GetLocale() language.Tag

	// GetLocation returns the time zone used for date formatting
	GetLocation() *time.Location

	// GetDatePattern returns the default date pattern
	GetDatePattern() string

	// GetDensity returns the display density at load time
	GetDensity() float64

	// GetMinActiveState returns the state at or above which collectors run
	GetMinActiveState() lifecycle.State

	// IsMetricsEnabled returns whether collector statistics are persisted
	IsMetricsEnabled() bool

	// GetMetricsDBPath returns the path to the metrics database
	GetMetricsDBPath() string

	// GetMetricsBatchSize returns how many records are buffered per flush
	GetMetricsBatchSize() int

	// GetMetricsBatchTimeout returns the maximum time between flushes
	GetMetricsBatchTimeout() time.Duration

	// Viper returns the viper instance backing the configuration
	Viper() *viper.Viper

	// Args returns the positional arguments left after flag parsing
	Args() []string
}

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
	args       []string
	argsSet    bool
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "EXTKIT"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithArgs parses args instead of os.Args[1:]
func WithArgs(args []string) Option {
	return func(o *options) error {
		o.args = args
		o.argsSet = true
		return nil
	}
}
