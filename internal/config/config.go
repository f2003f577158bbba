package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/extkit/internal/datefmt"
	"codeberg.org/mutker/extkit/internal/density"
	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/lifecycle"
	"codeberg.org/mutker/extkit/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	DefaultEnvPrefix           = "EXTKIT"
	DefaultLogLevel            = "info"
	DefaultLocale              = "en"
	DefaultTimezone            = "Local"
	DefaultDensity             = 1.0
	DefaultMinActiveState      = "started"
	DefaultMetricsDBPath       = "/var/lib/extkit/metrics.db"
	DefaultMetricsBatchSize    = 10
	DefaultMetricsBatchTimeout = 5

	configName = "extkit"
	configType = "toml"
)

type DisplayConfig struct {
	Density float64 `mapstructure:"density"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
	// BatchSize is the number of records buffered before a flush.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the flush interval in seconds.
	BatchTimeout int `mapstructure:"batch_timeout"`
}

type Config struct {
	LogLevel       string        `mapstructure:"log_level"`
	Locale         string        `mapstructure:"locale"`
	Timezone       string        `mapstructure:"timezone"`
	DatePattern    string        `mapstructure:"date_pattern"`
	MinActiveState string        `mapstructure:"min_active_state"`
	Display        DisplayConfig `mapstructure:"display"`
	Metrics        MetricsConfig `mapstructure:"metrics"`

	v        *viper.Viper
	args     []string
	locale   language.Tag
	location *time.Location
	minState lifecycle.State
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"locale":        "locale",
	"timezone":      "timezone",
	"date-pattern":  "date_pattern",
	"density":       density.Key,
	"min-state":     "min_active_state",
	"metrics":       "metrics.enabled",
	"metrics-db":    "metrics.db_path",
	"batch-size":    "metrics.batch_size",
	"batch-timeout": "metrics.batch_timeout",
}

// Load reads configuration from defaults, the config file, environment
// variables and command line flags, in increasing order of precedence, and
// validates the result.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}
	if !o.argsSet && len(os.Args) > 1 {
		o.args = os.Args[1:]
	}

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := o.configPath
	if flagPath, _ := fs.GetString("config"); flagPath != "" {
		path = flagPath
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}
	if err := readConfig(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{v: v, args: fs.Args()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("config_file", v.ConfigFileUsed()).
		Str("locale", cfg.locale.String()).
		Str("timezone", cfg.location.String()).
		Msg("Config loaded")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("locale", DefaultLocale)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("date_pattern", datefmt.DefaultPattern)
	v.SetDefault("min_active_state", DefaultMinActiveState)
	v.SetDefault(density.Key, DefaultDensity)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", DefaultMetricsDBPath)
	v.SetDefault("metrics.batch_size", DefaultMetricsBatchSize)
	v.SetDefault("metrics.batch_timeout", DefaultMetricsBatchTimeout)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	// flags end at the command so arguments like "-5" stay positional
	fs.SetInterspersed(false)
	fs.String("config", "", "Path to config file")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("locale", DefaultLocale, "Locale for number and date formatting (BCP 47)")
	fs.String("timezone", DefaultTimezone, "Time zone for date formatting")
	fs.String("date-pattern", datefmt.DefaultPattern, "Default date pattern")
	fs.Float64("density", DefaultDensity, "Display density (pixels per dp)")
	fs.String("min-state", DefaultMinActiveState, "Lifecycle state at or above which events are collected")
	fs.Bool("metrics", false, "Persist collector statistics")
	fs.String("metrics-db", DefaultMetricsDBPath, "Path to the metrics database")
	fs.Int("batch-size", DefaultMetricsBatchSize, "Metrics records buffered per flush")
	fs.Int("batch-timeout", DefaultMetricsBatchTimeout, "Seconds between metrics flushes")
	return fs
}

func readConfig(v *viper.Viper, path string) error {
	errFactory := errors.New()

	v.SetConfigType(configType)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.AddConfigPath(filepath.Join("/etc", configName))
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks every field and caches the parsed locale, location and
// minimum state.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	tag, err := language.Parse(c.Locale)
	if err != nil {
		return errFactory.Wrap(errors.ErrInvalidLocale, err).WithData(c.Locale)
	}

	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return errFactory.Wrap(errors.ErrInvalidTimezone, err).WithData(c.Timezone)
	}

	if d := c.Display.Density; d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return errFactory.WithData(errors.ErrInvalidDensity, d)
	}

	state, err := lifecycle.ParseState(c.MinActiveState)
	if err != nil || state <= lifecycle.Initialized {
		return errFactory.WithData(errors.ErrInvalidState, c.MinActiveState)
	}

	if _, err := datefmt.NewFormatter(c.DatePattern, datefmt.WithLocale(tag)); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if c.Metrics.Enabled && c.Metrics.DBPath == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics.db_path")
	}
	if c.Metrics.BatchSize < 0 || c.Metrics.BatchTimeout < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "metrics batching must not be negative")
	}

	c.locale = tag
	c.location = loc
	c.minState = state

	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func (c *Config) GetLogLevel() string { return c.LogLevel }
func (c *Config) GetLocale() language.Tag { return c.locale }
func (c *Config) GetLocation() *time.Location { return c.location }
func (c *Config) GetDatePattern() string { return c.DatePattern }
func (c *Config) GetDensity() float64 { return c.Display.Density }
func (c *Config) GetMinActiveState() lifecycle.State { return c.minState }
func (c *Config) IsMetricsEnabled() bool { return c.Metrics.Enabled }
func (c *Config) GetMetricsDBPath() string { return c.Metrics.DBPath }
func (c *Config) GetMetricsBatchSize() int { return c.Metrics.BatchSize }
func (c *Config) Viper() *viper.Viper { return c.v }
func (c *Config) Args() []string { return c.args }

func (c *Config) GetMetricsBatchTimeout() time.Duration {
	return time.Duration(c.Metrics.BatchTimeout) * time.Second
}
