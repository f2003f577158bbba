package density

import (
	"sync"

	"codeberg.org/mutker/extkit/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// Key is the viper key holding the display density.
	Key = "display.density"

	defaultDensity = 1.0
)

// ConfigProvider reads the density from a viper instance on every call. When
// the value is missing or invalid it falls back to the last good value.
type ConfigProvider struct {
	v        *viper.Viper
	log      logger.Logger
	mu       sync.Mutex
	fallback float64
}

// NewConfigProvider returns a provider backed by v.
func NewConfigProvider(v *viper.Viper, log logger.Logger) *ConfigProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &ConfigProvider{v: v, log: log, fallback: defaultDensity}
}

func (c *ConfigProvider) Density() float64 {
	d := c.v.GetFloat64(Key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !Valid(d) {
		return c.fallback
	}
	c.fallback = d

	return d
}

// Watch re-reads the config file on change so Density picks up edits.
// onChange, if set, receives the new density.
func (c *ConfigProvider) Watch(onChange func(float64)) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		d := c.Density()
		c.log.Debug().
			Str("file", e.Name).
			Float64("density", d).
			Msg("Display density reloaded")
		if onChange != nil {
			onChange(d)
		}
	})
	c.v.WatchConfig()
}
