// Package config loads the detent command's configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/pkg/memstore"
)

// EnvPrefix prefixes environment overrides, e.g. DETENT_LOG_LEVEL.
const EnvPrefix = "DETENT"

// Config holds the command configuration.
type Config struct {
	Parameters []Parameter      `mapstructure:"parameters" validate:"required,min=1,unique=ID,dive"`
	Automation AutomationConfig `mapstructure:"automation"`
	Preset     PresetConfig     `mapstructure:"preset"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	UI         UIConfig         `mapstructure:"ui"`
}

// Parameter describes one parameter in the store and its confirm rules.
type Parameter struct {
	ID        string   `mapstructure:"id" validate:"required"`
	Name      string   `mapstructure:"name"`
	Start     float64  `mapstructure:"start"`
	End       float64  `mapstructure:"end" validate:"gtfield=Start"`
	Default   float64  `mapstructure:"default"`
	Interval  float64  `mapstructure:"interval" validate:"gte=0"`
	Centre    float64  `mapstructure:"centre"`
	Symmetric bool     `mapstructure:"symmetric"`
	Unit      string   `mapstructure:"unit"`
	Decimals  int      `mapstructure:"decimals" validate:"gte=0,lte=6"`
	MaxStep   float64  `mapstructure:"max_step" validate:"gte=0"`
	Rules     []string `mapstructure:"rules" validate:"dive,required"`
}

// Range returns the parameter's domain range. A centre strictly inside
// the span sets the skew so that it sits at the middle of the control.
func (p Parameter) Range() detent.Range {
	r := detent.Range{Start: p.Start, End: p.End, Interval: p.Interval, Symmetric: p.Symmetric}
	if p.Centre > p.Start && p.Centre < p.End {
		r = r.WithCentre(p.Centre)
	}
	return r
}

// Definition converts the parameter for memstore.
func (p Parameter) Definition() memstore.Definition {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return memstore.Definition{
		ID:       p.ID,
		Name:     name,
		Range:    p.Range(),
		Default:  p.Default,
		Unit:     p.Unit,
		Decimals: p.Decimals,
	}
}

// AutomationConfig drives a parameter from a producer goroutine.
type AutomationConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Parameter string        `mapstructure:"parameter" validate:"required_if=Enabled true"`
	Rate      time.Duration `mapstructure:"rate" validate:"gte=0"`
	Period    time.Duration `mapstructure:"period" validate:"gte=0"`
	Depth     float64       `mapstructure:"depth" validate:"gte=0,lte=1"`
}

// PresetConfig selects the preset source. A file path wins over a redis key.
type PresetConfig struct {
	Path     string        `mapstructure:"path"`
	RedisKey string        `mapstructure:"redis_key"`
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	Path    string `mapstructure:"path"`
	Name    string `mapstructure:"name" validate:"required"`
	Restore bool   `mapstructure:"restore"`
	Save    bool   `mapstructure:"save"`
}

// RedisConfig configures the remote control surface.
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	Parameter string `mapstructure:"parameter" validate:"required_if=Enabled true"`
}

// LogConfig configures the debug log.
type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Title string  `mapstructure:"title"`
	Step  float64 `mapstructure:"step" validate:"gt=0,lte=0.5"`
	Width int     `mapstructure:"width" validate:"gte=8,lte=200"`
}

// DataDir returns the default directory for the session database and logs.
func DataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "detent")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("parameters", []map[string]any{
		{
			"id": "gain", "name": "Gain", "start": -60.0, "end": 12.0, "default": 0.0,
			"centre": -12.0, "unit": "dB", "decimals": 1, "max_step": 24.0,
			"rules": []string{"value > 6 ? 6 : value"},
		},
		{
			"id": "mix", "name": "Mix", "start": 0.0, "end": 100.0, "default": 50.0,
			"interval": 1.0, "unit": "%",
		},
	})

	v.SetDefault("automation.enabled", false)
	v.SetDefault("automation.parameter", "mix")
	v.SetDefault("automation.rate", 20*time.Millisecond)
	v.SetDefault("automation.period", 4*time.Second)
	v.SetDefault("automation.depth", 0.5)

	v.SetDefault("preset.path", "")
	v.SetDefault("preset.redis_key", "")
	v.SetDefault("preset.debounce", 100*time.Millisecond)

	v.SetDefault("session.path", filepath.Join(DataDir(), "sessions.db"))
	v.SetDefault("session.name", "default")
	v.SetDefault("session.restore", true)
	v.SetDefault("session.save", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.parameter", "gain")

	v.SetDefault("log.dir", DataDir())
	v.SetDefault("log.level", "INFO")

	v.SetDefault("ui.title", "detent")
	v.SetDefault("ui.step", 0.01)
	v.SetDefault("ui.width", 32)
}

// Load reads configuration from path, or from ./detent.yaml and
// $HOME/.config/detent/detent.yaml when path is empty, then applies
// DETENT_ environment overrides and validates the result. A missing file
// is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("detent")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "detent"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Parameter returns the parameter with the given id.
func (c Config) Parameter(id string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

// Definitions converts every parameter for memstore.
func (c Config) Definitions() []memstore.Definition {
	defs := make([]memstore.Definition, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		defs = append(defs, p.Definition())
	}
	return defs
}
