// Package config loads optional user preferences for faststart from
// $XDG_CONFIG_HOME/faststart/config.yaml (falling back to ~/.config), with
// FASTSTART_* environment variable overrides (FASTSTART_DEFAULTS_TEMPLATE,
// FASTSTART_DEFAULTS_DEST_ROOT, and FASTSTART_DEFAULTS_SET as
// comma-separated name=value pairs). Preferences pre-fill parameter values
// and the destination root; explicit CLI flags always win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates the user configuration could not be parsed.
var ErrInvalidConfig = errors.New("config: invalid user configuration")

// Config holds user-level defaults. All fields are optional.
type Config struct {
	// Defaults applied when creating projects.
	Defaults Defaults `mapstructure:"defaults"`
}

// Defaults pre-fills project creation inputs.
type Defaults struct {
	// Template is the template ID used when none is given.
	Template string `mapstructure:"template"`
	// DestRoot is the directory new projects are created under.
	DestRoot string `mapstructure:"dest_root"`
	// Set maps parameter names to default raw values, applied before
	// schema defaults but after explicit --set flags.
	Set map[string]string `mapstructure:"set"`
}

// envBoundKeys are the configuration keys overridable via FASTSTART_*
// environment variables. Binding them explicitly makes them visible to
// Unmarshal even when the key is absent from the config file (or the file
// does not exist at all).
var envBoundKeys = []string{
	"defaults.template",
	"defaults.dest_root",
	"defaults.set",
}

// Load reads the user configuration. A missing file is not an error; a file
// that exists but does not parse is.
func Load() (*Config, error) {
	return LoadFrom(configDir())
}

// LoadFrom reads configuration from the given directory (for testing).
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("FASTSTART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBoundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(pairListToMapHook())); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// pairListToMapHook decodes a "name=value,name=value" string into a
// map[string]string, so FASTSTART_DEFAULTS_SET can override the defaults.set
// map from the environment.
func pairListToMapHook() mapstructure.DecodeHookFunc {
	mapType := reflect.TypeOf(map[string]string{})
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != mapType {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		out := make(map[string]string)
		if raw == "" {
			return out, nil
		}
		for _, pair := range strings.Split(raw, ",") {
			name, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("invalid name=value pair %q", pair)
			}
			out[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		return out, nil
	}
}

// configDir resolves the faststart configuration directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "faststart")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "faststart")
}
