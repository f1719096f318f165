// Package config resolves winescan settings from defaults, an optional YAML
// file and WINESCAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ensigniasec/winescan/internal/scan"
	"github.com/ensigniasec/winescan/internal/validate"
)

const (
	envPrefix      = "WINESCAN"
	configName     = "config"
	configDir      = "~/.config/winescan"
	defaultStorage = "~/.config/winescan/profile.json"
)

// Config is the resolved application configuration.
type Config struct {
	Scan scan.Timings `mapstructure:"scan"`
	// Catalog is a YAML file or a directory of YAML files; empty means the
	// built-in catalog.
	Catalog     string `mapstructure:"catalog"`
	StorageFile string `mapstructure:"storage_file" validate:"required"`
}

// Load reads configuration. When path is empty the default config directory
// is searched and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		dir, err := ExpandTilde(configDir)
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		logrus.Debug("Loaded config file from: ", used)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	t := scan.DefaultTimings()
	v.SetDefault("scan.detect_delay", t.DetectDelay)
	v.SetDefault("scan.analyze_delay", t.AnalyzeDelay)
	v.SetDefault("scan.found_delay", t.FoundDelay)
	v.SetDefault("scan.tick_interval", t.TickInterval)
	v.SetDefault("scan.progress_step", t.ProgressStep)
	v.SetDefault("catalog", "")
	v.SetDefault("storage_file", defaultStorage)
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
