// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the environment-variable prefix checked for overrides, e.g.
// CHANWATCH_CHANNELS_DVR_HOST.
const EnvPrefix = "CHANWATCH_"

// DefaultConfigPaths mirrors the teacher's layered-file-search convention:
// the first file found wins.
var DefaultConfigPaths = []string{
	"chanwatch.yaml",
	"chanwatch.yml",
	"/etc/chanwatch/config.yaml",
	"/etc/chanwatch/config.yml",
}

// ConfigPathEnvVar lets an operator point at an explicit file.
const ConfigPathEnvVar = "CHANWATCH_CONFIG_PATH"

var validate = validator.New()

// Load builds a Config from defaults, an optional YAML file, then env vars.
// It never returns a partially-validated Config: on validation failure the
// caller (main) is expected to enter the standby loop described in spec §7
// rather than crash.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load config defaults: %w", err)
	}

	path := resolveConfigPath()
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveConfigPath() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform turns CHANWATCH_CHANNELS_DVR_HOST into channels_dvr_host.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(s)
}
