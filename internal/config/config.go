// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads holonick settings from an optional YAML file and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/holonick/internal/cooldown"
	"github.com/holomush/holonick/internal/logging"
	"github.com/holomush/holonick/internal/registry"
)

// CodeInvalidConfig marks configuration that failed to load or validate.
const CodeInvalidConfig = "INVALID_CONFIG"

// Config is the resolved holonick configuration.
type Config struct {
	DataDir     string         `koanf:"data_dir"`
	LogFormat   string         `koanf:"log_format"`
	LogLevel    string         `koanf:"log_level"`
	MetricsAddr string         `koanf:"metrics_addr"`
	Cooldown    time.Duration  `koanf:"cooldown"`
	SaveRetries uint64         `koanf:"save_retries"`
	Nickname    NicknameConfig `koanf:"nickname"`
	Operators   []string       `koanf:"operators"`
}

// NicknameConfig constrains which nicknames users may claim.
type NicknameConfig struct {
	MaxLength int      `koanf:"max_length"`
	Reserved  []string `koanf:"reserved"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogFormat:   logging.FormatText,
		LogLevel:    "info",
		Cooldown:    cooldown.DefaultWindow,
		SaveRetries: registry.DefaultSaveRetries,
		Nickname: NicknameConfig{
			MaxLength: registry.DefaultMaxNicknameLength,
		},
	}
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"data-dir":         "data_dir",
	"log-format":       "log_format",
	"log-level":        "log_level",
	"metrics-addr":     "metrics_addr",
	"cooldown":         "cooldown",
	"save-retries":     "save_retries",
	"max-nickname-len": "nickname.max_length",
	"reserved":         "nickname.reserved",
	"operator":         "operators",
}

// RegisterFlags adds the configuration flags to fs with defaults from
// Default().
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("data-dir", "", "data directory (default: XDG_DATA_HOME/holonick)")
	flags.String("log-format", d.LogFormat, "log format (json or text)")
	flags.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	flags.Duration("cooldown", d.Cooldown, "minimum time between changes of the same kind (must be positive)")
	flags.Uint64("save-retries", d.SaveRetries, "extra attempts when saving a data file fails")
	flags.Int("max-nickname-len", d.Nickname.MaxLength, "maximum nickname length in characters")
	flags.StringSlice("reserved", nil, "reserved nickname glob pattern (repeatable)")
	flags.StringSlice("operator", nil, "user allowed to rename others (repeatable)")
}

// Load resolves configuration. Values come from defaults, then the YAML file
// at path (a missing file is ignored when optional is true), then flags the
// user set explicitly.
func Load(path string, optional bool, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" && !(optional && missing(path)) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code(CodeInvalidConfig).
				With("path", path).
				Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code(CodeInvalidConfig).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code(CodeInvalidConfig).Wrapf(err, "decode config")
	}
	cfg.Operators = trimAll(cfg.Operators)
	cfg.Nickname.Reserved = trimAll(cfg.Nickname.Reserved)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if !logging.ValidFormat(c.LogFormat) {
		return invalid("log_format", c.LogFormat, "log_format must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", c.LogLevel, "log_level must be debug, info, warn or error")
	}
	if c.Cooldown <= 0 {
		return invalid("cooldown", c.Cooldown, "cooldown must be positive")
	}
	if c.Nickname.MaxLength <= 0 {
		return invalid("nickname.max_length", c.Nickname.MaxLength, "nickname.max_length must be positive")
	}
	return nil
}

// RegistryOptions translates the configuration into registry options.
func (c Config) RegistryOptions() []registry.Option {
	return []registry.Option{
		registry.WithCooldownWindow(c.Cooldown),
		registry.WithMaxNicknameLength(c.Nickname.MaxLength),
		registry.WithReservedNicknames(c.Nickname.Reserved...),
		registry.WithSaveRetries(c.SaveRetries, registry.DefaultSaveBackoff),
	}
}

func missing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

func invalid(key string, value any, msg string) error {
	return oops.Code(CodeInvalidConfig).
		With("key", key).
		With("value", value).
		Errorf("%s", msg)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
