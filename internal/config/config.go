package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-codecs/codec"
	"github.com/wippyai/wasm-codecs/errors"
)

// Module kinds
const (
	KindNative = "native"
	KindWASM   = "wasm"
)

// Config holds application configuration.
type Config struct {
	Locale      string         `mapstructure:"locale"`
	Log         LogConfig      `mapstructure:"log"`
	LoadTimeout time.Duration  `mapstructure:"load_timeout"`
	WASM        WASMConfig     `mapstructure:"wasm"`
	Modules     []ModuleConfig `mapstructure:"modules"`
}

// LogConfig holds zap settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// WASMConfig holds engine settings.
type WASMConfig struct {
	ModuleDir        string `mapstructure:"module_dir"`
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages"`
	EnableWASI       bool   `mapstructure:"enable_wasi"` // link wasi_snapshot_preview1 imports
}

// ModuleConfig describes one codec module to register.
type ModuleConfig struct {
	Name  string `mapstructure:"name"`
	Kind  string `mapstructure:"kind"`
	Codec string `mapstructure:"codec"` // native codec name, defaults to Name
	Path  string `mapstructure:"path"`  // wasm binary, defaults to <module_dir>/<name>.wasm
	Level int    `mapstructure:"level"`
}

// CodecName returns the native codec this module uses.
func (m ModuleConfig) CodecName() string {
	if m.Codec != "" {
		return m.Codec
	}
	return m.Name
}

// DefaultModules are registered when the configuration lists none.
func DefaultModules() []ModuleConfig {
	return []ModuleConfig{
		{Name: codec.Zstd, Kind: KindNative, Level: 10},
		{Name: codec.Snappy, Kind: KindNative},
		{Name: codec.LZ4, Kind: KindNative},
		{Name: codec.Brotli, Kind: KindNative},
		{Name: codec.Store, Kind: KindWASM},
	}
}

// Load reads configuration from path, or from $WASMCODECS_CONFIG, or from
// ~/.config/wasm-codecs/config.yaml, and applies WASMCODECS_ env overrides.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("locale", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("load_timeout", "30s")
	v.SetDefault("wasm.module_dir", "")
	v.SetDefault("wasm.memory_limit_pages", 0)
	v.SetDefault("wasm.enable_wasi", false)

	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv("WASMCODECS_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "wasm-codecs"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WASMCODECS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "unmarshal config")
	}
	if len(c.Modules) == 0 {
		c.Modules = DefaultModules()
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks module definitions and log settings.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Log.Level).
			Cause(err).
			Detail("log.level").
			Build()
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Log.Format).
			Detail("log.format must be console or json, got %q", c.Log.Format).
			Build()
	}
	if c.LoadTimeout < 0 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("load_timeout %s is negative", c.LoadTimeout))
	}

	seen := make(map[string]bool, len(c.Modules))
	for i, m := range c.Modules {
		if m.Name == "" {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("modules[%d]: name is empty", i))
		}
		if seen[m.Name] {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Module(m.Name).
				Detail("duplicate module").
				Build()
		}
		seen[m.Name] = true

		switch m.Kind {
		case KindNative:
			if _, ok := codec.Builtin(m.CodecName()); !ok {
				err := errors.Unsupported(errors.PhaseConfig,
					fmt.Sprintf("unknown native codec %q (have %s)", m.CodecName(), strings.Join(codec.BuiltinNames(), ", ")))
				err.Module = m.Name
				return err
			}
		case KindWASM:
		default:
			err := errors.Unsupported(errors.PhaseConfig, fmt.Sprintf("unknown kind %q", m.Kind))
			err.Module = m.Name
			return err
		}
	}
	return nil
}
