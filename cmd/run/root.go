package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-codecs/codec"
	"github.com/wippyai/wasm-codecs/engine"
	"github.com/wippyai/wasm-codecs/internal/config"
	"github.com/wippyai/wasm-codecs/internal/i18n"
	"github.com/wippyai/wasm-codecs/loader"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	locale  string
	output  string

	cfg     config.Config
	log     *zap.Logger
	p       *i18n.Printer
	eng     *engine.WazeroEngine
	reg     *prometheus.Registry
	metrics *loader.Metrics
	loader  *loader.Loader
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "codecs",
		Short:         "Load and exercise compression codec modules",
		Long:          `codecs loads native and WebAssembly compression modules, reports their load state and runs compress/decompress calls against them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/wasm-codecs/config.yaml)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "message locale: "+localeNames()+" (default from config)")
	root.PersistentFlags().StringVar(&a.output, "output", "table", "output format: table or json")

	root.AddCommand(
		newStatusCmd(a),
		newCompressCmd(a),
		newDecompressCmd(a),
		newSelfTestCmd(a),
		newReloadCmd(a),
		newMetricsCmd(a),
	)
	addDebugCommands(root, a)
	return root, a
}

// execute runs root and releases whatever setup acquired, also when the
// command fails.
func (a *app) execute(ctx context.Context, root *cobra.Command) (err error) {
	defer func() {
		if terr := a.teardown(context.WithoutCancel(ctx)); err == nil {
			err = terr
		}
	}()
	return root.ExecuteContext(ctx)
}

func (a *app) setup(ctx context.Context) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.locale != "" {
		cfg.Locale = a.locale
	}
	a.cfg = cfg
	a.p = i18n.New(cfg.Locale)

	a.log, err = newLogger(cfg.Log)
	if err != nil {
		return err
	}
	engine.SetLogger(a.log.Named("engine"))

	a.eng, err = engine.NewWazeroEngineWithConfig(ctx, &engine.Config{
		MemoryLimitPages: cfg.WASM.MemoryLimitPages,
		EnableWASI:       cfg.WASM.EnableWASI,
	})
	if err != nil {
		return err
	}

	a.reg = prometheus.NewRegistry()
	a.metrics = loader.NewMetrics(a.reg)
	a.loader = loader.New(
		loader.WithLogger(a.log.Named("loader")),
		loader.WithLoadTimeout(cfg.LoadTimeout),
		loader.WithMetrics(a.metrics),
	)
	return registerModules(a.loader, a.eng, cfg)
}

func (a *app) teardown(ctx context.Context) error {
	var firstErr error
	if a.loader != nil {
		firstErr = a.loader.Close(ctx)
	}
	if a.eng != nil {
		if err := a.eng.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return firstErr
}

func localeNames() string {
	tags := i18n.Supported()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// registerModules adds every configured module to l.
func registerModules(l *loader.Loader, eng *engine.WazeroEngine, cfg config.Config) error {
	fallback := codec.ChainSource(codec.DirSource(cfg.WASM.ModuleDir), codec.BuiltinSource())

	for _, m := range cfg.Modules {
		opts := []loader.ModuleOption{loader.WithLevel(m.Level), loader.WithKind(m.Kind)}

		switch m.Kind {
		case config.KindNative:
			open, _ := codec.Builtin(m.CodecName())
			opts = append(opts, loader.WithSource(m.CodecName()))
			if err := l.Register(m.Name, open, opts...); err != nil {
				return err
			}

		case config.KindWASM:
			src, origin := fallback, "builtin"
			if cfg.WASM.ModuleDir != "" {
				origin = filepath.Join(cfg.WASM.ModuleDir, m.Name+".wasm") + ", builtin"
			}
			if m.Path != "" {
				path := m.Path
				src = codec.SourceFunc(func(string) ([]byte, error) { return os.ReadFile(path) })
				origin = path
			}
			opts = append(opts, loader.WithSource(origin))
			if err := l.Register(m.Name, codec.WASMOpener(eng, m.Name, src), opts...); err != nil {
				return err
			}
		}
	}
	return nil
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debugBuild {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	if debugBuild && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = lc.Format
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}
