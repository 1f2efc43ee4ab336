package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-codecs/loader"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load all modules and show their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.loader.Initialize(cmd.Context())
			return writeStatus(cmd.OutOrStdout(), a.p, a.output, a.loader.Snapshot())
		},
	}
}

type transformFlags struct {
	module string
	in     string
	out    string
	level  int
}

func (f *transformFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.module, "module", "m", "", "module to use (required)")
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("module")
}

func (f *transformFlags) read(cmd *cobra.Command) ([]byte, error) {
	if f.in == "" || f.in == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(f.in)
}

func (f *transformFlags) write(cmd *cobra.Command, data []byte) error {
	if f.out == "" || f.out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(f.out, data, 0o644)
}

// ready initializes the loader and reports a localized error when name did
// not come up.
func (a *app) ready(cmd *cobra.Command, name string) error {
	a.loader.Initialize(cmd.Context())
	st, ok := a.loader.Status(name)
	if !ok || st.Ready() {
		return nil
	}
	msg := a.p.T("module.not_loaded", displayName(name))
	if st.Err != nil {
		return fmt.Errorf("%s: %w", msg, st.Err)
	}
	return fmt.Errorf("%s", msg)
}

func newCompressCmd(a *app) *cobra.Command {
	f := &transformFlags{}
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Compress stdin or a file with a module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := f.read(cmd)
			if err != nil {
				return err
			}
			if err := a.ready(cmd, f.module); err != nil {
				return err
			}

			var out []byte
			if cmd.Flags().Changed("level") {
				out, err = a.loader.CompressLevel(cmd.Context(), f.module, data, f.level)
			} else {
				out, err = a.loader.Compress(cmd.Context(), f.module, data)
			}
			if err != nil {
				return err
			}
			return f.write(cmd, out)
		},
	}
	f.bind(cmd)
	cmd.Flags().IntVarP(&f.level, "level", "l", 0, "compression level (default from module config)")
	return cmd
}

func newDecompressCmd(a *app) *cobra.Command {
	f := &transformFlags{}
	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "Decompress stdin or a file with a module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := f.read(cmd)
			if err != nil {
				return err
			}
			if err := a.ready(cmd, f.module); err != nil {
				return err
			}
			out, err := a.loader.Decompress(cmd.Context(), f.module, data)
			if err != nil {
				return err
			}
			return f.write(cmd, out)
		},
	}
	f.bind(cmd)
	return cmd
}

func newSelfTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest [module...]",
		Short: "Round-trip a sample through each module",
		Long:  `selftest compresses a short sample with each module, decompresses it and checks the result. "Hello ZSTD!" is used for zstd, "Hello Snappy!" for snappy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			a.loader.Initialize(ctx)
			names := args
			if len(names) == 0 {
				names = a.loader.Names()
			}

			passed := 0
			for _, name := range names {
				line, ok := a.selfTestLine(ctx, name, nil)
				if ok {
					passed++
				}
				fmt.Fprintln(w, line)
			}

			summary := a.p.T("selftest.summary", passed, len(names))
			if passed != len(names) {
				return fmt.Errorf("%s", summary)
			}
			fmt.Fprintln(w, summary)
			return nil
		},
	}
}

// selfTestLine runs one self-test and renders its localized outcome. A nil
// sample uses the module's default.
func (a *app) selfTestLine(ctx context.Context, name string, sample []byte) (string, bool) {
	display := displayName(name)

	st, ok := a.loader.Status(name)
	if !ok {
		return a.p.T("selftest.fail", display, fmt.Errorf("unknown module %q", name)), false
	}
	if !st.Ready() {
		return a.p.T("module.not_loaded", display), false
	}

	res, err := a.loader.SelfTest(ctx, name, sample)
	if err != nil {
		return a.p.T("selftest.fail", display, err), false
	}
	return a.p.T("selftest.ok", display, string(res.Original), res.Compressed, string(res.Decompressed)), true
}

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Load all modules, force a reload and show the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			a.loader.Initialize(ctx)
			fmt.Fprintln(w, a.p.T("reload.start", len(a.loader.Names())))
			a.loader.ForceReload(ctx)

			snap := a.loader.Snapshot()
			ready, failed := countStates(snap)
			fmt.Fprintln(w, a.p.T("reload.done", ready, failed))
			return writeStatus(w, a.p, a.output, snap)
		},
	}
}

func countStates(snap []loader.Status) (ready, failed int) {
	for _, st := range snap {
		switch st.State {
		case loader.Ready:
			ready++
		case loader.Failed:
			failed++
		}
	}
	return ready, failed
}

func newMetricsCmd(a *app) *cobra.Command {
	var selftest bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Load all modules and print Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.loader.Initialize(ctx)
			if selftest {
				for _, name := range a.loader.Names() {
					_, _ = a.loader.SelfTest(ctx, name, nil)
				}
			}

			families, err := a.reg.Gather()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&selftest, "selftest", false, "run a self-test per module before printing")
	return cmd
}
