// Package cli wires configuration, logging, the dispatcher and the watcher
// behind the imgpad command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/imgpad/config"
	"github.com/nvr-ai/imgpad/dispatcher"
	"github.com/nvr-ai/imgpad/fitter"
	"github.com/nvr-ai/imgpad/images"
	"github.com/nvr-ai/imgpad/watcher"
)

// Execute runs the command with the process arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes the command with args and returns the process exit code: 0 on
// success, 1 on fatal errors. Logs and errors go to stderr.
func Run(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(normalizeSizeArgs(args))
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	configPath string
	output     string
	size       []int
	preset     string
	filter     string
	background string
	workers    int
	strict     bool
	watch      bool
	logLevel   string
	debug      bool
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "imgpad <folder_path>",
		Short: "Pad every image in a folder onto a fixed-size canvas",
		Long: "imgpad scales each .png, .jpg and .jpeg image in a folder to fit a fixed canvas,\n" +
			"keeps its aspect ratio, centers it on a white background and writes a PNG.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, f, args[0])
			if err != nil {
				return err
			}

			level, _ := cfg.Level()
			logger := newLogger(stderr, level, f.debug).With("run", uuid.NewString())

			return execute(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "YAML file with default settings; flags override it")
	flags.StringVarP(&f.output, "output_folder", "o", "", "Output folder (default: 'output' subfolder within the input folder)")
	flags.IntSliceVarP(&f.size, "size", "s", []int{images.DefaultCanvas.Width, images.DefaultCanvas.Height}, "Final dimensions: WIDTH HEIGHT")
	flags.StringVar(&f.preset, "preset", "", "Named canvas size: "+presetNames())
	flags.StringVar(&f.filter, "filter", string(images.DefaultFilter), "Resampling filter: "+strings.Join(images.FilterNames(), ", "))
	flags.StringVar(&f.background, "background", "#ffffff", "Canvas background color as hex")
	flags.IntVar(&f.workers, "workers", 1, "Number of images processed concurrently")
	flags.BoolVar(&f.strict, "strict", false, "Exit non-zero when any image fails")
	flags.BoolVar(&f.watch, "watch", false, "Keep watching the input folder for new images")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.BoolVar(&f.debug, "debug", false, "Verbose logging with source locations")

	return cmd
}

// buildConfig layers defaults, the optional YAML file and the flags that were
// set explicitly, in that order.
func buildConfig(cmd *cobra.Command, f rootFlags, input string) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.Input = input

	flags := cmd.Flags()
	if flags.Changed("output_folder") {
		cfg.Output = f.output
	}
	if flags.Changed("preset") {
		cfg.Preset = f.preset
		cfg.Size = nil
	}
	if flags.Changed("size") {
		if len(f.size) != 2 {
			return cfg, errors.Wrapf(config.ErrInvalid, "--size needs WIDTH HEIGHT, got %d value(s)", len(f.size))
		}
		cfg.Size = &images.CanvasSize{Width: f.size[0], Height: f.size[1]}
	}
	if flags.Changed("filter") {
		cfg.Filter = f.filter
	}
	if flags.Changed("background") {
		cfg.Background = f.background
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("watch") {
		cfg.Watch = f.watch
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// execute runs one pass over the folder and, in watch mode, keeps handling
// new images until ctx is cancelled.
func execute(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	fopts, err := cfg.FitterOptions()
	if err != nil {
		return err
	}
	f, err := fitter.New(fopts, logger)
	if err != nil {
		return err
	}

	d := dispatcher.New(f, logger)
	opts := cfg.DispatchOptions()

	logger.Info("processing folder", "input", opts.InputDir, "output", opts.OutputDir,
		"canvas", fopts.Canvas.String(), "filter", fopts.Filter, "workers", opts.Workers)

	summary, err := d.Run(ctx, opts)
	if summary != nil {
		logger.Info("Image processing complete.",
			"found", summary.Found,
			"processed", summary.Processed,
			"failed", len(summary.Failures),
			"skipped", summary.Skipped,
			"elapsed", summary.Elapsed.Round(time.Millisecond).String())
	}
	if err != nil {
		return err
	}

	if !cfg.Watch {
		return nil
	}

	w := watcher.New(opts.InputDir, watcher.DefaultDebounce, logger)
	return w.Run(ctx, func(ctx context.Context, path string) {
		// Failures are logged by the dispatcher.
		_, _ = d.ProcessFile(ctx, opts, path)
	})
}

func presetNames() string {
	all := images.Presets()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, string(p.Name))
	}
	return strings.Join(names, ", ")
}
