// Package cliutil is the shared bootstrap of the recipekit binaries: a
// cobra root command with config loading, a zap-backed logger and a
// signal-cancelled context.
package cliutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/ocr"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// App carries what every command needs once flags are parsed.
type App struct {
	Config *config.Config
	Log    observability.Logger
	// Out is the command's stdout, for reports meant to be read or piped.
	Out    io.Writer

	configPath string
	verbose    bool
	logFormat  string
}

// RunFunc is a command body.
type RunFunc func(ctx context.Context, app *App, args []string) error

// UsageError marks bad invocations; Execute exits with ExitUsage.
type UsageError struct{ Err error }

func (e UsageError) Error() string { return e.Err.Error() }

func (e UsageError) Unwrap() error { return e.Err }

// Usagef builds a UsageError.
func Usagef(format string, args ...interface{}) error {
	return UsageError{Err: fmt.Errorf(format, args...)}
}

// NewCommand builds a root command. args validates positional arguments;
// its failures are usage errors.
func NewCommand(use, short string, args cobra.PositionalArgs, run RunFunc) (*cobra.Command, *App) {
	app := &App{}
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, a []string) error {
			if args == nil {
				return nil
			}
			if err := args(cmd, a); err != nil {
				return UsageError{Err: err}
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, a []string) error {
			app.Out = cmd.OutOrStdout()
			return run(cmd.Context(), app, a)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return UsageError{Err: err} })

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "path to a TOML config file (default ./"+config.DefaultFile+" when present)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVar(&app.logFormat, "log-format", "", "console or json")
	return cmd, app
}

func (a *App) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.Config = cfg
	if a.Log != nil {
		return nil
	}
	log, err := observability.NewZap(observability.ZapConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(stderr, "falling back to silent logging: %v\n", err)
		log = observability.NopLogger{}
	}
	a.Log = log
	return nil
}

// Run executes cmd under a context cancelled by SIGINT or SIGTERM and
// returns the process exit code.
func Run(cmd *cobra.Command, app *App, argv []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetArgs(argv)
	err := cmd.ExecuteContext(ctx)
	if app.Log != nil {
		defer observability.Sync(app.Log)
	}
	return ExitCode(cmd, err)
}

// ExitCode reports err on the command's stderr and maps it to an exit code.
func ExitCode(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cmd.Name(), err)
	var usage UsageError
	if errors.As(err, &usage) {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return ExitUsage
	}
	return ExitFailure
}

// Main runs cmd with the process arguments and exits.
func Main(cmd *cobra.Command, app *App) {
	os.Exit(Run(cmd, app, os.Args[1:]))
}

// OCREngine returns the registered OCR engine behind an LRU cache, so
// identical page renders within one run are recognized once. It
// reports false when OCR is disabled in the config or no engine is
// registered.
func (a *App) OCREngine() (ocr.Engine, bool) {
	engine := ocr.DefaultEngine()
	if !a.Config.OCR.Enabled || !ocr.Available(engine) {
		return engine, false
	}
	if a.Config.OCR.CacheSize > 0 {
		cached, err := ocr.NewCachedEngine(engine, a.Config.OCR.CacheSize)
		if err != nil {
			a.Log.Warn("ocr cache disabled", observability.Err(err))
			return engine, true
		}
		return cached, true
	}
	return engine, true
}

// OutputDir returns flagValue, or the configured output directory.
func (a *App) OutputDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.Config.Output.Dir
}
