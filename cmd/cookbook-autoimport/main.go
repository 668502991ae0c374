// Command cookbook-autoimport opens each recipe URL from a list in Chrome and
// saves it through the cookbook app's browser extension.
package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/browser"
	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/diff"
	"github.com/wudi/recipekit/importer"
	"github.com/wudi/recipekit/journal"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
)

type options struct {
	dryRun      bool
	force       bool
	stopOnError bool
	noJournal   bool
	headless    bool
	profile     string
	userDataDir string
	modifier    string
}

func main() {
	var opts options
	cmd, app := cliutil.NewCommand("cookbook-autoimport [flags] <urls.csv|xlsx>", "Save recipe URLs through the cookbook browser extension",
		cobra.ExactArgs(1), func(ctx context.Context, app *cliutil.App, args []string) error {
			return run(ctx, app, opts, args[0])
		})
	flags := cmd.Flags()
	flags.BoolVar(&opts.dryRun, "dry-run", false, "list what would be imported without opening Chrome")
	flags.BoolVar(&opts.force, "force", false, "import URLs the journal marks as done")
	flags.BoolVar(&opts.stopOnError, "stop-on-error", false, "abort at the first failed import")
	flags.BoolVar(&opts.noJournal, "no-journal", false, "do not read or write the journal")
	flags.BoolVar(&opts.headless, "headless", false, "run Chrome without a window")
	flags.StringVar(&opts.profile, "profile", "", "Chrome profile directory name (default from config)")
	flags.StringVar(&opts.userDataDir, "user-data-dir", "", "Chrome user data directory (default from config)")
	flags.StringVar(&opts.modifier, "modifier", "", "extension shortcut modifier: meta or ctrl (default from config)")
	cliutil.Main(cmd, app)
}

func run(ctx context.Context, app *cliutil.App, opts options, input string) error {
	cfg := app.Config
	bc := cfg.Browser
	bc.Headless = bc.Headless || opts.headless
	if opts.profile != "" {
		bc.Profile = opts.profile
	}
	if opts.userDataDir != "" {
		bc.UserDataDir = opts.userDataDir
	}
	if opts.modifier != "" {
		bc.ShortcutModifier = opts.modifier
	}
	if _, err := browser.ShortcutFrom(bc).Modifiers(); err != nil {
		return cliutil.UsageError{Err: err}
	}

	entries, err := diff.Load(input, app.Log)
	if err != nil {
		return err
	}
	records := diff.Records(entries)
	app.Log.Info("loaded recipe urls", observability.Int(observability.KeyCount, len(records)))

	imOpts := []importer.Option{
		importer.WithLogger(app.Log),
		importer.WithDryRun(opts.dryRun),
		importer.WithForce(opts.force),
		importer.WithStopOnError(opts.stopOnError || cfg.Importer.StopOnError),
		importer.WithPause(bc.BetweenRecipes.Duration),
	}
	if !opts.noJournal && !cfg.Journal.Disabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		imOpts = append(imOpts, importer.WithJournal(j))
	}

	var creator importer.Creator
	if opts.dryRun {
		creator = importer.CreatorFunc(func(context.Context, recipe.Record) error { return nil })
	} else {
		session, err := browser.Start(ctx, browser.OptionsFrom(bc), app.Log)
		if err != nil {
			return err
		}
		defer session.Close()
		creator = browser.NewExtensionImporter(session, bc, app.Log)
	}

	summary, runErr := importer.New(creator, imOpts...).Run(ctx, records)
	app.Log.Info("auto-import finished",
		observability.Int("total", summary.Total),
		observability.Int("imported", summary.Created),
		observability.Int("skipped", summary.Skipped),
		observability.Int("failed", summary.Failed),
		observability.Int("planned", summary.Planned))
	return runErr
}
