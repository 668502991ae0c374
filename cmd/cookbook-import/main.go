// Command cookbook-import bulk-creates recipes from a directory or zip of
// YAML files through a JavaScript plugin that talks to the cookbook app.
package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/importer"
	"github.com/wudi/recipekit/journal"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
	"github.com/wudi/recipekit/scripting"
)

type options struct {
	plugin      string
	pluginOut   string
	journalPath string
	noJournal   bool
	dryRun      bool
	force       bool
	stopOnError bool
}

func main() {
	var opts options
	cmd, app := cliutil.NewCommand("cookbook-import [flags] <dir|zip>", "Create recipes in the cookbook app through an import plugin",
		cobra.ExactArgs(1), func(ctx context.Context, app *cliutil.App, args []string) error {
			return run(ctx, app, opts, args[0])
		})
	flags := cmd.Flags()
	flags.StringVar(&opts.plugin, "plugin", "", "JavaScript plugin defining createRecipe (default from config)")
	flags.StringVar(&opts.pluginOut, "plugin-out", "", "directory the plugin may append files to (default from config)")
	flags.StringVar(&opts.journalPath, "journal", "", "journal database (default from config)")
	flags.BoolVar(&opts.noJournal, "no-journal", false, "do not read or write the journal")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "decode and report without creating anything")
	flags.BoolVar(&opts.force, "force", false, "import records the journal marks as done")
	flags.BoolVar(&opts.stopOnError, "stop-on-error", false, "abort at the first failed create")
	cliutil.Main(cmd, app)
}

func run(ctx context.Context, app *cliutil.App, opts options, input string) error {
	cfg := app.Config
	records, err := importer.Load(input, app.Log)
	if err != nil {
		return err
	}

	var creator importer.Creator = importer.CreatorFunc(func(context.Context, recipe.Record) error {
		return errors.New("no plugin loaded")
	})
	pluginPath := firstNonEmpty(opts.plugin, cfg.Importer.Plugin)
	switch {
	case pluginPath != "":
		outDir := firstNonEmpty(opts.pluginOut, cfg.Importer.PluginOut, app.OutputDir(""))
		plugin, err := scripting.Load(ctx, pluginPath, scripting.WithOutputDir(outDir), scripting.WithLogger(app.Log))
		if err != nil {
			return err
		}
		creator = plugin
	case !opts.dryRun:
		return cliutil.Usagef("--plugin is required unless --dry-run is set")
	}

	imOpts := []importer.Option{
		importer.WithLogger(app.Log),
		importer.WithDryRun(opts.dryRun),
		importer.WithForce(opts.force),
		importer.WithStopOnError(opts.stopOnError || cfg.Importer.StopOnError),
		importer.WithTimeout(cfg.Importer.Timeout.Duration),
	}
	if !opts.noJournal && !cfg.Journal.Disabled {
		j, err := journal.Open(firstNonEmpty(opts.journalPath, cfg.Journal.Path))
		if err != nil {
			return err
		}
		defer j.Close()
		app.Log.Info("journal opened", observability.String("run_id", j.RunID()))
		imOpts = append(imOpts, importer.WithJournal(j))
	}

	summary, runErr := importer.New(creator, imOpts...).Run(ctx, records)
	app.Log.Info("import finished",
		observability.Int("total", summary.Total),
		observability.Int("created", summary.Created),
		observability.Int("skipped", summary.Skipped),
		observability.Int("failed", summary.Failed),
		observability.Int("planned", summary.Planned))
	return runErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
