// Command scrape-anylist collects every recipe title and source URL from an
// AnyList account into a CSV.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/browser"
	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/scraper"
	"github.com/wudi/recipekit/spreadsheet"
)

type options struct {
	out      string
	email    string
	headless bool
}

func main() {
	var opts options
	cmd, app := cliutil.NewCommand("scrape-anylist [flags]", "Export recipe titles and source links from AnyList",
		cobra.NoArgs, func(ctx context.Context, app *cliutil.App, _ []string) error {
			return run(ctx, app, opts)
		})
	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", "", "output CSV (default <output dir>/"+scraper.OutputName+")")
	flags.StringVar(&opts.email, "email", "", "AnyList account email (default from config; password from RECIPEKIT_ANYLIST_PASSWORD)")
	flags.BoolVar(&opts.headless, "headless", false, "run Chrome without a window")
	cliutil.Main(cmd, app)
}

func run(ctx context.Context, app *cliutil.App, opts options) error {
	cfg := app.Config
	if opts.email != "" {
		cfg.AnyList.Email = opts.email
	}
	out := opts.out
	if out == "" {
		out = filepath.Join(app.OutputDir(""), scraper.OutputName)
	}
	bopts := browser.OptionsFrom(cfg.Browser)
	bopts.Headless = bopts.Headless || opts.headless
	// A separate browser profile keeps the scrape away from the user's tabs.
	bopts.UserDataDir, bopts.Profile = "", ""

	session, err := browser.Start(ctx, bopts, app.Log)
	if err != nil {
		return err
	}
	defer session.Close()

	confirm := func(ctx context.Context) error {
		fmt.Fprintln(app.Out, "Close any popups in the browser, then press Enter to continue...")
		return waitForEnter(ctx)
	}
	rows, err := scraper.Scrape(ctx, scraper.NewAnyList(session, cfg.AnyList, app.Log), confirm, app.Log)
	if len(rows) > 0 {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if werr := spreadsheet.WriteCSV(out, scraper.Table(rows)); werr != nil {
			return werr
		}
		app.Log.Info("wrote", observability.String(observability.KeyPath, out), observability.Int(observability.KeyCount, len(rows)))
	}
	return err
}

// waitForEnter reads one line from stdin, giving up when ctx ends.
func waitForEnter(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
