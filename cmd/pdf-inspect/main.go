// Command pdf-inspect reports on one page of a PDF: text layer presence,
// the first words with coordinates, the column split and a garble score.
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wudi/recipekit/cliutil"
	"github.com/wudi/recipekit/extractor"
)

func main() {
	var split float64
	cmd, app := cliutil.NewCommand("pdf-inspect [flags] <pdf> [page]", "Show text layer diagnostics for one PDF page",
		cobra.RangeArgs(1, 2), func(_ context.Context, app *cliutil.App, args []string) error {
			page := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return cliutil.Usagef("page must be a positive number, got %q", args[1])
				}
				page = n
			}
			if split <= 0 {
				split = app.Config.Cookbook.ColumnSplit
			}
			report, err := extractor.Inspect(args[0], page-1, split)
			if err != nil {
				return err
			}
			return write(app.Out, report)
		})
	cmd.Flags().Float64Var(&split, "split", 0, "column split x coordinate (default from config)")
	cliutil.Main(cmd, app)
}

func write(w io.Writer, r extractor.Report) error {
	fmt.Fprintf(w, "file:        %s\n", r.Path)
	fmt.Fprintf(w, "page:        %d of %d\n", r.Page+1, r.Pages)
	fmt.Fprintf(w, "size:        %.0f x %.0f pt\n", r.Width, r.Height)
	fmt.Fprintf(w, "text layer:  %t (%d glyphs)\n", r.HasTextLayer, r.GlyphCount)
	fmt.Fprintf(w, "garble:      %.2f\n", r.GarbleScore)
	if len(r.FirstWords) > 0 {
		fmt.Fprintln(w, "first words:")
		for _, word := range r.FirstWords {
			fmt.Fprintf(w, "  %7.1f %7.1f  %s\n", word.X0, word.Top, word.Text)
		}
	}
	fmt.Fprintf(w, "\n--- left column ---\n%s\n", r.Columns.Left)
	_, err := fmt.Fprintf(w, "\n--- right column ---\n%s\n", r.Columns.Right)
	return err
}
