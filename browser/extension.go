package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
)

// ErrNoURL is returned for records without a source URL.
var ErrNoURL = errors.New("recipe has no source url")

// Page is the browser surface the extension importer needs.
type Page interface {
	Open(ctx context.Context, url string) error
	Press(ctx context.Context, sc Shortcut) error
	PressEnter(ctx context.Context) error
}

// ExtensionImporter saves recipes through the cookbook app's browser
// extension: load the page, open the extension with its shortcut, and
// confirm the save with Enter. It satisfies importer.Creator.
type ExtensionImporter struct {
	page          Page
	shortcut      Shortcut
	extensionWait time.Duration
	saveWait      time.Duration
	log           observability.Logger
}

func NewExtensionImporter(page Page, cfg config.BrowserConfig, log observability.Logger) *ExtensionImporter {
	return &ExtensionImporter{
		page:          page,
		shortcut:      ShortcutFrom(cfg),
		extensionWait: cfg.ExtensionWait.Duration,
		saveWait:      cfg.SaveWait.Duration,
		log:           observability.OrNop(log),
	}
}

func (e *ExtensionImporter) CreateRecipe(ctx context.Context, r recipe.Record) error {
	if r.Source == "" {
		return ErrNoURL
	}
	log := e.log.With(observability.String(observability.KeySource, r.Source))

	if err := e.page.Open(ctx, r.Source); err != nil {
		return err
	}
	// The extension needs time to detect the recipe on the page.
	if err := Wait(ctx, e.extensionWait); err != nil {
		return err
	}
	log.Debug("opening extension", observability.String("shortcut", e.shortcut.String()))
	if err := e.page.Press(ctx, e.shortcut); err != nil {
		return fmt.Errorf("send %s: %w", e.shortcut, err)
	}
	if err := Wait(ctx, e.extensionWait); err != nil {
		return err
	}
	if err := e.page.PressEnter(ctx); err != nil {
		return fmt.Errorf("confirm save: %w", err)
	}
	return Wait(ctx, e.saveWait)
}
