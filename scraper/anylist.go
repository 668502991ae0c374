package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/wudi/recipekit/browser"
	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/observability"
)

// App is the sequence of views the scraper walks through.
type App interface {
	Login(ctx context.Context) error
	OpenAllRecipes(ctx context.Context) error
	// LoadAll scrolls until the list stops growing.
	LoadAll(ctx context.Context) error
	ListHTML(ctx context.Context) (string, error)
	// OpenCell opens the i-th recipe row and returns the detail markup.
	OpenCell(ctx context.Context, i int) (string, error)
	Back(ctx context.Context) error
}

// Confirm blocks until the operator is ready, e.g. after closing popups.
type Confirm func(ctx context.Context) error

const (
	clickTimeout = 10 * time.Second
	maxScrolls   = 500
	navPause     = 2 * time.Second
)

// Scrape collects every recipe row and its source link. A row whose
// detail page fails is recorded with an "Error: " marker and the scrape
// continues.
func Scrape(ctx context.Context, app App, confirm Confirm, log observability.Logger) ([]Row, error) {
	log = observability.OrNop(log)
	if err := app.Login(ctx); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if confirm != nil {
		if err := confirm(ctx); err != nil {
			return nil, err
		}
	}
	if err := app.OpenAllRecipes(ctx); err != nil {
		return nil, fmt.Errorf("open all recipes: %w", err)
	}
	if err := app.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("load recipe list: %w", err)
	}
	markup, err := app.ListHTML(ctx)
	if err != nil {
		return nil, err
	}
	cells, err := ParseCells(markup)
	if err != nil {
		return nil, err
	}
	log.Info("found recipes", observability.Int(observability.KeyCount, len(cells)))

	rows := make([]Row, 0, len(cells))
	for _, c := range cells {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		rl := log.With(observability.String(observability.KeyTitle, c.Title), observability.Int("index", c.Index+1))
		row := Row{Title: c.Title}
		detail, err := app.OpenCell(ctx, c.Index)
		switch {
		case err != nil:
			row.SourceURL = ErrorPrefix + err.Error()
			rl.Warn("could not open recipe", observability.Err(err))
		default:
			if u, ok := SourceLink(detail); ok {
				row.SourceURL = u
				rl.Info("source found", observability.String(observability.KeySource, u))
			} else {
				row.SourceURL = NoURL
				rl.Warn("no source link")
			}
		}
		rows = append(rows, row)
		if err := app.Back(ctx); err != nil {
			rl.Warn("could not return to the list", observability.Err(err))
		}
	}
	return rows, nil
}

// AnyList drives the AnyList web app in a browser session.
type AnyList struct {
	s   *browser.Session
	cfg config.AnyListConfig
	log observability.Logger
}

func NewAnyList(s *browser.Session, cfg config.AnyListConfig, log observability.Logger) *AnyList {
	return &AnyList{s: s, cfg: cfg, log: observability.OrNop(log)}
}

// Login signs in with the configured credentials. Without an email the
// page is only opened so the operator can sign in by hand.
func (a *AnyList) Login(ctx context.Context) error {
	if err := a.s.Open(ctx, a.cfg.URL); err != nil {
		return err
	}
	if a.cfg.Email == "" {
		return nil
	}
	a.log.Info("signing in", observability.String("email", a.cfg.Email))
	err := a.s.Run(ctx, clickTimeout,
		chromedp.WaitVisible("#sign_in_email", chromedp.ByQuery),
		chromedp.SendKeys("#sign_in_email", a.cfg.Email, chromedp.ByQuery),
		chromedp.SendKeys("#sign_in_pw", a.cfg.Password, chromedp.ByQuery),
		chromedp.Click(`//button[@type='submit']`, chromedp.BySearch),
	)
	if err != nil {
		return err
	}
	return browser.Wait(ctx, a.cfg.PageLoadWait.Duration)
}

func (a *AnyList) OpenAllRecipes(ctx context.Context) error {
	if err := a.s.Run(ctx, clickTimeout, chromedp.Click(`//div[contains(text(), 'Recipes')]`, chromedp.BySearch)); err != nil {
		return err
	}
	if err := browser.Wait(ctx, navPause); err != nil {
		return err
	}
	// The "All" entry is absent when the list already shows every recipe.
	if err := a.s.Run(ctx, 3*time.Second, chromedp.Click(`//div[contains(text(), 'All')]`, chromedp.BySearch)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Debug("no All Recipes entry", observability.Err(err))
		return nil
	}
	return browser.Wait(ctx, navPause)
}

func (a *AnyList) LoadAll(ctx context.Context) error {
	var last int64
	for i := 0; i < maxScrolls; i++ {
		var height int64
		err := a.s.Run(ctx, clickTimeout, chromedp.Evaluate(
			`window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`, &height))
		if err != nil {
			return err
		}
		if err := browser.Wait(ctx, a.cfg.ScrollPause.Duration); err != nil {
			return err
		}
		if height == last {
			a.log.Debug("finished scrolling", observability.Int("scrolls", i+1))
			return nil
		}
		last = height
	}
	a.log.Warn("stopped scrolling before the list ended", observability.Int("scrolls", maxScrolls))
	return nil
}

func (a *AnyList) ListHTML(ctx context.Context) (string, error) {
	return a.s.HTML(ctx)
}

const clickCellJS = `(function(i) {
	var cells = Array.prototype.filter.call(document.querySelectorAll("div.ALTableCell"),
		function(c) { return c.querySelector("div.ALTableCellImage") !== null; });
	if (i >= cells.length) { return false; }
	cells[i].click();
	return true;
})(%d)`

func (a *AnyList) OpenCell(ctx context.Context, i int) (string, error) {
	var clicked bool
	if err := a.s.Run(ctx, clickTimeout, chromedp.Evaluate(fmt.Sprintf(clickCellJS, i), &clicked)); err != nil {
		return "", err
	}
	if !clicked {
		return "", fmt.Errorf("recipe row %d is no longer in the list", i+1)
	}
	if err := browser.Wait(ctx, a.cfg.PageLoadWait.Duration); err != nil {
		return "", err
	}
	return a.s.HTML(ctx)
}

func (a *AnyList) Back(ctx context.Context) error {
	if err := a.s.Run(ctx, clickTimeout, chromedp.NavigateBack()); err != nil {
		return err
	}
	return browser.Wait(ctx, navPause)
}
