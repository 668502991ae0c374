// Package browser drives a real Chrome profile through chromedp: loading
// recipe pages, sending the cookbook extension's shortcut, and scraping.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/wudi/recipekit/config"
	"github.com/wudi/recipekit/observability"
)

type Options struct {
	// UserDataDir and Profile select an existing Chrome profile so the
	// installed extensions and logins are available.
	UserDataDir     string
	Profile         string
	Headless        bool
	PageLoadTimeout time.Duration
}

func OptionsFrom(c config.BrowserConfig) Options {
	return Options{
		UserDataDir:     c.UserDataDir,
		Profile:         c.Profile,
		Headless:        c.Headless,
		PageLoadTimeout: c.PageLoadTimeout.Duration,
	}
}

// allocatorOptions keeps extensions enabled and hides the automation
// banner, which the cookbook extension refuses to run under.
func allocatorOptions(o Options) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-extensions", false),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if o.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(o.UserDataDir))
	}
	if o.Profile != "" {
		opts = append(opts, chromedp.Flag("profile-directory", o.Profile))
	}
	return opts
}

// Session is one running browser with a single tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	log         observability.Logger
}

// Start launches Chrome. The browser lives until Close or until ctx ends.
func Start(ctx context.Context, opts Options, log observability.Logger) (*Session, error) {
	log = observability.OrNop(log)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	bctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	log.Info("browser started", observability.String("profile", opts.Profile), observability.Bool("headless", opts.Headless))
	return &Session{ctx: bctx, cancel: cancel, allocCancel: allocCancel, opts: opts, log: log}, nil
}

func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// Run executes actions in the tab. It stops when ctx ends or after
// timeout, when timeout is positive.
func (s *Session) Run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		tctx   context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		tctx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		tctx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tctx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Open loads url and waits for the document to finish loading.
func (s *Session) Open(ctx context.Context, url string) error {
	var state string
	err := s.Run(ctx, s.opts.PageLoadTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete" ? "complete" : ""`, &state),
	)
	if err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

// Press sends the shortcut to the focused tab.
func (s *Session) Press(ctx context.Context, sc Shortcut) error {
	mods, err := sc.Modifiers()
	if err != nil {
		return err
	}
	return s.Run(ctx, 0, chromedp.KeyEvent(sc.Key, chromedp.KeyModifiers(mods...)))
}

func (s *Session) PressEnter(ctx context.Context) error {
	return s.Run(ctx, 0, chromedp.KeyEvent(kb.Enter))
}

// HTML returns the current document's markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.Run(ctx, s.opts.PageLoadTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Shortcut is a modifier+Shift+key chord such as Cmd+Shift+A.
type Shortcut struct {
	// Modifier is "meta" (macOS Cmd) or "ctrl".
	Modifier string
	Key      string
}

func ShortcutFrom(c config.BrowserConfig) Shortcut {
	return Shortcut{Modifier: c.ShortcutModifier, Key: c.ShortcutKey}
}

// Modifiers returns the CDP modifiers for the chord, Shift included.
func (sc Shortcut) Modifiers() ([]input.Modifier, error) {
	switch strings.ToLower(strings.TrimSpace(sc.Modifier)) {
	case "meta", "cmd", "command":
		return []input.Modifier{input.ModifierMeta, input.ModifierShift}, nil
	case "ctrl", "control":
		return []input.Modifier{input.ModifierCtrl, input.ModifierShift}, nil
	}
	return nil, fmt.Errorf("unknown shortcut modifier %q", sc.Modifier)
}

func (sc Shortcut) String() string {
	name := "Cmd"
	if m := strings.ToLower(sc.Modifier); m == "ctrl" || m == "control" {
		name = "Ctrl"
	}
	return name + "+Shift+" + strings.ToUpper(sc.Key)
}

// Wait sleeps for d or until ctx ends.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
