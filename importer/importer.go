// Package importer drives bulk recipe creation through a Creator, such as
// the app's plugin interface or its browser extension, with a journal that
// makes interrupted runs resumable.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/recipekit/corpus"
	"github.com/wudi/recipekit/journal"
	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
)

// Creator creates one recipe in the target app.
type Creator interface {
	CreateRecipe(ctx context.Context, r recipe.Record) error
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, r recipe.Record) error

func (f CreatorFunc) CreateRecipe(ctx context.Context, r recipe.Record) error { return f(ctx, r) }

// Journal is the subset of *journal.Journal the run loop needs.
type Journal interface {
	Imported(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, e journal.Entry) error
}

type Importer struct {
	creator     Creator
	journal     Journal
	log         observability.Logger
	dryRun      bool
	force       bool
	stopOnError bool
	timeout     time.Duration
	pause       time.Duration
}

type Option func(*Importer)

func WithJournal(j Journal) Option { return func(im *Importer) { im.journal = j } }

func WithLogger(l observability.Logger) Option { return func(im *Importer) { im.log = l } }

// WithDryRun reports what would be imported without calling the creator.
func WithDryRun(v bool) Option { return func(im *Importer) { im.dryRun = v } }

// WithForce imports records the journal already marks as imported.
func WithForce(v bool) Option { return func(im *Importer) { im.force = v } }

// WithStopOnError aborts the run at the first failed create.
func WithStopOnError(v bool) Option { return func(im *Importer) { im.stopOnError = v } }

// WithTimeout bounds each create call. Zero means no limit.
func WithTimeout(d time.Duration) Option { return func(im *Importer) { im.timeout = d } }

// WithPause waits between creates.
func WithPause(d time.Duration) Option { return func(im *Importer) { im.pause = d } }

func New(c Creator, opts ...Option) *Importer {
	im := &Importer{creator: c}
	for _, o := range opts {
		o(im)
	}
	im.log = observability.OrNop(im.log)
	return im
}

type Summary struct {
	Total   int
	Created int
	Skipped int
	Failed  int
	// Planned counts records a dry run would have created.
	Planned int
}

// Run creates every record in order. Failures are journaled and logged;
// the run continues unless stop-on-error is set. Nothing is rolled back.
func (im *Importer) Run(ctx context.Context, records []recipe.Record) (Summary, error) {
	s := Summary{Total: len(records)}
	first := true
	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		key := journal.Key(r)
		log := im.log.With(
			observability.String(observability.KeyTitle, r.Title),
			observability.Int("index", i+1),
		)

		if im.journal != nil && !im.force {
			done, err := im.journal.Imported(ctx, key)
			if err != nil {
				return s, err
			}
			if done {
				s.Skipped++
				log.Debug("already imported")
				continue
			}
		}
		if im.dryRun {
			s.Planned++
			log.Info("would import", observability.String(observability.KeySource, r.Source))
			continue
		}

		if !first && im.pause > 0 {
			if err := sleep(ctx, im.pause); err != nil {
				return s, err
			}
		}
		first = false

		err := im.create(ctx, r)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return s, ctx.Err()
		}
		entry := journal.Entry{Key: key, Title: r.Title, Source: r.Source, Status: journal.StatusOK}
		if err != nil {
			entry.Status, entry.Error = journal.StatusFailed, err.Error()
		}
		if im.journal != nil {
			// The attempt already reached the app; record it even if ctx was
			// cancelled meanwhile.
			if jerr := im.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
				return s, jerr
			}
		}
		if err != nil {
			s.Failed++
			log.Error("import failed", observability.Err(err))
			if im.stopOnError {
				return s, fmt.Errorf("import %q: %w", r.Title, err)
			}
			continue
		}
		s.Created++
		log.Info("imported")
	}
	return s, nil
}

func (im *Importer) create(ctx context.Context, r recipe.Record) error {
	if err := r.Validate(); errors.Is(err, recipe.ErrNoTitle) {
		return err
	}
	if im.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.timeout)
		defer cancel()
	}
	return im.creator.CreateRecipe(ctx, r)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Load reads the records under path (a directory or .zip), logging and
// skipping files that fail to decode.
func Load(path string, log observability.Logger) ([]recipe.Record, error) {
	log = observability.OrNop(log)
	c, err := corpus.Load(path)
	if err != nil {
		return nil, err
	}
	for _, fe := range c.Errors {
		log.Warn("skipping unreadable recipe file", observability.String(observability.KeyFile, fe.File), observability.Err(fe.Err))
	}
	log.Info("loaded recipes",
		observability.Int(observability.KeyCount, len(c.Items)),
		observability.Int("files", c.Files),
		observability.Int("failed_files", len(c.Errors)))
	return c.Records(), nil
}
