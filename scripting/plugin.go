package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/wudi/recipekit/observability"
	"github.com/wudi/recipekit/recipe"
)

// EntryPoint is the function every plugin must define.
const EntryPoint = "createRecipe"

var (
	ErrNoEntryPoint = errors.New("plugin does not define " + EntryPoint)
	ErrRejected     = errors.New("plugin rejected recipe")
	errNoOutputDir  = errors.New("plugin output directory is not configured")
)

// Plugin is a loaded plugin script. It satisfies importer.Creator.
type Plugin struct {
	name   string
	engine *Engine
	create goja.Callable
	outDir string
	log    observability.Logger
}

type Option func(*Plugin)

// WithOutputDir confines cookbook.appendFile to dir.
func WithOutputDir(dir string) Option { return func(p *Plugin) { p.outDir = dir } }

func WithLogger(l observability.Logger) Option { return func(p *Plugin) { p.log = l } }

// Load reads and evaluates the plugin at path.
func Load(ctx context.Context, path string, opts ...Option) (*Plugin, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plugin: %w", err)
	}
	return LoadSource(ctx, filepath.Base(path), string(src), opts...)
}

// LoadSource evaluates src as a plugin named name.
func LoadSource(ctx context.Context, name, src string, opts ...Option) (*Plugin, error) {
	p := &Plugin{name: name, engine: NewEngine()}
	for _, o := range opts {
		o(p)
	}
	p.log = observability.OrNop(p.log).With(observability.String("plugin", name))

	err := p.engine.run(ctx, func(vm *goja.Runtime) error {
		if err := p.bind(vm); err != nil {
			return err
		}
		if _, err := vm.RunScript(name, src); err != nil {
			return err
		}
		fn, ok := goja.AssertFunction(vm.Get(EntryPoint))
		if !ok {
			return ErrNoEntryPoint
		}
		p.create = fn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load plugin %s: %w", name, err)
	}
	return p, nil
}

func (p *Plugin) Name() string { return p.name }

// CreateRecipe calls createRecipe(recipe). A thrown exception or an
// explicit false return is a failed create.
func (p *Plugin) CreateRecipe(ctx context.Context, r recipe.Record) error {
	return p.engine.run(ctx, func(vm *goja.Runtime) error {
		res, err := p.create(goja.Undefined(), vm.ToValue(recordObject(r)))
		if err != nil {
			var exc *goja.Exception
			if errors.As(err, &exc) {
				return fmt.Errorf("%s: %s", EntryPoint, exc.Value().String())
			}
			return err
		}
		if res != nil && res.ExportType() != nil && res.Export() == false {
			return ErrRejected
		}
		return nil
	})
}

func (p *Plugin) bind(vm *goja.Runtime) error {
	console := vm.NewObject()
	if err := console.Set("log", p.logFunc); err != nil {
		return err
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	cookbook := vm.NewObject()
	if err := cookbook.Set("log", p.logFunc); err != nil {
		return err
	}
	if err := cookbook.Set("slug", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(recipe.Slugify(call.Argument(0).String()))
	}); err != nil {
		return err
	}
	if err := cookbook.Set("appendFile", func(call goja.FunctionCall) goja.Value {
		if err := p.appendFile(call.Argument(0).String(), call.Argument(1).String()); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	}); err != nil {
		return err
	}
	return vm.Set("cookbook", cookbook)
}

func (p *Plugin) logFunc(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		parts[i] = a.String()
	}
	p.log.Info(strings.Join(parts, " "))
	return goja.Undefined()
}

func (p *Plugin) appendFile(name, text string) error {
	if p.outDir == "" {
		return errNoOutputDir
	}
	if !filepath.IsLocal(name) {
		return fmt.Errorf("appendFile: %q escapes the output directory", name)
	}
	path := filepath.Join(p.outDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recordObject is the recipe shape plugins receive.
func recordObject(r recipe.Record) map[string]interface{} {
	obj := map[string]interface{}{
		"title":        r.Title,
		"source":       r.Source,
		"servings":     r.Servings,
		"ingredients":  stringsToValues(r.Ingredients),
		"instructions": stringsToValues(r.Instructions),
		"notes":        r.Notes,
		"tags":         stringsToValues(r.Tags),
		"description":  r.Description,
		"course":       r.Course,
		"prep_time":    r.PrepTime,
		"cook_time":    r.CookTime,
		"total_time":   r.TotalTime,
		"yield":        r.Yield,
		"rating":       r.Rating,
		"photo_url":    r.PhotoURL,
		"video":        r.Video,
		"cook_count":   r.CookCount,
	}
	nutrition := make(map[string]interface{}, len(r.Nutrition))
	for k, v := range r.Nutrition {
		nutrition[k] = v
	}
	obj["nutrition"] = nutrition
	return obj
}

func stringsToValues(list []string) []interface{} {
	out := make([]interface{}, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
