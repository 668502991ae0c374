package ocr

import (
	"context"
	"fmt"
)

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the registered engine. Importing ocr/tesseract
// registers Tesseract; otherwise a no-op engine is returned.
func DefaultEngine() Engine {
	return defaultEngine
}

func SetDefaultEngine(engine Engine) {
	if engine == nil {
		engine = noopEngine{}
	}
	defaultEngine = engine
}

// Available reports whether e actually recognizes text.
func Available(e Engine) bool {
	if e == nil {
		return false
	}
	_, noop := e.(noopEngine)
	return !noop
}

// RecognizeAll runs every input through engine, in batch when supported.
func RecognizeAll(ctx context.Context, engine Engine, inputs []Input) ([]Result, error) {
	if b, ok := engine.(BatchEngine); ok {
		return b.RecognizeBatch(ctx, inputs)
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
