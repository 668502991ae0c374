package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With(String(KeyFile, "woks.pdf"))

	log.Info("parsed page", Int(KeyPage, 7), Float64("garble", 0.5), Bool("ocr", true))
	log.Warn("ocr failed", Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "woks.pdf", fields[KeyFile])
	assert.EqualValues(t, 7, fields[KeyPage])
	assert.Equal(t, 0.5, fields["garble"])
	assert.Equal(t, true, fields["ocr"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewZapRejectsBadLevel(t *testing.T) {
	_, err := NewZap(ZapConfig{Level: "loud"})
	require.Error(t, err)
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	l.Info("ignored")
	assert.IsType(t, NopLogger{}, l.With(String("k", "v")))
}
