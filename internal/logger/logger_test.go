package logger

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_ProductionLevel(t *testing.T) {
	l := NewLogger("api", "production")
	assert.NotNil(t, l)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	NewLogger("api", "development")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := &Logger{zerolog.New(buf).With().Str("trace_id", "abc").Logger()}

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"trace_id":"abc"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestFromRequest_WithoutLogger(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.NotPanics(t, func() {
		FromRequest(r).Info().Msg("discarded")
	})
}

func TestGetChildLogger_DoesNotAffectParent(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := &Logger{zerolog.New(buf)}

	child := parent.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("child", "yes")
	})

	parent.Info().Msg("parent")
	assert.NotContains(t, buf.String(), "child")
}
