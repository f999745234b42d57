package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/environment"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
)

type deviceKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello", logger.DealID("d-1"))

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "d-1", entry["deal_id"])
	})

	t.Run("production environment", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithEnvironment(environment.Production, "dealdocs"),
		)
		log.Debug("hidden")
		assert.Zero(t, buf.Len())

		log.Info("shown")
		entry := decode(t, buf)
		assert.Equal(t, "dealdocs", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("development environment uses text at debug", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithEnvironment(environment.Development, ""),
		)
		log.Debug("details")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("level by name", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevelName("warn"))
		log.Info("ignored")
		assert.Zero(t, buf.Len())
		log.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("context values are injected", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextValue("device_id", deviceKey{}),
		).With(logger.Component("test"))

		ctx := context.WithValue(context.Background(), deviceKey{}, "dev-42")
		log.InfoContext(ctx, "copied")

		entry := decode(t, buf)
		assert.Equal(t, "dev-42", entry["device_id"])
		assert.Equal(t, "test", entry["component"])
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	err := errors.New("boom")
	assert.Equal(t, err, logger.Error(err).Value.Any())

	src := logger.ImageSource("data:image/png;base64," + strings.Repeat("A", 500))
	assert.LessOrEqual(t, len(src.Value.String()), 99)
	assert.True(t, strings.HasSuffix(src.Value.String(), "..."))

	assert.Equal(t, "mail_client", logger.MailClient("gmail").Key)
	assert.Equal(t, "document_kind", logger.DocumentKind("agent-letter").Key)

	assert.NotPanics(t, func() { logger.Nop().Info("discarded") })
}
