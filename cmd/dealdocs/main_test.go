package main

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/clipboard"
	"github.com/dmitrymomot/dealdocs/pkg/config"
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/pipeline"
	"github.com/dmitrymomot/dealdocs/pkg/secrets"
)

func testApp(t *testing.T) (*app, *bytes.Buffer, *clipboard.Memory) {
	t.Helper()

	rec, err := deal.New("deal-1", map[deal.Field]any{
		deal.PropertyAddress: "12 Elm St",
		deal.Side:            deal.Buyer,
		deal.BuyerName:       "Ann Buyer",
		deal.BuyerEmail:      "buyer@example.com",
		deal.AgentName:       "Alex Agent",
		deal.BrokerageName:   "Acme Realty",
		deal.ClosingDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		deal.PurchasePrice:   deal.Money(45000000),
		deal.EarnestMoney:    deal.Money(1000000),
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	board := clipboard.NewMemory()
	store := mailclient.NewMemoryStore("")
	registry := mailclient.DefaultRegistry()

	a := &app{
		log:      logger.Nop(),
		out:      out,
		registry: registry,
		prefs:    mailclient.NewPreferences(store, registry),
		board:    board,
	}
	a.engine = pipeline.New(deal.NewMemoryRepository(rec), pipeline.WithTarget(pipeline.Target{
		Clipboard:  board,
		Dispatcher: mailclient.NewDispatcher(store, mailclient.WithOpener(mailclient.Passthrough)),
	}))
	return a, out, board
}

func TestDocArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"positional only", []string{"deal-1", "agent-letter"}, false},
		{"flag first", []string{"-format", "text", "deal-1", "agent-letter"}, false},
		{"flag last", []string{"deal-1", "agent-letter", "-format", "text"}, false},
		{"missing kind", []string{"deal-1"}, true},
		{"too many", []string{"a", "b", "c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := flag.NewFlagSet("render", flag.ContinueOnError)
			fs.String("format", "html", "")
			id, kind, err := docArgs(fs, tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "deal-1", id)
			assert.Equal(t, "agent-letter", kind)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	a, out, _ := testApp(t)
	require.NoError(t, a.dispatch(context.Background(), []string{"render", "deal-1", "settlement-statement", "-format", "text"}))
	assert.Contains(t, out.String(), "12 Elm St")
	assert.NotContains(t, out.String(), "<")

	out.Reset()
	require.NoError(t, a.dispatch(context.Background(), []string{"render", "-format", "document", "deal-1", "settlement-statement"}))
	assert.Contains(t, out.String(), "<!DOCTYPE html>")

	err := a.dispatch(context.Background(), []string{"render", "-format", "pdf", "deal-1", "settlement-statement"})
	assert.ErrorIs(t, err, errUsage)
}

func TestShare(t *testing.T) {
	t.Parallel()

	a, out, board := testApp(t)
	require.NoError(t, a.dispatch(context.Background(), []string{"share", "deal-1", "settlement-statement"}))
	assert.Contains(t, out.String(), pipeline.NoticeSucceeded)
	assert.Contains(t, out.String(), "mailto:buyer@example.com?subject=Settlement%20Statement%20-%2012%20Elm%20St")

	entry, err := board.Read(context.Background())
	require.NoError(t, err)
	assert.Contains(t, entry.PlainText, "12 Elm St")

	err = a.dispatch(context.Background(), []string{"share", "missing", "settlement-statement"})
	assert.ErrorIs(t, err, errFailed)
	assert.ErrorIs(t, err, deal.ErrNotFound)
}

func TestClientsAndUse(t *testing.T) {
	t.Parallel()

	a, out, _ := testApp(t)
	ctx := context.Background()

	require.NoError(t, a.dispatch(ctx, []string{"clients"}))
	assert.Regexp(t, `(?m)^\*\s+default\s+Default mail app$`, out.String())

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"use", "gmail"}))
	assert.Equal(t, "Gmail will be used for new emails.\n", out.String())

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"clients"}))
	assert.Regexp(t, `(?m)^\*\s+gmail\s+Gmail$`, out.String())

	assert.ErrorIs(t, a.dispatch(ctx, []string{"use", "pigeon"}), mailclient.ErrUnknownClient)
	assert.ErrorIs(t, a.dispatch(ctx, []string{"use"}), errUsage)
	assert.ErrorIs(t, a.dispatch(ctx, []string{"print"}), errUsage)
}

func TestNewApp(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Env:             "development",
		DealStore:       "dir",
		DealDir:         filepath.Join(dir, "deals"),
		Clipboard:       "memory",
		PreferencesFile: filepath.Join(dir, "prefs.json"),
	}

	a, err := newApp(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	assert.NotNil(t, a.engine)
	assert.Len(t, a.registry.Clients(), 5)

	cfg.DealStore = "sqlite"
	_, err = newApp(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUnknownDriver)

	cfg.DealStore, cfg.Clipboard = "dir", "floppy"
	_, err = newApp(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUnknownDriver)
}

func TestServer(t *testing.T) {
	tests := []struct {
		name    string
		secrets string
		wantErr error
	}{
		{"configured secret", strings.Repeat("k", 32), nil},
		{"ephemeral secret", "", nil},
		{"short secret", "short", secrets.ErrMasterTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COOKIE_SECRETS", tt.secrets)
			config.ResetCache()
			t.Cleanup(config.ResetCache)

			a, _, _ := testApp(t)
			t.Cleanup(func() { a.close(context.Background()) })

			srv, err := a.server()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
