package mailclient_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
)

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

type failingStore struct{}

func (failingStore) Load(context.Context) (string, error) { return "", errors.New("disk gone") }
func (failingStore) Save(context.Context, string) error   { return errors.New("disk gone") }

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Settlement Statement", "Settlement%20Statement"},
		{"buyer@example.com", "buyer@example.com"},
		{"A&B=C?", "A%26B%3DC%3F"},
		{"1+1", "1%2B1"},
		{"Café", "Caf%C3%A9"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mailclient.Escape(tt.in))
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := mailclient.DefaultRegistry()
	ids := make([]string, 0)
	for _, c := range r.Clients() {
		ids = append(ids, c.ID)
		assert.NotEmpty(t, c.Label)
	}
	assert.Equal(t, []string{"default", "gmail", "outlook", "outlook-live", "yahoo"}, ids)
	assert.Equal(t, "default", r.Default().ID)

	gmail, ok := r.Lookup("gmail")
	require.True(t, ok)
	assert.Equal(t,
		"https://mail.google.com/mail/?view=cm&fs=1&to=a@b.com&su=Ad%20Results",
		gmail.Compose("a@b.com", "Ad Results"))

	_, ok = r.Lookup("hotmail")
	assert.False(t, ok)
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	def := mailclient.Descriptor{ID: "default", URLTemplate: "mailto:{recipient}?subject={subject}"}
	tests := []struct {
		name    string
		clients []mailclient.Descriptor
	}{
		{"no default", []mailclient.Descriptor{{ID: "gmail", URLTemplate: "x?su={subject}"}}},
		{"duplicate", []mailclient.Descriptor{def, def}},
		{"missing id", []mailclient.Descriptor{def, {URLTemplate: "{subject}"}}},
		{"missing subject placeholder", []mailclient.Descriptor{def, {ID: "x", URLTemplate: "https://x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := mailclient.NewRegistry(tt.clients...)
			assert.ErrorIs(t, err, mailclient.ErrInvalidRegistry)
		})
	}

	r, err := mailclient.NewRegistry(def)
	require.NoError(t, err)
	assert.Equal(t, "default", r.Default().Label)
}

func TestLoadRegistry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clients:
  - id: default
    label: Mail
    url_template: "mailto:{recipient}?subject={subject}"
  - id: fastmail
    label: Fastmail
    url_template: "https://app.fastmail.com/mail/compose?to={recipient}&subject={subject}"
`), 0o644))

	r, err := mailclient.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, r.Clients(), 2)
	_, ok := r.Lookup("fastmail")
	assert.True(t, ok)

	r, err = mailclient.LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, r.Clients(), 5)

	_, err = mailclient.LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, mailclient.ErrInvalidRegistry)

	_, err = mailclient.ParseRegistry([]byte("clients: [nope"))
	assert.ErrorIs(t, err, mailclient.ErrInvalidRegistry)
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("preference unset uses the default client", func(t *testing.T) {
		t.Parallel()

		opener := &recordingOpener{}
		d := mailclient.NewDispatcher(mailclient.NewMemoryStore(""), mailclient.WithOpener(opener))

		url, err := d.Dispatch(context.Background(), "buyer@example.com", "Settlement Statement")
		require.NoError(t, err)
		assert.Equal(t, "mailto:buyer@example.com?subject=Settlement%20Statement", url)
		assert.Equal(t, []string{url}, opener.urls)
	})

	t.Run("unknown preference falls back without error", func(t *testing.T) {
		t.Parallel()

		d := mailclient.NewDispatcher(mailclient.NewMemoryStore("aol"), mailclient.WithOpener(mailclient.Passthrough))
		link, err := d.Open(context.Background(), "buyer@example.com", "Settlement Statement")
		require.NoError(t, err)
		assert.Equal(t, "default", link.Client.ID)
		assert.Equal(t, "mailto:buyer@example.com?subject=Settlement%20Statement", link.URL)
	})

	t.Run("unreadable preference falls back", func(t *testing.T) {
		t.Parallel()

		d := mailclient.NewDispatcher(failingStore{}, mailclient.WithOpener(mailclient.Passthrough))
		assert.Equal(t, "default", d.Resolve(context.Background()).ID)
	})

	t.Run("empty recipient", func(t *testing.T) {
		t.Parallel()

		d := mailclient.NewDispatcher(mailclient.NewMemoryStore("outlook"), mailclient.WithOpener(mailclient.Passthrough))
		url, err := d.Dispatch(context.Background(), "", "Important Dates - 12 Elm St")
		require.NoError(t, err)
		assert.Equal(t,
			"https://outlook.office.com/mail/deeplink/compose?to=&subject=Important%20Dates%20-%2012%20Elm%20St",
			url)
	})

	t.Run("empty subject", func(t *testing.T) {
		t.Parallel()

		opener := &recordingOpener{}
		d := mailclient.NewDispatcher(nil, mailclient.WithOpener(opener))
		url, err := d.Dispatch(context.Background(), "a@b.com", "  ")
		assert.ErrorIs(t, err, mailclient.ErrDispatch)
		assert.ErrorIs(t, err, mailclient.ErrEmptySubject)
		assert.Empty(t, url)
		assert.Empty(t, opener.urls)
	})

	t.Run("blocked handoff keeps the url", func(t *testing.T) {
		t.Parallel()

		opener := &recordingOpener{err: errors.New("popup blocked")}
		d := mailclient.NewDispatcher(nil, mailclient.WithOpener(opener))
		url, err := d.Dispatch(context.Background(), "a@b.com", "Agent Letter")
		assert.ErrorIs(t, err, mailclient.ErrDispatch)
		assert.ErrorIs(t, err, mailclient.ErrOpenBlocked)
		assert.Equal(t, "mailto:a@b.com?subject=Agent%20Letter", url)
	})
}

func TestPreferencesSetIsVisibleToNextDispatch(t *testing.T) {
	t.Parallel()

	store := mailclient.NewFileStore(filepath.Join(t.TempDir(), "nested", "preferences.json"))
	prefs := mailclient.NewPreferences(store, nil)
	d := mailclient.NewDispatcher(store, mailclient.WithOpener(mailclient.Passthrough))
	ctx := context.Background()

	id, err := prefs.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, prefs.Set(ctx, "yahoo"))
	link, err := d.Open(ctx, "a@b.com", "Ad Results")
	require.NoError(t, err)
	assert.Equal(t, "yahoo", link.Client.ID)

	require.NoError(t, prefs.Set(ctx, "gmail"))
	assert.Equal(t, "gmail", d.Resolve(ctx).ID)

	err = prefs.Set(ctx, "aol")
	assert.ErrorIs(t, err, mailclient.ErrUnknownClient)
	assert.Equal(t, "gmail", d.Resolve(ctx).ID)
}

func TestFileStoreCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := mailclient.NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, mailclient.ErrPreferenceStore)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	url := os.Getenv("DEALDOCS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DEALDOCS_TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := mailclient.NewRedisStore(client, "test-"+filepath.Base(t.TempDir()))
	t.Cleanup(func() { _ = store.Save(context.Background(), "") })

	id, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.Save(ctx, "outlook-live"))
	id, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "outlook-live", id)
}

func TestBrowserOpenerMissingCommand(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	err := mailclient.BrowserOpener{GOOS: "linux"}.Open(context.Background(), "mailto:a@b.com")
	assert.ErrorIs(t, err, mailclient.ErrOpenBlocked)
}
