package mailclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PreferenceStore persists the selected mail client id. Load returns an
// empty id when nothing was stored.
type PreferenceStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, id string) error
}

// MemoryStore keeps the preference in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	id string
}

func NewMemoryStore(id string) *MemoryStore {
	return &MemoryStore{id: id}
}

func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, nil
}

func (s *MemoryStore) Save(_ context.Context, id string) error {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return nil
}

// FileStore keeps the preference in a JSON file. Writes replace the file
// atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type preferenceFile struct {
	MailClient string    `json:"mail_client"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewFileStore stores the preference at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPreferencePath returns dealdocs/preferences.json under the user
// config directory.
func DefaultPreferencePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Join(ErrPreferenceStore, err)
	}
	return filepath.Join(dir, "dealdocs", "preferences.json"), nil
}

func (s *FileStore) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Join(ErrPreferenceStore, err)
	}
	var f preferenceFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", errors.Join(ErrPreferenceStore, err)
	}
	return f.MailClient, nil
}

func (s *FileStore) Save(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(preferenceFile{MailClient: id, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}
	tmp, err := os.CreateTemp(dir, ".preferences-*.json")
	if err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrPreferenceStore, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}
	return nil
}

// RedisStore keeps one preference per device.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore stores the preference of device under
// "dealdocs:prefs:<device>:mail_client".
func NewRedisStore(client redis.UniversalClient, device string) *RedisStore {
	return &RedisStore{client: client, key: "dealdocs:prefs:" + device + ":mail_client"}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Join(ErrPreferenceStore, err)
	}
	return id, nil
}

func (s *RedisStore) Save(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, s.key, id, 0).Err(); err != nil {
		return errors.Join(ErrPreferenceStore, err)
	}
	return nil
}

// Preferences validates and persists the mail client selection.
type Preferences struct {
	store    PreferenceStore
	registry *Registry
}

func NewPreferences(store PreferenceStore, registry *Registry) *Preferences {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Preferences{store: store, registry: registry}
}

// Set stores id after checking it against the registry. The write is
// synchronous; the next dispatch sees it.
func (p *Preferences) Set(ctx context.Context, id string) error {
	if _, ok := p.registry.Lookup(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClient, id)
	}
	return p.store.Save(ctx, id)
}

// Get returns the stored id, which may be empty or stale.
func (p *Preferences) Get(ctx context.Context) (string, error) {
	return p.store.Load(ctx)
}

// Registry returns the registry used for validation.
func (p *Preferences) Registry() *Registry { return p.registry }
