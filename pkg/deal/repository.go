package deal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Repository provides deal records by identifier.
type Repository interface {
	Get(ctx context.Context, id string) (Record, error)
}

// Store is a Repository that can also persist records.
type Store interface {
	Repository
	Save(ctx context.Context, r Record) error
}

// MemoryRepository keeps records in memory. Safe for concurrent use.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepository returns a repository seeded with records.
func NewMemoryRepository(records ...Record) *MemoryRepository {
	m := &MemoryRepository{records: make(map[string]Record, len(records))}
	for _, r := range records {
		m.records[r.ID()] = r
	}
	return m
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

func (m *MemoryRepository) Save(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID() == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	m.records[r.ID()] = r
	m.mu.Unlock()
	return nil
}

// DirRepository reads records from <dir>/<id>.json files. All paths are
// confined to dir.
type DirRepository struct {
	dir string
}

// NewDirRepository resolves dir to an absolute path and creates it when
// missing.
func NewDirRepository(dir string) (*DirRepository, error) {
	if dir == "" {
		return nil, errors.Join(ErrStorage, errors.New("empty directory"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return &DirRepository{dir: abs}, nil
}

func (d *DirRepository) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	path, err := d.resolve(id)
	if err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, errors.Join(ErrStorage, err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	if r.ID() != id {
		return Record{}, fmt.Errorf("%w: file %s holds %q", ErrInvalidID, filepath.Base(path), r.ID())
	}
	return r, nil
}

// Save writes the record through a temp file and rename so readers never
// observe a partial file.
func (d *DirRepository) Save(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.resolve(r.ID())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	tmp, err := os.CreateTemp(d.dir, ".deal-*")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (d *DirRepository) resolve(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	path := filepath.Join(d.dir, id+".json")
	if !strings.HasPrefix(path, d.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return path, nil
}
