package clipboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dealdocs/pkg/payload"
)

// Memory is a process-wide clipboard. The last write wins.
type Memory struct {
	mu    sync.RWMutex
	entry *Entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Write(ctx context.Context, p payload.Payload) error {
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := Validate(p); err != nil {
		return err
	}
	e := &Entry{
		ID:        uuid.NewString(),
		HTML:      p.HTML,
		PlainText: p.PlainText,
		CopiedAt:  m.now().UTC(),
	}
	m.mu.Lock()
	m.entry = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Read(ctx context.Context) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return Entry{}, ErrEmpty
	}
	return *m.entry, nil
}
