package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/dealdocs/pkg/logger"
)

// BatchRecorder stores several events at once.
type BatchRecorder interface {
	RecordBatch(ctx context.Context, events []Event) error
}

// AsyncOptions tunes the background writer.
type AsyncOptions struct {
	BufferSize     int           // queued events before Record writes synchronously
	BatchSize      int           // events per flush
	BatchTimeout   time.Duration // max delay of a partial batch
	StorageTimeout time.Duration // per flush
}

// Async records events in the background so pipeline calls never wait on
// the activity store. Flush failures are logged, not returned.
type Async struct {
	backend BatchRecorder
	events  chan Event
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	opts    AsyncOptions
	log     *slog.Logger
}

// NewAsync starts the background writer. Call Close to flush and stop it.
func NewAsync(backend BatchRecorder, opts AsyncOptions, l *slog.Logger) *Async {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = time.Second
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	if l == nil {
		l = logger.Nop()
	}

	a := &Async{
		backend: backend,
		events:  make(chan Event, opts.BufferSize),
		done:    make(chan struct{}),
		opts:    opts,
		log:     l,
	}
	a.wg.Add(1)
	go a.worker()
	return a
}

// Record queues e. With a full buffer it is written synchronously instead.
func (a *Async) Record(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = e.Stamp()

	select {
	case <-a.done:
		return ErrRecorderClose
	default:
	}

	select {
	case a.events <- e:
		return nil
	default:
		return a.backend.RecordBatch(ctx, []Event{e})
	}
}

// Close flushes queued events and stops the writer.
func (a *Async) Close(ctx context.Context) error {
	a.once.Do(func() { close(a.done) })

	stopped := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) worker() {
	defer a.wg.Done()

	batch := make([]Event, 0, a.opts.BatchSize)
	ticker := time.NewTicker(a.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.StorageTimeout)
		defer cancel()
		if err := a.backend.RecordBatch(ctx, batch); err != nil {
			a.log.ErrorContext(ctx, "flushing activity events",
				slog.Int("events", len(batch)), logger.Error(err))
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-a.events:
			batch = append(batch, e)
			if len(batch) >= a.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.done:
			for {
				select {
				case e := <-a.events:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
