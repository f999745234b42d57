package web

import (
	"container/list"
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dealdocs/pkg/clipboard"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
)

// DeviceCookie holds the signed device id.
const DeviceCookie = "dealdocs_device"

// Clipboard is a device clipboard.
type Clipboard interface {
	clipboard.Writer
	clipboard.Reader
}

// Device is the per-browser state.
type Device struct {
	Clipboard   Clipboard
	Preferences mailclient.PreferenceStore
}

// Devices resolves device ids to their state.
type Devices interface {
	Device(id string) Device
}

// DefaultMaxDevices bounds MemoryDevices unless WithMaxDevices says
// otherwise.
const DefaultMaxDevices = 10000

type deviceEntry struct {
	id     string
	device Device
}

// MemoryDevices keeps device state in process. At capacity the least
// recently used device is forgotten, so browsers that drop the cookie
// cannot grow it without bound.
type MemoryDevices struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type MemoryDevicesOption func(*MemoryDevices)

// WithMaxDevices sets how many devices are kept. Non-positive values are
// ignored.
func WithMaxDevices(n int) MemoryDevicesOption {
	return func(m *MemoryDevices) {
		if n > 0 {
			m.capacity = n
		}
	}
}

func NewMemoryDevices(opts ...MemoryDevicesOption) *MemoryDevices {
	m := &MemoryDevices{
		capacity: DefaultMaxDevices,
		items:    map[string]*list.Element{},
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryDevices) Device(id string) Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.items[id]; ok {
		m.order.MoveToFront(elem)
		return elem.Value.(*deviceEntry).device
	}

	d := Device{Clipboard: clipboard.NewMemory(), Preferences: mailclient.NewMemoryStore("")}
	m.items[id] = m.order.PushFront(&deviceEntry{id: id, device: d})
	if m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*deviceEntry).id)
	}
	return d
}

// Len returns the number of devices kept.
func (m *MemoryDevices) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// RedisDevices keeps clipboard entries and preferences in Redis so every
// server instance sees the same device state.
type RedisDevices struct {
	client redis.UniversalClient
	relay  *clipboard.Relay
}

func NewRedisDevices(client redis.UniversalClient, opts ...clipboard.RelayOption) *RedisDevices {
	return &RedisDevices{client: client, relay: clipboard.NewRelay(client, opts...)}
}

func (r *RedisDevices) Device(id string) Device {
	return Device{
		Clipboard:   r.relay.Device(id),
		Preferences: mailclient.NewRedisStore(r.client, id),
	}
}

type deviceKey struct{}

// DeviceID returns the device id of the request context.
func DeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}

// DeviceExtractor adds the device id to log records.
func DeviceExtractor(ctx context.Context) (slog.Attr, bool) {
	id := DeviceID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("device_id", id), true
}

// identify reads the device cookie, issuing a new id when it is missing or
// fails verification.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.cookies.GetSigned(r, DeviceCookie)
		if err == nil {
			if _, perr := uuid.Parse(id); perr != nil {
				err = perr
			}
		}
		if err != nil {
			id = uuid.NewString()
			s.cookies.SetSigned(w, DeviceCookie, id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deviceKey{}, id)))
	})
}

func (s *Server) device(r *http.Request) Device {
	return s.devices.Device(DeviceID(r.Context()))
}

// dispatcher composes links for the device. The browser opens them itself.
func (s *Server) dispatcher(d Device) *mailclient.Dispatcher {
	return mailclient.NewDispatcher(d.Preferences,
		mailclient.WithRegistry(s.registry),
		mailclient.WithOpener(mailclient.Passthrough),
		mailclient.WithLogger(s.log),
	)
}
