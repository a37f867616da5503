package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// maxFillAttempts bounds how often Get re-reads the store when writers keep
// racing its read-through.
const maxFillAttempts = 3

// Registry fronts a Store with an in-memory cache of device snapshots.
//
// Writes go to the store first and reach the cache only after the store
// accepted them, so the cache never holds state the store rejected.
// Every device handed out is a clone; mutating it does not touch the cache.
//
// Read-through fills (Get on a miss, ListByOwner) race with writers, so each
// write stamps the id with a generation. A fill is dropped when the id was
// written after the read began; a slow read never resurrects a deleted
// device or replaces newer state.
//
// All public methods are thread-safe.
type Registry struct {
	store   Store
	cache   map[int64]Device
	gen     map[int64]uint64
	deleted map[int64]struct{}
	seq     uint64
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a registry over store with an empty cache.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:   store,
		cache:   make(map[int64]Device),
		gen:     make(map[int64]uint64),
		deleted: make(map[int64]struct{}),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache replaces the cache with every device in the store.
// Called once at startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	start := r.readStart()
	devices, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	fresh := make(map[int64]Device, len(devices))
	for _, d := range devices {
		fresh[d.ID()] = d
	}

	r.cacheMu.Lock()
	for id, g := range r.gen {
		if g <= start {
			continue
		}
		// Written while the list was loading: the cache already knows better.
		if cur, ok := r.cache[id]; ok {
			fresh[id] = cur
		} else {
			delete(fresh, id)
		}
	}
	r.cache = fresh
	r.cacheMu.Unlock()

	r.logger.Info("device cache refreshed", "count", len(devices))
	return nil
}

// Get returns a copy of the device, reading through to the store on a miss.
func (r *Registry) Get(ctx context.Context, id int64) (Device, error) {
	var (
		d   Device
		err error
	)
	for range maxFillAttempts {
		r.cacheMu.RLock()
		cached, ok := r.cache[id]
		_, gone := r.deleted[id]
		start := r.seq
		r.cacheMu.RUnlock()
		if ok {
			return cached.Clone(), nil
		}
		if gone {
			return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
		}

		d, err = r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.fill(d, start) {
			return d, nil
		}
		// Written while we read; look again.
	}
	return d, nil
}

// fill caches d unless its id was written after start. Reports whether
// d was cached.
func (r *Registry) fill(d Device, start uint64) bool {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.gen[d.ID()] > start {
		return false
	}
	r.cache[d.ID()] = d.Clone()
	return true
}

// ListByOwner returns the owner's devices from the store, ordered by id,
// and refreshes their cache entries. Devices written during the read are
// taken from the cache or read again; deleted ones are left out.
func (r *Registry) ListByOwner(ctx context.Context, ownerID string) ([]Device, error) {
	start := r.readStart()
	devices, err := r.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing devices for %s: %w", ownerID, err)
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if r.fill(d, start) {
			out = append(out, d)
			continue
		}
		fresh, err := r.Get(ctx, d.ID())
		if errors.Is(err, ErrDeviceNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing devices for %s: %w", ownerID, err)
		}
		out = append(out, fresh)
	}
	return out, nil
}

// List returns copies of every cached device ordered by id.
func (r *Registry) List() []Device {
	r.cacheMu.RLock()
	devices := make([]Device, 0, len(r.cache))
	for _, d := range r.cache {
		devices = append(devices, d.Clone())
	}
	r.cacheMu.RUnlock()

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID() < devices[j].ID() })
	return devices
}

// FindByOwnerAndName looks the device up in the store.
func (r *Registry) FindByOwnerAndName(ctx context.Context, ownerID, name string) (Device, error) {
	return r.store.GetByOwnerAndName(ctx, ownerID, name)
}

// Create stores an unsaved device and returns the saved copy with its id.
func (r *Registry) Create(ctx context.Context, d Device) (Device, error) {
	id, err := r.store.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	saved := withID(d, id)

	r.cacheMu.Lock()
	r.bump(id)
	r.cache[id] = saved.Clone()
	r.cacheMu.Unlock()

	r.logger.Info("device created", "device_id", id, "owner", saved.OwnerID(), "kind", saved.Kind())
	return saved, nil
}

// Update persists d and, once the store has accepted it, caches a copy.
// On error the cache is left as it was.
func (r *Registry) Update(ctx context.Context, d Device) error {
	if err := r.store.Update(ctx, d); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.bump(d.ID())
	r.cache[d.ID()] = d.Clone()
	r.cacheMu.Unlock()
	return nil
}

// Delete removes the device from the store and the cache.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.bump(id)
	r.deleted[id] = struct{}{}
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("device deleted", "device_id", id)
	return nil
}

// Invalidate drops the cached copy so the next Get reads the store.
// Reads already in flight do not refill it.
func (r *Registry) Invalidate(id int64) {
	r.cacheMu.Lock()
	r.bump(id)
	delete(r.cache, id)
	r.cacheMu.Unlock()
}

// readStart returns the generation a store read is ordered after.
func (r *Registry) readStart() uint64 {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return r.seq
}

// bump stamps a write to id. Caller holds cacheMu.
func (r *Registry) bump(id int64) {
	r.seq++
	r.gen[id] = r.seq
}

// Stats summarises the cached devices.
type Stats struct {
	Total    int            `json:"total"`
	ByKind   map[Kind]int   `json:"by_kind"`
	ByStatus map[string]int `json:"by_status"`
}

// Stats counts cached devices by kind and status.
func (r *Registry) Stats() Stats {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	s := Stats{
		Total:    len(r.cache),
		ByKind:   make(map[Kind]int),
		ByStatus: make(map[string]int),
	}
	for _, d := range r.cache {
		s.ByKind[d.Kind()]++
		s.ByStatus[d.Status()]++
	}
	return s
}
