package storefront

import (
	"log/slog"
	"slices"
	"strings"
)

const (
	// DefaultPageSize is the page size of a newly created category.
	DefaultPageSize = 12

	// DefaultCurrency is the display currency of a newly created cart.
	DefaultCurrency = "$"

	// DefaultActionLabel is the item action label when none is given.
	DefaultActionLabel = "Buy"
)

// Click is the last item action click reported by any renderer.
// It is registry-wide, not per instance.
type Click struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	ActionLabel string `json:"action_label"`
}

// Registry is the root of all storefront state.
//
// Every command names the instance it targets by id. Registries are
// independent of each other; nothing is shared at package level.
type Registry struct {
	instances map[string]*instance
	clock     Sequencer
	hooks     hookBus
	logger    *slog.Logger
	lastClick Click

	pageSize int
	currency string
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the sequencer used to stamp events.
// Use testutil.NewDeterministicClock() for reproducible traces.
func WithClock(c Sequencer) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger used for ignored commands.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDefaultPageSize sets the page size given to new categories.
// Values below 1 are ignored.
func WithDefaultPageSize(n int) Option {
	return func(r *Registry) {
		if n >= 1 {
			r.pageSize = n
		}
	}
}

// WithDefaultCurrency sets the currency given to new carts.
func WithDefaultCurrency(symbol string) Option {
	return func(r *Registry) {
		if symbol != "" {
			r.currency = symbol
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		instances: make(map[string]*instance),
		clock:     NewClock(),
		logger:    slog.Default(),
		pageSize:  DefaultPageSize,
		currency:  DefaultCurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispose destroys every instance, drops every subscription and clears
// the last click. The registry remains usable and empty afterwards.
func (r *Registry) Dispose() {
	for id := range r.instances {
		delete(r.instances, id)
	}
	r.hooks.reset()
	r.lastClick = Click{}
}

// Subscribe registers a handler for one instance and one event kind.
// An empty instance id or kind acts as a wildcard. Subscriptions are keyed
// by id, so they survive destroying and recreating the instance.
// The returned function cancels the subscription.
func (r *Registry) Subscribe(instanceID string, kind EventKind, fn Handler) (cancel func()) {
	return r.hooks.subscribe(instanceID, kind, fn)
}

// SubscribeAll registers a handler for every event of every instance.
func (r *Registry) SubscribeAll(fn Handler) (cancel func()) {
	return r.hooks.subscribe("", "", fn)
}

// CreateInstance registers a fresh instance. An existing instance with the
// same id is destroyed first; state is never merged.
func (r *Registry) CreateInstance(id, title string) {
	if _, ok := r.instances[id]; ok {
		r.DestroyInstance(id)
	}
	r.instances[id] = newInstance(id, title, r.currency)
}

// DestroyInstance releases the instance and everything it owns.
// No-op if absent.
func (r *Registry) DestroyInstance(id string) {
	delete(r.instances, id)
}

// Exists reports whether an instance is registered under id.
func (r *Registry) Exists(id string) bool {
	_, ok := r.instances[id]
	return ok
}

// IDs returns the registered instance ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Title returns the instance title, or "" if absent.
func (r *Registry) Title(id string) string {
	if in, ok := r.instances[id]; ok {
		return in.title
	}
	return ""
}

// LastClick returns the most recent item click across all instances.
func (r *Registry) LastClick() Click {
	return r.lastClick
}

// lookup resolves an instance for a command.
func (r *Registry) lookup(op, id string) (*instance, error) {
	in, ok := r.instances[id]
	if !ok {
		return nil, r.ignore(op, instanceNotFound(id))
	}
	return in, nil
}

// ignore logs a command that was treated as a no-op and returns err.
func (r *Registry) ignore(op string, err *LookupError) error {
	r.logger.Debug("command ignored",
		"op", op,
		"code", string(err.Code),
		"instance", err.Instance,
		"key", err.Key,
	)
	return err
}

// emit stamps and dispatches an event.
func (r *Registry) emit(kind EventKind, instanceID, category, key string) {
	r.hooks.fire(Event{
		Seq:      r.clock.Next(),
		Kind:     kind,
		Instance: instanceID,
		Category: category,
		Key:      key,
	})
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
