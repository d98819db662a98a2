package storefront

import "strings"

// EventKind names a hook a renderer can subscribe to.
type EventKind string

const (
	// EventCategorySwitch fires when an instance selects a new category.
	EventCategorySwitch EventKind = "category-switch"

	// EventItemClick fires when the renderer reports an item action click.
	EventItemClick EventKind = "item-click"

	// EventCartChange fires on every cart add, remove and clear.
	EventCartChange EventKind = "cart-change"

	// EventPageChange fires on every pagination or item-order mutation.
	EventPageChange EventKind = "page-change"

	// EventSettingChange fires when a setting value changes through the UI.
	EventSettingChange EventKind = "setting-change"

	// EventModeChange fires on an actual catalog/settings transition.
	EventModeChange EventKind = "mode-change"
)

// EventKinds lists every hook kind in a stable order.
var EventKinds = []EventKind{
	EventCategorySwitch,
	EventItemClick,
	EventCartChange,
	EventPageChange,
	EventSettingChange,
	EventModeChange,
}

// ParseEventKind resolves a hook name, case-insensitively.
func ParseEventKind(s string) (EventKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range EventKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Event is one hook notification. It is scoped to a single instance.
//
// Category-switch carries only the instance id; the selected key is
// queryable through CurrentCategory.
type Event struct {
	Seq      int64     `json:"seq"`
	Kind     EventKind `json:"kind"`
	Instance string    `json:"instance"`
	Category string    `json:"category,omitempty"` // page-change
	Key      string    `json:"key,omitempty"`      // item-click item key, setting-change setting key
}

// Handler receives hook notifications synchronously.
type Handler func(Event)

type subscription struct {
	id       uint64
	instance string    // "" matches every instance
	kind     EventKind // "" matches every kind
	handler  Handler
}

func (s subscription) matches(ev Event) bool {
	if s.instance != "" && s.instance != ev.Instance {
		return false
	}
	return s.kind == "" || s.kind == ev.Kind
}

// hookBus dispatches events to subscriptions in subscription order.
type hookBus struct {
	nextID uint64
	subs   []subscription
}

func (b *hookBus) subscribe(instance string, kind EventKind, fn Handler) func() {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, instance: instance, kind: kind, handler: fn})
	return func() { b.unsubscribe(id) }
}

func (b *hookBus) unsubscribe(id uint64) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// fire runs matching handlers. The subscription list is copied first so a
// handler may subscribe or unsubscribe without disturbing this dispatch.
func (b *hookBus) fire(ev Event) {
	if len(b.subs) == 0 {
		return
	}
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		if s.matches(ev) {
			s.handler(ev)
		}
	}
}

func (b *hookBus) reset() {
	b.subs = nil
}
