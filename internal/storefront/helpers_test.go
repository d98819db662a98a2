package storefront

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// eventLog records every event fired by a registry.
type eventLog struct {
	events []Event
}

func (l *eventLog) handle(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) kinds() []EventKind {
	out := make([]EventKind, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind
	}
	return out
}

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) reset() { l.events = nil }

// newTestRegistry creates a quiet registry with one subscribed event log.
func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *eventLog) {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	r := NewRegistry(opts...)
	log := &eventLog{}
	r.SubscribeAll(log.handle)
	return r, log
}

// addItems adds n items keyed item01..itemNN priced at their index.
func addItems(t *testing.T, r *Registry, id, cat string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		key := fmt.Sprintf("item%02d", i)
		require.NoError(t, r.AddItem(id, cat, Item{
			Key:   key,
			Title: fmt.Sprintf("Item %d", i),
			Price: ParsePrice(fmt.Sprint(i)),
		}))
	}
}

// assertPageInvariant checks 1 <= currentPage <= totalPages and the
// totalPages formula for every category of an instance.
func assertPageInvariant(t *testing.T, r *Registry, id string) {
	t.Helper()
	for _, key := range r.Categories(id) {
		n := r.ItemCount(id, key)
		size := r.PageSize(id, key)
		want := 1
		if n > 0 {
			want = (n + size - 1) / size
		}
		require.Equal(t, want, r.TotalPages(id, key), "totalPages of %s", key)
		page := r.CurrentPage(id, key)
		require.GreaterOrEqual(t, page, 1, "currentPage of %s", key)
		require.LessOrEqual(t, page, want, "currentPage of %s", key)
	}
}
