package harness

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

// sampleTrace is a hand-built trace: a cart add on shop, a page change on
// shop's fruit category and an item click on kiosk.
func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: TraceTypeCommand, Step: 0, Op: "cart_add", Instance: "shop", Status: command.StatusOK},
		{Type: TraceTypeEvent, Step: 0, Seq: 1, Kind: storefront.EventCartChange, Instance: "shop"},
		{Type: TraceTypeCommand, Step: 1, Op: "next_page", Instance: "shop", Status: command.StatusOK},
		{Type: TraceTypeEvent, Step: 1, Seq: 2, Kind: storefront.EventPageChange, Instance: "shop", Category: "fruit"},
		{Type: TraceTypeCommand, Step: 2, Op: "click_item", Instance: "kiosk", Status: command.StatusOK},
		{Type: TraceTypeEvent, Step: 2, Seq: 3, Kind: storefront.EventItemClick, Instance: "kiosk", Key: "apple"},
		{Type: TraceTypeEvent, Step: 2, Seq: 4, Kind: storefront.EventCartChange, Instance: "kiosk"},
	}
}

func TestAssertEventContains(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name string
		a    Assertion
		pass bool
	}{
		{"kind only", Assertion{Kind: "item-click"}, true},
		{"kind is case-insensitive", Assertion{Kind: "ITEM-CLICK"}, true},
		{"matching instance", Assertion{Kind: "cart-change", Instance: "kiosk"}, true},
		{"matching category", Assertion{Kind: "page-change", Category: "fruit"}, true},
		{"matching key", Assertion{Kind: "item-click", Instance: "kiosk", Key: "apple"}, true},
		{"wrong instance", Assertion{Kind: "item-click", Instance: "shop"}, false},
		{"wrong category", Assertion{Kind: "page-change", Category: "veg"}, false},
		{"wrong key", Assertion{Kind: "item-click", Key: "pear"}, false},
		{"absent kind", Assertion{Kind: "setting-change"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Type = AssertEventContains
			err := assertEventContains(trace, tt.a)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, AssertEventContains, ae.Type)
			assert.Equal(t, "not found in trace", ae.Actual)
		})
	}
}

func TestAssertEventOrder(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name  string
		kinds []string
		inst  string
		pass  bool
	}{
		{"adjacent", []string{"cart-change", "page-change"}, "", true},
		{"with gaps", []string{"cart-change", "item-click"}, "", true},
		{"repeated kind", []string{"cart-change", "cart-change"}, "", true},
		{"reversed", []string{"item-click", "page-change"}, "", false},
		{"too many repeats", []string{"cart-change", "cart-change", "cart-change"}, "", false},
		{"narrowed to instance", []string{"item-click", "cart-change"}, "kiosk", true},
		{"narrowed excludes other instance", []string{"cart-change", "cart-change"}, "shop", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertEventOrder(trace, Assertion{Type: AssertEventOrder, Kinds: tt.kinds, Instance: tt.inst})
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAssertEventOrder_ReportsProgress(t *testing.T) {
	err := assertEventOrder(sampleTrace(), Assertion{
		Type:  AssertEventOrder,
		Kinds: []string{"cart-change", "item-click", "page-change"},
	})
	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "matched 2 of 3, stuck at page-change", ae.Actual)
}

func TestAssertEventCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertEventCount(trace, Assertion{Kind: "cart-change", Count: 2}))
	assert.NoError(t, assertEventCount(trace, Assertion{Kind: "cart-change", Instance: "shop", Count: 1}))
	assert.NoError(t, assertEventCount(trace, Assertion{Kind: "setting-change", Count: 0}))

	err := assertEventCount(trace, Assertion{Kind: "cart-change", Instance: "kiosk", Count: 3})
	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "3 occurrences of cart-change (instance=kiosk)", ae.Expected)
	assert.Equal(t, "1 occurrences", ae.Actual)
}

func newAssertionContext(t *testing.T) AssertionContext {
	t.Helper()
	reg := storefront.NewRegistry(storefront.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	d := command.New(reg)
	_, err := d.ApplyAll(fruitSetup())
	require.NoError(t, err)
	_, err = d.ApplyAll([]command.Command{
		{Op: "cart_add", Instance: "shop", Args: command.Args{"item": "apple", "qty": 2}},
		{Op: "cart_add", Instance: "shop", Args: command.Args{"item": "banana"}},
	})
	require.NoError(t, err)
	return AssertionContext{Dispatcher: d}
}

func TestAssertQueryEquals(t *testing.T) {
	ctx := newAssertionContext(t)

	tests := []struct {
		name   string
		query  string
		args   command.Args
		equals any
		pass   bool
	}{
		{"int total", "cart_total", nil, 25, true},
		{"float total", "cart_total", nil, 25.0, true},
		{"decimal total", "cart_total", nil, decimal.NewFromInt(25), true},
		{"wrong total", "cart_total", nil, 26, false},
		{"string", "title", nil, "Market", true},
		{"list", "items", command.Args{"category": "fruit"}, []any{"apple", "banana"}, true},
		{"list order matters", "items", command.Args{"category": "fruit"}, []any{"banana", "apple"}, false},
		{"bool", "exists", nil, true, true},
		{
			"nested map from yaml",
			"cart_items",
			nil,
			map[string]any{
				"apple":  map[string]any{"quantity": 2, "price": 10, "title": "Apple"},
				"banana": map[string]any{"quantity": 1, "price": 5, "title": "Banana"},
			},
			true,
		},
		{"count sums quantities", "cart_count", nil, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertQueryEquals(ctx, nil, Assertion{
				Type:     AssertQueryEquals,
				Query:    tt.query,
				Instance: "shop",
				Args:     tt.args,
				Equals:   tt.equals,
			})
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAssertQueryEquals_AbsentInstance(t *testing.T) {
	ctx := newAssertionContext(t)
	assert.NoError(t, assertQueryEquals(ctx, nil, Assertion{Query: "cart_count", Instance: "ghost", Equals: 0}))
	assert.NoError(t, assertQueryEquals(ctx, nil, Assertion{Query: "exists", Instance: "ghost", Equals: false}))
}

func TestAssertQueryEquals_NoDispatcher(t *testing.T) {
	err := assertQueryEquals(AssertionContext{}, nil, Assertion{Query: "title", Instance: "shop"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a dispatcher")
}

func TestEvaluateAssertions(t *testing.T) {
	ctx := newAssertionContext(t)
	trace := sampleTrace()

	errs := EvaluateAssertions(ctx, []Assertion{
		{Type: AssertEventContains, Kind: "item-click"},
		{Type: AssertEventCount, Kind: "page-change", Count: 5},
		{Type: AssertQueryEquals, Query: "cart_count", Instance: "shop", Equals: 3},
		{Type: "final_state"},
	}, trace)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertion[1] (event_count)")
	assert.Equal(t, "assertion[3] (final_state): unknown assertion type: final_state", errs[1])
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertEventCount,
		Expected: "2 occurrences of cart-change",
		Actual:   "1 occurrences",
		Trace:    sampleTrace()[:2],
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: event_count")
	assert.Contains(t, msg, "[1] step 0: cart_add shop")
	assert.Contains(t, msg, "[2] step 0: event #1 cart-change shop")
}
