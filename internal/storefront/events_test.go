package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventKind(t *testing.T) {
	k, ok := ParseEventKind(" Cart-Change ")
	require.True(t, ok)
	assert.Equal(t, EventCartChange, k)

	_, ok = ParseEventKind("checkout")
	assert.False(t, ok)
}

func TestSubscribe_FiltersByInstanceAndKind(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.CreateInstance("shop1", "One")
	r.CreateInstance("shop2", "Two")

	var cartShop1, anyShop2, pagesAnywhere []Event
	r.Subscribe("shop1", EventCartChange, func(ev Event) { cartShop1 = append(cartShop1, ev) })
	r.Subscribe("shop2", "", func(ev Event) { anyShop2 = append(anyShop2, ev) })
	r.Subscribe("", EventPageChange, func(ev Event) { pagesAnywhere = append(pagesAnywhere, ev) })

	require.NoError(t, r.AddItem("shop1", "fruit", Item{Key: "apple"}))
	require.NoError(t, r.AddToCart("shop1", "apple", 1))
	require.NoError(t, r.AddItem("shop2", "fruit", Item{Key: "pear"}))
	require.NoError(t, r.AddToCart("shop2", "pear", 1))

	require.Len(t, cartShop1, 1)
	assert.Equal(t, "shop1", cartShop1[0].Instance)
	assert.Len(t, anyShop2, 2)
	assert.Len(t, pagesAnywhere, 2)
}

func TestSubscribe_Cancel(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.CreateInstance("shop1", "Shop")
	n := 0
	cancel := r.Subscribe("shop1", "", func(Event) { n++ })

	require.NoError(t, r.AddCategory("shop1", "fruit", "Fruit", ""))
	cancel()
	require.NoError(t, r.AddCategory("shop1", "veg", "Veg", ""))
	require.NoError(t, r.SwitchCategory("shop1", "veg"))

	assert.Equal(t, 1, n)
	cancel() // second cancel is harmless
}

func TestSubscribe_SurvivesRecreate(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.CreateInstance("shop1", "Shop")
	n := 0
	r.Subscribe("shop1", EventCategorySwitch, func(Event) { n++ })

	r.DestroyInstance("shop1")
	r.CreateInstance("shop1", "Again")
	require.NoError(t, r.AddCategory("shop1", "fruit", "Fruit", ""))

	assert.Equal(t, 1, n)
}

func TestSubscribe_HandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.CreateInstance("shop1", "Shop")

	var first, second int
	var cancel func()
	cancel = r.Subscribe("shop1", "", func(Event) { first++; cancel() })
	r.Subscribe("shop1", "", func(Event) { second++ })

	require.NoError(t, r.AddCategory("shop1", "fruit", "Fruit", ""))
	require.NoError(t, r.AddItem("shop1", "fruit", Item{Key: "apple"}))

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

// offsetClock starts counting after a fixed sequence number.
type offsetClock struct{ seq int64 }

func (c *offsetClock) Next() int64 {
	c.seq++
	return c.seq
}

func TestEvents_SequenceIsMonotonic(t *testing.T) {
	r, log := newTestRegistry(t, WithClock(&offsetClock{seq: 100}))
	r.CreateInstance("shop1", "Shop")
	require.NoError(t, r.AddCategory("shop1", "fruit", "Fruit", ""))
	addItems(t, r, "shop1", "fruit", 3)

	require.Len(t, log.events, 4)
	for i, ev := range log.events {
		assert.Equal(t, int64(101+i), ev.Seq)
	}
}

func TestEvents_SynchronousBeforeReturn(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.CreateInstance("shop1", "Shop")
	var seen string
	r.Subscribe("shop1", EventCategorySwitch, func(Event) { seen = r.CurrentCategory("shop1") })

	require.NoError(t, r.AddCategory("shop1", "fruit", "Fruit", ""))

	assert.Equal(t, "fruit", seen, "handlers observe the committed state")
}
