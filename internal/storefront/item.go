package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Price keeps the caller's raw price text next to its numeric form.
// Text that does not parse as a number has a zero Amount and Numeric false.
type Price struct {
	Raw     string          `json:"raw"`
	Amount  decimal.Decimal `json:"amount"`
	Numeric bool            `json:"numeric"`
}

// ParsePrice coerces raw price text. Surrounding whitespace is ignored and
// empty text means zero, matching how loosely typed hosts treat prices.
func ParsePrice(raw string) Price {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Price{Raw: raw, Amount: decimal.Zero, Numeric: true}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{Raw: raw, Amount: decimal.Zero}
	}
	return Price{Raw: raw, Amount: d, Numeric: true}
}

// PriceOf builds a Price from a number.
func PriceOf(amount float64) Price {
	d := decimal.NewFromFloat(amount)
	return Price{Raw: d.String(), Amount: d, Numeric: true}
}

// ItemColors are pass-through colours for one item card.
type ItemColors struct {
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
	Button     string `json:"button,omitempty"`
}

// Item is a catalog entry. Keys are unique within a category only.
type Item struct {
	Key         string     `json:"key"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Price       Price      `json:"price"`
	ImageRef    string     `json:"image_ref,omitempty"`
	Description string     `json:"description,omitempty"`
	ActionLabel string     `json:"action_label"`
	Colors      ItemColors `json:"colors"`
}

// AddItem inserts an item at the end of the category's order. The category
// is created with label = key if absent (without being selected). An item
// with the same key is replaced outright, including its position and
// colours. Fires page-change for the category.
func (r *Registry) AddItem(id, categoryKey string, item Item) error {
	in, err := r.lookup("add_item", id)
	if err != nil {
		return err
	}
	c := r.ensureCategory(in, categoryKey)
	c.remove(item.Key)

	item.Category = categoryKey
	item.Colors = ItemColors{}
	if item.ActionLabel == "" {
		item.ActionLabel = DefaultActionLabel
	}
	c.items[item.Key] = &item
	c.order = append(c.order, item.Key)
	c.clamp()
	r.emit(EventPageChange, id, categoryKey, "")
	return nil
}

// DeleteItem removes an item key from the first category (in insertion
// order) that holds it. Later categories with the same key keep theirs.
// Fires page-change for the affected category.
func (r *Registry) DeleteItem(id, itemKey string) error {
	in, err := r.lookup("delete_item", id)
	if err != nil {
		return err
	}
	for _, key := range in.order {
		c := in.categories[key]
		if c.remove(itemKey) {
			r.emit(EventPageChange, id, key, "")
			return nil
		}
	}
	return r.ignore("delete_item", itemNotFound(id, itemKey))
}

// SetItemColors sets pass-through colours on every copy of the item key.
func (r *Registry) SetItemColors(id, itemKey string, colors ItemColors) error {
	in, err := r.lookup("set_item_colors", id)
	if err != nil {
		return err
	}
	found := false
	for _, key := range in.order {
		if it, ok := in.categories[key].items[itemKey]; ok {
			it.Colors = colors
			found = true
		}
	}
	if !found {
		return r.ignore("set_item_colors", itemNotFound(id, itemKey))
	}
	return nil
}

// ClickItem records a renderer-reported action click as the registry-wide
// last click and fires item-click. An empty categoryKey resolves the item by
// first match across categories.
func (r *Registry) ClickItem(id, categoryKey, itemKey string) error {
	in, err := r.lookup("click_item", id)
	if err != nil {
		return err
	}
	var it *Item
	if categoryKey == "" {
		it = in.findItem(itemKey)
	} else if c, ok := in.categories[categoryKey]; ok {
		it = c.items[itemKey]
	}
	if it == nil {
		return r.ignore("click_item", itemNotFound(id, itemKey))
	}
	r.lastClick = Click{ItemID: it.Key, Title: it.Title, ActionLabel: it.ActionLabel}
	r.emit(EventItemClick, id, "", it.Key)
	return nil
}

// findItem returns the first item with the key, scanning categories in
// insertion order.
func (in *instance) findItem(itemKey string) *Item {
	for _, key := range in.order {
		if it, ok := in.categories[key].items[itemKey]; ok {
			return it
		}
	}
	return nil
}

// Items returns copies of a category's items in order.
func (r *Registry) Items(id, categoryKey string) []Item {
	in, ok := r.instances[id]
	if !ok {
		return nil
	}
	c, ok := in.categories[categoryKey]
	if !ok {
		return nil
	}
	out := make([]Item, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.items[key])
	}
	return out
}

// ItemCount returns the number of items in a category.
func (r *Registry) ItemCount(id, categoryKey string) int {
	if in, ok := r.instances[id]; ok {
		if c, ok := in.categories[categoryKey]; ok {
			return len(c.order)
		}
	}
	return 0
}

// VisibleItems returns the items a renderer should show: those inside the
// current page's index range that also match the search filter. An empty
// categoryKey means the current category.
func (r *Registry) VisibleItems(id, categoryKey string) []Item {
	in, ok := r.instances[id]
	if !ok {
		return nil
	}
	if categoryKey == "" {
		categoryKey = in.current
	}
	c, ok := in.categories[categoryKey]
	if !ok {
		return nil
	}
	match := newMatcher(in.searchQuery)
	var out []Item
	for _, key := range c.pageSlice() {
		it := c.items[key]
		if match(searchText(it, in.cart.currency)) {
			out = append(out, *it)
		}
	}
	return out
}

// searchText is the rendered text of an item card.
func searchText(it *Item, currency string) string {
	return strings.Join([]string{it.Title, currency + it.Price.Raw, it.Description, it.ActionLabel}, "\n")
}

// newMatcher returns a case-insensitive substring test for query.
// An empty query matches everything.
func newMatcher(query string) func(string) bool {
	if query == "" {
		return func(string) bool { return true }
	}
	needle := cases.Fold().String(query)
	return func(text string) bool {
		return strings.Contains(cases.Fold().String(text), needle)
	}
}

// SetItemsPerPage sets pageSize = max(1, n) and clamps the page cursor.
// Fires page-change.
func (r *Registry) SetItemsPerPage(id, categoryKey string, n int) error {
	c, err := r.category("set_items_per_page", id, categoryKey)
	if err != nil {
		return err
	}
	c.pageSize = max(1, n)
	c.clamp()
	r.emit(EventPageChange, id, categoryKey, "")
	return nil
}

// GoToPage moves the cursor to p, clamped into [1, totalPages].
// Fires page-change.
func (r *Registry) GoToPage(id, categoryKey string, p int) error {
	c, err := r.category("go_to_page", id, categoryKey)
	if err != nil {
		return err
	}
	c.page = p
	c.clamp()
	r.emit(EventPageChange, id, categoryKey, "")
	return nil
}

// NextPage advances the cursor by one, clamped. Fires page-change.
func (r *Registry) NextPage(id, categoryKey string) error {
	c, err := r.category("next_page", id, categoryKey)
	if err != nil {
		return err
	}
	c.page++
	c.clamp()
	r.emit(EventPageChange, id, categoryKey, "")
	return nil
}

// PrevPage moves the cursor back by one, clamped. Fires page-change.
func (r *Registry) PrevPage(id, categoryKey string) error {
	c, err := r.category("prev_page", id, categoryKey)
	if err != nil {
		return err
	}
	c.page--
	c.clamp()
	r.emit(EventPageChange, id, categoryKey, "")
	return nil
}

// CurrentPage returns the page cursor, or 0 if the instance or category is absent.
func (r *Registry) CurrentPage(id, categoryKey string) int {
	if in, ok := r.instances[id]; ok {
		if c, ok := in.categories[categoryKey]; ok {
			return c.page
		}
	}
	return 0
}

// TotalPages returns max(1, ceil(items/pageSize)), or 0 if absent.
func (r *Registry) TotalPages(id, categoryKey string) int {
	if in, ok := r.instances[id]; ok {
		if c, ok := in.categories[categoryKey]; ok {
			return c.totalPages()
		}
	}
	return 0
}

// PageSize returns the category page size, or 0 if absent.
func (r *Registry) PageSize(id, categoryKey string) int {
	if in, ok := r.instances[id]; ok {
		if c, ok := in.categories[categoryKey]; ok {
			return c.pageSize
		}
	}
	return 0
}
