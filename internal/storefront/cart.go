package storefront

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/canonical"
)

// CartLine is one item's aggregated quantity, last-seen unit price and title.
type CartLine struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
}

type cart struct {
	currency string
	lines    map[string]*CartLine
}

func newCart(currency string) *cart {
	return &cart{currency: currency, lines: make(map[string]*CartLine)}
}

// AddToCart adds qty (at least 1) of an item. The item is resolved by first
// match across categories, so items sharing a key in different categories
// share one cart line. Each add refreshes the line's price and title from
// the catalog. Fires cart-change.
func (r *Registry) AddToCart(id, itemKey string, qty int) error {
	in, err := r.lookup("cart_add", id)
	if err != nil {
		return err
	}
	it := in.findItem(itemKey)
	if it == nil {
		return r.ignore("cart_add", itemNotFound(id, itemKey))
	}
	qty = max(1, qty)
	title := it.Title
	if title == "" {
		title = itemKey
	}
	line, ok := in.cart.lines[itemKey]
	if ok && qty > math.MaxInt-line.Quantity {
		return r.ignore("cart_add", invalidValue(id, itemKey, "quantity overflow"))
	}
	if !ok {
		line = &CartLine{}
		in.cart.lines[itemKey] = line
	}
	line.Quantity += qty
	line.UnitPrice = it.Price.Amount
	line.Title = title
	r.emit(EventCartChange, id, "", "")
	return nil
}

// RemoveFromCart subtracts qty (at least 1) from a line and drops the line
// once its quantity reaches zero. Fires cart-change.
func (r *Registry) RemoveFromCart(id, itemKey string, qty int) error {
	in, err := r.lookup("cart_remove", id)
	if err != nil {
		return err
	}
	line, ok := in.cart.lines[itemKey]
	if !ok {
		return r.ignore("cart_remove", &LookupError{
			Code: ErrCodeCartLineNotFound, Instance: id, Key: itemKey, Message: "no cart line for item",
		})
	}
	line.Quantity -= max(1, qty)
	if line.Quantity <= 0 {
		delete(in.cart.lines, itemKey)
	}
	r.emit(EventCartChange, id, "", "")
	return nil
}

// ClearCart empties the cart. Fires cart-change.
func (r *Registry) ClearCart(id string) error {
	in, err := r.lookup("cart_clear", id)
	if err != nil {
		return err
	}
	clear(in.cart.lines)
	r.emit(EventCartChange, id, "", "")
	return nil
}

// SetCurrency changes the display currency. Stored prices are untouched.
// An empty symbol restores the registry default.
func (r *Registry) SetCurrency(id, symbol string) error {
	in, err := r.lookup("set_currency", id)
	if err != nil {
		return err
	}
	if symbol == "" {
		symbol = r.currency
	}
	in.cart.currency = symbol
	return nil
}

// Currency returns the display currency, or "" if absent.
func (r *Registry) Currency(id string) string {
	if in, ok := r.instances[id]; ok {
		return in.cart.currency
	}
	return ""
}

// CartCount returns the sum of line quantities, saturating at math.MaxInt.
func (r *Registry) CartCount(id string) int {
	in, ok := r.instances[id]
	if !ok {
		return 0
	}
	n := 0
	for _, line := range in.cart.lines {
		if line.Quantity > math.MaxInt-n {
			return math.MaxInt
		}
		n += line.Quantity
	}
	return n
}

// CartTotalDecimal returns the exact sum of quantity × unit price.
func (r *Registry) CartTotalDecimal(id string) decimal.Decimal {
	in, ok := r.instances[id]
	if !ok {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, line := range in.cart.lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CartTotal returns the cart total as a float. Non-numeric prices count as 0.
func (r *Registry) CartTotal(id string) float64 {
	return r.CartTotalDecimal(id).InexactFloat64()
}

// CartItems returns a copy of the cart lines keyed by item key.
func (r *Registry) CartItems(id string) map[string]CartLine {
	out := make(map[string]CartLine)
	in, ok := r.instances[id]
	if !ok {
		return out
	}
	for key, line := range in.cart.lines {
		out[key] = *line
	}
	return out
}

// CartKeys returns the item keys with cart lines, sorted.
func (r *Registry) CartKeys(id string) []string {
	in, ok := r.instances[id]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(in.cart.lines))
	for key := range in.cart.lines {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// CartJSON renders the cart as canonical JSON:
// {"<key>":{"price":<n>,"quantity":<n>,"title":"<s>"}}. Absent instances
// render as {}.
func (r *Registry) CartJSON(id string) string {
	obj := make(map[string]any)
	for key, line := range r.CartItems(id) {
		obj[key] = map[string]any{
			"quantity": line.Quantity,
			"price":    line.UnitPrice,
			"title":    line.Title,
		}
	}
	data, err := canonical.Marshal(obj)
	if err != nil {
		return "{}"
	}
	return string(data)
}
