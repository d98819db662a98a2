package command

import (
	"fmt"
	"slices"

	"github.com/roach88/storefront/internal/storefront"
)

// Query is one read-only engine call described as data.
type Query struct {
	Name     string `yaml:"query" json:"query"`
	Instance string `yaml:"instance" json:"instance"`
	Args     Args   `yaml:"args,omitempty" json:"args,omitempty"`
}

type queryFunc func(r *storefront.Registry, id string, a Args) any

// Ask answers a query. Values are limited to the types canonical.Marshal
// accepts, so results can be compared by their canonical encoding.
// Absent instances yield the zero answer, never an error.
func (d *Dispatcher) Ask(q Query) (any, error) {
	fn, ok := queries[q.Name]
	if !ok {
		return nil, fmt.Errorf("%w: query %q", ErrUnknownOp, q.Name)
	}
	args := q.Args
	if args == nil {
		args = Args{}
	}
	return fn(d.reg, q.Instance, args), nil
}

// Queries returns every query name, sorted.
func Queries() []string {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var queries = map[string]queryFunc{
	"exists": func(r *storefront.Registry, id string, _ Args) any {
		return r.Exists(id)
	},
	"title": func(r *storefront.Registry, id string, _ Args) any {
		return r.Title(id)
	},
	"mode": func(r *storefront.Registry, id string, _ Args) any {
		return string(r.Mode(id))
	},
	"theme": func(r *storefront.Registry, id string, _ Args) any {
		theme, _ := r.Theme(id)
		return string(theme)
	},
	"categories": func(r *storefront.Registry, id string, _ Args) any {
		return stringList(r.Categories(id))
	},
	"current_category": func(r *storefront.Registry, id string, _ Args) any {
		return r.CurrentCategory(id)
	},
	"category_label": func(r *storefront.Registry, id string, a Args) any {
		label, _ := r.CategoryLabel(id, categoryArg(r, id, a))
		return label
	},
	"current_page": func(r *storefront.Registry, id string, a Args) any {
		return r.CurrentPage(id, categoryArg(r, id, a))
	},
	"total_pages": func(r *storefront.Registry, id string, a Args) any {
		return r.TotalPages(id, categoryArg(r, id, a))
	},
	"page_size": func(r *storefront.Registry, id string, a Args) any {
		return r.PageSize(id, categoryArg(r, id, a))
	},
	"item_count": func(r *storefront.Registry, id string, a Args) any {
		return r.ItemCount(id, categoryArg(r, id, a))
	},
	"items": func(r *storefront.Registry, id string, a Args) any {
		return itemKeys(r.Items(id, categoryArg(r, id, a)))
	},
	"visible_items": func(r *storefront.Registry, id string, a Args) any {
		return itemKeys(r.VisibleItems(id, categoryArg(r, id, a)))
	},
	"cart_count": func(r *storefront.Registry, id string, _ Args) any {
		return r.CartCount(id)
	},
	"cart_total": func(r *storefront.Registry, id string, _ Args) any {
		return r.CartTotalDecimal(id)
	},
	"cart_items": func(r *storefront.Registry, id string, _ Args) any {
		lines := make(map[string]any)
		for key, line := range r.CartItems(id) {
			lines[key] = map[string]any{
				"quantity": line.Quantity,
				"price":    line.UnitPrice,
				"title":    line.Title,
			}
		}
		return lines
	},
	"cart_json": func(r *storefront.Registry, id string, _ Args) any {
		return r.CartJSON(id)
	},
	"currency": func(r *storefront.Registry, id string, _ Args) any {
		return r.Currency(id)
	},
	"search_query": func(r *storefront.Registry, id string, _ Args) any {
		return r.SearchQuery(id)
	},
	"setting_value": func(r *storefront.Registry, id string, a Args) any {
		return r.SettingValue(id, a.String("key"))
	},
	"last_click": func(r *storefront.Registry, _ string, _ Args) any {
		c := r.LastClick()
		return map[string]any{
			"item_id":      c.ItemID,
			"title":        c.Title,
			"action_label": c.ActionLabel,
		}
	},
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func itemKeys(items []storefront.Item) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}
