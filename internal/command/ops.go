package command

import "github.com/roach88/storefront/internal/storefront"

var ops = map[string]handler{
	// Lifecycle
	"create": func(r *storefront.Registry, id string, a Args) error {
		r.CreateInstance(id, a.String("title"))
		return nil
	},
	"destroy": func(r *storefront.Registry, id string, _ Args) error {
		r.DestroyInstance(id)
		return nil
	},
	"set_mode": func(r *storefront.Registry, id string, a Args) error {
		return r.SetMode(id, a.String("mode"))
	},

	// Categories
	"add_category": func(r *storefront.Registry, id string, a Args) error {
		return r.AddCategory(id, a.String("category"), a.String("label"), a.String("icon"))
	},
	"rename_category": func(r *storefront.Registry, id string, a Args) error {
		return r.RenameCategory(id, a.String("category"), a.String("label"))
	},
	"set_category_icon": func(r *storefront.Registry, id string, a Args) error {
		return r.SetCategoryIcon(id, a.String("category"), a.String("icon"))
	},
	"remove_category": func(r *storefront.Registry, id string, a Args) error {
		return r.RemoveCategory(id, a.String("category"))
	},
	"switch_category": func(r *storefront.Registry, id string, a Args) error {
		return r.SwitchCategory(id, a.String("category"))
	},

	// Items
	"add_item": func(r *storefront.Registry, id string, a Args) error {
		return r.AddItem(id, a.String("category"), storefront.Item{
			Key:         a.String("item"),
			Title:       a.String("title"),
			Price:       a.Price("price"),
			ImageRef:    a.String("image"),
			Description: a.String("description"),
			ActionLabel: a.String("action"),
		})
	},
	"delete_item": func(r *storefront.Registry, id string, a Args) error {
		return r.DeleteItem(id, a.String("item"))
	},
	"set_item_colors": func(r *storefront.Registry, id string, a Args) error {
		return r.SetItemColors(id, a.String("item"), storefront.ItemColors{
			Background: a.String("background"),
			Text:       a.String("text"),
			Button:     a.String("button"),
		})
	},
	"click_item": func(r *storefront.Registry, id string, a Args) error {
		return r.ClickItem(id, a.String("category"), a.String("item"))
	},

	// Cart
	"cart_add": func(r *storefront.Registry, id string, a Args) error {
		return r.AddToCart(id, a.String("item"), a.Int("qty", 1))
	},
	"cart_remove": func(r *storefront.Registry, id string, a Args) error {
		return r.RemoveFromCart(id, a.String("item"), a.Int("qty", 1))
	},
	"cart_clear": func(r *storefront.Registry, id string, _ Args) error {
		return r.ClearCart(id)
	},
	"set_currency": func(r *storefront.Registry, id string, a Args) error {
		return r.SetCurrency(id, a.String("symbol"))
	},

	// Pagination. An omitted category means the current one.
	"set_items_per_page": func(r *storefront.Registry, id string, a Args) error {
		return r.SetItemsPerPage(id, categoryArg(r, id, a), a.Int("n", storefront.DefaultPageSize))
	},
	"go_to_page": func(r *storefront.Registry, id string, a Args) error {
		return r.GoToPage(id, categoryArg(r, id, a), a.Int("page", 1))
	},
	"next_page": func(r *storefront.Registry, id string, a Args) error {
		return r.NextPage(id, categoryArg(r, id, a))
	},
	"prev_page": func(r *storefront.Registry, id string, a Args) error {
		return r.PrevPage(id, categoryArg(r, id, a))
	},

	// Search
	"add_search_bar": func(r *storefront.Registry, id string, a Args) error {
		return r.AddSearchBar(id, a.String("placeholder"))
	},
	"filter_items": func(r *storefront.Registry, id string, a Args) error {
		return r.FilterItems(id, a.String("text"))
	},

	// Appearance
	"set_theme": func(r *storefront.Registry, id string, a Args) error {
		return r.SetTheme(id, a.String("theme"))
	},
	"set_custom_colors": func(r *storefront.Registry, id string, a Args) error {
		return r.SetCustomColors(id, storefront.Colors{
			Background: a.String("background"),
			Text:       a.String("text"),
			Card:       a.String("card"),
			Sidebar:    a.String("sidebar"),
		})
	},
	"set_visible": func(r *storefront.Registry, id string, a Args) error {
		return r.SetVisible(id, a.Bool("visible", true))
	},
	"move": func(r *storefront.Registry, id string, a Args) error {
		return r.Move(id, a.Float("x", 0), a.Float("y", 0))
	},
	"resize": func(r *storefront.Registry, id string, a Args) error {
		return r.Resize(id, a.Float("width", 0), a.Float("height", 0))
	},
	"set_click_sound": func(r *storefront.Registry, id string, a Args) error {
		return r.SetClickSound(id, a.String("sound"))
	},
	"set_button_sound": func(r *storefront.Registry, id string, a Args) error {
		return r.SetButtonSound(id, a.String("sound"))
	},

	// Settings
	"add_setting_toggle": func(r *storefront.Registry, id string, a Args) error {
		return r.AddSettingToggle(id, a.String("key"), a.String("label"), a.Bool("default", false))
	},
	"add_setting_choice": func(r *storefront.Registry, id string, a Args) error {
		return r.AddSettingChoice(id, a.String("key"), a.String("label"), a.Strings("options"), a.String("default"))
	},
	"add_setting_range": func(r *storefront.Registry, id string, a Args) error {
		minV := a.Float("min", 0)
		return r.AddSettingRange(id, a.String("key"), a.String("label"), minV, a.Float("max", 100), a.Float("default", minV))
	},
	"set_setting_value": func(r *storefront.Registry, id string, a Args) error {
		return r.SetSettingValue(id, a.String("key"), a.String("value"))
	},
}

func categoryArg(r *storefront.Registry, id string, a Args) string {
	if a.Has("category") {
		return a.String("category")
	}
	return r.CurrentCategory(id)
}
