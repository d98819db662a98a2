package storefront

// CategoryView is a read-only copy of one category.
type CategoryView struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	PageSize    int    `json:"page_size"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	Items       []Item `json:"items"`
}

// CartView is a read-only copy of a cart.
type CartView struct {
	Currency string              `json:"currency"`
	Count    int                 `json:"count"`
	Total    string              `json:"total"`
	Lines    map[string]CartLine `json:"lines"`
}

// SettingView is a read-only copy of a setting with its kind spelled out.
type SettingView struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Kind  SettingKind  `json:"kind"`
	Value string       `json:"value"`
	Typed SettingValue `json:"typed"`
}

// InstanceView is a serializable copy of a whole instance.
type InstanceView struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Mode              Mode           `json:"mode"`
	Theme             Theme          `json:"theme"`
	Colors            Colors         `json:"colors"`
	CurrentCategory   string         `json:"current_category"`
	Categories        []CategoryView `json:"categories"`
	Cart              CartView       `json:"cart"`
	Settings          []SettingView  `json:"settings"`
	SearchQuery       string         `json:"search_query"`
	SearchEnabled     bool           `json:"search_enabled"`
	SearchPlaceholder string         `json:"search_placeholder,omitempty"`
	Geometry          Geometry       `json:"geometry"`
	ClickSound        string         `json:"click_sound,omitempty"`
	ButtonSound       string         `json:"button_sound,omitempty"`
}

// Snapshot copies the full state of an instance.
func (r *Registry) Snapshot(id string) (InstanceView, bool) {
	in, ok := r.instances[id]
	if !ok {
		return InstanceView{}, false
	}
	v := InstanceView{
		ID:                in.id,
		Title:             in.title,
		Mode:              in.mode,
		Theme:             in.theme,
		Colors:            in.colors,
		CurrentCategory:   in.current,
		Categories:        make([]CategoryView, 0, len(in.order)),
		SearchQuery:       in.searchQuery,
		SearchEnabled:     in.searchEnabled,
		SearchPlaceholder: in.searchPlaceholder,
		Geometry:          in.geometry,
		ClickSound:        in.clickSound,
		ButtonSound:       in.buttonSound,
		Cart: CartView{
			Currency: in.cart.currency,
			Count:    r.CartCount(id),
			Total:    r.CartTotalDecimal(id).String(),
			Lines:    r.CartItems(id),
		},
	}
	for _, key := range in.order {
		c := in.categories[key]
		v.Categories = append(v.Categories, CategoryView{
			Key:         c.key,
			Label:       c.label,
			Icon:        c.icon,
			PageSize:    c.pageSize,
			CurrentPage: c.page,
			TotalPages:  c.totalPages(),
			Items:       r.Items(id, key),
		})
	}
	for _, s := range r.Settings(id) {
		v.Settings = append(v.Settings, SettingView{
			Key:   s.Key,
			Label: s.Label,
			Kind:  s.Value.Kind(),
			Value: s.Value.String(),
			Typed: s.Value,
		})
	}
	return v, true
}
