package storefront

import "slices"

type category struct {
	key   string
	label string
	icon  string

	order []string // item keys, no duplicates
	items map[string]*Item

	pageSize int
	page     int
}

func newCategory(key, label, icon string, pageSize int) *category {
	if label == "" {
		label = key
	}
	return &category{
		key:      key,
		label:    label,
		icon:     icon,
		items:    make(map[string]*Item),
		pageSize: pageSize,
		page:     1,
	}
}

// totalPages is max(1, ceil(len(order)/pageSize)).
func (c *category) totalPages() int {
	n := len(c.order)
	if n == 0 {
		return 1
	}
	return (n-1)/c.pageSize + 1
}

// clamp pulls the page cursor back into [1, totalPages].
func (c *category) clamp() {
	if tp := c.totalPages(); c.page > tp {
		c.page = tp
	}
	if c.page < 1 {
		c.page = 1
	}
}

// pageSlice returns the item keys inside the current page's half-open
// index range [(page-1)*pageSize, page*pageSize).
func (c *category) pageSlice() []string {
	start := (c.page - 1) * c.pageSize
	if start >= len(c.order) {
		return nil
	}
	end := start + min(c.pageSize, len(c.order)-start)
	return c.order[start:end]
}

func (c *category) remove(itemKey string) bool {
	if _, ok := c.items[itemKey]; !ok {
		return false
	}
	delete(c.items, itemKey)
	if i := slices.Index(c.order, itemKey); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	c.clamp()
	return true
}

// ensureCategory returns the category, creating it with label = key when
// absent. Creation here never changes the selection.
func (r *Registry) ensureCategory(in *instance, key string) *category {
	if c, ok := in.categories[key]; ok {
		return c
	}
	c := newCategory(key, key, "", r.pageSize)
	in.categories[key] = c
	in.order = append(in.order, key)
	return c
}

// AddCategory creates a category. Adding an existing key changes nothing,
// not even its label or icon. The first category an instance gets becomes
// the current one and fires category-switch.
func (r *Registry) AddCategory(id, key, label, icon string) error {
	in, err := r.lookup("add_category", id)
	if err != nil {
		return err
	}
	if _, ok := in.categories[key]; ok {
		return nil
	}
	c := newCategory(key, label, icon, r.pageSize)
	in.categories[key] = c
	in.order = append(in.order, key)
	if in.current == "" {
		r.selectCategory(in, key)
	}
	return nil
}

// RenameCategory updates the label only.
func (r *Registry) RenameCategory(id, key, label string) error {
	c, err := r.category("rename_category", id, key)
	if err != nil {
		return err
	}
	c.label = label
	return nil
}

// SetCategoryIcon updates the icon only.
func (r *Registry) SetCategoryIcon(id, key, icon string) error {
	c, err := r.category("set_category_icon", id, key)
	if err != nil {
		return err
	}
	c.icon = icon
	return nil
}

// RemoveCategory deletes the category and its items. Cart lines that
// reference those items stay in the cart. If the category was selected,
// selection falls back to the first remaining category (firing
// category-switch) or to no selection (firing nothing).
func (r *Registry) RemoveCategory(id, key string) error {
	in, err := r.lookup("remove_category", id)
	if err != nil {
		return err
	}
	if _, ok := in.categories[key]; !ok {
		return r.ignore("remove_category", categoryNotFound(id, key))
	}
	delete(in.categories, key)
	if i := slices.Index(in.order, key); i >= 0 {
		in.order = slices.Delete(in.order, i, i+1)
	}
	if in.current == key {
		in.current = ""
		if len(in.order) > 0 {
			r.selectCategory(in, in.order[0])
		}
	}
	return nil
}

// SwitchCategory selects a category and fires category-switch. Unknown keys
// are ignored and fire nothing.
func (r *Registry) SwitchCategory(id, key string) error {
	in, err := r.lookup("switch_category", id)
	if err != nil {
		return err
	}
	if _, ok := in.categories[key]; !ok {
		return r.ignore("switch_category", categoryNotFound(id, key))
	}
	r.selectCategory(in, key)
	return nil
}

func (r *Registry) selectCategory(in *instance, key string) {
	in.current = key
	r.emit(EventCategorySwitch, in.id, "", "")
}

// CurrentCategory returns the selected category key, or "".
func (r *Registry) CurrentCategory(id string) string {
	if in, ok := r.instances[id]; ok {
		return in.current
	}
	return ""
}

// Categories returns the category keys of an instance in insertion order.
func (r *Registry) Categories(id string) []string {
	in, ok := r.instances[id]
	if !ok {
		return nil
	}
	return slices.Clone(in.order)
}

// CategoryLabel returns the label and icon of a category.
func (r *Registry) CategoryLabel(id, key string) (label, icon string) {
	if in, ok := r.instances[id]; ok {
		if c, ok := in.categories[key]; ok {
			return c.label, c.icon
		}
	}
	return "", ""
}

// category resolves an instance and one of its categories for a command.
func (r *Registry) category(op, id, key string) (*category, error) {
	in, err := r.lookup(op, id)
	if err != nil {
		return nil, err
	}
	c, ok := in.categories[key]
	if !ok {
		return nil, r.ignore(op, categoryNotFound(id, key))
	}
	return c, nil
}
