package storefront

// Mode is the presentation mode of an instance.
type Mode string

const (
	// ModeCatalog shows categories, search and the item grid.
	ModeCatalog Mode = "catalog"

	// ModeSettings shows the settings form; category chrome is frozen.
	ModeSettings Mode = "settings"
)

// ParseMode resolves a mode name. "marketplace" is accepted as an alias of
// catalog, and anything unrecognized defaults to catalog.
func ParseMode(s string) Mode {
	if normalizeName(s) == string(ModeSettings) {
		return ModeSettings
	}
	return ModeCatalog
}

// Theme names a colour preset.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeCustom Theme = "custom"
)

// Colors holds the four colour slots a renderer paints with.
type Colors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Card       string `json:"card"`
	Sidebar    string `json:"sidebar"`
}

var themePresets = map[Theme]Colors{
	ThemeLight: {Background: "#f5f5f7", Text: "#111", Card: "#ffffff", Sidebar: "#ffffff"},
	ThemeDark:  {Background: "#1f1f1f", Text: "#f5f5f7", Card: "#2a2a2a", Sidebar: "#262626"},
}

// Geometry holds pass-through placement fields. The engine stores them for
// the renderer and never interprets them.
type Geometry struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

var defaultGeometry = Geometry{Visible: true, X: 50, Y: 50, Width: 800, Height: 500}

// DefaultSearchPlaceholder is used when AddSearchBar gets an empty placeholder.
const DefaultSearchPlaceholder = "Search..."

type instance struct {
	id    string
	title string
	mode  Mode

	theme  Theme
	colors Colors

	categories map[string]*category
	order      []string // category keys in insertion order
	current    string

	cart     *cart
	settings *settingsRegistry

	searchQuery       string
	searchEnabled     bool
	searchPlaceholder string

	geometry    Geometry
	clickSound  string
	buttonSound string
}

func newInstance(id, title, currency string) *instance {
	return &instance{
		id:         id,
		title:      title,
		mode:       ModeCatalog,
		theme:      ThemeLight,
		colors:     themePresets[ThemeLight],
		categories: make(map[string]*category),
		cart:       newCart(currency),
		settings:   newSettingsRegistry(),
		geometry:   defaultGeometry,
	}
}

// SetMode switches the presentation mode. Unrecognized names mean catalog.
//
// Entering settings freezes the category and search chrome. Entering
// catalog restores the selected category's page, which fires page-change
// for it. Setting the mode the instance is already in does nothing.
func (r *Registry) SetMode(id, mode string) error {
	in, err := r.lookup("set_mode", id)
	if err != nil {
		return err
	}
	r.transition(in, ParseMode(mode))
	return nil
}

// Mode returns the instance mode, or "" if absent.
func (r *Registry) Mode(id string) Mode {
	if in, ok := r.instances[id]; ok {
		return in.mode
	}
	return ""
}

func (r *Registry) transition(in *instance, to Mode) {
	if in.mode == to {
		return
	}
	in.mode = to
	r.emit(EventModeChange, in.id, "", "")
	if to == ModeCatalog && in.current != "" {
		r.emit(EventPageChange, in.id, in.current, "")
	}
}

// SetTheme applies a preset. "custom" is ignored because custom colours
// only come from SetCustomColors; other unknown names fall back to light.
func (r *Registry) SetTheme(id, theme string) error {
	in, err := r.lookup("set_theme", id)
	if err != nil {
		return err
	}
	t := Theme(normalizeName(theme))
	if t == ThemeCustom {
		return r.ignore("set_theme", invalidValue(id, theme, "custom theme requires colours"))
	}
	colors, ok := themePresets[t]
	if !ok {
		t = ThemeLight
		colors = themePresets[ThemeLight]
	}
	in.theme = t
	in.colors = colors
	return nil
}

// SetCustomColors sets all four colour slots and switches the theme to custom.
func (r *Registry) SetCustomColors(id string, colors Colors) error {
	in, err := r.lookup("set_custom_colors", id)
	if err != nil {
		return err
	}
	in.theme = ThemeCustom
	in.colors = colors
	return nil
}

// Theme returns the instance theme and colours.
func (r *Registry) Theme(id string) (Theme, Colors) {
	if in, ok := r.instances[id]; ok {
		return in.theme, in.colors
	}
	return "", Colors{}
}

// SetVisible stores the renderer visibility flag.
func (r *Registry) SetVisible(id string, visible bool) error {
	in, err := r.lookup("set_visible", id)
	if err != nil {
		return err
	}
	in.geometry.Visible = visible
	return nil
}

// Move stores the renderer position.
func (r *Registry) Move(id string, x, y float64) error {
	in, err := r.lookup("move", id)
	if err != nil {
		return err
	}
	in.geometry.X, in.geometry.Y = x, y
	return nil
}

// Resize stores the renderer size.
func (r *Registry) Resize(id string, width, height float64) error {
	in, err := r.lookup("resize", id)
	if err != nil {
		return err
	}
	in.geometry.Width, in.geometry.Height = width, height
	return nil
}

// Geometry returns the pass-through placement fields.
func (r *Registry) Geometry(id string) Geometry {
	if in, ok := r.instances[id]; ok {
		return in.geometry
	}
	return Geometry{}
}

// SetClickSound stores the opaque category-click sound reference.
func (r *Registry) SetClickSound(id, ref string) error {
	in, err := r.lookup("set_click_sound", id)
	if err != nil {
		return err
	}
	in.clickSound = ref
	return nil
}

// SetButtonSound stores the opaque item-action (purchase) sound reference.
func (r *Registry) SetButtonSound(id, ref string) error {
	in, err := r.lookup("set_button_sound", id)
	if err != nil {
		return err
	}
	in.buttonSound = ref
	return nil
}

// Sounds returns the click and button sound references.
func (r *Registry) Sounds(id string) (click, button string) {
	if in, ok := r.instances[id]; ok {
		return in.clickSound, in.buttonSound
	}
	return "", ""
}

// AddSearchBar enables the search chrome. Only available in catalog mode.
func (r *Registry) AddSearchBar(id, placeholder string) error {
	in, err := r.lookup("add_search_bar", id)
	if err != nil {
		return err
	}
	if in.mode != ModeCatalog {
		return r.ignore("add_search_bar", &LookupError{
			Code: ErrCodeWrongMode, Instance: id, Message: "search bar requires catalog mode",
		})
	}
	if placeholder == "" {
		placeholder = DefaultSearchPlaceholder
	}
	in.searchEnabled = true
	in.searchPlaceholder = placeholder
	return nil
}

// FilterItems sets the live text filter applied on top of the page slice.
func (r *Registry) FilterItems(id, text string) error {
	in, err := r.lookup("filter_items", id)
	if err != nil {
		return err
	}
	in.searchQuery = text
	return nil
}

// SearchQuery returns the last applied filter text.
func (r *Registry) SearchQuery(id string) string {
	if in, ok := r.instances[id]; ok {
		return in.searchQuery
	}
	return ""
}
