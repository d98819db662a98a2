package catalog

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/storefront/internal/command"
)

// Storefront is one compiled storefront definition.
type Storefront struct {
	ID       string
	Title    string
	Commands []command.Command
}

const msgNoStorefronts = "no storefront definitions"

var (
	storefrontFields = []string{"title", "theme", "colors", "currency", "mode", "search", "categories", "settings", "geometry", "sounds"}
	categoryFields   = []string{"label", "icon", "page_size", "items"}
	itemFields       = []string{"title", "price", "image", "description", "action", "colors"}
	settingFields    = []string{"kind", "label", "options", "default", "min", "max"}
)

// Compile turns the top-level "storefront" struct of v into command lists,
// one per storefront, in declaration order.
//
// The expected shape is:
//
//	storefront: shop1: {
//	    title:    "Market"
//	    theme:    "dark"
//	    currency: "€"
//	    search: placeholder: "Find fruit"
//	    categories: fruit: {
//	        label:     "Fruit"
//	        page_size: 8
//	        items: apple: {title: "Apple", price: 10}
//	    }
//	    settings: volume: {kind: "range", min: 0, max: 10, default: 5}
//	}
//
// Settings are applied last so that a storefront with settings ends up in
// settings mode unless "mode" says otherwise.
func Compile(v cue.Value) ([]Storefront, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	root := v.LookupPath(cue.ParsePath("storefront"))
	if !root.Exists() {
		return nil, &CompileError{Field: "storefront", Message: msgNoStorefronts, Pos: v.Pos()}
	}
	if err := root.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("storefront", err)
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError("storefront", err)
	}

	var out []Storefront
	for iter.Next() {
		sf, err := compileStorefront(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *sf)
	}
	if len(out) == 0 {
		return nil, &CompileError{Field: "storefront", Message: msgNoStorefronts, Pos: root.Pos()}
	}
	return out, nil
}

func compileStorefront(id string, v cue.Value) (*Storefront, error) {
	path := "storefront." + id
	if err := checkFields(path, v, storefrontFields); err != nil {
		return nil, err
	}

	title, err := optString(path, v, "title")
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = id
	}

	sf := &Storefront{ID: id, Title: title}
	emit := func(op string, args command.Args) {
		sf.Commands = append(sf.Commands, command.Command{Op: op, Instance: id, Args: args})
	}
	emit("create", command.Args{"title": title})

	theme, err := optString(path, v, "theme")
	if err != nil {
		return nil, err
	}
	if theme != "" {
		emit("set_theme", command.Args{"theme": theme})
	}

	if colors := v.LookupPath(cue.ParsePath("colors")); colors.Exists() {
		args, err := stringArgs(path+".colors", colors, "background", "text", "card", "sidebar")
		if err != nil {
			return nil, err
		}
		emit("set_custom_colors", args)
	}

	currency, err := optString(path, v, "currency")
	if err != nil {
		return nil, err
	}
	if currency != "" {
		emit("set_currency", command.Args{"symbol": currency})
	}

	if geo := v.LookupPath(cue.ParsePath("geometry")); geo.Exists() {
		if err := compileGeometry(path+".geometry", geo, emit); err != nil {
			return nil, err
		}
	}

	if sounds := v.LookupPath(cue.ParsePath("sounds")); sounds.Exists() {
		args, err := stringArgs(path+".sounds", sounds, "click", "button")
		if err != nil {
			return nil, err
		}
		if s := args.String("click"); s != "" {
			emit("set_click_sound", command.Args{"sound": s})
		}
		if s := args.String("button"); s != "" {
			emit("set_button_sound", command.Args{"sound": s})
		}
	}

	if search := v.LookupPath(cue.ParsePath("search")); search.Exists() {
		args, err := stringArgs(path+".search", search, "placeholder")
		if err != nil {
			return nil, err
		}
		emit("add_search_bar", args)
	}

	if cats := v.LookupPath(cue.ParsePath("categories")); cats.Exists() {
		iter, err := cats.Fields()
		if err != nil {
			return nil, formatCUEError(path+".categories", err)
		}
		for iter.Next() {
			if err := compileCategory(path+".categories."+iter.Label(), iter.Label(), iter.Value(), emit); err != nil {
				return nil, err
			}
		}
	}

	if settings := v.LookupPath(cue.ParsePath("settings")); settings.Exists() {
		iter, err := settings.Fields()
		if err != nil {
			return nil, formatCUEError(path+".settings", err)
		}
		for iter.Next() {
			if err := compileSetting(path+".settings."+iter.Label(), iter.Label(), iter.Value(), emit); err != nil {
				return nil, err
			}
		}
	}

	mode, err := optString(path, v, "mode")
	if err != nil {
		return nil, err
	}
	switch mode {
	case "":
	case "catalog", "settings":
		emit("set_mode", command.Args{"mode": mode})
	default:
		return nil, fieldError(path, v, "mode", "must be catalog or settings")
	}

	return sf, nil
}

func compileCategory(path, key string, v cue.Value, emit func(string, command.Args)) error {
	if err := checkFields(path, v, categoryFields); err != nil {
		return err
	}
	args, err := stringArgs(path, v, "label", "icon")
	if err != nil {
		return err
	}
	args["category"] = key
	emit("add_category", args)

	if ps := v.LookupPath(cue.ParsePath("page_size")); ps.Exists() {
		n, err := ps.Int64()
		if err != nil || n < 1 {
			return fieldError(path, v, "page_size", "must be a positive integer")
		}
		emit("set_items_per_page", command.Args{"category": key, "n": int(n)})
	}

	items := v.LookupPath(cue.ParsePath("items"))
	if !items.Exists() {
		return nil
	}
	iter, err := items.Fields()
	if err != nil {
		return formatCUEError(path+".items", err)
	}
	for iter.Next() {
		if err := compileItem(path+".items."+iter.Label(), key, iter.Label(), iter.Value(), emit); err != nil {
			return err
		}
	}
	return nil
}

func compileItem(path, category, key string, v cue.Value, emit func(string, command.Args)) error {
	if err := checkFields(path, v, itemFields); err != nil {
		return err
	}
	args, err := stringArgs(path, v, "title", "image", "description", "action")
	if err != nil {
		return err
	}
	args["category"] = category
	args["item"] = key

	if p := v.LookupPath(cue.ParsePath("price")); p.Exists() {
		price, err := priceValue(p)
		if err != nil {
			return fieldError(path, v, "price", "must be a number or string")
		}
		args["price"] = price
	}
	emit("add_item", args)

	if colors := v.LookupPath(cue.ParsePath("colors")); colors.Exists() {
		cargs, err := stringArgs(path+".colors", colors, "background", "text", "button")
		if err != nil {
			return err
		}
		cargs["item"] = key
		emit("set_item_colors", cargs)
	}
	return nil
}

func compileSetting(path, key string, v cue.Value, emit func(string, command.Args)) error {
	if err := checkFields(path, v, settingFields); err != nil {
		return err
	}
	kind, err := optString(path, v, "kind")
	if err != nil {
		return err
	}
	label, err := optString(path, v, "label")
	if err != nil {
		return err
	}
	args := command.Args{"key": key, "label": label}
	def := v.LookupPath(cue.ParsePath("default"))

	switch kind {
	case "toggle":
		on := false
		if def.Exists() {
			if on, err = def.Bool(); err != nil {
				return fieldError(path, v, "default", "toggle default must be a boolean")
			}
		}
		args["default"] = on
		emit("add_setting_toggle", args)

	case "choice":
		opts := v.LookupPath(cue.ParsePath("options"))
		if !opts.Exists() {
			return fieldError(path, v, "options", "choice requires options")
		}
		list, err := stringList(opts)
		if err != nil {
			return fieldError(path, v, "options", "options must be a list of strings")
		}
		args["options"] = list
		if def.Exists() {
			s, err := def.String()
			if err != nil {
				return fieldError(path, v, "default", "choice default must be a string")
			}
			args["default"] = s
		}
		emit("add_setting_choice", args)

	case "range":
		for _, field := range []string{"min", "max", "default"} {
			f := v.LookupPath(cue.ParsePath(field))
			if !f.Exists() {
				continue
			}
			n, err := f.Float64()
			if err != nil {
				return fieldError(path, v, field, "must be a number")
			}
			args[field] = n
		}
		emit("add_setting_range", args)

	case "":
		return fieldError(path, v, "kind", "kind is required")
	default:
		return fieldError(path, v, "kind", fmt.Sprintf("unknown setting kind %q (want toggle, choice or range)", kind))
	}
	return nil
}

func compileGeometry(path string, v cue.Value, emit func(string, command.Args)) error {
	nums := command.Args{}
	for _, field := range []string{"x", "y", "width", "height"} {
		f := v.LookupPath(cue.ParsePath(field))
		if !f.Exists() {
			continue
		}
		n, err := f.Float64()
		if err != nil {
			return fieldError(path, v, field, "must be a number")
		}
		nums[field] = n
	}
	if nums.Has("x") || nums.Has("y") {
		emit("move", command.Args{"x": nums.Float("x", 50), "y": nums.Float("y", 50)})
	}
	if nums.Has("width") || nums.Has("height") {
		emit("resize", command.Args{"width": nums.Float("width", 800), "height": nums.Float("height", 500)})
	}
	if vis := v.LookupPath(cue.ParsePath("visible")); vis.Exists() {
		b, err := vis.Bool()
		if err != nil {
			return fieldError(path, v, "visible", "must be a boolean")
		}
		emit("set_visible", command.Args{"visible": b})
	}
	return nil
}

// priceValue returns an int, float64 or string for the price argument.
func priceValue(v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		return int(n), err
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	}
	return nil, fmt.Errorf("unsupported price kind %s", v.IncompleteKind())
}

// checkFields rejects labels outside known, catching typos like "titel".
func checkFields(path string, v cue.Value, known []string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(path, err)
	}
	for iter.Next() {
		if !slices.Contains(known, iter.Label()) {
			return &CompileError{
				Field:   path + "." + iter.Label(),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func optString(path string, v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", fieldError(path, v, field, "must be a string")
	}
	return s, nil
}

// stringArgs collects optional string fields into command args.
func stringArgs(path string, v cue.Value, fields ...string) (command.Args, error) {
	args := command.Args{}
	for _, field := range fields {
		s, err := optString(path, v, field)
		if err != nil {
			return nil, err
		}
		if s != "" {
			args[field] = s
		}
	}
	return args, nil
}

func stringList(v cue.Value) ([]any, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []any
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func fieldError(path string, v cue.Value, field, msg string) *CompileError {
	pos := v.Pos()
	if f := v.LookupPath(cue.ParsePath(field)); f.Exists() {
		pos = f.Pos()
	}
	return &CompileError{Field: path + "." + field, Message: msg, Pos: pos}
}
