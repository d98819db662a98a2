package storefront

import (
	"slices"
	"strconv"
	"strings"
)

// SettingKind identifies the shape of a setting value.
type SettingKind string

const (
	SettingToggle SettingKind = "toggle"
	SettingChoice SettingKind = "choice"
	SettingRange  SettingKind = "range"
)

// SettingValue is a sealed tagged variant: Toggle, Choice or Range.
type SettingValue interface {
	Kind() SettingKind
	// String renders the value at the string boundary: "true"/"false" for
	// toggles, the selected option for choices, the number for ranges.
	String() string
	settingValue()
}

// Toggle is a boolean setting.
type Toggle struct {
	On bool `json:"on"`
}

func (Toggle) settingValue()     {}
func (Toggle) Kind() SettingKind { return SettingToggle }
func (t Toggle) String() string  { return strconv.FormatBool(t.On) }

// Choice is a string constrained to Options.
type Choice struct {
	Selected string   `json:"selected"`
	Options  []string `json:"options"`
}

func (Choice) settingValue()     {}
func (Choice) Kind() SettingKind { return SettingChoice }
func (c Choice) String() string  { return c.Selected }

// Range is a number constrained to [Min, Max].
type Range struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (Range) settingValue()     {}
func (Range) Kind() SettingKind { return SettingRange }
func (r Range) String() string  { return strconv.FormatFloat(r.Value, 'f', -1, 64) }

// Setting is one entry of an instance's settings registry.
type Setting struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Value SettingValue `json:"value"`
}

type settingsRegistry struct {
	order   []string
	entries map[string]*Setting
}

func newSettingsRegistry() *settingsRegistry {
	return &settingsRegistry{entries: make(map[string]*Setting)}
}

// put creates or overwrites an entry. Overwrites keep their position.
func (s *settingsRegistry) put(key, label string, v SettingValue) {
	if label == "" {
		label = key
	}
	if e, ok := s.entries[key]; ok {
		e.Label = label
		e.Value = v
		return
	}
	s.entries[key] = &Setting{Key: key, Label: label, Value: v}
	s.order = append(s.order, key)
}

// NewChoice builds a choice whose selection is def when def is one of
// options, and the first option otherwise.
func NewChoice(options []string, def string) Choice {
	opts := slices.Clone(options)
	sel := ""
	if slices.Contains(opts, def) {
		sel = def
	} else if len(opts) > 0 {
		sel = opts[0]
	}
	return Choice{Selected: sel, Options: opts}
}

// ParseOptions splits a comma-separated option list and trims each entry.
func ParseOptions(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// NewRange builds a range. A max below min collapses to min, and the value
// is clamped into [min, max].
func NewRange(minV, maxV, value float64) Range {
	if maxV < minV {
		maxV = minV
	}
	return Range{Value: clampFloat(value, minV, maxV), Min: minV, Max: maxV}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AddSettingToggle creates or overwrites a toggle setting and switches the
// instance into settings mode. Creation does not fire setting-change.
func (r *Registry) AddSettingToggle(id, key, label string, def bool) error {
	return r.addSetting("add_setting_toggle", id, key, label, Toggle{On: def})
}

// AddSettingChoice creates or overwrites a choice setting and switches the
// instance into settings mode.
func (r *Registry) AddSettingChoice(id, key, label string, options []string, def string) error {
	return r.addSetting("add_setting_choice", id, key, label, NewChoice(options, def))
}

// AddSettingRange creates or overwrites a range setting and switches the
// instance into settings mode.
func (r *Registry) AddSettingRange(id, key, label string, minV, maxV, def float64) error {
	return r.addSetting("add_setting_range", id, key, label, NewRange(minV, maxV, def))
}

func (r *Registry) addSetting(op, id, key, label string, v SettingValue) error {
	in, err := r.lookup(op, id)
	if err != nil {
		return err
	}
	in.settings.put(key, label, v)
	r.transition(in, ModeSettings)
	return nil
}

// SetSettingValue applies a value change coming from the settings UI and
// fires setting-change. Toggles parse booleans, choices must name one of
// their options, ranges parse a number and clamp it. Anything else is
// ignored.
func (r *Registry) SetSettingValue(id, key, raw string) error {
	in, err := r.lookup("set_setting_value", id)
	if err != nil {
		return err
	}
	e, ok := in.settings.entries[key]
	if !ok {
		return r.ignore("set_setting_value", &LookupError{
			Code: ErrCodeSettingNotFound, Instance: id, Key: key, Message: "setting does not exist",
		})
	}
	switch v := e.Value.(type) {
	case Toggle:
		b, perr := strconv.ParseBool(strings.TrimSpace(raw))
		if perr != nil {
			return r.ignore("set_setting_value", invalidValue(id, key, "not a boolean: "+raw))
		}
		e.Value = Toggle{On: b}
	case Choice:
		if !slices.Contains(v.Options, raw) {
			return r.ignore("set_setting_value", invalidValue(id, key, "not an option: "+raw))
		}
		v.Selected = raw
		e.Value = v
	case Range:
		f, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if perr != nil {
			return r.ignore("set_setting_value", invalidValue(id, key, "not a number: "+raw))
		}
		v.Value = clampFloat(f, v.Min, v.Max)
		e.Value = v
	}
	r.emit(EventSettingChange, id, "", key)
	return nil
}

// SettingValue returns the value rendered as a string, or "" if absent.
func (r *Registry) SettingValue(id, key string) string {
	if s, ok := r.Setting(id, key); ok {
		return s.Value.String()
	}
	return ""
}

// Setting returns a copy of a setting entry.
func (r *Registry) Setting(id, key string) (Setting, bool) {
	in, ok := r.instances[id]
	if !ok {
		return Setting{}, false
	}
	e, ok := in.settings.entries[key]
	if !ok {
		return Setting{}, false
	}
	return *e, true
}

// Settings returns copies of all setting entries in creation order.
func (r *Registry) Settings(id string) []Setting {
	in, ok := r.instances[id]
	if !ok {
		return nil
	}
	out := make([]Setting, 0, len(in.settings.order))
	for _, key := range in.settings.order {
		out = append(out, *in.settings.entries[key])
	}
	return out
}
