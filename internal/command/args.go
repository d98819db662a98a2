package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/storefront/internal/storefront"
)

// Args holds the arguments of one command as decoded from YAML, JSON or CUE.
type Args map[string]any

// String returns the argument rendered as text, or "" when absent.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Has reports whether the argument is present and not null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Int returns the argument as an int, or def when it is absent or not a
// number. Fractional numbers are truncated.
func (a Args) Int(key string, def int) int {
	switch val := a[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}

// Float returns the argument as a float64, or def when it is absent or not
// a number.
func (a Args) Float(key string, def float64) float64 {
	switch val := a[key].(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the argument as a bool, or def when it is absent or
// unrecognized.
func (a Args) Bool(key string, def bool) bool {
	switch val := a[key].(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		if b, ok := parseBool(val); ok {
			return b
		}
	}
	return def
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

// Strings returns the argument as a string list. A list keeps its order;
// a string is split on commas.
func (a Args) Strings(key string) []string {
	switch val := a[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			out = append(out, fmt.Sprint(elem))
		}
		return out
	case string:
		return storefront.ParseOptions(val)
	}
	return nil
}

// Price returns the argument as a storefront price. Numbers keep their
// exact decimal form; text goes through storefront.ParsePrice.
func (a Args) Price(key string) storefront.Price {
	switch val := a[key].(type) {
	case int:
		return storefront.ParsePrice(strconv.Itoa(val))
	case int64:
		return storefront.ParsePrice(strconv.FormatInt(val, 10))
	case float64:
		return storefront.PriceOf(val)
	case nil:
		return storefront.ParsePrice("")
	default:
		return storefront.ParsePrice(a.String(key))
	}
}
