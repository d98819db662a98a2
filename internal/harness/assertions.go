package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/storefront/internal/canonical"
	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, describe(event))
	}

	return buf.String()
}

// describe renders one trace entry on a single line.
func describe(e TraceEvent) string {
	if e.Type == TraceTypeCommand {
		s := fmt.Sprintf("step %d: %s %s %v -> %s", e.Step, e.Op, e.Instance, map[string]any(e.Args), e.Status)
		if e.Code != "" {
			s += " (" + e.Code + ")"
		}
		return s
	}
	s := fmt.Sprintf("step %d: event #%d %s %s", e.Step, e.Seq, e.Kind, e.Instance)
	if e.Category != "" {
		s += " category=" + e.Category
	}
	if e.Key != "" {
		s += " key=" + e.Key
	}
	return s
}

// AssertionContext gives assertions access to the finished scenario state.
type AssertionContext struct {
	Dispatcher *command.Dispatcher
}

// kindOf normalizes an assertion kind the same way hook names are parsed.
func kindOf(s string) storefront.EventKind {
	k, _ := storefront.ParseEventKind(s)
	return k
}

// assertEventContains checks that an event of the given kind exists,
// narrowed by instance, category and key when those are set.
func assertEventContains(trace []TraceEvent, a Assertion) error {
	kind := kindOf(a.Kind)
	for _, ev := range eventsOf(trace) {
		if ev.Kind != kind {
			continue
		}
		if a.Instance != "" && ev.Instance != a.Instance {
			continue
		}
		if a.Category != "" && ev.Category != a.Category {
			continue
		}
		if a.Key != "" && ev.Key != a.Key {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("event %s%s", kind, narrowing(a)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func narrowing(a Assertion) string {
	var parts []string
	if a.Instance != "" {
		parts = append(parts, "instance="+a.Instance)
	}
	if a.Category != "" {
		parts = append(parts, "category="+a.Category)
	}
	if a.Key != "" {
		parts = append(parts, "key="+a.Key)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// assertEventOrder checks that the kinds occur as a subsequence of the
// event stream. Intervening events are allowed and a kind may repeat.
func assertEventOrder(trace []TraceEvent, a Assertion) error {
	events := eventsOf(trace)
	want := make([]storefront.EventKind, len(a.Kinds))
	for i, k := range a.Kinds {
		want[i] = kindOf(k)
	}

	next := 0
	for _, ev := range events {
		if next == len(want) {
			break
		}
		if a.Instance != "" && ev.Instance != a.Instance {
			continue
		}
		if ev.Kind == want[next] {
			next++
		}
	}
	if next == len(want) {
		return nil
	}

	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("kinds in order %v", want),
		Actual:   fmt.Sprintf("matched %d of %d, stuck at %s", next, len(want), want[next]),
		Trace:    trace,
	}
}

// assertEventCount checks that a kind occurs exactly Count times.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	kind := kindOf(a.Kind)
	n := 0
	for _, ev := range eventsOf(trace) {
		if ev.Kind == kind && (a.Instance == "" || ev.Instance == a.Instance) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}

	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d occurrences of %s%s", a.Count, kind, narrowing(Assertion{Instance: a.Instance})),
		Actual:   fmt.Sprintf("%d occurrences", n),
		Trace:    trace,
	}
}

// assertQueryEquals asks the query and compares canonical encodings.
func assertQueryEquals(ctx AssertionContext, trace []TraceEvent, a Assertion) error {
	if ctx.Dispatcher == nil {
		return fmt.Errorf("query_equals requires a dispatcher")
	}
	got, err := ctx.Dispatcher.Ask(command.Query{Name: a.Query, Instance: a.Instance, Args: a.Args})
	if err != nil {
		return fmt.Errorf("query %s: %w", a.Query, err)
	}

	gotJSON, err := canonical.Marshal(got)
	if err != nil {
		return fmt.Errorf("encode %s answer: %w", a.Query, err)
	}
	wantJSON, err := canonical.Marshal(normalizeYAML(a.Equals))
	if err != nil {
		return fmt.Errorf("encode expected %s value: %w", a.Query, err)
	}
	if string(gotJSON) == string(wantJSON) {
		return nil
	}

	return &AssertionError{
		Type:     AssertQueryEquals,
		Expected: fmt.Sprintf("%s(%s) = %s", a.Query, a.Instance, wantJSON),
		Actual:   string(gotJSON),
		Trace:    trace,
	}
}

// normalizeYAML converts decoded YAML values into types canonical.Marshal
// accepts. yaml.v3 yields map[string]any for mappings with string keys but
// keeps named types like command.Args as they are.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case command.Args:
		return normalizeYAML(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeYAML(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeYAML(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeYAML(elem)
		}
		return out
	case uint64:
		return int64(val)
	default:
		return v
	}
}

// EvaluateAssertions runs all assertions and returns their failure messages.
// An empty slice means every assertion passed.
func EvaluateAssertions(ctx AssertionContext, assertions []Assertion, trace []TraceEvent) []string {
	var errors []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventContains:
			err = assertEventContains(trace, a)
		case AssertEventOrder:
			err = assertEventOrder(trace, a)
		case AssertEventCount:
			err = assertEventCount(trace, a)
		case AssertQueryEquals:
			err = assertQueryEquals(ctx, trace, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d] (%s): %v", i, a.Type, err))
		}
	}

	return errors
}
