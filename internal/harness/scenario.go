package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

// Scenario defines a storefront test scenario: a command sequence plus
// assertions over the events it fires and the state it leaves behind.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog file or directory applied before
	// setup. Relative paths resolve against the scenario file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// Setup contains commands that arrange the initial state.
	// Their events are not recorded and their outcomes are not checked.
	Setup []command.Command `yaml:"setup,omitempty"`

	// Steps is the recorded part of the scenario.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	// Supported types: event_contains, event_order, event_count, query_equals
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one recorded command with an optional expected outcome.
type Step struct {
	command.Command `yaml:",inline"`

	// Expect checks the outcome of the command. If nil, any outcome passes.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected command outcome.
type ExpectClause struct {
	// Status is "ok" or "noop".
	Status string `yaml:"status"`

	// Code is the expected error code of a noop (e.g. "ITEM_NOT_FOUND").
	// Empty means any code.
	Code string `yaml:"code,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type selects the assertion:
	// - "event_contains": an event matching kind/instance/category/key exists
	// - "event_order": kinds appear in order
	// - "event_count": kind appears exactly Count times
	// - "query_equals": Query answers Equals
	Type string `yaml:"type"`

	// Kind is the hook kind (event_contains, event_count).
	Kind string `yaml:"kind,omitempty"`

	// Instance narrows event assertions to one instance and names the
	// instance a query_equals asks about.
	Instance string `yaml:"instance,omitempty"`

	// Category and Key narrow event_contains. Empty matches anything.
	Category string `yaml:"category,omitempty"`
	Key      string `yaml:"key,omitempty"`

	// Kinds is the expected order (event_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count int `yaml:"count,omitempty"`

	// Query, Args and Equals describe a query_equals check.
	Query  string       `yaml:"query,omitempty"`
	Args   command.Args `yaml:"args,omitempty"`
	Equals any          `yaml:"equals,omitempty"`
}

// Assertion type constants.
const (
	AssertEventContains = "event_contains"
	AssertEventOrder    = "event_order"
	AssertEventCount    = "event_count"
	AssertQueryEquals   = "query_equals"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving a relative catalog path
// against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) && baseDir != "" {
		scenario.Catalog = filepath.Join(baseDir, scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found: %s", s.Catalog)
		}
	}

	for i, cmd := range s.Setup {
		if !command.IsOp(cmd.Op) {
			return fmt.Errorf("setup[%d]: unknown op %q", i, cmd.Op)
		}
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !command.IsOp(step.Op) {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Expect != nil {
			switch command.Status(step.Expect.Status) {
			case command.StatusOK, command.StatusNoop:
			default:
				return fmt.Errorf("steps[%d].expect: status must be %q or %q", i, command.StatusOK, command.StatusNoop)
			}
			if step.Expect.Code != "" && command.Status(step.Expect.Status) == command.StatusOK {
				return fmt.Errorf("steps[%d].expect: code requires status %q", i, command.StatusNoop)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventContains:
		if err := validateKind(index, a.Type, a.Kind); err != nil {
			return err
		}
	case AssertEventOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for event_order", index)
		}
		for _, k := range a.Kinds {
			if err := validateKind(index, a.Type, k); err != nil {
				return err
			}
		}
	case AssertEventCount:
		if err := validateKind(index, a.Type, a.Kind); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertQueryEquals:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for query_equals", index)
		}
		if !slices.Contains(command.Queries(), a.Query) {
			return fmt.Errorf("assertions[%d]: unknown query %q", index, a.Query)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validateKind(index int, typ, kind string) error {
	if kind == "" {
		return fmt.Errorf("assertions[%d]: kind is required for %s", index, typ)
	}
	if _, ok := storefront.ParseEventKind(kind); !ok {
		return fmt.Errorf("assertions[%d]: unknown event kind %q", index, kind)
	}
	return nil
}
