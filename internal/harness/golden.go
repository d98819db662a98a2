package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/storefront/internal/canonical"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// CanonicalMap implements canonical.Mapper. Empty optional fields are left
// out so golden files only mention what a step actually carried.
func (s TraceSnapshot) CanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type":     event.Type,
			"step":     event.Step,
			"instance": event.Instance,
		}
		switch event.Type {
		case TraceTypeCommand:
			eventMap["op"] = event.Op
			eventMap["status"] = string(event.Status)
			if len(event.Args) > 0 {
				eventMap["args"] = normalizeYAML(event.Args)
			}
			if event.Code != "" {
				eventMap["code"] = event.Code
			}
		case TraceTypeEvent:
			eventMap["seq"] = event.Seq
			eventMap["kind"] = string(event.Kind)
			if event.Category != "" {
				eventMap["category"] = event.Category
			}
			if event.Key != "" {
				eventMap["key"] = event.Key
			}
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// GoldenBytes renders the canonical golden form of a result's trace.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	data, err := canonical.Marshal(TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace})
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return data, nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can make further assertions, or an error if
// the scenario could not be executed. A trace mismatch fails t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
