package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_FromTestdata(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/checkout.yaml")
	require.NoError(t, err)

	assert.Equal(t, "checkout", scenario.Name)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "shop.cue"), scenario.Catalog)
	require.Len(t, scenario.Steps, 4)

	first := scenario.Steps[0]
	assert.Equal(t, "cart_add", first.Op)
	assert.Equal(t, "shop", first.Instance)
	assert.Equal(t, "apple", first.Args.String("item"))
	assert.Equal(t, 2, first.Args.Int("qty", 0))
	require.NotNil(t, first.Expect)
	assert.Equal(t, "ok", first.Expect.Status)

	assert.Nil(t, scenario.Steps[1].Expect)
	assert.Equal(t, "ITEM_NOT_FOUND", scenario.Steps[3].Expect.Code)

	require.Len(t, scenario.Assertions, 6)
	assert.Equal(t, AssertEventCount, scenario.Assertions[0].Type)
	assert.Equal(t, 3, scenario.Assertions[0].Count)
	assert.Equal(t, []string{"cart-change", "cart-change", "cart-change"}, scenario.Assertions[1].Kinds)
	assert.Equal(t, 12.5, scenario.Assertions[2].Equals)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: unknown top-level field
step:
  - op: create
    instance: a
assertions:
  - type: event_count
    kind: cart-change
    count: 0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_AbsoluteCatalogKept(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "shop.cue")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`storefront: a: title: "A"`), 0644))

	path := writeScenario(t, t.TempDir(), `
name: abs
description: absolute catalog path
catalog: `+catalogPath+`
steps:
  - op: cart_clear
    instance: a
assertions:
  - type: event_count
    kind: cart-change
    count: 1
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, catalogPath, scenario.Catalog)
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: d
steps: [{op: create, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: n
steps: [{op: create, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "description is required",
		},
		{
			name: "no steps",
			yaml: `
name: n
description: d
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown step op",
			yaml: `
name: n
description: d
steps: [{op: explode, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: `steps[0]: unknown op "explode"`,
		},
		{
			name: "missing step op",
			yaml: `
name: n
description: d
steps: [{instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "steps[0]: op is required",
		},
		{
			name: "unknown setup op",
			yaml: `
name: n
description: d
setup: [{op: explode, instance: a}]
steps: [{op: create, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: `setup[0]: unknown op "explode"`,
		},
		{
			name: "bad expect status",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a, expect: {status: maybe}}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "steps[0].expect: status must be",
		},
		{
			name: "code with ok status",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a, expect: {status: ok, code: ITEM_NOT_FOUND}}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "code requires status",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: final_state}]
`,
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name: "unknown event kind",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: event_contains, kind: explosion}]
`,
			wantErr: `unknown event kind "explosion"`,
		},
		{
			name: "event_order without kinds",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: event_order}]
`,
			wantErr: "kinds list is required",
		},
		{
			name: "negative count",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
		{
			name: "unknown query",
			yaml: `
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: query_equals, query: weather, equals: sunny}]
`,
			wantErr: `unknown query "weather"`,
		},
		{
			name: "missing catalog",
			yaml: `
name: n
description: d
catalog: /definitely/not/here.cue
steps: [{op: create, instance: a}]
assertions: [{type: event_count, kind: cart-change, count: 0}]
`,
			wantErr: "catalog not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_KindIsCaseInsensitive(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: n
description: d
steps: [{op: create, instance: a}]
assertions: [{type: event_contains, kind: Cart-Change}]
`), "")
	require.NoError(t, err)
	assert.Equal(t, "Cart-Change", scenario.Assertions[0].Kind)
}
