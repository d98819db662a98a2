package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

const marketCatalog = `
storefront: shop: {
	title: "Market"
	theme: "dark"
	categories: {
		fruit: {
			label:     "Fruit"
			page_size: 2
			items: {
				apple:  {title: "Apple", price: 10}
				banana: {title: "Banana", price: 2.5}
			}
		}
		veg: items: leek: {title: "Leek", price: 3}
	}
}

storefront: prefs: settings: sound: {kind: "toggle", label: "Sound", default: true}
`

func TestLoadMissingPath(t *testing.T) {
	out, _, err := execute(t, "load", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestLoadTextOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "market.cue", marketCatalog)

	out, _, err := execute(t, "load", path)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Loaded 2 storefront(s) from 1 file(s)")
	assert.Contains(t, out, "shop: Market [catalog, dark theme, currency $]")
	assert.Contains(t, out, "  * fruit (Fruit): 2 item(s), 2 per page")
	assert.Contains(t, out, "    veg (veg): 1 item(s), 12 per page")
	assert.Contains(t, out, "prefs: prefs [settings, light theme, currency $]")
	assert.Contains(t, out, "    sound [toggle] = true")
	assert.NotContains(t, out, "Ignored commands:")
}

func TestLoadUsesEnvironmentDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_CURRENCY", "€")
	t.Setenv("STOREFRONT_PAGE_SIZE", "5")
	path := writeFile(t, t.TempDir(), "market.cue", marketCatalog)

	out, _, err := execute(t, "load", path)
	require.NoError(t, err)
	assert.Contains(t, out, "currency €")
	assert.Contains(t, out, "veg (veg): 1 item(s), 5 per page")
}

func TestLoadJSONOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "market.cue", marketCatalog)

	out, _, err := execute(t, "--format", "json", "load", path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Files       int `json:"files"`
			Commands    int `json:"commands"`
			Storefronts []struct {
				ID              string `json:"id"`
				CurrentCategory string `json:"current_category"`
			} `json:"storefronts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Files)
	assert.Positive(t, resp.Data.Commands)
	require.Len(t, resp.Data.Storefronts, 2)
	assert.Equal(t, "shop", resp.Data.Storefronts[0].ID)
	assert.Equal(t, "fruit", resp.Data.Storefronts[0].CurrentCategory)
}

func TestLoadCompileErrorPosition(t *testing.T) {
	src := "storefront: shop: {\n\tcategories: fruit: items: apple: price: true\n}\n"
	path := writeFile(t, t.TempDir(), "bad.cue", src)

	out, _, err := execute(t, "--format", "json", "load", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E203")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "price")

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok, "details: %#v", resp.Error.Details)
	assert.Equal(t, float64(2), details["line"])
}

func TestWriteLoadTextIgnored(t *testing.T) {
	var buf bytes.Buffer
	writeLoadText(&buf, LoadResult{
		Files:       1,
		Commands:    2,
		Storefronts: []storefront.InstanceView{{ID: "shop", Mode: storefront.ModeCatalog, Theme: storefront.ThemeLight}},
		Ignored: []command.Outcome{
			{Op: "add_setting_range", Instance: "shop", Status: command.StatusNoop, Code: "SETTING_INVALID"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "shop: (untitled) [catalog, light theme, currency ]")
	assert.Contains(t, out, "Ignored commands:")
	assert.Contains(t, out, "  add_setting_range shop: SETTING_INVALID")
}
