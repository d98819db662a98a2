package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const cartScenario = `name: cli_cart
description: Cart add and click through the CLI
setup:
  - {op: create, instance: shop, args: {title: Market}}
  - {op: add_category, instance: shop, args: {category: fruit}}
  - {op: add_item, instance: shop, args: {category: fruit, item: apple, title: Apple, price: 10}}
steps:
  - op: cart_add
    instance: shop
    args: {item: apple, qty: 2}
  - op: click_item
    instance: shop
    args: {item: apple}
assertions:
  - type: query_equals
    query: cart_total
    instance: shop
    equals: 20
`

// cartGolden is the canonical trace of cartScenario. Setup fires seq 1-2.
const cartGolden = `{"scenario_name":"cli_cart","trace":[` +
	`{"args":{"item":"apple","qty":2},"instance":"shop","op":"cart_add","status":"ok","step":0,"type":"command"},` +
	`{"instance":"shop","kind":"cart-change","seq":3,"step":0,"type":"event"},` +
	`{"args":{"item":"apple"},"instance":"shop","op":"click_item","status":"ok","step":1,"type":"command"},` +
	`{"instance":"shop","key":"apple","kind":"item-click","seq":4,"step":1,"type":"event"}]}`

const failingScenario = `name: cli_wrong
description: Expects the wrong total
steps:
  - op: create
    instance: shop
  - op: cart_add
    instance: shop
    args: {item: ghost}
    expect: {status: ok}
assertions:
  - type: query_equals
    query: cart_total
    instance: shop
    equals: 99
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
