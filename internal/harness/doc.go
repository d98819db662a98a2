// Package harness runs storefront scenarios and checks their event traces.
//
// A scenario drives a fresh registry through a list of commands, records
// every hook event the registry fires, and then evaluates assertions over
// the recorded trace and the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: cart_totals
//	description: "What this scenario validates"
//	catalog: shop.cue            # optional, relative to the scenario file
//	setup:                       # optional, applied before recording starts
//	  - op: create
//	    instance: shop
//	steps:
//	  - op: cart_add
//	    instance: shop
//	    args: { item: apple, qty: 2 }
//	    expect: { status: ok }
//	assertions:
//	  - type: event_count
//	    kind: cart-change
//	    instance: shop
//	    count: 1
//	  - type: query_equals
//	    query: cart_total
//	    instance: shop
//	    equals: 20
//
// # Assertion Types
//
//   - event_contains: an event of the kind appears, optionally for a given
//     instance, category and key
//   - event_order: the kinds appear in the given order (gaps allowed)
//   - event_count: an event kind appears exactly N times
//   - query_equals: a query answers the expected value
//
// Query values are compared by their canonical JSON encoding, so 20, 20.0
// and a decimal total of "20" are all equal.
//
// # Deterministic Testing
//
// Each run gets its own registry, a testutil.DeterministicClock and a
// discarded logger. Event sequence numbers therefore depend only on the
// scenario, and the trace can be compared byte for byte against a golden
// file.
package harness
