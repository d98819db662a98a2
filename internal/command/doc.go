// Package command turns loosely typed command records into storefront
// engine calls.
//
// A host (a scripting runtime, a scenario file, a CUE catalog) describes
// each call as an op name, a target instance id and an argument map. The
// dispatcher looks the op up in a fixed table, coerces the arguments the
// way a dynamically typed caller expects, and invokes the registry.
//
// # Coercion Rules
//
// Arguments are coerced leniently, never rejected:
//   - numbers given as strings are parsed; unparseable numbers use the
//     op's default (a quantity of 1, a page of 1, a size of 0)
//   - booleans accept true/false, 1/0, yes/no, on/off
//   - prices accept numbers or text; text that is not a number keeps its
//     raw form and counts as zero
//   - option lists accept a YAML/JSON list or a comma-separated string
//
// # Outcomes
//
// Every applied command yields an Outcome with status "ok" or "noop". A
// noop carries the engine's lookup error code. Only an unknown op name is
// reported as an error, since it means the caller and the dispatcher
// disagree about the command set.
package command
