// Package storefront implements the headless storefront state engine.
//
// A Registry owns any number of independent storefront instances. Each
// instance holds an ordered set of categories (each with its own item order
// and pagination cursor), a cart, a settings registry, a presentation mode,
// a theme, and a search filter. Renderers observe changes through hook
// subscriptions and never reach into engine state directly.
//
// EXECUTION MODEL:
//
// Commands run synchronously, one at a time. Nothing in this package blocks
// or suspends, and there is no internal locking: the host dispatcher is
// responsible for serializing calls. Hook handlers run synchronously inside
// the command that fired them. A handler may issue queries, and it may
// subscribe or unsubscribe, but it must not structurally mutate the same
// instance (for example removing a category from inside a category-switch
// handler).
//
// FAILURE MODEL:
//
// Commands that target a missing instance, category, item, cart line or
// setting leave state untouched, fire no events, and return a *LookupError.
// Callers that only care about the external contract ignore the error.
// Queries never fail; they return zero values for anything absent.
//
// INVARIANTS:
//   - currentCategory is empty or names a category of the same instance
//   - 1 <= currentPage <= max(1, ceil(len(items)/pageSize)) after every command
//   - cart lines always have quantity >= 1
//   - every event carries a sequence number from the registry clock
package storefront
