package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/storefront"
	"github.com/roach88/storefront/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	registryOpts []storefront.Option
	journal      *journal.Journal
	sessionLabel string
}

// WithRegistryOptions passes extra options to the scenario's registry,
// e.g. a default page size or currency. Clock and logger are always set by
// the harness and cannot be overridden.
func WithRegistryOptions(opts ...storefront.Option) Option {
	return func(c *runConfig) {
		c.registryOpts = append(c.registryOpts, opts...)
	}
}

// WithJournal writes every recorded event to j under a new session.
// An empty label defaults to the scenario name.
func WithJournal(j *journal.Journal, label string) Option {
	return func(c *runConfig) {
		c.journal = j
		c.sessionLabel = label
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh registry with a deterministic clock
//  2. Apply the catalog (if any) and the setup commands
//  3. Subscribe to every event, then apply each step in order
//  4. Check step expectations, snapshot every instance, evaluate assertions
//
// The returned error is non-nil only when the scenario cannot be executed
// (unreadable catalog, unknown op, journal failure). Failed expectations
// and assertions are reported through Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	regOpts := append(cfg.registryOpts, storefront.WithClock(clock), storefront.WithLogger(logger))
	reg := storefront.NewRegistry(regOpts...)
	defer reg.Dispose()

	d := command.New(reg)

	if scenario.Catalog != "" {
		cat, err := catalog.Load(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		if _, err := cat.Apply(d); err != nil {
			return nil, fmt.Errorf("apply catalog: %w", err)
		}
	}

	if _, err := d.ApplyAll(scenario.Setup); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}

	result := NewResult()
	step := 0
	reg.SubscribeAll(func(ev storefront.Event) {
		result.addEventTrace(step, ev)
	})

	var rec *journal.Recorder
	if cfg.journal != nil {
		label := cfg.sessionLabel
		if label == "" {
			label = scenario.Name
		}
		sessionID, err := cfg.journal.StartSession(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("start journal session: %w", err)
		}
		rec = cfg.journal.NewRecorder(ctx, sessionID)
		reg.SubscribeAll(rec.Handle)
		result.SessionID = sessionID
	}

	for i, s := range scenario.Steps {
		step = i
		idx := result.addCommandTrace(i, s.Command)
		out, err := d.Apply(s.Command)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Trace[idx].Status = out.Status
		result.Trace[idx].Code = string(out.Code)

		if msg := checkExpect(i, s, out); msg != "" {
			result.AddError(msg)
		}
	}

	if rec != nil {
		if err := rec.Err(); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
	}

	for _, id := range reg.IDs() {
		if view, ok := reg.Snapshot(id); ok {
			result.State[id] = view
		}
	}

	actx := AssertionContext{Dispatcher: d}
	for _, msg := range EvaluateAssertions(actx, scenario.Assertions, result.Trace) {
		result.AddError(msg)
	}

	return result, nil
}

// checkExpect compares a step outcome with its expect clause.
// Returns "" when the step has no clause or the clause holds.
func checkExpect(index int, s Step, out command.Outcome) string {
	if s.Expect == nil {
		return ""
	}
	want := command.Status(s.Expect.Status)
	if out.Status != want {
		if out.Code != "" {
			return fmt.Sprintf("steps[%d] %s: expected status %s, got %s (%s)", index, s.Op, want, out.Status, out.Code)
		}
		return fmt.Sprintf("steps[%d] %s: expected status %s, got %s", index, s.Op, want, out.Status)
	}
	if s.Expect.Code != "" && string(out.Code) != s.Expect.Code {
		return fmt.Sprintf("steps[%d] %s: expected code %s, got %s", index, s.Op, s.Expect.Code, out.Code)
	}
	return ""
}
