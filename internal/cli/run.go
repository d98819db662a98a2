package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/harness"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/storefront"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Label    string
}

// RunResult is the payload printed by the run command.
type RunResult struct {
	Scenario  string                             `json:"scenario"`
	Pass      bool                               `json:"pass"`
	Errors    []string                           `json:"errors,omitempty"`
	SessionID string                             `json:"session_id,omitempty"`
	Trace     []harness.TraceEvent               `json:"trace"`
	State     map[string]storefront.InstanceView `json:"state,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute one scenario and print its trace",
		Long: `Execute a scenario against a fresh registry.

Prints every step with its outcome and the hook events it fired, then
the result of the scenario's assertions. With --db the events are also
written to a SQLite journal under a new session.

Exit codes:
  0 - Scenario passed
  1 - A step expectation or assertion failed
  2 - Command error (unreadable scenario, catalog or journal)

Examples:
  storefront run ./scenarios/checkout.yaml
  storefront run ./scenarios/checkout.yaml --db ./storefront.db
  storefront run ./scenarios/checkout.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to SQLite journal (optional)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "journal session label (defaults to the scenario name)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeScenario, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s (%d step(s))", scenario.Name, len(scenario.Steps))

	runOpts := []harness.Option{harness.WithRegistryOptions(opts.registryOptions()...)}
	if opts.Database != "" {
		slog.Debug("opening journal", "path", opts.Database)
		j, err := journal.Open(opts.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		runOpts = append(runOpts, harness.WithJournal(j, opts.Label))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeScenario, "failed to execute scenario", err)
	}
	slog.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "entries", len(result.Trace))

	out := RunResult{
		Scenario:  scenario.Name,
		Pass:      result.Pass,
		Errors:    result.Errors,
		SessionID: result.SessionID,
		Trace:     result.Trace,
		State:     result.State,
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: out}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeTestFailed,
				Message: fmt.Sprintf("scenario %s failed", scenario.Name),
				Details: result.Errors,
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		writeRunText(formatter.Writer, out)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

// writeRunText prints the trace one line per entry, events indented under
// the step that fired them.
func writeRunText(w io.Writer, r RunResult) {
	fmt.Fprintf(w, "Scenario: %s\n", r.Scenario)
	if r.SessionID != "" {
		fmt.Fprintf(w, "Session:  %s\n", r.SessionID)
	}
	fmt.Fprintln(w)

	for _, e := range r.Trace {
		switch e.Type {
		case harness.TraceTypeCommand:
			line := fmt.Sprintf("[%d] %s %s %s", e.Step, e.Op, e.Instance, formatArgs(e.Args))
			if e.Code != "" {
				line += fmt.Sprintf(" -> %s (%s)", e.Status, e.Code)
			} else {
				line += " -> " + string(e.Status)
			}
			fmt.Fprintln(w, line)
		case harness.TraceTypeEvent:
			fmt.Fprintf(w, "      #%d %s%s\n", e.Seq, e.Kind, eventDetail(e.Category, e.Key))
		}
	}
	fmt.Fprintln(w)

	if r.Pass {
		fmt.Fprintln(w, "✓ passed")
		return
	}
	fmt.Fprintln(w, "✗ failed")
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}

func eventDetail(category, key string) string {
	s := ""
	if category != "" {
		s += " category=" + category
	}
	if key != "" {
		s += " key=" + key
	}
	return s
}
