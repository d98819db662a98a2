package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/storefront"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // defaults to the latest session
	Instance string // optional filter
	Kind     string // optional filter
	List     bool   // list sessions instead of events
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID string           `json:"session_id"`
	Events    []journal.Record `json:"events"`
	Stats     TraceStats       `json:"stats"`
}

// TraceStats counts the listed events per kind.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Instances   int            `json:"instances"`
	ByKind      map[string]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled hook events",
		Long: `Show the hook events recorded in a journal.

Without --session the most recent session is shown. --instance and
--kind narrow the listing; --list prints the sessions instead.

Examples:
  storefront trace --db ./storefront.db
  storefront trace --db ./storefront.db --session 0190c7b2-... --instance shop
  storefront trace --db ./storefront.db --kind cart-change --format json
  storefront trace --db ./storefront.db --list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (defaults to the latest)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "only events of this instance")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only events of this hook kind")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Database == "" {
		return formatter.fail(ExitCommandError, ErrCodeJournal, "--db is required (or set STOREFRONT_DB)", nil)
	}
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("journal not found: %s", opts.Database), nil)
	}

	var kind storefront.EventKind
	if opts.Kind != "" {
		k, ok := storefront.ParseEventKind(opts.Kind)
		if !ok {
			return formatter.fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("unknown event kind %q", opts.Kind), nil)
		}
		kind = k
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.List {
		return listSessions(ctx, formatter, j)
	}

	sessionID := opts.Session
	if sessionID == "" {
		sessionID, err = j.LatestSession(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeJournal, "failed to find latest session", err)
		}
		if sessionID == "" {
			if formatter.JSON() {
				return formatter.Success(TraceResult{Events: []journal.Record{}, Stats: buildStats(nil)})
			}
			fmt.Fprintln(formatter.Writer, "No sessions recorded.")
			return nil
		}
	}

	records, err := j.ReadEvents(ctx, journal.Filter{SessionID: sessionID, Instance: opts.Instance, Kind: kind})
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeJournal, "failed to read events", err)
	}

	result := TraceResult{
		SessionID: sessionID,
		Events:    records,
		Stats:     buildStats(records),
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeTraceText(formatter.Writer, result)
	return nil
}

func buildStats(records []journal.Record) TraceStats {
	stats := TraceStats{TotalEvents: len(records), ByKind: make(map[string]int)}
	instances := make(map[string]bool)
	for _, r := range records {
		stats.ByKind[string(r.Kind)]++
		instances[r.Instance] = true
	}
	stats.Instances = len(instances)
	return stats
}

func listSessions(ctx context.Context, f *OutputFormatter, j *journal.Journal) error {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeJournal, "failed to list sessions", err)
	}
	if f.JSON() {
		return f.Success(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(f.Writer, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(f.Writer, "%s  %-24s %d event(s)\n", s.ID, s.Label, s.EventCount)
	}
	return nil
}

// writeTraceText prints one line per event followed by per-kind counts.
func writeTraceText(w io.Writer, r TraceResult) {
	fmt.Fprintf(w, "Session: %s\n\n", r.SessionID)

	fmt.Fprintln(w, "=== Events ===")
	if len(r.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range r.Events {
		fmt.Fprintf(w, "  [%d] %-15s %s%s\n", ev.Seq, ev.Kind, ev.Instance, eventDetail(ev.Category, ev.Key))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", r.Stats.TotalEvents)
	fmt.Fprintf(w, "  Instances:    %d\n", r.Stats.Instances)
	kinds := make([]string, 0, len(r.Stats.ByKind))
	for k := range r.Stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-15s %d\n", k+":", r.Stats.ByKind[k])
	}
}

// formatArgs formats command args for display.
// Uses sorted keys to ensure deterministic output.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(args[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a single value for display, handling nested structures deterministically.
func formatValue(v any) string {
	switch val := v.(type) {
	case map[string]any:
		return formatArgs(val)
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}
