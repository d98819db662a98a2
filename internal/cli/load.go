package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
}

// LoadResult is the payload printed by the load command.
type LoadResult struct {
	Files       int                       `json:"files"`
	Commands    int                       `json:"commands"`
	Storefronts []storefront.InstanceView `json:"storefronts"`
	Ignored     []command.Outcome         `json:"ignored,omitempty"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <catalog.cue|dir>",
		Short: "Compile a CUE catalog and show the resulting storefronts",
		Long: `Compile a CUE catalog and apply it to a fresh registry.

Each storefront block becomes one instance. The command prints a
snapshot of every instance, plus any catalog command the engine
ignored (for example a setting default outside its range).

Examples:
  storefront load ./catalog/market.cue
  storefront load ./catalog
  storefront load ./catalog --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	return cmd
}

func runLoad(opts *LoadOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cat, err := catalog.Load(path)
	if err != nil {
		return outputCatalogError(formatter, err)
	}
	formatter.VerboseLog("Compiled %d storefront(s) from %d file(s)", len(cat.Storefronts), cat.FileCount)

	reg := storefront.NewRegistry(opts.registryOptions()...)
	defer reg.Dispose()
	d := command.New(reg)

	outcomes, err := cat.Apply(d)
	if err != nil {
		return formatter.fail(ExitCommandError, catalog.ErrCodeGeneric, "failed to apply catalog", err)
	}

	result := LoadResult{
		Files:       cat.FileCount,
		Commands:    len(outcomes),
		Storefronts: make([]storefront.InstanceView, 0, len(cat.Storefronts)),
	}
	for _, out := range outcomes {
		if out.Status == command.StatusNoop {
			result.Ignored = append(result.Ignored, out)
		}
	}
	for _, id := range cat.IDs() {
		if view, ok := reg.Snapshot(id); ok {
			result.Storefronts = append(result.Storefronts, view)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeLoadText(formatter.Writer, result)
	return nil
}

// outputCatalogError reports a catalog failure with its E-code and, when
// known, the source position.
func outputCatalogError(f *OutputFormatter, err error) error {
	code := catalog.ErrCodeGeneric
	message := err.Error()
	var pos token.Pos

	var loadErr *catalog.LoadError
	var compileErr *catalog.CompileError
	switch {
	case errors.As(err, &loadErr):
		code, message, pos = loadErr.Code, loadErr.Message, loadErr.Pos
	case errors.As(err, &compileErr):
		code, message, pos = compileErr.Code(), compileErr.Field+": "+compileErr.Message, compileErr.Pos
	}

	var details any
	if pos.IsValid() {
		details = map[string]any{
			"file":   pos.Filename(),
			"line":   pos.Line(),
			"column": pos.Column(),
		}
	}
	_ = f.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

func writeLoadText(w io.Writer, r LoadResult) {
	fmt.Fprintf(w, "✓ Loaded %d storefront(s) from %d file(s), %d command(s)\n\n", len(r.Storefronts), r.Files, r.Commands)

	for _, sf := range r.Storefronts {
		title := sf.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%s: %s [%s, %s theme, currency %s]\n", sf.ID, title, sf.Mode, sf.Theme, sf.Cart.Currency)
		for _, c := range sf.Categories {
			marker := " "
			if c.Key == sf.CurrentCategory {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s (%s): %d item(s), %d per page\n", marker, c.Key, c.Label, len(c.Items), c.PageSize)
		}
		for _, s := range sf.Settings {
			fmt.Fprintf(w, "    %s [%s] = %s\n", s.Key, s.Kind, s.Value)
		}
	}

	if len(r.Ignored) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Ignored commands:")
		for _, out := range r.Ignored {
			fmt.Fprintf(w, "  %s %s: %s\n", out.Op, out.Instance, out.Code)
		}
	}
}
