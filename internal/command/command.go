package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/storefront/internal/storefront"
)

// ErrUnknownOp is returned for an op name the dispatcher does not know.
var ErrUnknownOp = errors.New("unknown op")

// Command is one engine call described as data.
type Command struct {
	Op       string `yaml:"op" json:"op"`
	Instance string `yaml:"instance" json:"instance"`
	Args     Args   `yaml:"args,omitempty" json:"args,omitempty"`
}

// Status is the externally visible result of a command.
type Status string

const (
	// StatusOK means the command changed state (or was a valid no-change).
	StatusOK Status = "ok"

	// StatusNoop means the command was ignored.
	StatusNoop Status = "noop"
)

// Outcome reports how the engine handled one command.
type Outcome struct {
	Op       string               `json:"op"`
	Instance string               `json:"instance"`
	Status   Status               `json:"status"`
	Code     storefront.ErrorCode `json:"code,omitempty"`
	Err      error                `json:"-"`
}

type handler func(r *storefront.Registry, id string, a Args) error

// Dispatcher applies commands and answers queries against one registry.
type Dispatcher struct {
	reg *storefront.Registry
}

// New creates a dispatcher for reg.
func New(reg *storefront.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Registry returns the registry commands are applied to.
func (d *Dispatcher) Registry() *storefront.Registry {
	return d.reg
}

// Apply runs one command. The returned error is non-nil only for unknown
// ops; engine no-ops are reported through Outcome.Status.
func (d *Dispatcher) Apply(cmd Command) (Outcome, error) {
	h, ok := ops[cmd.Op]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
	args := cmd.Args
	if args == nil {
		args = Args{}
	}
	out := Outcome{Op: cmd.Op, Instance: cmd.Instance, Status: StatusOK}
	if err := h(d.reg, cmd.Instance, args); err != nil {
		out.Status = StatusNoop
		out.Code = storefront.CodeOf(err)
		out.Err = err
	}
	return out, nil
}

// ApplyAll runs commands in order and stops at the first unknown op.
func (d *Dispatcher) ApplyAll(cmds []Command) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(cmds))
	for i, cmd := range cmds {
		out, err := d.Apply(cmd)
		if err != nil {
			return outcomes, fmt.Errorf("command %d: %w", i, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Ops returns every command op name, sorted.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsOp reports whether name is a known command op.
func IsOp(name string) bool {
	_, ok := ops[name]
	return ok
}
