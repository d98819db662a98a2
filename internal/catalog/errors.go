package catalog

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes reported by Load.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeStorefront = "E201" // Invalid storefront block
	ErrCodeCategory   = "E202" // Invalid category block
	ErrCodeItem       = "E203" // Invalid item block
	ErrCodeSetting    = "E204" // Invalid setting block
	ErrCodeEmpty      = "E205" // No storefronts defined
)

// CompileError reports an invalid field in a catalog definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code maps the failing field to a load error code.
func (e *CompileError) Code() string {
	switch {
	case strings.Contains(e.Field, ".items."):
		return ErrCodeItem
	case strings.Contains(e.Field, ".settings."):
		return ErrCodeSetting
	case strings.Contains(e.Field, ".categories."):
		return ErrCodeCategory
	case strings.HasPrefix(e.Field, "storefront"):
		return ErrCodeStorefront
	default:
		return ErrCodeGeneric
	}
}

// LoadError reports a failure to read, build or compile a catalog.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: field, Message: err.Error()}
	}

	// Report the first error with its position
	first := errs[0]
	ce := &CompileError{Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
