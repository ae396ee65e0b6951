package pipeline

import (
	"fmt"
	"strings"
)

// maxDiagnosticKeys caps how many offending natural keys appear in an error
// message. The full set stays on the error value for callers that want it.
const maxDiagnosticKeys = 5

// ParseError is a fatal coercion failure. Only order-item quantity and
// unit_price use it; date and price fields in other stages degrade to NULL
// instead.
type ParseError struct {
	Stage string
	Field string
	Value string
	Row   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d has non-numeric %s %q", e.Stage, e.Row, e.Field, e.Value)
}

// ReferentialViolation records natural-key references in a dependent stage
// that resolved to no surrogate id. It is always fatal and is always raised
// before any row of the affected stage is written.
type ReferentialViolation struct {
	Stage     string
	Reference string
	Keys      []string
}

func (e *ReferentialViolation) Error() string {
	keys := e.Keys
	suffix := ""
	if len(keys) > maxDiagnosticKeys {
		suffix = fmt.Sprintf(" (and %d more)", len(keys)-maxDiagnosticKeys)
		keys = keys[:maxDiagnosticKeys]
	}
	return fmt.Sprintf("%s: %d unresolved %s reference(s): %s%s",
		e.Stage, len(e.Keys), e.Reference, strings.Join(keys, ", "), suffix)
}

// StorageError wraps a failure at the storage boundary — constraint
// violations included. A duplicate natural key left over from a prior run
// surfaces here and halts the run; there is no recovery path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
