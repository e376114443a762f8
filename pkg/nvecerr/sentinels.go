package nvecerr

import "errors"

// Sentinel errors, checked via errors.Is after unwrapping an *Error (or
// returned bare from packages that don't need Kind/Op context).
var (
	ErrArenaExhausted    = errors.New("arena: out of space")
	ErrIndexFull         = errors.New("vectorindex: index at capacity")
	ErrUnknownOverrideID = errors.New("vectorindex: unknown row id")
	ErrEmptyNote         = errors.New("embed: note text is empty")
	ErrUnknownOperator   = errors.New("metadata: unknown filter operator")
	ErrMalformedFilter   = errors.New("metadata: malformed filter expression")
)
