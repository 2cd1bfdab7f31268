package steps

import "errors"

// ErrInvalidTable indicates a step table that violates the 1..N ordering or path rules.
var ErrInvalidTable = errors.New("invalid step table")
