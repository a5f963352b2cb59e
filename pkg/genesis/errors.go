// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"errors"
	"fmt"
)

// ErrAssembly is matched by every error the assembler returns.
var ErrAssembly = errors.New("genesis assembly failed")

var (
	ErrMalformedDocument = fmt.Errorf("%w: malformed genesis document", ErrAssembly)
	ErrNoSelection       = fmt.Errorf("%w: no chain folder selected", ErrAssembly)
)

// InvalidSpecError points at the first field of a draft that breaks an
// invariant. Field is a dotted path such as accounts[2].identityProvider.
type InvalidSpecError struct {
	Field  string
	Reason string

	violations []*InvalidSpecError
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid genesis spec: %s: %s", e.Field, e.Reason)
}

func (e *InvalidSpecError) Is(target error) bool {
	return target == ErrAssembly
}

// Violations lists every broken invariant found in the draft, the first one
// being the receiver itself.
func (e *InvalidSpecError) Violations() []*InvalidSpecError {
	if len(e.violations) == 0 {
		return []*InvalidSpecError{e}
	}
	return e.violations
}
