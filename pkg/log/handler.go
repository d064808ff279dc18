package log

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// extractStacktrace returns the first safe detail recorded by
// cockroachdb/errors, which holds the stack captured by WithStack.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	// The stack of a wrapped error is reachable through %+v.
	if verbose := fmt.Sprintf("%+v", err); verbose != err.Error() {
		return verbose
	}
	return ""
}

// errorType returns the concrete Go type of the innermost error.
func errorType(err error) string {
	return fmt.Sprintf("%T", errors.UnwrapAll(err))
}
