package kpiquery

import (
	"fmt"

	"github.com/friendsofgo/errors"
)

// InvalidSortFieldError is returned when a requested sort field is not in
// the entity's sort whitelist. Unlike malformed filters, which are dropped,
// an unknown sort field is rejected loudly: accepting it would either be an
// injection vector or would silently reorder results.
//
// It maps to a client error; retrying the same request cannot succeed.
type InvalidSortFieldError struct {
	Entity EntityKind
	Field  string
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q for entity %s", e.Field, e.Entity)
}

// IsInvalidSortField reports whether err is an InvalidSortFieldError,
// unwrapping as needed.
func IsInvalidSortField(err error) bool {
	var target *InvalidSortFieldError
	return errors.As(err, &target)
}

// DataAccessError wraps a failure from the underlying store. Pagination
// state (the cursor) is only valid for pages actually delivered, so the
// executor never retries; the error propagates to the caller as-is.
type DataAccessError struct {
	Entity EntityKind
	Err    error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("querying %s: %v", e.Entity, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}
