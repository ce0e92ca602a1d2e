package vault

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity was never written for the tenant, or
// no version satisfies a temporal read.
var ErrNotFound = errors.New("vault: not found")

// ErrConflict marks a transient write-write conflict. Write retries these
// internally up to the configured bound before surfacing one.
var ErrConflict = errors.New("vault: write conflict")

// ErrUnavailable wraps persistence failures. Nothing has been partially
// written when it surfaces: the append either committed fully or not at all.
var ErrUnavailable = errors.New("vault: persistence unavailable")

// ValidationError reports a request rejected before any write was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vault: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation rejection (from the vault
// itself or the schema registry).
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return isSchemaValidation(err)
}
