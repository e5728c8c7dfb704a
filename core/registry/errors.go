package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when a registry is used before a successful load.
	ErrNotInitialized = errors.New("registry not initialized")
	// ErrDuplicateLabel is returned when adding a label that already exists.
	ErrDuplicateLabel = errors.New("duplicate label")
	// ErrUnknownLabel is returned for labels missing from the label table.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrLabelNotSelected is returned when allocating in a label that is not displayed.
	ErrLabelNotSelected = errors.New("label not selected")
	// ErrMalformedRecord is returned when a flat record cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnencodable is returned for entries whose fields contain a separator.
	ErrUnencodable = errors.New("entry not encodable")
	// ErrInvalidLabel is returned for label names that cannot be stored in a flat record.
	ErrInvalidLabel = errors.New("invalid label name")
	// ErrResolutionFailure marks a single entry that could not be resolved.
	ErrResolutionFailure = errors.New("resolution failure")
	// ErrEnumerationFailure aborts an initialize pass.
	ErrEnumerationFailure = errors.New("enumeration failure")
	// ErrReferenceNotFound is returned by reverse lookups with no match.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrRecordNotFound is returned by a PersistentStore when the named record is absent.
	ErrRecordNotFound = errors.New("persisted record not found")
	// ErrNotConfirmed is returned when a destructive operation was not confirmed.
	ErrNotConfirmed = errors.New("destructive operation not confirmed")
	// ErrEntryNotFound is returned when an id is not present in the registry.
	ErrEntryNotFound = errors.New("entry not found")
)

// DecodeError describes a flat record that failed to decode.
type DecodeError struct {
	Key    string
	Fields int
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed record %q: %s", e.Key, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedRecord.
func (e *DecodeError) Unwrap() error {
	return ErrMalformedRecord
}
