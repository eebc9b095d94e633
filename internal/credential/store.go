package credential

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when no usable credential record
// exists. Absent and malformed storage are deliberately indistinguishable so
// startup can proceed into the bootstrap grant flow either way.
var ErrNotFound = errors.New("no stored credential")

// Store reads and writes the credential record to persistent storage.
//
// Save overwrites the entire record; implementations must never expose a
// partially written record to concurrent readers.
type Store interface {
	// Load returns the stored record, or ErrNotFound if storage is absent,
	// empty, or malformed.
	Load(ctx context.Context) (*Record, error)

	// Save persists the record, replacing any previous one.
	Save(ctx context.Context, record *Record) error
}
