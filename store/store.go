// Package store defines the persistence contract behind the catalog caches.
//
// Implementations live in subpackages: memstore (in-process, used by tests),
// filestore (a whole-file JSON or msgpack dataset) and sqlstore (bun over sqlite or
// postgres). All of them keep items in insertion order.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-catalog-cache/item"
)

// ItemStore is the durable source of truth for items.
type ItemStore interface {
	// ReadAll returns the full dataset in insertion order.
	ReadAll(ctx context.Context) ([]item.Item, error)
	// Append durably adds one item at the end of the dataset.
	Append(ctx context.Context, it item.Item) error
	Close() error
}

// Seeder is implemented by stores that can overwrite their whole dataset.
type Seeder interface {
	Replace(ctx context.Context, items []item.Item) error
}

// IOError reports a failed read or write against the backing store.
// It is transient: the same call may succeed later.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *IOError for op. A nil err stays nil and an existing
// *IOError is returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// IsIOError reports whether err is, or wraps, an *IOError.
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
