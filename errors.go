package scenesync

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing reports a required setting that is absent.
	ErrConfigMissing = errors.New("scenesync: required setting missing")
	// ErrPrecondition reports a host state that prevents the operation.
	ErrPrecondition = errors.New("scenesync: precondition failed")
	// ErrCancelled marks an operation the user backed out of. Callers treat
	// it as a normal, silent termination.
	ErrCancelled = errors.New("scenesync: cancelled")
	// ErrTagOutsideGroup is returned when a desired item does not belong to
	// the group being synchronised.
	ErrTagOutsideGroup = errors.New("scenesync: tag outside group")
	// ErrActivity reports activity hooks that failed after a pass was
	// applied. The store changes of that pass are kept.
	ErrActivity = errors.New("scenesync: activity hook failed")
)

// StoreError captures object store metadata alongside the originating error.
type StoreError struct {
	Op         string
	Scene      string
	Collection Collection
	Err        error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Collection == "" {
		return fmt.Sprintf("scenesync: store %s scene=%q: %v", e.Op, e.Scene, e.Err)
	}
	return fmt.Sprintf("scenesync: store %s scene=%q collection=%s: %v", e.Op, e.Scene, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsCancelled reports whether err is, or wraps, ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func wrapStoreError(op, scene string, collection Collection, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		if storeErr.Scene != "" && storeErr.Collection != "" {
			return err
		}
		filled := *storeErr
		if filled.Scene == "" {
			filled.Scene = scene
		}
		if filled.Collection == "" {
			filled.Collection = collection
		}
		return &filled
	}
	return &StoreError{Op: op, Scene: scene, Collection: collection, Err: err}
}
