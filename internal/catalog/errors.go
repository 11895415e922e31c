package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePage   = errors.New("duplicate page name")
	ErrInvalidSection  = errors.New("invalid manual section")
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidPageName = errors.New("invalid page name")
)

// EntryError identifies the catalog entry that failed validation.
type EntryError struct {
	Index    int
	PageName string
	Err      error
}

func (e *EntryError) Error() string {
	if e.PageName == "" {
		return fmt.Sprintf("catalog entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("catalog entry %d (%s): %v", e.Index, e.PageName, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
