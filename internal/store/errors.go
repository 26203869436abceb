package store

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/aurion/internal/model"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidValue      = errors.New("invalid field value")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Error describes a failed store operation. Use errors.Is against the
// sentinels above to classify it.
type Error struct {
	Op         string
	Collection model.Collection
	ID         string
	Field      string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store %s %s", e.Op, e.Collection)
	if e.ID != "" {
		msg += "/" + e.ID
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
