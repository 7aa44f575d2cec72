package analyses

import "errors"

var (
	ErrNotFound    = errors.New("analysis not found")
	ErrUnknownKind = errors.New("unknown analysis kind")
)
