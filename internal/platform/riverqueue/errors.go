package riverqueue

import "errors"

var (
	ErrNilRunner = errors.New("river runner cannot be nil")
	ErrNilPool   = errors.New("river connection pool cannot be nil")
)
