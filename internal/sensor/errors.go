package sensor

import "codeberg.org/mutker/gamebar/internal/errors"

const (
	ErrNodeMissing    = errors.ErrorCode("sensor_node_missing")
	ErrNodeUnreadable = errors.ErrorCode("sensor_node_unreadable")
	ErrNodeEmpty      = errors.ErrorCode("sensor_node_empty")
	ErrNodeMalformed  = errors.ErrorCode("sensor_node_malformed")
	ErrUnsupported    = errors.ErrorCode("sensor_unsupported")
)
