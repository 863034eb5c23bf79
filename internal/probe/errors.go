package probe

import "codeberg.org/mutker/gamebar/internal/errors"

const (
	ErrNotConfigured  = errors.ErrorCode("probe_not_configured")
	ErrNodeUnreadable = errors.ErrorCode("probe_node_unreadable")
	ErrNodeMalformed  = errors.ErrorCode("probe_node_malformed")
	ErrOutOfRange     = errors.ErrorCode("probe_value_out_of_range")
	ErrNoBaseline     = errors.ErrorCode("probe_no_baseline")
)
