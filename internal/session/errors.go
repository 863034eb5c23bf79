package session

import "codeberg.org/mutker/gamebar/internal/errors"

const (
	ErrLogMissing    = errors.ErrResourceNotFound
	ErrLogUnreadable = errors.ErrorCode("session_log_unreadable")
	ErrNoFrameRate   = errors.ErrorCode("session_no_frame_rate")
	ErrParsePanic    = errors.ErrAnalyzeFailed
)
