package sessionlog

import "codeberg.org/mutker/gamebar/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDir    = errors.ErrorCode("sessionlog_invalid_dir")

	// Storage Errors
	ErrCreateFailed = errors.ErrInitFailed
	ErrWriteFailed  = errors.ErrorCode("sessionlog_write_failed")
	ErrListFailed   = errors.ErrResourceUnreadable
	ErrClosed       = errors.ErrorCode("sessionlog_closed")
	ErrCloseFailed  = errors.ErrShutdownFailed
)
