package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidMaxRows  ErrorCode = "invalid_max_rows"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Resource errors
	ErrResourceNotFound   ErrorCode = "resource_not_found"
	ErrResourceUnreadable ErrorCode = "resource_unreadable"

	// Application errors
	ErrRecordLoop    ErrorCode = "record_loop_failed"
	ErrAnalyzeFailed ErrorCode = "analyze_failed"
	ErrNoReport      ErrorCode = "no_report"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrInvalidConfig:      "Invalid configuration",
	ErrBindFlags:          "Failed to bind flags",
	ErrReadConfig:         "Failed to read config file",
	ErrInvalidInterval:    "Invalid interval value",
	ErrInvalidMaxRows:     "Invalid max_rows value",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrInitFailed:         "Initialization failed",
	ErrShutdownFailed:     "Shutdown failed",
	ErrResourceNotFound:   "Resource not found",
	ErrResourceUnreadable: "Resource cannot be read",
	ErrRecordLoop:         "Error in record loop",
	ErrAnalyzeFailed:      "Failed to analyze session log",
	ErrNoReport:           "No report could be produced",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
