package models

import "fmt"

// Error codes carried by AuditError. Only launch, navigation and capture
// failures ever cross the orchestrator boundary; everything else degrades to
// a default value at the probe that produced it.
const (
	ErrCodeLaunch       = "LAUNCH_FAILED"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeCaptureIO    = "CAPTURE_IO_FAILED"
	ErrCodeReportWrite  = "REPORT_WRITE_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// AuditError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type AuditError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *AuditError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// NewAuditError creates a new AuditError.
func NewAuditError(code, message string, err error) *AuditError {
	return &AuditError{Code: code, Message: message, Err: err}
}
