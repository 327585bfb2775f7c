package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so wrapped instances compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	// Configuration errors are fatal at startup.
	ErrConfigInvalid    = &AppError{Code: "CONFIG_001", Message: "invalid configuration"}
	ErrEmptySchedule    = &AppError{Code: "CONFIG_002", Message: "medication has no scheduled times"}
	ErrDuplicateDoseKey = &AppError{Code: "CONFIG_003", Message: "duplicate dose key in schedule"}

	// Validation errors are rejected synchronously with the failing field.
	ErrInvalidDateRange = &AppError{Code: "VALID_001", Message: "start date is after end date"}
	ErrUnknownStatus    = &AppError{Code: "VALID_002", Message: "unknown dose status"}
	ErrInvalidDate      = &AppError{Code: "VALID_003", Message: "malformed date"}
	ErrInvalidTime      = &AppError{Code: "VALID_004", Message: "malformed time of day"}

	// Store errors indicate persistence failure; single-record callers may retry.
	ErrStoreFailure = &AppError{Code: "STORE_001", Message: "event log operation failed"}

	// Not-found errors indicate a configuration/caller mismatch.
	ErrDoseNotFound       = &AppError{Code: "NOTFOUND_001", Message: "dose key not present in schedule"}
	ErrMedicationNotFound = &AppError{Code: "NOTFOUND_002", Message: "medication not present in schedule"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
