package apperrors

import "errors"

// Authentication errors
var ErrInvalidCredentials = errors.New("invalid credentials")

// Student record errors
var (
	// ErrStudentNotFound marks a lookup that matched no records. It is not a
	// storage failure.
	ErrStudentNotFound = errors.New("no data found for given ID number")
	ErrInvalidIDNo     = errors.New("invalid student ID number")
)

// Import errors
var (
	ErrImportFailed        = errors.New("upload failed")
	ErrEmptyUpload         = errors.New("no file uploaded")
	ErrUnsupportedFileType = errors.New("only .csv files are accepted")
	ErrUploadTooLarge      = errors.New("uploaded file is too large")
	ErrMalformedFile       = errors.New("file could not be parsed")
)

// NewImportError wraps cause as an import failure. Both ErrImportFailed and
// cause stay matchable with errors.Is.
func NewImportError(cause error, message string) error {
	return &CustomError{
		Err:     errors.Join(ErrImportFailed, cause),
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
