package pdf

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes extraction failures.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodeEmptyFile
	CodeTooLarge
	CodeNotPDF
	CodeUnreadable
	CodeEncrypted
	CodeNoText
)

// String returns the upper-case name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeEmptyFile:
		return "EMPTY_FILE"
	case CodeTooLarge:
		return "FILE_TOO_LARGE"
	case CodeNotPDF:
		return "NOT_PDF"
	case CodeUnreadable:
		return "UNREADABLE"
	case CodeEncrypted:
		return "ENCRYPTED"
	case CodeNoText:
		return "NO_TEXT"
	default:
		return "UNKNOWN"
	}
}

// Sentinel errors matched with errors.Is against an ExtractionError.
var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotPDF       = errors.New("file is not a PDF")
	ErrUnreadable   = errors.New("could not extract text from PDF")
	ErrEncrypted    = errors.New("PDF is encrypted")
	ErrNoText       = errors.New("no text content could be extracted from PDF")
)

// ExtractionError is returned by the extractor for any structural failure
// of the uploaded document.
type ExtractionError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel belonging to the error's code.
func (e *ExtractionError) Is(target error) bool {
	return sentinelFor(e.Code) == target
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case CodeEmptyFile:
		return ErrEmptyFile
	case CodeTooLarge:
		return ErrFileTooLarge
	case CodeNotPDF:
		return ErrNotPDF
	case CodeUnreadable:
		return ErrUnreadable
	case CodeEncrypted:
		return ErrEncrypted
	case CodeNoText:
		return ErrNoText
	default:
		return nil
	}
}

func newError(code ErrorCode, message string, err error) *ExtractionError {
	return &ExtractionError{Code: code, Message: message, Err: err}
}
