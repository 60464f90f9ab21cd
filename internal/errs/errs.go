// Package errs defines the error taxonomy shared by every ingestion stage.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrFileNotFound          = errors.New("file not found")
	ErrUnsupportedFormat     = errors.New("unsupported file format")
	ErrFileTooLarge          = errors.New("file too large")
	ErrCorruptDocument       = errors.New("corrupt document")
	ErrExtractionUnsupported = errors.New("extraction not supported for format")
	ErrValidationFailure     = errors.New("validation failed")
	ErrCacheCorruption       = errors.New("cache entry corrupted")
)

// FileError ties a failure kind to the file and stage that produced it.
type FileError struct {
	Path   string
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *FileError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is/As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds a FileError of the given kind.
func New(kind error, op, path, detail string) *FileError {
	return &FileError{Path: path, Op: op, Kind: kind, Detail: detail}
}

// Wrap builds a FileError of the given kind around cause.
func Wrap(kind error, op, path string, cause error) *FileError {
	return &FileError{Path: path, Op: op, Kind: kind, Err: cause}
}

// Kind returns the taxonomy sentinel err belongs to, or nil if none matches.
func Kind(err error) error {
	for _, k := range []error{
		ErrFileNotFound,
		ErrUnsupportedFormat,
		ErrFileTooLarge,
		ErrCorruptDocument,
		ErrExtractionUnsupported,
		ErrValidationFailure,
		ErrCacheCorruption,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Reason returns a message an uploading user can act on.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var fe *FileError
	detail := ""
	if errors.As(err, &fe) && fe.Detail != "" {
		detail = " (" + fe.Detail + ")"
	}
	switch Kind(err) {
	case ErrFileNotFound:
		return "The file could not be found."
	case ErrUnsupportedFormat:
		return "Only PDF and DOCX résumés are accepted" + detail + "."
	case ErrFileTooLarge:
		return "The file exceeds the maximum allowed size" + detail + "."
	case ErrCorruptDocument:
		return "The document could not be read; it may be damaged or password protected. Please export it again and retry."
	case ErrExtractionUnsupported:
		return "Text cannot be extracted from this kind of document."
	case ErrValidationFailure:
		return "The résumé is missing required information" + detail + "."
	default:
		return fmt.Sprintf("Processing failed: %v", err)
	}
}

// HTTPStatus maps an ingestion error to the status code used at the upload boundary.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrFileNotFound:
		return http.StatusNotFound
	case ErrUnsupportedFormat, ErrExtractionUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCorruptDocument, ErrValidationFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
