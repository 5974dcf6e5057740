package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrMissingURL is returned when a request carries no URL at all.
	ErrMissingURL = errors.New("no link provided")

	// ErrUnsupportedSite is returned when the URL matches no supported site.
	ErrUnsupportedSite = errors.New("unsupported site")

	// ErrAudioNotSupported is returned when audio mode is requested for a site without audio support.
	ErrAudioNotSupported = errors.New("audio download is not available for this site")
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindExtraction ErrorKind = "extraction"
	KindDelivery   ErrorKind = "delivery"
	KindUpload     ErrorKind = "upload"
	KindUnexpected ErrorKind = "unexpected"
)

// Error wraps an error with its kind and the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// DetailError attaches diagnostic text to an error whose own text is shown
// to the requester. Error includes the detail, UserMessage does not.
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *DetailError) Unwrap() error {
	return e.Err
}

// WithDetail wraps err with detail.
func WithDetail(err error, detail string) error {
	return &DetailError{Err: err, Detail: detail}
}

// KindOf returns the kind of the first *Error in err's chain.
// Untyped errors are unexpected.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// UserMessage renders err as the text shown to the requester.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if KindOf(err) == KindValidation {
		switch {
		case errors.Is(err, ErrMissingURL):
			return "Please send a YouTube link.\nExample: /audio https://youtu.be/..."
		case errors.Is(err, ErrAudioNotSupported):
			return fmt.Sprintf("❌ Audio download is only available for %s.", SiteNames(AudioSites))
		case errors.Is(err, ErrUnsupportedSite):
			return fmt.Sprintf("❌ Sorry, I only support %s links.", SiteNames(SupportedSites))
		}
	}

	var dt *DetailError
	if errors.As(err, &dt) {
		return "❌ An error occurred: " + dt.Err.Error()
	}

	var de *Error
	if errors.As(err, &de) {
		return "❌ An error occurred: " + de.Err.Error()
	}
	return "❌ An error occurred: " + err.Error()
}
