package hx

import (
	"errors"

	"github.com/pthm/shipform/lib/encoding"
)

// Sentinel errors for component requests.
var (
	ErrNotFound         = errors.New("hx: not found")
	ErrMethodNotAllowed = errors.New("hx: method not allowed")
	ErrDecryptFailed    = errors.New("hx: props decryption failed")
	ErrSignatureInvalid = errors.New("hx: props signature invalid")
	ErrInvalidFormat    = errors.New("hx: invalid props format")
	ErrHydrationFailed  = errors.New("hx: hydration failed")
)

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError reports whether err comes from a props token that could
// not be verified or opened.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid) || errors.Is(err, ErrInvalidFormat)
}

// wrapEncodingError maps encoding errors onto the kit's sentinels.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	case errors.Is(err, encoding.ErrInvalidFormat):
		return ErrInvalidFormat
	default:
		return err
	}
}
