package imagevault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an object or one half of its blob/sidecar pair is missing
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when creating an object whose name is already taken
	ErrConflict = errors.New("already exists")
	// ErrForbidden is returned when the claimed owner does not match the stored owner
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidExtension is returned for file names outside the jpg/jpeg allow-list
	ErrInvalidExtension = fmt.Errorf("%w: invalid file type", ErrInvalidInput)
	// ErrInvalidName is returned for file names that could escape the storage root
	ErrInvalidName = fmt.Errorf("%w: invalid name", ErrInvalidInput)
	// ErrInvalidFilter is returned when a catalog query names an unknown filter type
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrDecode is returned when a metadata sidecar cannot be decoded
	ErrDecode = errors.New("metadata decode failed")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
