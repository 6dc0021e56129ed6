package cms

import (
	"errors"
	"fmt"
)

// ErrFormat marks errors that reflect a CMS message-format rule rather than
// misuse of the collection.
var ErrFormat = errors.New("cms: message format violation")

// Attribute set errors.
var (
	ErrNilArgument         = errors.New("cms: nil argument")
	ErrDuplicateItem       = errors.New("cms: duplicate item not allowed")
	ErrMultipleSigningTime = fmt.Errorf("%w: multiple signing-time attributes not allowed", ErrFormat)
	ErrSingleValued        = fmt.Errorf("%w: attribute must have exactly one value", ErrFormat)
	ErrIndexOutOfRange     = errors.New("cms: index out of range")
	ErrInsufficientSpace   = errors.New("cms: insufficient space in destination")
)
