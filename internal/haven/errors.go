package haven

import "errors"

// Error kinds reported to the user. Callers classify wrapped errors with errors.Is.
var (
	// ErrParse marks malformed user input, e.g. a release date that is not a date.
	ErrParse = errors.New("invalid input")

	// ErrNotFound marks a title lookup with no match, or a managed copy that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrIO marks a failed file copy.
	ErrIO = errors.New("i/o error")

	// ErrDuplicateTitle is returned when a game with the same title is already catalogued.
	ErrDuplicateTitle = errors.New("duplicate game title")
)

// IsRecoverable reports whether err should be shown to the user and the current flow abandoned,
// as opposed to terminating the program. Storage failures are not recoverable.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrIO) ||
		errors.Is(err, ErrDuplicateTitle)
}
