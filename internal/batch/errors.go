package batch

import "errors"

var (
	// ErrNotFound is returned for inputs that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidUTF8 is returned for inputs that are not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")
	// ErrOutputWithBatch is returned when an explicit output path is combined
	// with more than one input.
	ErrOutputWithBatch = errors.New("--output is only valid with a single input file")
	// ErrNoInputs is returned when a request carries no inputs.
	ErrNoInputs = errors.New("no input files")
)
