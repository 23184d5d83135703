package tvg

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gogpu/tvg/internal/codec"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/tvgbin"
	"github.com/gogpu/tvg/text"
)

// Sentinel errors. Every error returned by this package matches one
// of them with errors.Is; ResultOf maps an error back to its Result.
var (
	// ErrInvalidArguments reports a nil, out of range or malformed input.
	ErrInvalidArguments = errors.New("tvg: invalid arguments")

	// ErrInsufficientCondition reports a call made in the wrong state, such
	// as drawing before a target is set.
	ErrInsufficientCondition = errors.New("tvg: insufficient condition")

	// ErrFailedAllocation reports that a buffer could not be allocated.
	ErrFailedAllocation = errors.New("tvg: failed allocation")

	// ErrMemoryCorruption reports a reference count mismatch, such as
	// using a paint that has been destroyed.
	ErrMemoryCorruption = errors.New("tvg: memory corruption")

	// ErrNonSupport reports a disabled feature or unrecognized format.
	ErrNonSupport = errors.New("tvg: not supported")

	// ErrUnknown reports an unexpected internal failure, typically from a
	// prepare task.
	ErrUnknown = errors.New("tvg: unknown error")
)

// Result is the kind of an operation's outcome.
type Result uint8

// Results.
const (
	Success Result = iota
	InvalidArguments
	InsufficientCondition
	FailedAllocation
	MemoryCorruption
	NonSupport
	Unknown
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case InvalidArguments:
		return "InvalidArguments"
	case InsufficientCondition:
		return "InsufficientCondition"
	case FailedAllocation:
		return "FailedAllocation"
	case MemoryCorruption:
		return "MemoryCorruption"
	case NonSupport:
		return "NonSupport"
	case Unknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// resultKinds is checked in order; the first match wins.
var resultKinds = []struct {
	err error
	res Result
}{
	{ErrInvalidArguments, InvalidArguments},
	{ErrInsufficientCondition, InsufficientCondition},
	{ErrFailedAllocation, FailedAllocation},
	{ErrMemoryCorruption, MemoryCorruption},
	{ErrNonSupport, NonSupport},
	{ErrUnknown, Unknown},
}

func matchesKind(err error) bool {
	for _, k := range resultKinds {
		if errors.Is(err, k.err) {
			return true
		}
	}
	return false
}

// ResultOf returns the Result kind of err. nil is Success and errors that
// match no sentinel are Unknown.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	for _, k := range resultKinds {
		if errors.Is(err, k.err) {
			return k.res
		}
	}
	return Unknown
}

// PrepareError records a paint whose prepare task failed. The paint draws
// as empty; the error surfaces from Canvas.Sync.
type PrepareError struct {
	ID   uint32
	Type Type
	Err  error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("tvg: prepare %v (id %#x): %v", e.Type, e.ID, e.Err)
}

// Unwrap exposes both ErrUnknown and the cause.
func (e *PrepareError) Unwrap() []error {
	return []error{ErrUnknown, e.Err}
}

// wrap attaches a sentinel kind to an error from an internal package.
func wrap(kind error, op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// classify maps errors of internal packages to a sentinel kind.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case matchesKind(err):
		return err
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return wrap(ErrInvalidArguments, op, err)
	case errors.Is(err, codec.ErrUnsupported):
		return wrap(ErrNonSupport, op, err)
	case errors.Is(err, tvgbin.ErrMalformed), errors.Is(err, text.ErrInvalidFont):
		return wrap(ErrInvalidArguments, op, err)
	case errors.Is(err, text.ErrFontNotFound):
		return wrap(ErrInsufficientCondition, op, err)
	case errors.Is(err, sw.ErrAllocation):
		return wrap(ErrFailedAllocation, op, err)
	case errors.Is(err, sw.ErrInvalidTarget):
		return wrap(ErrInvalidArguments, op, err)
	case errors.Is(err, sw.ErrNoTarget):
		return wrap(ErrInsufficientCondition, op, err)
	default:
		return wrap(ErrUnknown, op, err)
	}
}
