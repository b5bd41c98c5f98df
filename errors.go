package miniview

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInputPath is returned when an input mode expects a path but got none.
	ErrEmptyInputPath = errors.New("no path to an image was provided")

	// ErrInputModeUndetermined is returned when not exactly one input mode was selected.
	ErrInputModeUndetermined = errors.New("unable to determine input mode")

	// ErrSendFailed is returned by Close when the worker was already gone
	// and could not receive the close signal.
	ErrSendFailed = errors.New("unable to signal window to stop showing")

	// ErrWindowCreate is returned when no native window could be created.
	ErrWindowCreate = errors.New("unable to create a window to display the image")

	// ErrTextureMap is returned when the image could not be mapped to a
	// surface that the window can paint.
	ErrTextureMap = errors.New("unable to map the image to a texture")

	// ErrJoinFailed is returned when the view worker terminated abnormally.
	ErrJoinFailed = errors.New("view worker exited improperly")

	// ErrViewConsumed is returned when Close or WaitForExit is called on a
	// view that has already been closed or awaited.
	ErrViewConsumed = errors.New("view has already been closed or awaited")
)

// ImportKind classifies failures to load an image from its source.
type ImportKind int

const (
	PathNotFound ImportKind = iota + 1
	StdinUnableToRead
	StdinPathEmpty
	StreamEmpty
	UnrecognizedFormat
)

func (k ImportKind) String() string {
	switch k {
	case PathNotFound:
		return "path not found"
	case StdinUnableToRead:
		return "stdin unreadable"
	case StdinPathEmpty:
		return "stdin path empty"
	case StreamEmpty:
		return "stream empty"
	case UnrecognizedFormat:
		return "unrecognized format"
	default:
		return fmt.Sprintf("ImportKind(%d)", int(k))
	}
}

// Sentinel import errors; compare with errors.Is.
var (
	ErrPathNotFound       = &ImportError{Kind: PathNotFound}
	ErrStdinUnreadable    = &ImportError{Kind: StdinUnableToRead}
	ErrStdinPathEmpty     = &ImportError{Kind: StdinPathEmpty}
	ErrStreamEmpty        = &ImportError{Kind: StreamEmpty}
	ErrUnrecognizedFormat = &ImportError{Kind: UnrecognizedFormat}
)

// ImportError reports why an image could not be loaded from a Source.
type ImportError struct {
	Kind ImportKind
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	var msg string
	switch e.Kind {
	case PathNotFound:
		msg = "provided path to image could not be found or loaded"
	case StdinUnableToRead:
		msg = "unable to read from the stdin"
	case StdinPathEmpty:
		msg = "given path to image was empty"
	case StreamEmpty:
		msg = "stdin was empty"
	case UnrecognizedFormat:
		msg = "the input received from stdin could not be loaded"
	default:
		msg = "unable to import image"
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches any ImportError of the same kind.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	return ok && t.Kind == e.Kind
}
