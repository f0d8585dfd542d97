package iup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotOpened is returned by call wrappers used before Open succeeded.
var ErrNotOpened = errors.New("iup: toolkit not opened")

// ErrNotRegistered is returned when unregistering a callback that was
// never registered for the given widget and name.
var ErrNotRegistered = errors.New("iup: callback not registered")

// ErrNotSupported is returned by wrappers whose entry point is absent
// from the loaded toolkit build (older than the symbol's introduction).
var ErrNotSupported = errors.New("iup: entry point not available in loaded library")

// LoadErrorKind classifies why a shared library image failed to load.
type LoadErrorKind int

const (
	// LoadErrNotFound means no library file exists at the resolved path.
	LoadErrNotFound LoadErrorKind = iota
	// LoadErrInit means the file exists but the dynamic linker refused to
	// load it, typically because a transitive dependency is missing or the
	// image targets a different architecture. This failure is terminal for
	// the process run; retrying with the same image will not succeed.
	LoadErrInit
)

// LoadError reports a failure to open a shared library image.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case LoadErrNotFound:
		return fmt.Sprintf("iup: shared library not found: %s", e.Path)
	default:
		return fmt.Sprintf("iup: shared library %s failed to initialize: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// SymbolResolutionError reports every required symbol absent from a
// loaded image. Resolution is all-or-nothing for the required set, so a
// single error names the complete sorted list.
type SymbolResolutionError struct {
	Library string
	Missing []string
}

func (e *SymbolResolutionError) Error() string {
	return fmt.Sprintf("iup: %s is missing required symbols: %s",
		e.Library, strings.Join(e.Missing, ", "))
}
