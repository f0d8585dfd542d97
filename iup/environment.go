package iup

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// MinIupVersion is the oldest toolkit release the binding supports. The
// required symbol set assumes entry points present since this release.
const MinIupVersion = "3.28"

// Package-level lifecycle state. The mutex guards open/close and the
// pre-open setters only: dynamic-linker state is process-global, so two
// goroutines racing Open must not both load the image. Everything past
// Open (widget calls, attributes, callback registration and dispatch) is
// NOT internally synchronized and must stay on the single designated GUI
// thread, because the toolkit itself is not thread-safe.
var (
	mu       sync.Mutex
	refCount int
	iupLib   uintptr
	api      *iupAPI
	libPath  string

	versionStr string
)

// SetSharedLibraryPath sets an explicit path (file or directory) for the
// IUP shared library. It must be called before the first Open; the load
// path cannot change while the toolkit is open.
func SetSharedLibraryPath(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if refCount > 0 {
		return fmt.Errorf("iup: cannot change library path after the toolkit is opened")
	}
	libPath = path
	return nil
}

// Open loads the IUP shared library, resolves the required entry points,
// initializes the toolkit and switches it to UTF-8 mode.
//
// Open is ref-counted: nested calls are cheap and each must be paired
// with Close. A failed Open leaves the package unloaded; retrying
// constructs a fresh load attempt rather than reusing a dead handle.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if refCount > 0 {
		refCount++
		return nil
	}

	path := locateLibrary(libraryFileName(), libPath)
	handle, err := openLibrary(path)
	if err != nil {
		return err
	}

	a := new(iupAPI)
	lookup := func(name string) (uintptr, error) { return getSymbol(handle, name) }
	if err := resolveSymbols(path, lookup, a.symbols()); err != nil {
		_ = closeLibrary(handle)
		return err
	}

	if rc := a.open(0, 0); rc != NoError && rc != Opened {
		_ = closeLibrary(handle)
		return fmt.Errorf("iup: IupOpen failed with status %d", rc)
	}

	version := CstringToGo(a.version())
	if err := checkMinimumVersion(version); err != nil {
		a.close()
		_ = closeLibrary(handle)
		return err
	}

	nameBytes, namePtr := GoToCstring(AttrUTF8Mode)
	valueBytes, valuePtr := GoToCstring(Yes)
	a.setGlobal(namePtr, valuePtr)
	runtime.KeepAlive(nameBytes)
	runtime.KeepAlive(valueBytes)

	iupLib = handle
	api = a
	versionStr = version
	refCount = 1
	return nil
}

// Close decrements the open count. The last Close shuts the toolkit down
// and unloads the images best-effort: the operating system may keep a
// once-loaded image mapped for the process lifetime, so reloading after
// a failed unload is unsupported and needs a fresh process.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if refCount == 0 {
		return nil
	}
	refCount--
	if refCount > 0 {
		return nil
	}

	var errs []error
	if imLib != 0 {
		if err := closeLibrary(imLib); err != nil {
			errs = append(errs, fmt.Errorf("iup: unloading image library: %w", err))
		}
		imLib = 0
		imAPI = nil
	}

	api.close()
	if err := closeLibrary(iupLib); err != nil {
		errs = append(errs, fmt.Errorf("iup: unloading toolkit library: %w", err))
	}

	iupLib = 0
	api = nil
	versionStr = ""
	resetCallbackState()
	return errors.Join(errs...)
}

// IsOpened reports whether Open has succeeded and not yet been fully
// closed.
func IsOpened() bool {
	mu.Lock()
	defer mu.Unlock()
	return refCount > 0
}

// NativeOpened asks the toolkit itself whether it is initialized, through
// the optional IupIsOpened entry point. Toolkit builds older than that
// entry point return ErrNotSupported; IsOpened tracks the binding's own
// open count and works everywhere.
func NativeOpened() (bool, error) {
	if api == nil {
		return false, ErrNotOpened
	}
	if api.isOpened == nil {
		return false, ErrNotSupported
	}
	return api.isOpened() != 0, nil
}

// Version returns the loaded toolkit's version string, or "" before Open.
func Version() string {
	mu.Lock()
	defer mu.Unlock()
	return versionStr
}

// VersionDate returns the toolkit's release date string.
func VersionDate() (string, error) {
	if api == nil {
		return "", ErrNotOpened
	}
	return CstringToGo(api.versionDate()), nil
}

// VersionNumber returns the toolkit's numeric version (for example
// 330000 for release 3.30).
func VersionNumber() (int, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return int(api.versionNumber()), nil
}

func checkMinimumVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("iup: cannot parse toolkit version %q: %w", version, err)
	}
	min := semver.MustParse(MinIupVersion)
	if v.LessThan(min) {
		return fmt.Errorf("iup: toolkit version %s is older than the minimum supported %s", version, MinIupVersion)
	}
	return nil
}
