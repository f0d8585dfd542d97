//go:build windows

package iup

import (
	"errors"

	"golang.org/x/sys/windows"
)

func loadLibrary(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

func getSymbol(handle uintptr, symbol string) (uintptr, error) {
	proc, err := windows.GetProcAddress(windows.Handle(handle), symbol)
	if err != nil {
		return 0, err
	}
	return proc, nil
}

func closeLibrary(handle uintptr) error {
	if handle == 0 {
		return nil
	}
	return windows.FreeLibrary(windows.Handle(handle))
}

// loadFailedNotFound reports whether LoadLibrary failed because the module
// itself was not found, as opposed to an image that refused to initialize.
func loadFailedNotFound(err error) bool {
	return errors.Is(err, windows.ERROR_MOD_NOT_FOUND)
}
