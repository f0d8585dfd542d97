//go:build !windows

package iup

import (
	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (uintptr, error) {
	libHandle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return libHandle, nil
}

func getSymbol(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

func closeLibrary(handle uintptr) error {
	if handle == 0 {
		return nil
	}
	return purego.Dlclose(handle)
}

// loadFailedNotFound reports whether the dynamic linker error indicates a
// missing file rather than a failed initialization. dlerror gives back
// free text only, so classification happens in openLibrary via stat.
func loadFailedNotFound(err error) bool {
	return false
}
