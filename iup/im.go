package iup

import (
	"fmt"
	"runtime"
)

// The auxiliary image library (iupim) ships as a separate shared library
// and carries its own native dependencies (the IM imaging stack). It is
// the load most likely to fail with LoadErrInit: the image is present
// but a transitive dependency cannot be resolved. That failure is
// terminal for the process run; the host application should treat image
// support as unavailable rather than retry.

type imAPIFuncs struct {
	loadImage func(name uintptr) uintptr
}

var (
	imLib  uintptr
	imAPI  *imAPIFuncs
	imPath string
)

func (a *imAPIFuncs) symbols() []symbol {
	return []symbol{
		{name: "IupLoadImage", fn: &a.loadImage},
	}
}

// SetImageLibraryPath sets an explicit path (file or directory) for the
// auxiliary image library. It must be called before OpenImageLibrary.
func SetImageLibraryPath(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if imLib != 0 {
		return fmt.Errorf("iup: cannot change image library path after it is loaded")
	}
	imPath = path
	return nil
}

// OpenImageLibrary loads the auxiliary image library and resolves its
// entry points. The toolkit must already be open: iupim links against
// the toolkit image and loading it first fails.
func OpenImageLibrary() error {
	mu.Lock()
	defer mu.Unlock()

	if refCount == 0 {
		return ErrNotOpened
	}
	if imLib != 0 {
		return nil
	}

	path := locateLibrary(imageLibraryFileName(), imPath)
	handle, err := openLibrary(path)
	if err != nil {
		return err
	}

	a := new(imAPIFuncs)
	lookup := func(name string) (uintptr, error) { return getSymbol(handle, name) }
	if err := resolveSymbols(path, lookup, a.symbols()); err != nil {
		_ = closeLibrary(handle)
		return err
	}

	imLib = handle
	imAPI = a
	return nil
}

// ImageLibraryOpened reports whether the auxiliary image library is
// loaded.
func ImageLibraryOpened() bool {
	mu.Lock()
	defer mu.Unlock()
	return imLib != 0
}

// LoadImage reads an image file through the image library and returns an
// image element usable as an attribute handle value (AttrIcon and
// friends). The zero Handle means the file could not be decoded.
func LoadImage(fileName string) (Handle, error) {
	if imAPI == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(fileName)
	ih := imAPI.loadImage(namePtr)
	runtime.KeepAlive(nameBytes)
	return Handle(ih), nil
}
