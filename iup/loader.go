package iup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func hostGOOS() string { return runtime.GOOS }

// Environment variables consulted when locating the toolkit libraries.
const (
	// EnvLibPath points at a directory containing the IUP shared
	// libraries, or directly at the library file itself.
	EnvLibPath = "IUP_LIB_PATH"
)

func libraryFileName() string {
	return libraryFileNameFor(hostGOOS())
}

func libraryFileNameFor(goos string) string {
	switch goos {
	case "windows":
		return "iup.dll"
	case "darwin":
		return "libiup.dylib"
	default:
		return "libiup.so"
	}
}

func imageLibraryFileName() string {
	return imageLibraryFileNameFor(hostGOOS())
}

func imageLibraryFileNameFor(goos string) string {
	switch goos {
	case "windows":
		return "iupim.dll"
	case "darwin":
		return "libiupim.dylib"
	default:
		return "libiupim.so"
	}
}

// platformLibDir is the executable-relative directory conventionally used
// to ship the toolkit next to the application binary.
func platformLibDir(goos string) string {
	if goos == "windows" {
		return filepath.Join("iup", "windows")
	}
	return filepath.Join("iup", "linux")
}

// locateLibrary resolves the path to load for the named library file.
//
// Search order: explicit path (if non-empty), EnvLibPath, the
// executable-relative platform directory, the executable directory, a
// previously bootstrapped copy in the cache, and finally the bare file
// name, delegating to the system linker search.
func locateLibrary(fileName, explicit string) string {
	if explicit != "" {
		if info, err := os.Stat(explicit); err == nil && info.IsDir() {
			return filepath.Join(explicit, fileName)
		}
		return explicit
	}

	if env := strings.TrimSpace(os.Getenv(EnvLibPath)); env != "" {
		if info, err := os.Stat(env); err == nil && !info.IsDir() {
			return env
		}
		return filepath.Join(env, fileName)
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates := []string{
			filepath.Join(exeDir, platformLibDir(hostGOOS()), fileName),
			filepath.Join(exeDir, fileName),
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	if cached := cachedLibraryPath(fileName); cached != "" {
		return cached
	}

	return fileName
}

// openLibrary loads a shared library image and classifies failures into
// the LoadError taxonomy. A path that names no file is a not-found
// failure; an existing file the dynamic linker rejects (bad architecture,
// missing transitive dependency) is an initialization failure.
//
// Bare names without a directory component cannot be stat'ed ahead of the
// linker search, so their failures classify through the linker error
// alone and default to the initialization kind.
func openLibrary(path string) (uintptr, error) {
	if strings.ContainsRune(path, os.PathSeparator) {
		if _, statErr := os.Stat(path); statErr != nil {
			if os.IsNotExist(statErr) {
				return 0, &LoadError{Kind: LoadErrNotFound, Path: path, Err: statErr}
			}
			return 0, &LoadError{Kind: LoadErrInit, Path: path, Err: statErr}
		}
	}

	handle, err := loadLibrary(path)
	if err != nil {
		if loadFailedNotFound(err) {
			return 0, &LoadError{Kind: LoadErrNotFound, Path: path, Err: err}
		}
		return 0, &LoadError{Kind: LoadErrInit, Path: path, Err: err}
	}
	if handle == 0 {
		return 0, &LoadError{Kind: LoadErrInit, Path: path,
			Err: fmt.Errorf("loader returned a null handle")}
	}
	return handle, nil
}
