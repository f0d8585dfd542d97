package iup

import "unsafe"

// minValidPointer rejects obviously invalid C string pointers. The first
// page is never mapped on the supported platforms.
const minValidPointer = 4096

// CstringToGo converts a C null-terminated string pointer to a Go string.
// Returns an empty string for null or implausibly low addresses.
func CstringToGo(ptr uintptr) string {
	if ptr < minValidPointer {
		return ""
	}

	// Scan for the null terminator through a bounded slice. IUP strings
	// (attribute values, version strings) are small; a string that ever
	// approaches this bound indicates memory corruption.
	const maxStringLen = 1 << 20
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), maxStringLen)

	var length int
	for i := 0; i < maxStringLen; i++ {
		if bytes[i] == 0 {
			length = i
			break
		}
	}

	return string(bytes[:length])
}

// GoToCstring converts a Go string to a null-terminated byte slice
// suitable for passing into the toolkit, returning the slice and a
// pointer to its first byte.
//
// The caller MUST keep the returned []byte alive for as long as the
// native side may access the pointer:
//
//	titleBytes, titlePtr := GoToCstring("Hello")
//	api.setAttribute(ih, namePtr, titlePtr)
//	runtime.KeepAlive(titleBytes)
func GoToCstring(s string) ([]byte, uintptr) {
	b := append([]byte(s), 0)
	return b, uintptr(unsafe.Pointer(&b[0]))
}
