package iup

// Handle is an opaque reference to a native toolkit element (Ihandle*).
// The zero Handle is the null element; passing it where the toolkit
// expects a valid element is undefined behavior, the same as in C.
type Handle uintptr

// IsValid reports whether the handle references an element.
func (h Handle) IsValid() bool { return h != 0 }
