package iup

import "runtime"

// SetAttribute sets a string attribute on an element.
func SetAttribute(ih Handle, name, value string) error {
	if api == nil {
		return ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	valueBytes, valuePtr := GoToCstring(value)
	api.setAttribute(uintptr(ih), namePtr, valuePtr)
	runtime.KeepAlive(nameBytes)
	runtime.KeepAlive(valueBytes)
	return nil
}

// GetAttribute returns an element attribute as a string, or "" when the
// attribute is unset.
func GetAttribute(ih Handle, name string) (string, error) {
	if api == nil {
		return "", ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	value := api.getAttribute(uintptr(ih), namePtr)
	runtime.KeepAlive(nameBytes)
	return CstringToGo(value), nil
}

// ResetAttribute restores an attribute to its default value.
func ResetAttribute(ih Handle, name string) error {
	if api == nil {
		return ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	api.resetAttribute(uintptr(ih), namePtr)
	runtime.KeepAlive(nameBytes)
	return nil
}

// SetInt sets an integer attribute on an element.
func SetInt(ih Handle, name string, value int) error {
	if api == nil {
		return ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	api.setInt(uintptr(ih), namePtr, int32(value))
	runtime.KeepAlive(nameBytes)
	return nil
}

// GetInt returns an element attribute converted to an integer.
func GetInt(ih Handle, name string) (int, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	value := api.getInt(uintptr(ih), namePtr)
	runtime.KeepAlive(nameBytes)
	return int(value), nil
}

// SetAttributeHandle associates another element as the value of an
// attribute, e.g. a dialog's AttrIcon image.
func SetAttributeHandle(ih Handle, name string, named Handle) error {
	if api == nil {
		return ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	api.setAttributeHandle(uintptr(ih), namePtr, uintptr(named))
	runtime.KeepAlive(nameBytes)
	return nil
}

// SetGlobal sets a global toolkit attribute.
func SetGlobal(name, value string) error {
	if api == nil {
		return ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	valueBytes, valuePtr := GoToCstring(value)
	api.setGlobal(namePtr, valuePtr)
	runtime.KeepAlive(nameBytes)
	runtime.KeepAlive(valueBytes)
	return nil
}

// GetGlobal returns a global toolkit attribute, or "" when unset.
func GetGlobal(name string) (string, error) {
	if api == nil {
		return "", ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	value := api.getGlobal(namePtr)
	runtime.KeepAlive(nameBytes)
	return CstringToGo(value), nil
}

// SetHandle binds a global name to an element.
func SetHandle(name string, ih Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	previous := api.setHandle(namePtr, uintptr(ih))
	runtime.KeepAlive(nameBytes)
	return Handle(previous), nil
}

// GetHandle returns the element bound to a global name, if any.
func GetHandle(name string) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	ih := api.getHandle(namePtr)
	runtime.KeepAlive(nameBytes)
	return Handle(ih), nil
}

// GetDialog returns the dialog that contains an element.
func GetDialog(ih Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.getDialog(uintptr(ih))), nil
}

// GetDialogChild finds a descendant of an element's dialog by its
// AttrName attribute.
func GetDialogChild(ih Handle, name string) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	child := api.getDialogChild(uintptr(ih), namePtr)
	runtime.KeepAlive(nameBytes)
	return Handle(child), nil
}

// SetFocus gives keyboard focus to an element and returns the element
// that previously had it.
func SetFocus(ih Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.setFocus(uintptr(ih))), nil
}

// GetFocus returns the element with keyboard focus.
func GetFocus() (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.getFocus()), nil
}
