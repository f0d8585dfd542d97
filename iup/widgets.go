package iup

import (
	"fmt"
	"runtime"
)

// Dialog creates a dialog containing child (which may be the zero
// Handle for an empty dialog).
func Dialog(child Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.dialog(uintptr(child))), nil
}

// Button creates a push button with the given title. action names the
// legacy action attribute and is normally left empty in favor of
// SetCallback with ActionCallback.
func Button(title, action string) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	titleBytes, titlePtr := GoToCstring(title)
	actionBytes, actionPtr := GoToCstring(action)
	if action == "" {
		actionPtr = 0
	}
	ih := api.button(titlePtr, actionPtr)
	runtime.KeepAlive(titleBytes)
	runtime.KeepAlive(actionBytes)
	return Handle(ih), nil
}

// Label creates a static text label.
func Label(title string) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	titleBytes, titlePtr := GoToCstring(title)
	ih := api.label(titlePtr)
	runtime.KeepAlive(titleBytes)
	return Handle(ih), nil
}

// Text creates a single-line editable text field.
func Text() (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.text(0)), nil
}

// Toggle creates a two-state button with the given title.
func Toggle(title string) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	titleBytes, titlePtr := GoToCstring(title)
	ih := api.toggle(titlePtr, 0)
	runtime.KeepAlive(titleBytes)
	return Handle(ih), nil
}

// Hbox creates a horizontal box. It is always created empty; children
// are attached with Append, which keeps the variadic C constructor off
// the foreign-call boundary.
func Hbox(children ...Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	box := Handle(api.hbox(0))
	return appendAll(box, children)
}

// Vbox creates a vertical box, empty, like Hbox.
func Vbox(children ...Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	box := Handle(api.vbox(0))
	return appendAll(box, children)
}

func appendAll(box Handle, children []Handle) (Handle, error) {
	for _, child := range children {
		if _, err := Append(box, child); err != nil {
			return 0, err
		}
	}
	return box, nil
}

// Fill creates an element that expands to occupy empty box space.
func Fill() (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.fill()), nil
}

// Frame creates a decorated border around child.
func Frame(child Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.frame(uintptr(child))), nil
}

// Timer creates a timer element. Configure it through the TIME and RUN
// attributes and the ActionCB callback.
func Timer() (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return Handle(api.timer()), nil
}

// Append attaches child as the last child of container ih.
func Append(ih, child Handle) (Handle, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	parent := Handle(api.append(uintptr(ih), uintptr(child)))
	if parent == 0 {
		return 0, fmt.Errorf("iup: append failed: %v is not a container", ih)
	}
	return parent, nil
}

// Detach removes child from its parent without destroying it.
func Detach(child Handle) error {
	if api == nil {
		return ErrNotOpened
	}
	api.detach(uintptr(child))
	return nil
}

// Destroy releases an element and its children. Registered callbacks for
// the destroyed elements should be unregistered first; the binding does
// not track element lifetimes.
func Destroy(ih Handle) error {
	if api == nil {
		return ErrNotOpened
	}
	api.destroy(uintptr(ih))
	return nil
}

// Show maps and displays an element at its current position.
func Show(ih Handle) error {
	if api == nil {
		return ErrNotOpened
	}
	if rc := api.show(uintptr(ih)); rc != NoError {
		return fmt.Errorf("iup: show failed with status %d", rc)
	}
	return nil
}

// ShowXY displays an element at the given screen position. x and y also
// accept the position constants (Center, MousePos, ...).
func ShowXY(ih Handle, x, y int) error {
	if api == nil {
		return ErrNotOpened
	}
	if rc := api.showXY(uintptr(ih), int32(x), int32(y)); rc != NoError {
		return fmt.Errorf("iup: show failed with status %d", rc)
	}
	return nil
}

// Hide unmaps an element from the screen.
func Hide(ih Handle) error {
	if api == nil {
		return ErrNotOpened
	}
	if rc := api.hide(uintptr(ih)); rc != NoError {
		return fmt.Errorf("iup: hide failed with status %d", rc)
	}
	return nil
}

// Popup shows a dialog modally at the given position and only returns
// after the dialog is closed.
func Popup(ih Handle, x, y int) error {
	if api == nil {
		return ErrNotOpened
	}
	if rc := api.popup(uintptr(ih), int32(x), int32(y)); rc != NoError {
		return fmt.Errorf("iup: popup failed with status %d", rc)
	}
	return nil
}

// MainLoop runs the toolkit event loop until ExitLoop is called or the
// last dialog closes. It must be called from the designated GUI thread
// and only once per Open.
func MainLoop() error {
	if api == nil {
		return ErrNotOpened
	}
	api.mainLoop()
	return nil
}

// LoopStep processes at most one pending event without blocking. It
// returns CallbackClose when the loop was asked to terminate.
func LoopStep() (CallbackResult, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return CallbackResult(api.loopStep()), nil
}

// LoopStepWait processes one event, blocking until one arrives.
func LoopStepWait() (CallbackResult, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return CallbackResult(api.loopStepWait()), nil
}

// MainLoopLevel returns the nesting depth of the running event loops.
func MainLoopLevel() (int, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	return int(api.mainLoopLevel()), nil
}

// ExitLoop makes the innermost MainLoop return.
func ExitLoop() error {
	if api == nil {
		return ErrNotOpened
	}
	api.exitLoop()
	return nil
}

// Flush processes all pending events immediately.
func Flush() error {
	if api == nil {
		return ErrNotOpened
	}
	api.flush()
	return nil
}

// Message shows a modal message dialog with a title and a text body.
func Message(title, msg string) error {
	if api == nil {
		return ErrNotOpened
	}
	titleBytes, titlePtr := GoToCstring(title)
	msgBytes, msgPtr := GoToCstring(msg)
	api.message(titlePtr, msgPtr)
	runtime.KeepAlive(titleBytes)
	runtime.KeepAlive(msgBytes)
	return nil
}

// Alarm shows a modal dialog with up to three buttons and returns the
// 1-based index of the pressed button. Empty button titles past the
// first are omitted from the dialog.
func Alarm(title, msg, button1, button2, button3 string) (int, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	titleBytes, titlePtr := GoToCstring(title)
	msgBytes, msgPtr := GoToCstring(msg)
	b1Bytes, b1Ptr := GoToCstring(button1)
	b2Bytes, b2Ptr := GoToCstring(button2)
	b3Bytes, b3Ptr := GoToCstring(button3)
	if button2 == "" {
		b2Ptr = 0
	}
	if button3 == "" {
		b3Ptr = 0
	}
	pressed := api.alarm(titlePtr, msgPtr, b1Ptr, b2Ptr, b3Ptr)
	runtime.KeepAlive(titleBytes)
	runtime.KeepAlive(msgBytes)
	runtime.KeepAlive(b1Bytes)
	runtime.KeepAlive(b2Bytes)
	runtime.KeepAlive(b3Bytes)
	return int(pressed), nil
}
