package iup

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

// Callback is a Go handler for a toolkit event. It runs on the GUI
// thread, inside the toolkit's event dispatch, and its result tells the
// toolkit how to continue (CallbackDefault, CallbackClose, ...).
type Callback func(ih Handle) CallbackResult

// eventKey identifies one registration: a widget plus the callback
// attribute name the toolkit dispatches under ("ACTION", "K_ANY", ...).
type eventKey struct {
	ih   Handle
	name string
}

// Registration identifies an installed callback and can remove it.
type Registration struct {
	key eventKey
}

// Callback bookkeeping. Registered handlers are owned by this table for
// their registered lifetime so the garbage collector cannot reclaim a
// handler the toolkit may still invoke. The maps are intentionally not
// locked: registration, unregistration and native dispatch all happen on
// the single designated GUI thread.
var (
	callbacks   = make(map[eventKey]Callback)
	trampolines = make(map[string]uintptr)
)

// trampolineFor returns the native-callable stub for one callback
// attribute name. One fixed-signature stub is shared by every widget
// registered under that name; dispatch looks the current handler up by
// (widget, name), which avoids minting one native stub per handler.
// Stubs are never released; purego callbacks are permanent. They survive
// Close and are reused by a later Open.
func trampolineFor(name string) uintptr {
	if ptr, ok := trampolines[name]; ok {
		return ptr
	}
	ptr := purego.NewCallback(func(ih uintptr) uintptr {
		return uintptr(int64(dispatch(Handle(ih), name)))
	})
	trampolines[name] = ptr
	return ptr
}

// dispatch transfers a native event to the registered Go handler. An
// event arriving with no live registration (a race the single-thread
// rule excludes, or a stale native pointer) falls through to the
// toolkit's default processing.
func dispatch(ih Handle, name string) CallbackResult {
	cb, ok := callbacks[eventKey{ih: ih, name: name}]
	if !ok {
		return CallbackDefault
	}
	return cb(ih)
}

// SetCallback registers handler for the named callback of a widget and
// installs the native trampoline with the toolkit. Registering a second
// handler for the same (widget, name) pair replaces the first, the same
// semantics IupSetCallback gives native code.
func SetCallback(ih Handle, name string, handler Callback) (Registration, error) {
	if api == nil {
		return Registration{}, ErrNotOpened
	}
	if handler == nil {
		return Registration{}, fmt.Errorf("iup: callback handler cannot be nil")
	}

	key := eventKey{ih: ih, name: name}
	nameBytes, namePtr := GoToCstring(name)
	api.setCallback(uintptr(ih), namePtr, trampolineFor(name))
	runtime.KeepAlive(nameBytes)

	callbacks[key] = handler
	return Registration{key: key}, nil
}

// UnsetCallback removes a registration. The toolkit is told to stop
// invoking the native stub before the handler is dropped from the table,
// so a removed handler is never called again. Unregistering a (widget,
// name) pair that was never registered fails with ErrNotRegistered and
// has no other effect.
func UnsetCallback(ih Handle, name string) error {
	key := eventKey{ih: ih, name: name}
	if _, ok := callbacks[key]; !ok {
		return ErrNotRegistered
	}
	if api == nil {
		return ErrNotOpened
	}

	nameBytes, namePtr := GoToCstring(name)
	api.setCallback(uintptr(ih), namePtr, 0)
	runtime.KeepAlive(nameBytes)

	delete(callbacks, key)
	return nil
}

// GetCallback returns the native callback pointer currently installed for
// the named callback of a widget, the raw IupGetCallback value. For
// registrations made through SetCallback this is the shared trampoline
// for the name; zero means nothing is installed.
func GetCallback(ih Handle, name string) (uintptr, error) {
	if api == nil {
		return 0, ErrNotOpened
	}
	nameBytes, namePtr := GoToCstring(name)
	fn := api.getCallback(uintptr(ih), namePtr)
	runtime.KeepAlive(nameBytes)
	return fn, nil
}

// Unregister removes the registration it identifies.
func (r Registration) Unregister() error {
	return UnsetCallback(r.key.ih, r.key.name)
}

// resetCallbackState drops all handler registrations. Called by the last
// Close; the native stubs in trampolines stay allocated (see
// trampolineFor) but the toolkit that pointed at them is gone.
func resetCallbackState() {
	callbacks = make(map[eventKey]Callback)
}
