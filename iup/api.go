package iup

import (
	"sort"

	"github.com/ebitengine/purego"
)

// iupAPI is the typed function table bound against the loaded IUP image.
// Handles and C strings cross the boundary as uintptr; c_int crosses as
// int32. Signatures are declared here by hand and cannot be verified
// against the image, so a mismatch is undefined behavior at call time,
// not a resolution error.
type iupAPI struct {
	open          func(argc uintptr, argv uintptr) int32
	close         func()
	isOpened      func() int32
	mainLoop      func() int32
	loopStep      func() int32
	loopStepWait  func() int32
	mainLoopLevel func() int32
	exitLoop      func()
	flush         func()

	version       func() uintptr
	versionDate   func() uintptr
	versionNumber func() int32

	dialog func(child uintptr) uintptr
	button func(title, action uintptr) uintptr
	label  func(title uintptr) uintptr
	text   func(action uintptr) uintptr
	toggle func(title, action uintptr) uintptr
	hbox   func(child uintptr) uintptr
	vbox   func(child uintptr) uintptr
	fill   func() uintptr
	frame  func(child uintptr) uintptr
	timer  func() uintptr

	destroy func(ih uintptr)
	detach  func(child uintptr)
	append  func(ih, child uintptr) uintptr

	show   func(ih uintptr) int32
	showXY func(ih uintptr, x, y int32) int32
	hide   func(ih uintptr) int32
	popup  func(ih uintptr, x, y int32) int32

	setAttribute       func(ih, name, value uintptr)
	getAttribute       func(ih, name uintptr) uintptr
	resetAttribute     func(ih, name uintptr)
	setInt             func(ih, name uintptr, value int32)
	getInt             func(ih, name uintptr) int32
	setAttributeHandle func(ih, name, named uintptr)

	setGlobal func(name, value uintptr)
	getGlobal func(name uintptr) uintptr

	setHandle      func(name, ih uintptr) uintptr
	getHandle      func(name uintptr) uintptr
	getDialog      func(ih uintptr) uintptr
	getDialogChild func(ih, name uintptr) uintptr

	setFocus func(ih uintptr) uintptr
	getFocus func() uintptr

	setCallback func(ih, name, fn uintptr) uintptr
	getCallback func(ih, name uintptr) uintptr

	message func(title, msg uintptr)
	alarm   func(title, msg, b1, b2, b3 uintptr) int32
}

// symbol pairs an exported entry point name with the table field it binds
// to. Optional symbols are entry points newer than the minimum supported
// toolkit release; when absent the field stays nil and its wrapper
// reports ErrNotSupported.
type symbol struct {
	name     string
	fn       any
	optional bool
}

func (a *iupAPI) symbols() []symbol {
	return []symbol{
		{name: "IupOpen", fn: &a.open},
		{name: "IupClose", fn: &a.close},
		{name: "IupIsOpened", fn: &a.isOpened, optional: true},
		{name: "IupMainLoop", fn: &a.mainLoop},
		{name: "IupLoopStep", fn: &a.loopStep},
		{name: "IupLoopStepWait", fn: &a.loopStepWait},
		{name: "IupMainLoopLevel", fn: &a.mainLoopLevel},
		{name: "IupExitLoop", fn: &a.exitLoop},
		{name: "IupFlush", fn: &a.flush},

		{name: "IupVersion", fn: &a.version},
		{name: "IupVersionDate", fn: &a.versionDate},
		{name: "IupVersionNumber", fn: &a.versionNumber},

		{name: "IupDialog", fn: &a.dialog},
		{name: "IupButton", fn: &a.button},
		{name: "IupLabel", fn: &a.label},
		{name: "IupText", fn: &a.text},
		{name: "IupToggle", fn: &a.toggle},
		{name: "IupHbox", fn: &a.hbox},
		{name: "IupVbox", fn: &a.vbox},
		{name: "IupFill", fn: &a.fill},
		{name: "IupFrame", fn: &a.frame},
		{name: "IupTimer", fn: &a.timer},

		{name: "IupDestroy", fn: &a.destroy},
		{name: "IupDetach", fn: &a.detach},
		{name: "IupAppend", fn: &a.append},

		{name: "IupShow", fn: &a.show},
		{name: "IupShowXY", fn: &a.showXY},
		{name: "IupHide", fn: &a.hide},
		{name: "IupPopup", fn: &a.popup},

		{name: "IupSetAttribute", fn: &a.setAttribute},
		{name: "IupGetAttribute", fn: &a.getAttribute},
		{name: "IupResetAttribute", fn: &a.resetAttribute},
		{name: "IupSetInt", fn: &a.setInt},
		{name: "IupGetInt", fn: &a.getInt},
		{name: "IupSetAttributeHandle", fn: &a.setAttributeHandle},

		{name: "IupSetGlobal", fn: &a.setGlobal},
		{name: "IupGetGlobal", fn: &a.getGlobal},

		{name: "IupSetHandle", fn: &a.setHandle},
		{name: "IupGetHandle", fn: &a.getHandle},
		{name: "IupGetDialog", fn: &a.getDialog},
		{name: "IupGetDialogChild", fn: &a.getDialogChild},

		{name: "IupSetFocus", fn: &a.setFocus},
		{name: "IupGetFocus", fn: &a.getFocus},

		{name: "IupSetCallback", fn: &a.setCallback},
		{name: "IupGetCallback", fn: &a.getCallback},

		{name: "IupMessage", fn: &a.message},
		{name: "IupAlarm", fn: &a.alarm},
	}
}

// resolveSymbols populates a function table from a loaded image.
//
// Resolution is all-or-nothing for the required set: every required
// symbol is probed before returning, so a failure names the complete
// sorted list of absent symbols rather than the first one encountered.
// Optional symbols that are absent leave their field nil.
func resolveSymbols(library string, lookup func(name string) (uintptr, error), syms []symbol) error {
	var missing []string
	for _, s := range syms {
		addr, err := lookup(s.name)
		if err != nil || addr == 0 {
			if !s.optional {
				missing = append(missing, s.name)
			}
			continue
		}
		purego.RegisterFunc(s.fn, addr)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &SymbolResolutionError{Library: library, Missing: missing}
	}
	return nil
}
