package iup

// Status codes returned by IUP entry points.
const (
	NoError = 0
	Error   = 1
	Opened  = -1
	Invalid = -1
)

// CallbackResult is the value a callback handler returns to the toolkit.
type CallbackResult int32

const (
	// CallbackIgnore makes the toolkit ignore the default event processing.
	CallbackIgnore CallbackResult = -1
	// CallbackDefault proceeds with the default event processing.
	CallbackDefault CallbackResult = -2
	// CallbackClose ends the current message loop, same as ExitLoop.
	CallbackClose CallbackResult = -3
	// CallbackContinue forwards the event to the next control in the chain.
	CallbackContinue CallbackResult = -4
)

// Common callback attribute names.
const (
	ActionCallback     = "ACTION"
	ActionCB           = "ACTION_CB"
	CloseCallback      = "CLOSE_CB"
	KeyAnyCallback     = "K_ANY"
	ValueChangedCB     = "VALUECHANGED_CB"
	MapCallback        = "MAP_CB"
	DestroyCallbackCB  = "DESTROY_CB"
	GetFocusCallbackCB = "GETFOCUS_CB"
)

// Common attribute names.
const (
	AttrTitle      = "TITLE"
	AttrValue      = "VALUE"
	AttrName       = "NAME"
	AttrRun        = "RUN"
	AttrTime       = "TIME"
	AttrActive     = "ACTIVE"
	AttrVisible    = "VISIBLE"
	AttrSize       = "SIZE"
	AttrExpand     = "EXPAND"
	AttrGap        = "GAP"
	AttrMargin     = "MARGIN"
	AttrBringFront = "BRINGFRONT"
	AttrIcon       = "ICON"
	AttrSystem     = "SYSTEM"
	AttrUTF8Mode   = "UTF8MODE"
)

// Attribute values for boolean attributes.
const (
	Yes = "YES"
	No  = "NO"
)

// Position values accepted by ShowXY and Popup.
const (
	Center       = 0xFFFF
	Left         = 0xFFFE
	Right        = 0xFFFD
	MousePos     = 0xFFFC
	Current      = 0xFFFB
	CenterParent = 0xFFFA
	LeftParent   = 0xFFF9
	RightParent  = 0xFFF8
	Top          = Left
	Bottom       = Right
	TopParent    = LeftParent
	BottomParent = RightParent
)
