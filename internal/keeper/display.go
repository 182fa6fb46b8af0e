package keeper

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Interner resolves atom names to protocol identifiers.
type Interner interface {
	InternAtom(name string) (xproto.Atom, error)
}

// Display is the slice of the X protocol the keeper drives. Every method
// blocks until the server has answered or rejected the request.
//
// WaitForEvent blocks for the next event. PollForEvent returns (nil, nil)
// when nothing is queued. Both return an xgb.Error for protocol errors that
// are not tied to a request; any other error means the connection is gone.
type Display interface {
	Interner

	// Window is the agent's own window: requestor for conversions and
	// owner when the agent holds the selection.
	Window() xproto.Window

	SelectionOwner(sel xproto.Atom) (xproto.Window, error)
	SetSelectionOwner(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) error
	ConvertSelection(requestor xproto.Window, sel, target, prop xproto.Atom, t xproto.Timestamp) error

	GetProperty(w xproto.Window, prop xproto.Atom, del bool) (*xproto.GetPropertyReply, error)
	ChangeProperty(w xproto.Window, prop, typ xproto.Atom, data []byte) error
	DeleteProperty(w xproto.Window, prop xproto.Atom) error

	// SendSelectionNotify delivers ev to ev.Requestor.
	SendSelectionNotify(ev xproto.SelectionNotifyEvent) error

	WaitForEvent() (xgb.Event, error)
	PollForEvent() (xgb.Event, error)
}
