// Package xconn is the X11 side of ghostclip: it owns the connection, the
// agent's hidden window, and the XFIXES subscription, and exposes the
// blocking request/reply operations the keeper needs.
package xconn

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"

	"go.klb.dev/ghostclip/internal/logging"
)

// ErrClosed is returned once the connection to the X server is gone.
var ErrClosed = errors.New("x connection closed")

// ErrRequestTooLarge is returned for a property write that does not fit in
// a single X request.
var ErrRequestTooLarge = errors.New("request exceeds X server maximum request length")

// changePropertyHeader is the fixed part of a ChangeProperty request.
const changePropertyHeader = 24

// Conn is a connection to an X server plus the agent's own window.
type Conn struct {
	x   *xgb.Conn
	win xproto.Window

	// maxRequest is the server's maximum request length in bytes.
	maxRequest int

	closeOnce sync.Once
}

// Dial connects to display (empty means $DISPLAY) and creates the agent's
// window: a 1x1 input/output window off-screen that listens for property
// changes on itself.
func Dial(display string) (*Conn, error) {
	xgb.Logger = logging.StdLogger(slog.LevelDebug)

	x, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display %q: %w", display, err)
	}

	screen := xproto.Setup(x).DefaultScreen(x)
	win, err := xproto.NewWindowId(x)
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	err = xproto.CreateWindowChecked(x, screen.RootDepth, win, screen.Root,
		-10, -10, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange},
	).Check()
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("create window: %w", err)
	}

	maxRequest := int(xproto.Setup(x).MaximumRequestLength) * 4
	slog.Debug("X connection ready", "display", display, "window", win, "root", screen.Root, "max_request_bytes", maxRequest)
	return &Conn{x: x, win: win, maxRequest: maxRequest}, nil
}

// Close closes the connection. A blocked WaitForEvent returns ErrClosed.
// Safe to call more than once.
func (c *Conn) Close() { c.closeOnce.Do(c.x.Close) }

// Window returns the agent's window.
func (c *Conn) Window() xproto.Window { return c.win }

// WatchSelection subscribes to XFIXES owner-change notifications for sel:
// new owner, owner window destroyed, owner client gone.
func (c *Conn) WatchSelection(sel xproto.Atom) error {
	if err := xfixes.Init(c.x); err != nil {
		return fmt.Errorf("XFIXES extension: %w", err)
	}
	v, err := xfixes.QueryVersion(c.x, 5, 0).Reply()
	if err != nil {
		return fmt.Errorf("XFIXES version: %w", err)
	}
	slog.Debug("XFIXES available", "major", v.MajorVersion, "minor", v.MinorVersion)

	mask := uint32(xfixes.SelectionEventMaskSetSelectionOwner |
		xfixes.SelectionEventMaskSelectionWindowDestroy |
		xfixes.SelectionEventMaskSelectionClientClose)
	if err := xfixes.SelectSelectionInputChecked(c.x, c.win, sel, mask).Check(); err != nil {
		return fmt.Errorf("XFIXES select selection input: %w", err)
	}
	return nil
}

// InternAtom resolves name, creating the atom if needed.
func (c *Conn) InternAtom(name string) (xproto.Atom, error) {
	r, err := xproto.InternAtom(c.x, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}
	return r.Atom, nil
}

func (c *Conn) SelectionOwner(sel xproto.Atom) (xproto.Window, error) {
	r, err := xproto.GetSelectionOwner(c.x, sel).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	return r.Owner, nil
}

func (c *Conn) SetSelectionOwner(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) error {
	return xproto.SetSelectionOwnerChecked(c.x, owner, sel, t).Check()
}

func (c *Conn) ConvertSelection(requestor xproto.Window, sel, target, prop xproto.Atom, t xproto.Timestamp) error {
	return xproto.ConvertSelectionChecked(c.x, requestor, sel, target, prop, t).Check()
}

// GetProperty reads the whole of prop on w, deleting it afterwards when del
// is set.
func (c *Conn) GetProperty(w xproto.Window, prop xproto.Atom, del bool) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(c.x, del, w, prop, xproto.GetPropertyTypeAny, 0, math.MaxUint32).Reply()
}

// ChangeProperty replaces prop on w with 8-bit data of type typ. Data that
// would not fit in one request is refused with ErrRequestTooLarge before
// anything is written to the connection.
func (c *Conn) ChangeProperty(w xproto.Window, prop, typ xproto.Atom, data []byte) error {
	if err := fitsRequest(len(data), c.maxRequest); err != nil {
		return err
	}
	return xproto.ChangePropertyChecked(c.x, xproto.PropModeReplace, w, prop, typ, 8, uint32(len(data)), data).Check()
}

func (c *Conn) DeleteProperty(w xproto.Window, prop xproto.Atom) error {
	return xproto.DeletePropertyChecked(c.x, w, prop).Check()
}

// SendSelectionNotify sends ev to ev.Requestor with no event mask, which
// delivers it to the client that created the window.
func (c *Conn) SendSelectionNotify(ev xproto.SelectionNotifyEvent) error {
	return xproto.SendEventChecked(c.x, false, ev.Requestor, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func (c *Conn) WaitForEvent() (xgb.Event, error) {
	ev, xerr := c.x.WaitForEvent()
	if ev == nil && xerr == nil {
		return nil, ErrClosed
	}
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

// PollForEvent returns (nil, nil) when nothing is queued.
func (c *Conn) PollForEvent() (xgb.Event, error) {
	ev, xerr := c.x.PollForEvent()
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

// fitsRequest checks that a ChangeProperty carrying n bytes of 8-bit data
// stays within maxRequest bytes.
func fitsRequest(n, maxRequest int) error {
	size := changePropertyHeader + (n+3)&^3
	if size > maxRequest {
		return fmt.Errorf("%w: property of %d bytes needs %d, server allows %d", ErrRequestTooLarge, n, size, maxRequest)
	}
	return nil
}
