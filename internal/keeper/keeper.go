// Package keeper keeps the CLIPBOARD selection alive after its owner goes
// away.
//
// The keeper copies the selection into its own process while a peer still
// owns it, and takes ownership itself once the peer relinquishes it
// (reactive mode, driven by XFIXES owner-change notifications) or straight
// after the copy (intrusive mode). Requests from other clients are then
// answered from the cached bytes.
//
// All protocol work happens on the goroutine running Run. Status and
// Contents are safe to call from any goroutine.
package keeper

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jezek/xgb/xproto"
)

// Options selects the triggering strategy.
type Options struct {
	// Intrusive claims the selection as soon as its content is cached,
	// without waiting for the owner to let go. It does not rely on XFIXES.
	Intrusive bool

	// Reassemble keeps the chunks of an INCR transfer. When false the
	// transfer is drained and discarded.
	Reassemble bool
}

// Mode names the triggering strategy.
func (o Options) Mode() string {
	if o.Intrusive {
		return "intrusive"
	}
	return "reactive"
}

// Status is a point-in-time view of the keeper.
type Status struct {
	Mode       string
	Ownership  Ownership
	Bytes      int
	Updated    time.Time
	Transfer   bool
	Reassemble bool
}

// Keeper is the selection state machine. Create one with New and drive it
// with Run.
type Keeper struct {
	d     Display
	win   xproto.Window
	atoms Atoms
	opts  Options
	buf   Buffer

	owner    atomic.Int32
	transfer atomic.Bool

	// Loop goroutine only.
	pending      bool
	pendingOwner xproto.Window
	pendingTime  xproto.Timestamp
	session      *session
}

// New returns a keeper for d. atoms must already be resolved on d.
func New(d Display, atoms Atoms, opts Options) *Keeper {
	return &Keeper{
		d:     d,
		win:   d.Window(),
		atoms: atoms,
		opts:  opts,
	}
}

// Ownership returns the last observed ownership state.
func (k *Keeper) Ownership() Ownership { return Ownership(k.owner.Load()) }

// Contents returns a copy of the cached payload.
func (k *Keeper) Contents() []byte { return k.buf.Bytes() }

// Status returns a snapshot of the keeper state.
func (k *Keeper) Status() Status {
	return Status{
		Mode:       k.opts.Mode(),
		Ownership:  k.Ownership(),
		Bytes:      k.buf.Len(),
		Updated:    k.buf.Updated(),
		Transfer:   k.transfer.Load(),
		Reassemble: k.opts.Reassemble,
	}
}

func (k *Keeper) setOwnership(o Ownership) {
	if prev := Ownership(k.owner.Swap(int32(o))); prev != o {
		slog.Debug("clipboard ownership", "from", prev, "to", o)
	}
}

func (k *Keeper) ownershipOf(w xproto.Window) Ownership {
	switch w {
	case xproto.WindowNone:
		return Unowned
	case k.win:
		return OwnedBySelf
	default:
		return OwnedByPeer
	}
}

// Grab looks at the current owner and acts on it: an unowned clipboard is
// claimed outright, a peer-owned one is asked to convert its value into our
// private property. t must come from the triggering event.
func (k *Keeper) Grab(t xproto.Timestamp) {
	owner, err := k.d.SelectionOwner(k.atoms.Clipboard)
	if err != nil {
		slog.Warn("selection owner query failed", "err", err)
		return
	}

	o := k.ownershipOf(owner)
	k.setOwnership(o)

	switch o {
	case Unowned:
		slog.Info("claiming ownership of unowned clipboard")
		k.claim(t)
	case OwnedByPeer:
		k.convert(owner, t)
	}
}

// claim takes the selection at time t and verifies that the server agrees.
func (k *Keeper) claim(t xproto.Timestamp) bool {
	if err := k.d.SetSelectionOwner(k.win, k.atoms.Clipboard, t); err != nil {
		slog.Warn("claiming clipboard failed", "err", err)
		return false
	}
	owner, err := k.d.SelectionOwner(k.atoms.Clipboard)
	if err != nil {
		slog.Warn("selection owner query failed", "err", err)
		return false
	}
	k.setOwnership(k.ownershipOf(owner))
	if owner != k.win {
		slog.Warn("clipboard claim did not take effect", "owner", owner, "time", t)
		return false
	}
	return true
}

// convert asks owner for the selection as UTF8_STRING. The reply arrives as
// a SelectionNotify event handled by handleSelectionNotify.
//
// One ownership change reaches us as several triggers carrying the same
// selection time; only the first of them converts. A trigger with a new
// time always converts, even if the owner window is unchanged or never
// answered the previous request.
func (k *Keeper) convert(owner xproto.Window, t xproto.Timestamp) {
	if k.pending && k.pendingOwner == owner && k.pendingTime == t {
		slog.Debug("conversion already in flight", "owner", owner, "time", t)
		return
	}
	if s := k.session; s != nil {
		if s.owner == owner && s.time == t {
			slog.Debug("incremental transfer already in flight", "owner", owner, "time", t)
			return
		}
		slog.Warn("abandoning incremental transfer", "owner", s.owner, "received_bytes", s.size)
		k.endSession()
	}
	if k.pending {
		slog.Debug("superseding unanswered conversion", "owner", k.pendingOwner, "time", k.pendingTime)
	}

	err := k.d.ConvertSelection(k.win, k.atoms.Clipboard, k.atoms.UTF8, k.atoms.Property, t)
	if err != nil {
		slog.Warn("convert selection failed", "owner", owner, "err", err)
		return
	}
	slog.Debug("requested clipboard conversion", "owner", owner, "time", t)
	k.pending = true
	k.pendingOwner = owner
	k.pendingTime = t
}

// cached runs once a complete payload has been stored.
func (k *Keeper) cached(t xproto.Timestamp) {
	if !k.opts.Intrusive {
		return
	}
	slog.Info("taking ownership of clipboard")
	k.claim(t)
}
