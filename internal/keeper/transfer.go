package keeper

import (
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"go.klb.dev/ghostclip/internal/logging"
)

// maxSizeHint bounds the preallocation taken from an INCR size hint.
const maxSizeHint = 64 << 20

// session is an INCR transfer in progress.
type session struct {
	owner  xproto.Window
	prop   xproto.Atom
	time   xproto.Timestamp
	data   []byte
	size   int
	chunks int
}

// handleSelectionNotify continues a conversion we requested.
func (k *Keeper) handleSelectionNotify(ev xproto.SelectionNotifyEvent) {
	if ev.Requestor != k.win || ev.Selection != k.atoms.Clipboard {
		return
	}
	owner, t := k.pendingOwner, k.pendingTime
	if !k.pending {
		t = ev.Time
	}
	k.pending = false

	if ev.Property == xproto.AtomNone {
		slog.Info("clipboard owner declined conversion", "owner", owner)
		return
	}

	reply, err := k.d.GetProperty(k.win, ev.Property, false)
	if err != nil {
		slog.Warn("reading conversion result failed", "err", err)
		return
	}

	switch reply.Type {
	case k.atoms.Incr:
		// Deleting the marker tells the owner to send the first chunk.
		if err := k.d.DeleteProperty(k.win, ev.Property); err != nil {
			slog.Warn("starting incremental transfer failed", "err", err)
			return
		}
		k.startSession(owner, ev.Property, t, sizeHint(reply))

	case k.atoms.UTF8:
		slog.Info("copying clipboard text", "owner", owner, "bytes", len(reply.Value))
		logging.Content("clipboard text", reply.Value)
		k.buf.Replace(reply.Value)
		if err := k.d.DeleteProperty(k.win, ev.Property); err != nil {
			slog.Debug("deleting conversion property failed", "err", err)
		}
		k.cached(t)

	case xproto.AtomNone:
		slog.Warn("conversion result property missing", "owner", owner)

	default:
		slog.Warn("unexpected conversion result type", "owner", owner, "type", reply.Type)
	}
}

func (k *Keeper) startSession(owner xproto.Window, prop xproto.Atom, t xproto.Timestamp, hint int) {
	s := &session{owner: owner, prop: prop, time: t}
	if k.opts.Reassemble && hint > 0 {
		s.data = make([]byte, 0, min(hint, maxSizeHint))
	}
	k.session = s
	k.transfer.Store(true)
	slog.Info("incremental transfer started", "owner", owner, "size_hint", hint)
}

func (k *Keeper) endSession() {
	k.session = nil
	k.transfer.Store(false)
}

// handlePropertyNotify reads the next INCR chunk. A zero-length chunk ends
// the transfer.
func (k *Keeper) handlePropertyNotify(ev xproto.PropertyNotifyEvent) {
	s := k.session
	if s == nil || ev.Window != k.win || ev.Atom != s.prop || ev.State != xproto.PropertyNewValue {
		return
	}

	reply, err := k.d.GetProperty(k.win, s.prop, true)
	if err != nil {
		slog.Warn("reading incremental chunk failed, transfer abandoned", "err", err, "received_bytes", s.size)
		k.endSession()
		return
	}

	if len(reply.Value) == 0 {
		k.finishSession(s)
		return
	}

	s.chunks++
	s.size += len(reply.Value)
	if k.opts.Reassemble {
		s.data = append(s.data, reply.Value...)
	}
	slog.Debug("incremental chunk", "bytes", len(reply.Value), "total", s.size)
}

func (k *Keeper) finishSession(s *session) {
	k.endSession()

	if !k.opts.Reassemble {
		slog.Info("INCR handling not implemented, transfer discarded", "bytes", s.size, "chunks", s.chunks)
		k.buf.Clear()
		return
	}

	slog.Info("copying clipboard text", "owner", s.owner, "bytes", s.size, "chunks", s.chunks)
	logging.Content("clipboard text", s.data)
	k.buf.Replace(s.data)
	k.cached(s.time)
}

// sizeHint decodes the lower bound an owner advertises in the INCR marker.
func sizeHint(reply *xproto.GetPropertyReply) int {
	if reply.Format != 32 || len(reply.Value) < 4 {
		return 0
	}
	return int(xgb.Get32(reply.Value))
}
