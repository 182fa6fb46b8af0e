package keeper

import (
	"log/slog"

	"github.com/jezek/xgb/xproto"
)

// handleSelectionRequest answers a peer asking for our selection. Only
// UTF8_STRING into a named property is served, and only while something is
// cached. Everything else is refused with a None property.
func (k *Keeper) handleSelectionRequest(ev xproto.SelectionRequestEvent) {
	data := k.buf.Bytes()

	if ev.Selection != k.atoms.Clipboard ||
		len(data) == 0 ||
		ev.Target != k.atoms.UTF8 ||
		ev.Property == xproto.AtomNone {
		slog.Debug("denying clipboard request",
			"requestor", ev.Requestor,
			"target", ev.Target,
			"cached_bytes", len(data),
		)
		k.notify(ev, xproto.AtomNone)
		return
	}

	if err := k.d.ChangeProperty(ev.Requestor, ev.Property, k.atoms.UTF8, data); err != nil {
		slog.Warn("writing clipboard to requestor failed", "requestor", ev.Requestor, "err", err)
		k.notify(ev, xproto.AtomNone)
		return
	}

	slog.Info("providing clipboard text", "requestor", ev.Requestor, "bytes", len(data))
	k.notify(ev, ev.Property)
}

// notify sends the SelectionNotify reply for ev. prop is None for a denial.
func (k *Keeper) notify(ev xproto.SelectionRequestEvent, prop xproto.Atom) {
	err := k.d.SendSelectionNotify(xproto.SelectionNotifyEvent{
		Time:      ev.Time,
		Requestor: ev.Requestor,
		Selection: ev.Selection,
		Target:    ev.Target,
		Property:  prop,
	})
	if err != nil {
		slog.Warn("replying to clipboard request failed", "requestor", ev.Requestor, "err", err)
	}
}
