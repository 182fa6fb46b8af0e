package keeper

import (
	"errors"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// Run grabs the current selection and then processes events until the
// display fails. It blocks for one event, then drains whatever else is
// already queued before blocking again. Protocol errors are logged and
// skipped; any other error is returned.
func (k *Keeper) Run() error {
	slog.Info("clipboard keeper running",
		"mode", k.opts.Mode(),
		"window", k.win,
		"reassemble", k.opts.Reassemble,
	)
	k.Grab(xproto.TimeCurrentTime)

	for {
		ev, err := k.d.WaitForEvent()
		for ev != nil || err != nil {
			if err != nil {
				var xerr xgb.Error
				if !errors.As(err, &xerr) {
					return err
				}
				slog.Warn("X protocol error", "err", err)
			} else {
				k.Handle(ev)
			}
			ev, err = k.d.PollForEvent()
		}
	}
}

// Handle dispatches a single event. Unrelated events are ignored.
func (k *Keeper) Handle(ev xgb.Event) {
	switch e := ev.(type) {
	case xfixes.SelectionNotifyEvent:
		if k.opts.Intrusive {
			return
		}
		k.handleOwnerChange(e)
	case xproto.SelectionNotifyEvent:
		k.handleSelectionNotify(e)
	case xproto.SelectionClearEvent:
		k.handleSelectionClear(e)
	case xproto.SelectionRequestEvent:
		k.handleSelectionRequest(e)
	case xproto.PropertyNotifyEvent:
		k.handlePropertyNotify(e)
	}
}

func (k *Keeper) handleOwnerChange(ev xfixes.SelectionNotifyEvent) {
	if ev.Selection != k.atoms.Clipboard {
		return
	}
	if ev.Owner == k.win {
		k.setOwnership(OwnedBySelf)
		return
	}
	slog.Info("clipboard owner changed", "owner", ev.Owner, "reason", changeReason(ev.Subtype))
	k.Grab(triggerTime(ev))
}

// triggerTime is the time an owner-change notification is acted on. For a
// new owner it is the selection's own timestamp, which is also what the
// matching SelectionClear carries.
func triggerTime(ev xfixes.SelectionNotifyEvent) xproto.Timestamp {
	if ev.Owner != xproto.WindowNone && ev.SelectionTimestamp != 0 {
		return ev.SelectionTimestamp
	}
	return ev.Timestamp
}

func (k *Keeper) handleSelectionClear(ev xproto.SelectionClearEvent) {
	if ev.Selection != k.atoms.Clipboard {
		return
	}
	slog.Info("lost clipboard ownership")
	k.Grab(ev.Time)
}

func changeReason(subtype byte) string {
	switch subtype {
	case xfixes.SelectionEventSetSelectionOwner:
		return "set"
	case xfixes.SelectionEventSelectionWindowDestroy:
		return "window-destroy"
	case xfixes.SelectionEventSelectionClientClose:
		return "client-close"
	default:
		return "unknown"
	}
}
