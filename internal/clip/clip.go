// Package clip places text on the system clipboard for the copy command.
//
// golang.design/x/clipboard owns the selection from a background goroutine
// and only serves it while this process is alive, so callers hold on until
// somebody else (normally the ghostclip daemon) takes the selection over or
// a deadline passes.
package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when there is no usable display.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend writes text to the clipboard. The returned channel receives once
// the content is replaced by another owner.
type Backend interface {
	Name() string
	WriteText(data []byte) <-chan struct{}
}

type x11Backend struct{}

// New initialises the platform clipboard. clipboard.Init is called here
// rather than in init() so that commands that never touch the clipboard
// don't need a display.
func New() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return x11Backend{}, nil
}

func (x11Backend) Name() string { return "X11 clipboard" }

func (x11Backend) WriteText(data []byte) <-chan struct{} {
	return clipboard.Write(clipboard.FmtText, data)
}

// Result says how Hold ended.
type Result int

const (
	TakenOver Result = iota
	Expired
	Cancelled
)

func (r Result) String() string {
	switch r {
	case TakenOver:
		return "taken over"
	case Expired:
		return "expired"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Hold writes data through b and keeps the process serving it until the
// content is replaced, hold elapses, or ctx is done.
func Hold(ctx context.Context, b Backend, data []byte, hold time.Duration) Result {
	changed := b.WriteText(data)
	slog.Debug("clipboard written", "backend", b.Name(), "bytes", len(data), "hold", hold)

	timer := time.NewTimer(hold)
	defer timer.Stop()

	select {
	case <-changed:
		return TakenOver
	case <-timer.C:
		return Expired
	case <-ctx.Done():
		return Cancelled
	}
}
