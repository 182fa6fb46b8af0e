// Package ipc locates the local Unix socket on which a running ghostclip
// daemon serves its control service. CLI sub-commands (status, paste) probe
// for it with IsRunning before dialing.
package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

const socketName = "ghostclip.sock"

// SocketPath returns the control socket path:
//
//   - $GHOSTCLIP_SOCKET if set
//   - $XDG_RUNTIME_DIR/ghostclip.sock
//   - $TMPDIR/ghostclip.sock
func SocketPath() string {
	if s := os.Getenv("GHOSTCLIP_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketName)
	}
	return filepath.Join(os.TempDir(), socketName)
}

// Target returns the gRPC dial target for the socket.
func Target() string { return "unix://" + SocketPath() }

// IsRunning reports whether a daemon appears to be listening on the socket.
// It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the socket path, removing any stale socket
// first, and restricts it to the current user. The socket file is removed
// when the listener is closed.
func Listen() (net.Listener, error) {
	path := SocketPath()
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return ln, nil
}
