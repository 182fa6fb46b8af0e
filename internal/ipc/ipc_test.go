package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPathPrecedence(t *testing.T) {
	t.Setenv("GHOSTCLIP_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, filepath.Join(os.TempDir(), socketName), SocketPath())

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/ghostclip.sock", SocketPath())

	t.Setenv("GHOSTCLIP_SOCKET", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
	assert.Equal(t, "unix:///tmp/custom.sock", Target())
}

func TestListenReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.sock")
	t.Setenv("GHOSTCLIP_SOCKET", path)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	assert.False(t, IsRunning())

	ln, err := Listen()
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	assert.True(t, IsRunning())

	require.NoError(t, ln.Close())
	assert.False(t, IsRunning())
}
