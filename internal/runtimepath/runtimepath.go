// Package runtimepath locates the per-user runtime directory that holds the
// daemon control socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SocketEnv overrides the socket location, mainly for tests and for running
// a second daemon side by side.
const SocketEnv = "WINGMAN_SOCKET"

const socketName = "wingman.sock"

// host is the slice of the OS the lookup depends on.
type host struct {
	getenv func(string) string
	uid    int
	isDir  func(string) bool
	mkdir  func(string, os.FileMode) error
}

func system() host {
	return host{
		getenv: os.Getenv,
		uid:    os.Getuid(),
		isDir: func(p string) bool {
			info, err := os.Stat(p)
			return err == nil && info.IsDir()
		},
		mkdir: os.MkdirAll,
	}
}

// Dir returns $XDG_RUNTIME_DIR, else /run/user/<uid> when it exists, else
// a private /tmp/wingman-runtime-<uid> which is created on demand.
func Dir() (string, error) {
	return system().dir()
}

func (h host) dir() (string, error) {
	if d := h.getenv("XDG_RUNTIME_DIR"); d != "" {
		return d, nil
	}

	uid := strconv.Itoa(h.uid)
	if d := filepath.Join("/run/user", uid); h.isDir(d) {
		return d, nil
	}

	d := filepath.Join(os.TempDir(), "wingman-runtime-"+uid)
	if err := h.mkdir(d, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return d, nil
}

// SocketPath returns the control socket path.
func SocketPath() (string, error) {
	return system().socketPath()
}

func (h host) socketPath() (string, error) {
	if p := h.getenv(SocketEnv); p != "" {
		return p, nil
	}
	d, err := h.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, socketName), nil
}
