// Package hotkeys grabs the global panel toggle key on X11. Wayland
// compositors bind keys in their own config (for example
// `bindsym $mod+space exec wingman toggle visible` in sway).
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/platform"
)

// ErrUnsupported is returned for backends that do not expose an X
// connection.
var ErrUnsupported = errors.New("global hotkeys need an X11 backend")

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger zerolog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler for an X11 backend.
func NewHandler(backend platform.Backend, logger zerolog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("%w (backend %s)", ErrUnsupported, backend.Name())
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// RegisterToggle binds keySequence (xgbutil syntax, e.g. "Control-space")
// to callback. The callback runs on the X event goroutine and must not
// block.
func (h *Handler) RegisterToggle(keySequence string, callback func()) error {
	if err := h.RegisterFunc(keySequence, func() {
		h.logger.Debug().Str("keys", keySequence).Msg("toggle hotkey pressed")
		callback()
	}); err != nil {
		return fmt.Errorf("failed to register toggle hotkey %q: %w", keySequence, err)
	}
	h.logger.Info().Str("keys", keySequence).Msg("toggle hotkey registered")
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Run dispatches X events until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		xevent.Main(h.xu)
	}()

	select {
	case <-ctx.Done():
		xevent.Quit(h.xu)
		<-done
		return nil
	case <-done:
		return errors.New("X event loop exited")
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for _, mask := range lockCombinations(base) {
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

// lockCombinations returns every non-empty OR of the given lock masks.
func lockCombinations(base []uint16) []uint16 {
	var out []uint16
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
