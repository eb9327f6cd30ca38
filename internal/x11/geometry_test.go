package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/stretchr/testify/assert"
)

func TestFrameExtentsOuter(t *testing.T) {
	ext := FrameExtents{Left: 2, Right: 3, Top: 30, Bottom: 4}
	got := ext.Outer(Geometry{X: 102, Y: 230, Width: 300, Height: 400})
	assert.Equal(t, Geometry{X: 100, Y: 200, Width: 305, Height: 434}, got)

	assert.Equal(t, Geometry{X: 1, Y: 2, Width: 3, Height: 4},
		FrameExtents{}.Outer(Geometry{X: 1, Y: 2, Width: 3, Height: 4}))
}

func TestUsableArea(t *testing.T) {
	left := Geometry{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Geometry{X: 1920, Y: 0, Width: 1920, Height: 1080}
	rootW, rootH := 3840, 1080

	// A 32px top panel spanning only the left monitor.
	topPanel := ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}
	// A 48px bottom dock spanning both monitors.
	bottomDock := ewmh.WmStrutPartial{Bottom: 48, BottomStartX: 0, BottomEndX: 3839}
	struts := []ewmh.WmStrutPartial{topPanel, bottomDock}

	tests := []struct {
		name string
		mon  Geometry
		want Geometry
	}{
		{"left monitor", left, Geometry{X: 0, Y: 32, Width: 1920, Height: 1000}},
		{"right monitor", right, Geometry{X: 1920, Y: 0, Width: 1920, Height: 1032}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsableArea(tt.mon, rootW, rootH, struts))
		})
	}
}

func TestUsableAreaSideStruts(t *testing.T) {
	mon := Geometry{X: 0, Y: 0, Width: 1000, Height: 800}
	struts := []ewmh.WmStrutPartial{
		{Left: 50, LeftStartY: 0, LeftEndY: 799},
		{Right: 20, RightStartY: 0, RightEndY: 799},
	}
	assert.Equal(t, Geometry{X: 50, Y: 0, Width: 930, Height: 800}, UsableArea(mon, 1000, 800, struts))
}

func TestUsableAreaNoStruts(t *testing.T) {
	mon := Geometry{X: 10, Y: 20, Width: 640, Height: 480}
	assert.Equal(t, mon, UsableArea(mon, 650, 500, nil))
}
