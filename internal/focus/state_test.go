package focus

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingman-panel/wingman/internal/platform"
)

var (
	rectA = platform.Rect{X: 100, Y: 200, Width: 300, Height: 400}
	rectB = platform.Rect{X: 500, Y: 200, Width: 300, Height: 400}
)

func snap(name string, r platform.Rect) platform.Snapshot {
	return platform.Snapshot{ProcessName: name, Geometry: r}
}

// feed steps s through snaps and returns the final state and all outputs.
func feed(s State, snaps ...platform.Snapshot) (State, []Output) {
	outs := make([]Output, 0, len(snaps))
	for _, sn := range snaps {
		var out Output
		s, out = s.Step(sn, nil)
		outs = append(outs, out)
	}
	return s, outs
}

func settledCount(outs []Output) int {
	n := 0
	for _, o := range outs {
		if o.Settled != nil {
			n++
		}
	}
	return n
}

func TestSettlesOnThirdIdenticalPoll(t *testing.T) {
	s := NewState(3)

	s, outs := feed(s, snap("vim", rectA), snap("vim", rectA))
	assert.Zero(t, settledCount(outs), "fewer than three identical polls must not settle")

	s, out := s.Step(snap("vim", rectA), nil)
	require.NotNil(t, out.Settled)
	assert.Equal(t, Event{AppName: "vim", Geometry: rectA}, *out.Settled)
	assert.Zero(t, s.Debounce.Repeat, "repeat is cleared after emission")

	_, outs = feed(s, snap("vim", rectA), snap("vim", rectA), snap("vim", rectA), snap("vim", rectA))
	assert.Zero(t, settledCount(outs), "an emitted geometry is not emitted again")
}

func TestDifferentGeometryResets(t *testing.T) {
	s := NewState(3)
	s, _ = feed(s, snap("vim", rectA), snap("vim", rectA))
	require.Equal(t, 2, s.Debounce.Repeat)

	s, out := s.Step(snap("vim", rectB), nil)
	assert.Nil(t, out.Settled)
	assert.Equal(t, 1, s.Debounce.Repeat)
	require.NotNil(t, s.Debounce.Last)
	assert.Equal(t, rectB, *s.Debounce.Last)

	_, outs := feed(s, snap("vim", rectB), snap("vim", rectB))
	assert.Equal(t, 1, settledCount(outs))
	assert.Equal(t, rectB, outs[1].Settled.Geometry)
}

func TestMovingBackSettlesAgain(t *testing.T) {
	s := NewState(3)
	s, outs := feed(s,
		snap("vim", rectA), snap("vim", rectA), snap("vim", rectA),
		snap("vim", rectB), snap("vim", rectB), snap("vim", rectB),
		snap("vim", rectA), snap("vim", rectA), snap("vim", rectA),
	)
	assert.Equal(t, 3, settledCount(outs))
	assert.Equal(t, "vim", s.App())
}

func TestAppChangeIsImmediate(t *testing.T) {
	s := NewState(3)

	s, out := s.Step(snap("vim", rectA), nil)
	assert.True(t, out.AppChanged)
	assert.Equal(t, "vim", out.AppName)

	s, out = s.Step(snap("vim", rectA), nil)
	assert.False(t, out.AppChanged)

	_, out = s.Step(snap("htop", rectB), nil)
	assert.True(t, out.AppChanged)
	assert.Equal(t, "htop", out.AppName)
	assert.Nil(t, out.Settled)
}

func TestAppChangeAtSameGeometrySettlesForNewApp(t *testing.T) {
	s := NewState(3)
	s, _ = feed(s, snap("bash", rectA), snap("bash", rectA), snap("bash", rectA), snap("bash", rectA), snap("bash", rectA))

	_, out := s.Step(snap("vim", rectA), nil)
	assert.True(t, out.AppChanged)
	require.NotNil(t, out.Settled)
	assert.Equal(t, "vim", out.Settled.AppName)
}

func TestErrorSkipsTick(t *testing.T) {
	s := NewState(3)
	s, _ = feed(s, snap("vim", rectA), snap("vim", rectA))

	next, out := s.Step(platform.Snapshot{}, platform.ErrBackendUnavailable)
	assert.True(t, out.Empty())
	assert.Equal(t, s, next)

	_, out = next.Step(snap("vim", rectA), nil)
	assert.NotNil(t, out.Settled, "an error between identical polls does not reset progress")
}

func TestStepDoesNotMutateReceiver(t *testing.T) {
	s := NewState(3)
	s, _ = feed(s, snap("vim", rectA))
	before := s
	lastBefore := *s.Debounce.Last

	_, _ = s.Step(snap("vim", rectB), nil)
	assert.Equal(t, before, s)
	assert.Equal(t, lastBefore, *s.Debounce.Last)
}

func TestRepeatNeverExceedsThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rects := []platform.Rect{rectA, rectB}
	names := []string{"vim", "htop"}

	for _, threshold := range []int{1, 2, 3, 5} {
		s := NewState(threshold)
		for i := 0; i < 2000; i++ {
			var err error
			if rng.Intn(10) == 0 {
				err = errors.New("transient")
			}
			s, _ = s.Step(snap(names[rng.Intn(2)], rects[rng.Intn(2)]), err)
			require.LessOrEqual(t, s.Debounce.Repeat, threshold)
			require.GreaterOrEqual(t, s.Debounce.Repeat, 0)
		}
	}
}

func TestInvalidThresholdUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultStableThreshold, NewState(0).Threshold)

	var zero State
	_, outs := feed(zero, snap("vim", rectA), snap("vim", rectA), snap("vim", rectA))
	assert.Equal(t, 1, settledCount(outs))
	assert.NotNil(t, outs[2].Settled)
}
