package driver

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "shuriken/vector_math"
)

// scriptedEvents replays a fixed sequence of inputs and then requests close.
type scriptedEvents struct {
	script []Input
	polls  int
	waits  int
}

func (s *scriptedEvents) Poll() Input {
	defer func() { s.polls++ }()
	if s.polls < len(s.script) {
		return s.script[s.polls]
	}
	return Input{Close: true}
}

func (s *scriptedEvents) Wait() {
	s.waits++
}

func idle(n int) []Input {
	return make([]Input, n)
}

type recordingTarget struct {
	frames   []Frame
	resizes  int
	releases int
	failOn   map[int]error
	panicOn  map[int]bool
}

func (r *recordingTarget) Draw(f Frame) error {
	i := len(r.frames)
	r.frames = append(r.frames, f)
	if r.panicOn[i] {
		panic("device lost")
	}
	return r.failOn[i]
}

func (r *recordingTarget) Resize()  { r.resizes++ }
func (r *recordingTarget) Release() { r.releases++ }

func testConfig() Config {
	return Config{AngleStep: 0.002, VertexCount: 18, ClearColor: [4]float32{0.1, 0.1, 0.15, 1}}
}

func TestStateTransitions(t *testing.T) {
	ev := &scriptedEvents{script: idle(1)}
	tg := &recordingTarget{}
	d := New(testConfig(), ev, tg)
	assert.Equal(t, Uninitialized, d.State())
	assert.False(t, d.Step(), "step before start must not draw")

	require.NoError(t, d.Start())
	assert.Equal(t, Running, d.State())
	assert.Error(t, d.Start())

	assert.True(t, d.Step())
	assert.False(t, d.Step())
	assert.Equal(t, Terminated, d.State())
	assert.False(t, d.Step())

	d.Stop()
	d.Stop()
	assert.Equal(t, 1, tg.releases)
}

func TestRunDrawsUntilClose(t *testing.T) {
	ev := &scriptedEvents{script: idle(5)}
	tg := &recordingTarget{}
	d := New(testConfig(), ev, tg)
	require.NoError(t, d.Run())

	assert.Equal(t, Terminated, d.State())
	assert.Len(t, tg.frames, 5)
	assert.Equal(t, 5, d.Frames())
	assert.Equal(t, 1, tg.releases)
	for i, f := range tg.frames {
		assert.Equal(t, uint32(18), f.VertexCount)
		assert.Equal(t, [4]float32{0.1, 0.1, 0.15, 1}, f.ClearColor)
		want := vm.RotationZ(0.002 * float64(i+1))
		assert.True(t, f.Transform.ApproxEquals(&want, 1e-6), "frame %d", i)
	}
}

func TestCloseOnFirstPollDrawsNothing(t *testing.T) {
	tg := &recordingTarget{}
	d := New(testConfig(), &scriptedEvents{}, tg)
	require.NoError(t, d.Run())
	assert.Empty(t, tg.frames)
	assert.Equal(t, 1, tg.releases)
	assert.Zero(t, d.Angle().Radians())
}

func TestAngleStaysWrapped(t *testing.T) {
	ev := &scriptedEvents{script: idle(4000)}
	tg := &recordingTarget{}
	d := New(Config{AngleStep: 0.002, VertexCount: 18}, ev, tg)
	require.NoError(t, d.Run())

	a := d.Angle().Radians()
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, vm.TwoPi)
	assert.InDelta(t, math.Mod(8.0, vm.TwoPi), a, 1e-9)
}

func TestResizeNotifiesTarget(t *testing.T) {
	ev := &scriptedEvents{script: []Input{{}, {Resized: true}, {}}}
	tg := &recordingTarget{}
	require.NoError(t, New(testConfig(), ev, tg).Run())
	assert.Equal(t, 1, tg.resizes)
	assert.Len(t, tg.frames, 3)
}

func TestMinimizedSkipsDrawing(t *testing.T) {
	ev := &scriptedEvents{script: []Input{
		{},
		{Minimized: true},
		{},
		{Restored: true},
		{},
	}}
	tg := &recordingTarget{}
	d := New(testConfig(), ev, tg)
	require.NoError(t, d.Run())

	assert.Len(t, tg.frames, 3)
	assert.Equal(t, 2, ev.waits)
	// the angle only advances on drawn frames
	assert.InDelta(t, 0.006, d.Angle().Radians(), 1e-12)
}

func TestDrawErrorsDoNotStopTheLoop(t *testing.T) {
	ev := &scriptedEvents{script: idle(4)}
	tg := &recordingTarget{
		failOn:  map[int]error{1: errors.New("swap chain out of date")},
		panicOn: map[int]bool{2: true},
	}
	d := New(testConfig(), ev, tg)
	require.NotPanics(t, func() { require.NoError(t, d.Run()) })
	assert.Len(t, tg.frames, 4)
	assert.Equal(t, 1, tg.releases)
}

func TestRepeatedDrawErrorsAreCollapsed(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	frames := 2*DrawErrorLogInterval + 3
	failOn := map[int]error{}
	for i := 0; i < frames; i++ {
		failOn[i] = errors.New("swap chain extent is empty")
	}
	// a different error and a recovery both start a new run
	failOn[frames-2] = errors.New("device lost")
	delete(failOn, frames-1)

	tg := &recordingTarget{failOn: failOn}
	require.NoError(t, New(testConfig(), &scriptedEvents{script: idle(frames)}, tg).Run())

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "extent is empty"))
	assert.Equal(t, 1, strings.Count(out, "(repeated 300 times)"))
	assert.Equal(t, 1, strings.Count(out, "device lost"))
}

func TestStopBeforeStartReleases(t *testing.T) {
	tg := &recordingTarget{}
	d := New(testConfig(), &scriptedEvents{}, tg)
	d.Stop()
	assert.Equal(t, Terminated, d.State())
	assert.Equal(t, 1, tg.releases)
	assert.Error(t, d.Start())
}
