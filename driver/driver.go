// Package driver runs the per-frame loop: poll input, advance the rotation, hand a frame to the render target
// and release everything once the window closes.
package driver

import (
	"fmt"
	"log"
	"time"

	vm "shuriken/vector_math"
)

type State int

const (
	Uninitialized State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Input is what happened since the previous poll.
type Input struct {
	// Close is set by the window close button or the Escape key.
	Close     bool
	Resized   bool
	Minimized bool
	Restored  bool
}

// Events is the window event source.
type Events interface {
	Poll() Input
	// Wait blocks until at least one new event is available.
	Wait()
}

// Frame is everything the target needs to draw one image.
type Frame struct {
	Transform   vm.Mat4
	VertexCount uint32
	ClearColor  [4]float32
}

// Target draws frames and owns the GPU resources.
type Target interface {
	Draw(f Frame) error
	// Resize is called when the framebuffer size changed.
	Resize()
	// Release frees all resources. It is called exactly once.
	Release()
}

type Config struct {
	AngleStep   float64
	VertexCount uint32
	ClearColor  [4]float32
}

type Driver struct {
	cfg    Config
	events Events
	target Target

	state     State
	angle     vm.Angle
	minimized bool
	released  bool

	frames    int
	drawErrs  int
	lastErr   string
	repeats   int
	startedAt time.Time
}

func New(cfg Config, events Events, target Target) *Driver {
	return &Driver{
		cfg:    cfg,
		events: events,
		target: target,
		state:  Uninitialized,
	}
}

func (d *Driver) State() State {
	return d.state
}

func (d *Driver) Angle() vm.Angle {
	return d.angle
}

func (d *Driver) Frames() int {
	return d.frames
}

// Start moves from Uninitialized to Running. Setup has completed by the time it is called.
func (d *Driver) Start() error {
	if d.state != Uninitialized {
		return fmt.Errorf("cannot start driver in state %s", d.state)
	}
	d.state = Running
	d.startedAt = time.Now()
	return nil
}

// Step runs one loop iteration and reports whether the driver is still running.
func (d *Driver) Step() bool {
	if d.state != Running {
		return false
	}
	in := d.events.Poll()
	if in.Close {
		d.state = Terminated
		return false
	}
	if in.Minimized {
		d.minimized = true
	}
	if in.Restored {
		d.minimized = false
	}
	if in.Resized {
		d.target.Resize()
	}
	if d.minimized {
		// nothing is visible, sleep until something changes
		d.events.Wait()
		return true
	}

	d.angle = d.angle.Step(d.cfg.AngleStep)
	frame := Frame{
		Transform:   d.angle.Transform(),
		VertexCount: d.cfg.VertexCount,
		ClearColor:  d.cfg.ClearColor,
	}
	if err := d.draw(frame); err != nil {
		d.drawErrs++
		d.logDrawError(err)
	} else {
		d.lastErr, d.repeats = "", 0
	}
	d.frames++
	return true
}

// DrawErrorLogInterval is how many identical consecutive draw errors are collapsed into one log line.
const DrawErrorLogInterval = 300

func (d *Driver) logDrawError(err error) {
	msg := err.Error()
	if msg != d.lastErr {
		d.lastErr, d.repeats = msg, 0
		log.Printf("Failed to draw frame %d: %v", d.frames, err)
		return
	}
	d.repeats++
	if d.repeats%DrawErrorLogInterval == 0 {
		log.Printf("Failed to draw frame %d: %v (repeated %d times)", d.frames, err, d.repeats)
	}
}

func (d *Driver) draw(f Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw panicked: %v", r)
		}
	}()
	return d.target.Draw(f)
}

// Stop terminates the loop and releases the target. Repeated calls are no-ops.
func (d *Driver) Stop() {
	d.state = Terminated
	if d.released {
		return
	}
	d.released = true
	if !d.startedAt.IsZero() {
		dt := time.Since(d.startedAt)
		log.Printf("Elapsed: %v, frames: %d, rough avg fps: %.1f fps", dt, d.frames, float64(d.frames)/dt.Seconds())
	}
	if d.drawErrs > 0 {
		log.Printf("%d frames failed to draw", d.drawErrs)
	}
	d.release()
}

func (d *Driver) release() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Release panicked: %v", r)
		}
	}()
	d.target.Release()
}

// Run starts the driver, loops until the window is closed and releases the target.
func (d *Driver) Run() error {
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Stop()
	for d.Step() {
	}
	return nil
}
