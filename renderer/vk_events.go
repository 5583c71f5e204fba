package renderer

import (
	"shuriken/driver"

	"github.com/veandco/go-sdl2/sdl"
)

// Events feeds SDL window events into the frame driver.
type Events struct {
	pending sdl.Event
}

func NewEvents() *Events {
	return &Events{}
}

// Poll drains the SDL event queue.
func (e *Events) Poll() driver.Input {
	var in driver.Input
	if e.pending != nil {
		translateEvent(e.pending, &in)
		e.pending = nil
	}
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		translateEvent(event, &in)
	}
	return in
}

// Wait sleeps until SDL has a new event. The event is kept for the next Poll.
func (e *Events) Wait() {
	if e.pending == nil {
		e.pending = sdl.WaitEvent()
	}
}

func translateEvent(event sdl.Event, in *driver.Input) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		in.Close = true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_CLOSE:
			in.Close = true
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			in.Resized = true
		case sdl.WINDOWEVENT_MINIMIZED:
			in.Minimized = true
			in.Restored = false
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_SHOWN:
			in.Restored = true
			in.Minimized = false
		}
	case *sdl.KeyboardEvent:
		if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
			in.Close = true
		}
	}
}
