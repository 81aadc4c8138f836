// Package input translates SDL2 input events onto the event bus.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/pathscope/internal/engine/events"
)

// Input polls SDL and publishes translated events.
type Input struct {
	bus *events.Bus

	held         map[events.Button]bool
	lastX, lastY float32
	hasPointer   bool
}

// New creates an input handler publishing to bus.
func New(bus *events.Bus) *Input {
	return &Input{bus: bus, held: make(map[events.Button]bool, 3)}
}

// Update polls pending SDL events and publishes them.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			quit = true
		}
		i.Translate(event)
	}
	return quit
}

// Interacting reports whether any pointer button is held.
func (i *Input) Interacting() bool {
	for _, down := range i.held {
		if down {
			return true
		}
	}
	return false
}

// Translate publishes the bus events for one SDL event.
func (i *Input) Translate(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.bus.Publish(events.Quit{})

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.bus.Publish(events.Resize{Width: int(e.Data1), Height: int(e.Data2)})
		}

	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return
		}
		i.bus.Publish(events.Key{
			Name: sdl.GetKeyName(e.Keysym.Sym),
			Down: e.Type == sdl.KEYDOWN,
		})

	case *sdl.MouseMotionEvent:
		x, y := float32(e.X), float32(e.Y)
		if i.hasPointer {
			for _, b := range []events.Button{events.ButtonLeft, events.ButtonMiddle, events.ButtonRight} {
				if i.held[b] {
					i.bus.Publish(events.Drag{Button: b, DX: x - i.lastX, DY: y - i.lastY})
				}
			}
		}
		i.lastX, i.lastY, i.hasPointer = x, y, true
		i.bus.Publish(events.PointerMove{X: x, Y: y})

	case *sdl.MouseButtonEvent:
		b, ok := button(e.Button)
		if !ok {
			return
		}
		down := e.State == sdl.PRESSED
		i.held[b] = down
		i.lastX, i.lastY, i.hasPointer = float32(e.X), float32(e.Y), true
		i.bus.Publish(events.PointerButton{Button: b, Down: down, X: float32(e.X), Y: float32(e.Y)})

	case *sdl.MouseWheelEvent:
		delta := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			delta = -delta
		}
		if delta != 0 {
			i.bus.Publish(events.Wheel{Delta: delta})
		}
	}
}

func button(b uint8) (events.Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return events.ButtonLeft, true
	case sdl.BUTTON_MIDDLE:
		return events.ButtonMiddle, true
	case sdl.BUTTON_RIGHT:
		return events.ButtonRight, true
	}
	return 0, false
}
