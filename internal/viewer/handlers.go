package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/events"
	"github.com/Faultbox/pathscope/internal/engine/tooltip"
)

// Key names as reported by SDL_GetKeyName.
const (
	keyFit      = "F"
	keyBounds   = "B"
	keyAdaptive = "A"
	keyCapture  = "P"
	keyBack     = "Left"
	keyForward  = "Right"
	keyFirst    = "Home"
	keyAll      = "End"
	keyQuit     = "Escape"
)

func (v *Viewer) subscribe() {
	v.bus.Subscribe(events.KindQuit, func(events.Event) {
		v.Session.Quit = true
	})
	v.bus.Subscribe(events.KindResize, func(e events.Event) {
		r := e.(events.Resize)
		v.Resize(r.Width, r.Height)
	})
	v.bus.Subscribe(events.KindPointerMove, func(e events.Event) {
		m := e.(events.PointerMove)
		v.pointer = tooltip.Point{X: m.X, Y: m.Y}
		v.hasPointer = true
		v.hoverDirty = true
	})
	v.bus.Subscribe(events.KindPointerButton, func(e events.Event) {
		b := e.(events.PointerButton)
		v.buttons[b.Button] = b.Down
		v.camera.SetInteracting(v.interactingButtons())
	})
	v.bus.Subscribe(events.KindDrag, func(e events.Event) {
		d := e.(events.Drag)
		if d.Button == events.ButtonLeft {
			v.camera.HandleDrag(d.DX, d.DY)
		} else {
			v.camera.HandlePan(d.DX, d.DY)
		}
		v.hoverDirty = true
	})
	v.bus.Subscribe(events.KindWheel, func(e events.Event) {
		v.camera.HandleZoom(e.(events.Wheel).Delta)
		v.hoverDirty = true
	})
	v.bus.Subscribe(events.KindKey, func(e events.Event) {
		if k := e.(events.Key); k.Down {
			v.handleKey(k.Name)
		}
	})
	v.bus.Subscribe(events.KindSeek, func(e events.Event) {
		v.Seek(e.(events.Seek).Position)
	})
	v.bus.Subscribe(events.KindFileChanged, func(e events.Event) {
		path := e.(events.FileChanged).Path
		v.log.Info("reloading", zap.String("file", path))
		_ = v.LoadFile(path)
	})
}

func (v *Viewer) interactingButtons() bool {
	for _, down := range v.buttons {
		if down {
			return true
		}
	}
	return false
}

func (v *Viewer) handleKey(name string) {
	switch name {
	case keyFit:
		v.FitView()
		v.sched.Reset()
	case keyBounds:
		v.Session.ShowBounds = !v.Session.ShowBounds
		v.sched.Reset()
	case keyAdaptive:
		if v.sched.Enabled() {
			v.sched.Disable()
		} else {
			v.sched.Enable()
		}
		v.log.Info("adaptive rendering", zap.Bool("enabled", v.sched.Enabled()))
	case keyCapture:
		v.Session.Capture = true
		v.sched.Reset()
	case keyBack:
		v.Seek(v.step(-1))
	case keyForward:
		v.Seek(v.step(1))
	case keyFirst:
		v.Seek(0)
	case keyAll:
		v.Seek(AllSegments)
	case keyQuit:
		v.bus.Publish(events.Quit{})
	}
}

// step moves the requested seek position by delta segments. Stepping past the
// last segment shows everything.
func (v *Viewer) step(delta int) int {
	n := v.Session.Model.Len()
	pos := v.seek.Position()
	if _, ok := v.seek.Applied(); !ok || pos == AllSegments {
		pos = n
	}
	pos += delta
	switch {
	case pos < 0:
		return 0
	case pos >= n:
		return AllSegments
	}
	return pos
}
