// Package events provides a queued publish/subscribe bus for input and
// application events. Publishing only queues; handlers run inside Drain on the
// loop thread.
package events

// Kind identifies an event type.
type Kind uint8

// Event kinds.
const (
	KindQuit Kind = iota
	KindResize
	KindPointerMove
	KindPointerButton
	KindDrag
	KindWheel
	KindKey
	KindSeek
	KindFileChanged
	kindCount
)

var kindNames = [...]string{
	KindQuit:          "quit",
	KindResize:        "resize",
	KindPointerMove:   "pointer-move",
	KindPointerButton: "pointer-button",
	KindDrag:          "drag",
	KindWheel:         "wheel",
	KindKey:           "key",
	KindSeek:          "seek",
	KindFileChanged:   "file-changed",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Event is anything published on the bus.
type Event interface {
	Kind() Kind
}

// Button is a pointer button.
type Button uint8

// Pointer buttons.
const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Quit requests application shutdown.
type Quit struct{}

// Resize reports a new drawable size in pixels.
type Resize struct{ Width, Height int }

// PointerMove reports the pointer position in pixels.
type PointerMove struct{ X, Y float32 }

// PointerButton reports a button press or release.
type PointerButton struct {
	Button Button
	Down   bool
	X, Y   float32
}

// Drag reports pointer motion while a button is held.
type Drag struct {
	Button Button
	DX, DY float32
}

// Wheel reports scroll wheel motion; positive is away from the user.
type Wheel struct{ Delta float32 }

// Key reports a key press or release by name.
type Key struct {
	Name string
	Down bool
}

// Seek requests a scrub position as a segment count.
type Seek struct{ Position int }

// FileChanged reports that the watched toolpath file changed on disk.
type FileChanged struct{ Path string }

// Kind implementations.
func (Quit) Kind() Kind          { return KindQuit }
func (Resize) Kind() Kind        { return KindResize }
func (PointerMove) Kind() Kind   { return KindPointerMove }
func (PointerButton) Kind() Kind { return KindPointerButton }
func (Drag) Kind() Kind          { return KindDrag }
func (Wheel) Kind() Kind         { return KindWheel }
func (Key) Kind() Kind           { return KindKey }
func (Seek) Kind() Kind          { return KindSeek }
func (FileChanged) Kind() Kind   { return KindFileChanged }
