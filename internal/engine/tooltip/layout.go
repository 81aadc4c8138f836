package tooltip

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placement constants in pixels.
const (
	PointerOffset = 12 // Distance from the pointer to the tooltip corner
	EdgeMargin    = 10 // Minimum distance from any viewport edge
	Padding       = 4  // Inner padding around the text
)

// Point is a position in viewport pixels, origin top-left.
type Point struct {
	X, Y float32
}

// Size is an extent in pixels.
type Size struct {
	W, H float32
}

// Place returns the top-left corner of a tooltip of the given size. The
// tooltip sits below-right of the pointer, flips to the other side of the
// pointer on an axis where it would cross the margin, and is finally clamped
// to stay EdgeMargin away from every edge.
func Place(pointer Point, size Size, viewport Size) Point {
	return Point{
		X: placeAxis(pointer.X, size.W, viewport.W),
		Y: placeAxis(pointer.Y, size.H, viewport.H),
	}
}

func placeAxis(pointer, extent, viewport float32) float32 {
	pos := pointer + PointerOffset
	if pos+extent > viewport-EdgeMargin {
		pos = pointer - PointerOffset - extent
	}
	if hi := viewport - EdgeMargin - extent; pos > hi {
		pos = hi
	}
	if pos < EdgeMargin {
		pos = EdgeMargin
	}
	return pos
}

// Face is the font tooltips are measured and drawn with.
var Face font.Face = basicfont.Face7x13

// Measure returns the pixel size of the tooltip box for c, padding included.
func Measure(c Content) Size {
	lines := c.Lines()
	if len(lines) == 0 {
		return Size{}
	}
	var width fixed.Int26_6
	for _, l := range lines {
		if w := font.MeasureString(Face, l); w > width {
			width = w
		}
	}
	lineHeight := Face.Metrics().Height
	return Size{
		W: float32(width.Ceil() + 2*Padding),
		H: float32(lineHeight.Ceil()*len(lines) + 2*Padding),
	}
}

// Colors used by Render.
var (
	Background = color.RGBA{R: 20, G: 22, B: 28, A: 220}
	Foreground = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// Render draws c into a new image of size Measure(c). Returns nil for empty content.
func Render(c Content) *image.RGBA {
	size := Measure(c)
	if size.W == 0 || size.H == 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, int(size.W), int(size.H)))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	metrics := Face.Metrics()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(Foreground),
		Face: Face,
	}
	y := fixed.I(Padding) + metrics.Ascent
	for _, l := range c.Lines() {
		d.Dot = fixed.Point26_6{X: fixed.I(Padding), Y: y}
		d.DrawString(l)
		y += metrics.Height
	}
	return img
}
