// Package capture writes rendered frames to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture names and writes frame captures.
type Capture struct {
	Dir    string
	Prefix string

	now func() time.Time
}

// New creates a capture writing to dir with file names starting with prefix.
func New(dir, prefix string) *Capture {
	return &Capture{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture is written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.Prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.Dir != "" {
		name = filepath.Join(c.Dir, name)
	}
	return name
}

// FromFramebuffer converts tightly packed RGBA rows read bottom-up from the
// framebuffer into a top-down image.
func FromFramebuffer(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d for %dx%d, got %d",
			max(width, 0)*max(height, 0)*4, width, height, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// Save writes framebuffer pixels as a PNG and returns the file name.
func (c *Capture) Save(pixels []byte, width, height int) (string, error) {
	img, err := FromFramebuffer(pixels, width, height)
	if err != nil {
		return "", err
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return "", fmt.Errorf("creating capture dir: %w", err)
		}
	}

	name := c.Filename()
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return name, nil
}
