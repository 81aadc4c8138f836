package picking

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/camera"
	"github.com/Faultbox/pathscope/internal/logger"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// DefaultPixelRadius is the default pick threshold in pixels.
const DefaultPixelRadius = 8

// bucketSize is the number of consecutive points sharing one bounding box.
const bucketSize = 64

// PointSample describes a picked toolpath point. It is derived from the model
// on every query.
type PointSample struct {
	Position   mgl64.Vec3
	Mode       gcode.Mode
	Segment    int  // Segment index
	End        bool // Position is the segment end rather than its start
	Line       int  // Source line, 0-based
	Arc        *gcode.ArcParams
	Feed       float64
	HasFeed    bool
	Spindle    float64
	HasSpindle bool
}

type bucket struct {
	first, last int // Point index range [first, last)
	box         bounds.Box
}

// Detector finds the toolpath endpoint nearest to a pointer ray.
type Detector struct {
	// PixelRadius is the pick threshold in screen pixels.
	PixelRadius float32

	model   *gcode.Toolpath
	points  []mgl32.Vec3 // Start and end of every segment: point k belongs to segment k/2
	buckets []bucket
	limit   int // Points at or past this index are ignored; negative for none
	builds  int
	log     *zap.Logger
}

// NewDetector creates a detector with the given pixel radius.
func NewDetector(pixelRadius float32) *Detector {
	if pixelRadius <= 0 {
		pixelRadius = DefaultPixelRadius
	}
	return &Detector{PixelRadius: pixelRadius, limit: -1, log: logger.Named("picking")}
}

// SetSegmentLimit restricts picking to segments with an index below limit,
// matching the drawn range. A negative limit allows every segment.
func (d *Detector) SetSegmentLimit(limit int) {
	if limit < 0 {
		d.limit = -1
		return
	}
	d.limit = 2 * limit
}

// UpdateToolpath rebuilds the point index for tp. Passing the model already
// indexed does nothing; it reports whether a rebuild happened.
func (d *Detector) UpdateToolpath(tp *gcode.Toolpath) bool {
	if tp == d.model {
		return false
	}
	d.Dispose()
	d.model = tp
	if tp == nil {
		return true
	}

	d.points = make([]mgl32.Vec3, 0, 2*len(tp.Segments))
	for i := range tp.Segments {
		s := &tp.Segments[i]
		d.points = append(d.points, vec32(s.Start), vec32(s.End))
	}
	for first := 0; first < len(d.points); first += bucketSize {
		last := min(first+bucketSize, len(d.points))
		box := bounds.Empty()
		for _, p := range d.points[first:last] {
			box.Extend(p)
		}
		d.buckets = append(d.buckets, bucket{first: first, last: last, box: box})
	}
	d.builds++
	d.log.Debug("point index built",
		zap.Int("points", len(d.points)),
		zap.Int("buckets", len(d.buckets)),
	)
	return true
}

// Builds returns how many times the index was rebuilt.
func (d *Detector) Builds() int {
	return d.builds
}

// Dispose releases the point index.
func (d *Detector) Dispose() {
	d.model = nil
	d.points = nil
	d.buckets = nil
}

// Pick returns the endpoint nearest to the pointer at (x, y) in a
// width × height viewport, if one projects within PixelRadius of it. Ties go
// to the smallest segment index.
func (d *Detector) Pick(x, y float32, width, height int, cam *camera.State) (PointSample, bool) {
	if cam == nil || d.model == nil || len(d.points) == 0 || width <= 0 || height <= 0 {
		return PointSample{}, false
	}
	vp := cam.ViewProjection()
	if vp.Det() == 0 {
		return PointSample{}, false
	}
	ray := ScreenToRay(x, y, float32(width), float32(height), vp.Inv())
	scale := newPixelScale(cam, height)
	pointer := mgl32.Vec2{x, y}

	best, bestDist := -1, float32(0)
	for _, b := range d.buckets {
		if d.limit >= 0 && b.first >= d.limit {
			break
		}
		if _, hit := ray.IntersectBox(b.box.Pad(scale.world(d.PixelRadius, b.box))); !hit {
			continue
		}
		last := b.last
		if d.limit >= 0 && d.limit < last {
			last = d.limit
		}
		for k := b.first; k < last; k++ {
			sp, ok := project(vp, d.points[k], width, height)
			if !ok {
				continue
			}
			px := sp.Sub(pointer).Len()
			if px > d.PixelRadius {
				continue
			}
			// Points are visited in segment order, so strict less keeps the first.
			if best < 0 || px < bestDist {
				best, bestDist = k, px
			}
		}
	}
	if best < 0 {
		return PointSample{}, false
	}
	return d.Sample(best/2, best%2 == 1), true
}

// Sample builds the PointSample for the start or end of segment i.
func (d *Detector) Sample(i int, end bool) PointSample {
	s := &d.model.Segments[i]
	pos := s.Start
	if end {
		pos = s.End
	}
	return PointSample{
		Position:   pos,
		Mode:       s.Mode,
		Segment:    i,
		End:        end,
		Line:       s.Line,
		Arc:        s.Arc,
		Feed:       s.Feed,
		HasFeed:    s.HasFeed,
		Spindle:    s.Spindle,
		HasSpindle: s.HasSpindle,
	}
}

// project maps p to window coordinates. Points behind the near plane are
// not visible and report false.
func project(vp mgl32.Mat4, p mgl32.Vec3, width, height int) (mgl32.Vec2, bool) {
	c := vp.Mul4x1(p.Vec4(1))
	if c[3] <= 0 || c[2] < -c[3] {
		return mgl32.Vec2{}, false
	}
	return mgl32.Vec2{
		(c[0]/c[3] + 1) / 2 * float32(width),
		(1 - c[1]/c[3]) / 2 * float32(height),
	}, true
}

// pixelScale converts pixels to world units at a view-space depth.
type pixelScale struct {
	perspective bool
	k           float32
	view        mgl32.Mat4
}

func newPixelScale(cam *camera.State, height int) pixelScale {
	// proj[5] is cot(fovY/2) for perspective and 2/(top-bottom) for ortho.
	proj := cam.Projection
	k := 2 / (proj[5] * float32(height))
	return pixelScale{perspective: proj[15] == 0, k: k, view: cam.View}
}

// depth returns the distance of p from the camera along the view axis.
func (s pixelScale) depth(p mgl32.Vec3) float32 {
	v := s.view
	return -(v[2]*p[0] + v[6]*p[1] + v[10]*p[2] + v[14])
}

// world returns the world size of px pixels at the deepest corner of box,
// an upper bound for every point inside it.
func (s pixelScale) world(px float32, box bounds.Box) float32 {
	if !s.perspective {
		return px * s.k
	}
	var z float32
	for _, c := range box.Corners() {
		z = max(z, s.depth(c))
	}
	return px * s.k * max(z, 1e-6)
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
