// Package geometry builds GPU primitives from a parsed toolpath.
package geometry

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/scene"
	"github.com/Faultbox/pathscope/internal/logger"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// Strategy selects how primitives are represented on the GPU.
type Strategy uint8

// Strategies.
const (
	StrategyAuto      Strategy = iota // Instanced above the policy threshold
	StrategyBatched                   // Always one line list per mode
	StrategyInstanced                 // Always one instanced cylinder set per mode
)

// String returns the strategy name used in configuration.
func (s Strategy) String() string {
	switch s {
	case StrategyBatched:
		return "batched"
	case StrategyInstanced:
		return "instanced"
	default:
		return "auto"
	}
}

// ParseStrategy parses a configuration strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return StrategyAuto, nil
	case "batched":
		return StrategyBatched, nil
	case "instanced":
		return StrategyInstanced, nil
	}
	return StrategyAuto, fmt.Errorf("unknown primitive strategy %q", name)
}

// Policy controls primitive construction.
type Policy struct {
	Strategy          Strategy
	InstanceThreshold int     // Segment count above which Auto picks instancing
	ArcResolution     float64 // Chord length for arc tessellation
	InstanceRadius    float32 // Radius of instanced segment cylinders
}

// DefaultPolicy returns the default build policy.
func DefaultPolicy() Policy {
	return Policy{
		Strategy:          StrategyAuto,
		InstanceThreshold: 5000,
		ArcResolution:     gcode.DefaultArcResolution,
		InstanceRadius:    0.05,
	}
}

// Device allocates GPU buffers for primitives.
type Device interface {
	// UploadLines uploads a line list, xyz per vertex, two vertices per line.
	UploadLines(vertices []float32) (scene.Buffer, error)
	// UploadInstances uploads one model transform per instance of the unit cylinder.
	UploadInstances(transforms []mgl32.Mat4) (scene.Buffer, error)
}

// BuildError reports a GPU allocation failure for one primitive.
type BuildError struct {
	Mode gcode.Mode
	Kind scene.Kind
	Err  error
}

// Error describes the failed primitive.
func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s %s primitive: %v", e.Kind, e.Mode, e.Err)
}

// Unwrap returns the device error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder turns toolpaths into scene graphs.
type Builder struct {
	device Device
	policy Policy
}

// NewBuilder creates a builder that allocates through device.
func NewBuilder(device Device, policy Policy) *Builder {
	if policy.ArcResolution <= 0 {
		policy.ArcResolution = gcode.DefaultArcResolution
	}
	if policy.InstanceRadius <= 0 {
		policy.InstanceRadius = DefaultPolicy().InstanceRadius
	}
	return &Builder{device: device, policy: policy}
}

// Policy returns the effective build policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Choose returns the primitive kind used for a toolpath of n segments.
func (b *Builder) Choose(n int) scene.Kind {
	switch b.policy.Strategy {
	case StrategyBatched:
		return scene.Batched
	case StrategyInstanced:
		return scene.Instanced
	}
	if n > b.policy.InstanceThreshold {
		return scene.Instanced
	}
	return scene.Batched
}

// Build creates one primitive per mode present in tp. Bounding volumes are
// computed once here. On a device failure every primitive allocated so far is
// released and a *BuildError is returned; no partial graph escapes.
func (b *Builder) Build(tp *gcode.Toolpath) (*scene.Graph, error) {
	start := time.Now()
	kind := b.Choose(tp.Len())

	var byMode [len(gcode.Modes)][]int
	for i := range tp.Segments {
		m := tp.Segments[i].Mode
		byMode[m] = append(byMode[m], i)
	}

	prims := make([]*scene.Primitive, 0, len(gcode.Modes))
	for _, mode := range gcode.Modes {
		indices := byMode[mode]
		if len(indices) == 0 {
			continue
		}
		p, err := b.buildPrimitive(tp, kind, mode, indices)
		if err != nil {
			for _, built := range prims {
				built.Dispose()
			}
			return nil, err
		}
		prims = append(prims, p)
	}

	logger.Debug("geometry built",
		zap.Stringer("kind", kind),
		zap.Int("segments", tp.Len()),
		zap.Int("primitives", len(prims)),
		zap.Duration("took", time.Since(start)),
	)
	return scene.NewGraph("toolpath", prims), nil
}

// buildPrimitive tessellates the segments of one mode and uploads them.
func (b *Builder) buildPrimitive(tp *gcode.Toolpath, kind scene.Kind, mode gcode.Mode, indices []int) (*scene.Primitive, error) {
	vertices := make([]float32, 0, len(indices)*6)
	ends := make([]int, len(indices))
	for k, idx := range indices {
		pts := tp.Segments[idx].Tessellate(b.policy.ArcResolution)
		for i := 1; i < len(pts); i++ {
			a, c := pts[i-1], pts[i]
			vertices = append(vertices,
				float32(a[0]), float32(a[1]), float32(a[2]),
				float32(c[0]), float32(c[1]), float32(c[2]),
			)
		}
		ends[k] = len(vertices) / 3
	}

	var buf scene.Buffer
	var err error
	var pad float32
	switch kind {
	case scene.Instanced:
		transforms := make([]mgl32.Mat4, 0, len(vertices)/6)
		for i := 0; i+5 < len(vertices); i += 6 {
			a := mgl32.Vec3{vertices[i], vertices[i+1], vertices[i+2]}
			c := mgl32.Vec3{vertices[i+3], vertices[i+4], vertices[i+5]}
			transforms = append(transforms, InstanceTransform(a, c, b.policy.InstanceRadius))
		}
		// One instance per line, so element counts halve.
		for k := range ends {
			ends[k] /= 2
		}
		pad = b.policy.InstanceRadius
		buf, err = b.device.UploadInstances(transforms)
	default:
		buf, err = b.device.UploadLines(vertices)
	}
	if err != nil {
		return nil, &BuildError{Mode: mode, Kind: kind, Err: err}
	}

	p := scene.NewPrimitive(kind, mode, buf, indices, ends)
	p.Color = ModeColor(mode)
	p.SealBounds(bounds.FromPoints(vertices, pad))
	return p, nil
}

// InstanceTransform maps the unit cylinder (axis +Y, y in [-0.5, 0.5], radius 1)
// onto the segment a→b: scaled to its length, centered at its midpoint and
// oriented along its direction.
func InstanceTransform(a, b mgl32.Vec3, radius float32) mgl32.Mat4 {
	d := b.Sub(a)
	length := d.Len()
	mid := a.Add(b).Mul(0.5)

	rot := mgl32.Ident4()
	if length > 1e-6 {
		rot = mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, d.Mul(1/length)).Mat4()
	}
	return mgl32.Translate3D(mid[0], mid[1], mid[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(radius, length, radius))
}

// ModeColor returns the display color of a motion mode.
func ModeColor(m gcode.Mode) mgl32.Vec4 {
	switch m {
	case gcode.Rapid:
		return mgl32.Vec4{0.95, 0.35, 0.25, 1}
	case gcode.Linear:
		return mgl32.Vec4{0.25, 0.75, 0.95, 1}
	case gcode.ArcCW:
		return mgl32.Vec4{0.45, 0.9, 0.4, 1}
	case gcode.ArcCCW:
		return mgl32.Vec4{0.95, 0.8, 0.3, 1}
	default:
		return mgl32.Vec4{1, 1, 1, 1}
	}
}
