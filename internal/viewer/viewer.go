package viewer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/camera"
	"github.com/Faultbox/pathscope/internal/engine/culling"
	"github.com/Faultbox/pathscope/internal/engine/events"
	"github.com/Faultbox/pathscope/internal/engine/geometry"
	"github.com/Faultbox/pathscope/internal/engine/picking"
	"github.com/Faultbox/pathscope/internal/engine/scene"
	"github.com/Faultbox/pathscope/internal/engine/scheduler"
	"github.com/Faultbox/pathscope/internal/engine/seek"
	"github.com/Faultbox/pathscope/internal/engine/timer"
	"github.com/Faultbox/pathscope/internal/engine/tooltip"
	"github.com/Faultbox/pathscope/internal/logger"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// ErrNoCompiler is returned by LoadSource when no compiler is attached.
var ErrNoCompiler = errors.New("no compiler configured")

// Frame is the result of one Tick. When Render is false nothing should be
// drawn and the previous image stays on screen.
type Frame struct {
	Render     bool
	Graph      *scene.Graph
	Camera     *camera.State
	Tooltip    *Tooltip
	ShowBounds bool
	Capture    bool // Save this frame once drawn
	Culled     culling.Stats
}

// Viewer owns the scene and every per-frame component. All methods must be
// called from the loop goroutine.
type Viewer struct {
	Session Session

	opts     Options
	builder  *geometry.Builder
	stage    scene.Stage
	culler   *culling.Culler
	sched    *scheduler.Adaptive
	detector *picking.Detector
	seek     *seek.Controller
	timers   *timer.Queue
	bus      *events.Bus
	camera   *camera.OrbitCamera
	compiler Compiler

	width, height int
	pointer       tooltip.Point
	hasPointer    bool
	hoverDirty    bool
	buttons       map[events.Button]bool

	lastTooltip string
	fitted      bool

	log *zap.Logger
}

// New creates a viewer uploading geometry through device.
func New(opts Options, device geometry.Device) *Viewer {
	v := &Viewer{
		opts:     opts,
		builder:  geometry.NewBuilder(device, opts.Geometry),
		culler:   culling.New(),
		sched:    scheduler.New(opts.Scheduler),
		detector: picking.NewDetector(opts.PixelPickRadius),
		timers:   timer.NewQueue(),
		bus:      events.NewBus(),
		camera:   camera.NewOrbitCamera(),
		width:    opts.Width,
		height:   opts.Height,
		buttons:  make(map[events.Button]bool, 3),
		log:      logger.Named("viewer"),
	}
	v.seek = seek.New(opts.Seek, v.timers, v.applySeek)
	v.Session.Position = AllSegments
	v.Session.ShowBounds = opts.ShowBounds
	v.subscribe()
	return v
}

// Bus returns the event bus the viewer listens on.
func (v *Viewer) Bus() *events.Bus {
	return v.bus
}

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.OrbitCamera {
	return v.camera
}

// Scheduler returns the adaptive render scheduler.
func (v *Viewer) Scheduler() *scheduler.Adaptive {
	return v.sched
}

// Seeker returns the seek controller.
func (v *Viewer) Seeker() *seek.Controller {
	return v.seek
}

// Detector returns the point detector.
func (v *Viewer) Detector() *picking.Detector {
	return v.detector
}

// Graph returns the attached scene graph, or nil.
func (v *Viewer) Graph() *scene.Graph {
	return v.stage.Current()
}

// SetCompiler attaches the compiler used by LoadSource.
func (v *Viewer) SetCompiler(c Compiler) {
	v.compiler = c
}

// Size returns the viewport size in pixels.
func (v *Viewer) Size() (int, int) {
	return v.width, v.height
}

// LoadFile reads path and loads it as toolpath text.
func (v *Viewer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		v.fail(fmt.Errorf("read %s: %w", path, err))
		return v.Session.Error
	}
	v.Session.Filename = path
	return v.Load(string(data))
}

// LoadSource compiles src with the attached compiler and loads the result.
func (v *Viewer) LoadSource(src string) error {
	if v.compiler == nil {
		return ErrNoCompiler
	}
	text, err := v.compiler.Compile(src)
	if err != nil {
		v.fail(fmt.Errorf("compile: %w", err))
		return v.Session.Error
	}
	return v.Load(text)
}

// Load parses text, builds its scene and attaches it. On failure the previous
// scene is released, the session records the error and nothing is attached.
func (v *Viewer) Load(text string) error {
	start := time.Now()
	v.Session.Source = text

	tp, err := gcode.Parse(text)
	if err != nil {
		v.fail(err)
		return err
	}
	g, err := v.builder.Build(tp)
	if err != nil {
		v.fail(err)
		return err
	}

	v.stage.Replace(g)
	v.detector.UpdateToolpath(tp)
	v.detector.SetSegmentLimit(AllSegments)
	v.seek.Reset()
	v.Session.Model = tp
	v.Session.Error = nil
	v.Session.Position = AllSegments
	v.clearHover()
	v.hoverDirty = true

	if !v.fitted {
		v.FitView()
		v.fitted = true
	}
	v.sched.Reset()

	v.log.Info("toolpath loaded",
		zap.String("file", filepath.Base(v.Session.Filename)),
		zap.Int("segments", tp.Len()),
		zap.Int("primitives", len(g.Primitives)),
		zap.Any("counts", tp.Counts.Map()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (v *Viewer) fail(err error) {
	v.stage.Replace(nil)
	v.detector.UpdateToolpath(nil)
	v.detector.SetSegmentLimit(AllSegments)
	v.seek.Reset()
	v.Session.Model = nil
	v.Session.Error = err
	v.Session.Position = AllSegments
	v.clearHover()
	v.sched.Reset()
	v.log.Warn("toolpath load failed", zap.Error(err))
}

// FitView points the camera at the whole toolpath.
func (v *Viewer) FitView() {
	tp := v.Session.Model
	if tp == nil || !tp.Bounds.Valid {
		return
	}
	v.camera.FitToBounds(bounds.NewBox(
		mgl32.Vec3{float32(tp.Bounds.Min[0]), float32(tp.Bounds.Min[1]), float32(tp.Bounds.Min[2])},
		mgl32.Vec3{float32(tp.Bounds.Max[0]), float32(tp.Bounds.Max[1]), float32(tp.Bounds.Max[2])},
	))
	v.hoverDirty = true
}

// Seek requests a draw limit. AllSegments shows the whole toolpath.
func (v *Viewer) Seek(position int) {
	if position < AllSegments {
		position = AllSegments
	}
	v.seek.Seek(position)
}

// applySeek is the seek refresh: it recomputes the draw range and hover.
func (v *Viewer) applySeek(position int) {
	v.Session.Position = position
	v.stage.Current().SetDrawLimit(position)
	v.detector.SetSegmentLimit(position)
	v.hoverDirty = true
	v.sched.Reset()
}

// Resize sets the viewport size.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.hoverDirty = true
	v.sched.Reset()
}

// Tick advances the viewer to now: due timers fire, queued events are
// dispatched, and the scheduler decides whether a frame is drawn. No frame is
// drawn while seeking rapidly. Culling and picking only run for drawn frames.
func (v *Viewer) Tick(now time.Duration) Frame {
	v.timers.RunDue(now)
	v.bus.Drain()

	interacting := v.interacting()
	if v.seek.Rapid() && !interacting {
		return Frame{}
	}

	cam := v.camera.State(v.width, v.height)
	if !v.sched.ShouldRender(now, cam, interacting) {
		return Frame{}
	}

	g := v.stage.Current()
	v.culler.Update(g, cam)
	if v.hoverDirty {
		v.updateHover(cam)
	}
	f := Frame{
		Render:     true,
		Graph:      g,
		Camera:     cam,
		Tooltip:    v.Session.Tooltip,
		ShowBounds: v.Session.ShowBounds,
		Capture:    v.Session.Capture,
		Culled:     v.culler.Stats(),
	}
	v.Session.Capture = false
	return f
}

// Close releases the scene.
func (v *Viewer) Close() {
	v.stage.Replace(nil)
	v.detector.Dispose()
}

func (v *Viewer) interacting() bool {
	return v.interactingButtons() || v.camera.Interacting()
}

func (v *Viewer) updateHover(cam *camera.State) {
	v.hoverDirty = false
	if !v.hasPointer {
		v.clearHover()
		return
	}
	sample, ok := v.detector.Pick(v.pointer.X, v.pointer.Y, v.width, v.height, cam)
	if !ok {
		v.clearHover()
		return
	}
	v.Session.Hover = &sample

	content := tooltip.Format(sample)
	size := tooltip.Measure(content)
	at := tooltip.Place(v.pointer, size, tooltip.Size{W: float32(v.width), H: float32(v.height)})

	key := content.String()
	if v.Session.Tooltip != nil && key == v.lastTooltip {
		v.Session.Tooltip.At = at
		return
	}
	v.lastTooltip = key
	v.Session.Tooltip = &Tooltip{Content: content, At: at, Size: size, Image: tooltip.Render(content)}
}

func (v *Viewer) clearHover() {
	v.Session.Hover = nil
	v.Session.Tooltip = nil
	v.lastTooltip = ""
}
