package geometry

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathscope/internal/engine/scene"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

type fakeBuffer struct {
	released *int
}

func (b fakeBuffer) Release() { *b.released++ }

// fakeDevice records uploads and can fail after a number of allocations.
type fakeDevice struct {
	lines     [][]float32
	instances [][]mgl32.Mat4
	released  int
	failAfter int // Fail the upload after this many successes; <0 never fails
}

func newFakeDevice() *fakeDevice { return &fakeDevice{failAfter: -1} }

func (d *fakeDevice) allocate() (scene.Buffer, error) {
	if d.failAfter == 0 {
		return nil, errors.New("out of memory")
	}
	if d.failAfter > 0 {
		d.failAfter--
	}
	return fakeBuffer{released: &d.released}, nil
}

func (d *fakeDevice) UploadLines(v []float32) (scene.Buffer, error) {
	buf, err := d.allocate()
	if err == nil {
		d.lines = append(d.lines, v)
	}
	return buf, err
}

func (d *fakeDevice) UploadInstances(m []mgl32.Mat4) (scene.Buffer, error) {
	buf, err := d.allocate()
	if err == nil {
		d.instances = append(d.instances, m)
	}
	return buf, err
}

const sample = "G0 X0 Y0 Z5\nG1 Z0 F200\nG1 X10\nG2 X20 Y0 I5 J0\nG1 Y10\nG0 Z5"

func parse(t *testing.T, src string) *gcode.Toolpath {
	t.Helper()
	tp, err := gcode.Parse(src)
	require.NoError(t, err)
	return tp
}

func TestChoose(t *testing.T) {
	b := NewBuilder(newFakeDevice(), Policy{Strategy: StrategyAuto, InstanceThreshold: 100})
	assert.Equal(t, scene.Batched, b.Choose(100))
	assert.Equal(t, scene.Instanced, b.Choose(101))

	b = NewBuilder(newFakeDevice(), Policy{Strategy: StrategyBatched})
	assert.Equal(t, scene.Batched, b.Choose(1_000_000))
	b = NewBuilder(newFakeDevice(), Policy{Strategy: StrategyInstanced})
	assert.Equal(t, scene.Instanced, b.Choose(1))
}

func TestBuildBatched(t *testing.T) {
	dev := newFakeDevice()
	tp := parse(t, sample)
	g, err := NewBuilder(dev, Policy{Strategy: StrategyBatched}).Build(tp)
	require.NoError(t, err)

	// Rapid, Linear and ArcCW are present: one primitive and one upload each.
	require.Len(t, g.Primitives, 3)
	assert.Len(t, dev.lines, 3)
	assert.Len(t, g.Root.Children, 3)
	assert.Equal(t, scene.NodeGroup, g.Root.Kind)

	rapid := g.Primitives[0]
	assert.Equal(t, gcode.Rapid, rapid.Mode)
	assert.Equal(t, []int{0, 5}, rapid.Segments())
	assert.Equal(t, 4, rapid.Elements)

	arc := g.Primitives[2]
	assert.Equal(t, gcode.ArcCW, arc.Mode)
	assert.Greater(t, arc.Elements, 2)

	for _, p := range g.Primitives {
		require.NotNil(t, p.Bounds())
		assert.Equal(t, ModeColor(p.Mode), p.Color)
	}
}

func TestStrategiesProduceSameLogicalScene(t *testing.T) {
	tp := parse(t, sample)
	batched, err := NewBuilder(newFakeDevice(), Policy{Strategy: StrategyBatched, InstanceRadius: 0.1}).Build(tp)
	require.NoError(t, err)
	instanced, err := NewBuilder(newFakeDevice(), Policy{Strategy: StrategyInstanced, InstanceRadius: 0.1}).Build(tp)
	require.NoError(t, err)

	require.Len(t, instanced.Primitives, len(batched.Primitives))
	for i := range batched.Primitives {
		b, in := batched.Primitives[i], instanced.Primitives[i]
		assert.Equal(t, scene.Batched, b.Kind)
		assert.Equal(t, scene.Instanced, in.Kind)
		assert.Equal(t, b.Mode, in.Mode)
		assert.Equal(t, b.Segments(), in.Segments())
		// Two line vertices per instance.
		assert.Equal(t, b.Elements, in.Elements*2)

		bb, ib := b.Bounds().Box, in.Bounds().Box
		assert.True(t, ib.Contains(bb.Min))
		assert.True(t, ib.Contains(bb.Max))
		assert.InDelta(t, 0.1, bb.Min[0]-ib.Min[0], 1e-5)
	}
}

func TestBuildFailureReleasesEverything(t *testing.T) {
	dev := newFakeDevice()
	dev.failAfter = 2
	g, err := NewBuilder(dev, DefaultPolicy()).Build(parse(t, sample))
	assert.Nil(t, g)

	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, gcode.ArcCW, berr.Mode)
	assert.Equal(t, 2, dev.released)
}

func TestBuildEmptyToolpath(t *testing.T) {
	g, err := NewBuilder(newFakeDevice(), DefaultPolicy()).Build(parse(t, "(nothing)\n"))
	require.NoError(t, err)
	assert.Empty(t, g.Primitives)
	assert.NotNil(t, g.Root)
}

func TestBuildDrawLimitFollowsSegments(t *testing.T) {
	g, err := NewBuilder(newFakeDevice(), Policy{Strategy: StrategyInstanced}).Build(parse(t, sample))
	require.NoError(t, err)

	linear := g.Primitives[1]
	require.Equal(t, []int{1, 2, 4}, linear.Segments())
	g.SetDrawLimit(3)
	assert.Equal(t, 2, linear.DrawCount())
	assert.Equal(t, 1, g.Primitives[0].DrawCount())
	g.SetDrawLimit(-1)
	assert.Equal(t, 3, linear.DrawCount())
}

func TestInstanceTransform(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl32.Vec3
	}{
		{"along x", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{4, 0, 0}},
		{"down z", mgl32.Vec3{1, 1, 5}, mgl32.Vec3{1, 1, 0}},
		{"against y", mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, -3, 0}},
		{"diagonal", mgl32.Vec3{-1, 2, 3}, mgl32.Vec3{4, -2, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := InstanceTransform(tt.a, tt.b, 0.5)
			bottom := mgl32.TransformCoordinate(mgl32.Vec3{0, -0.5, 0}, m)
			top := mgl32.TransformCoordinate(mgl32.Vec3{0, 0.5, 0}, m)
			assert.InDelta(t, 0, bottom.Sub(tt.a).Len(), 1e-4, "bottom %v", bottom)
			assert.InDelta(t, 0, top.Sub(tt.b).Len(), 1e-4, "top %v", top)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyAuto, StrategyBatched, StrategyInstanced} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("voxels")
	assert.Error(t, err)
}
