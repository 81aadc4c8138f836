package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/camera"
	"github.com/Faultbox/pathscope/internal/engine/scene"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// testCamera sits at the origin looking down -Z.
func testCamera() *camera.State {
	return &camera.State{
		Projection: mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100),
		View:       mgl32.Ident4(),
	}
}

func boxAt(center mgl32.Vec3, half float32) *bounds.Volume {
	h := mgl32.Vec3{half, half, half}
	return bounds.FromBox(bounds.NewBox(center.Sub(h), center.Add(h)))
}

func primitiveWith(v *bounds.Volume) *scene.Primitive {
	p := scene.NewPrimitive(scene.Batched, gcode.Linear, nil, []int{0}, []int{2})
	p.SealBounds(v)
	return p
}

func TestFrustumIntersectsBox(t *testing.T) {
	f := FromMatrix(testCamera().Projection)

	tests := []struct {
		name   string
		center mgl32.Vec3
		want   bool
	}{
		{"in front", mgl32.Vec3{0, 0, -10}, true},
		{"behind", mgl32.Vec3{0, 0, 10}, false},
		{"far left", mgl32.Vec3{-50, 0, -10}, false},
		{"far right", mgl32.Vec3{50, 0, -10}, false},
		{"above", mgl32.Vec3{0, 50, -10}, false},
		{"beyond far plane", mgl32.Vec3{0, 0, -200}, false},
		{"straddling left plane", mgl32.Vec3{-10.5, 0, -10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := boxAt(tt.center, 1)
			assert.Equal(t, tt.want, f.IntersectsBox(v.Box))
			assert.Equal(t, tt.want, Intersects(&f, v))
		})
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	f := FromMatrix(testCamera().ViewProjection())
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Vec3().Len(), 1e-5, "plane %d", i)
	}
}

func TestClassifySphere(t *testing.T) {
	f := FromMatrix(testCamera().Projection)
	assert.Equal(t, Inside, f.ClassifySphere(bounds.Sphere{Center: mgl32.Vec3{0, 0, -10}, Radius: 1}))
	assert.Equal(t, Outside, f.ClassifySphere(bounds.Sphere{Center: mgl32.Vec3{0, 0, 10}, Radius: 1}))
	assert.Equal(t, Intersecting, f.ClassifySphere(bounds.Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}))
}

func TestUpdateUsesCachedVolumes(t *testing.T) {
	inView := primitiveWith(boxAt(mgl32.Vec3{0, 0, -10}, 1))
	behind := primitiveWith(boxAt(mgl32.Vec3{0, 0, 10}, 1))
	g := scene.NewGraph("toolpath", []*scene.Primitive{inView, behind})

	seen := map[*scene.Primitive][]*bounds.Volume{}
	byVolume := map[*bounds.Volume]*scene.Primitive{
		inView.Bounds(): inView,
		behind.Bounds(): behind,
	}
	calls := 0
	c := New()
	c.Intersect = func(f *Frustum, v *bounds.Volume) bool {
		calls++
		p := byVolume[v]
		require.NotNil(t, p, "volume is not a cached primitive volume")
		seen[p] = append(seen[p], v)
		return Intersects(f, v)
	}

	const passes = 5
	for i := 0; i < passes; i++ {
		c.Update(g, testCamera())
	}

	assert.Equal(t, passes*2, calls)
	for _, p := range []*scene.Primitive{inView, behind} {
		require.Len(t, seen[p], passes)
		for _, v := range seen[p] {
			assert.Same(t, p.Bounds(), v)
		}
	}
	assert.True(t, inView.Visible)
	assert.False(t, behind.Visible)
	assert.Equal(t, Stats{Visible: 1, Culled: 1}, c.Stats())
}

func TestUpdateMissingBoundsFailsOpen(t *testing.T) {
	p := scene.NewPrimitive(scene.Batched, gcode.Rapid, nil, nil, nil)
	p.Visible = false
	g := scene.NewGraph("toolpath", []*scene.Primitive{p})

	c := New()
	c.Intersect = func(*Frustum, *bounds.Volume) bool {
		t.Fatal("intersect called without a volume")
		return false
	}
	c.Update(g, testCamera())
	assert.True(t, p.Visible)
	assert.True(t, g.Root.Visible)
	assert.Equal(t, 1, c.Stats().NoBound)
}

func TestUpdateGroupIsOrOfChildren(t *testing.T) {
	hidden1 := scene.NewPrimitiveNode(primitiveWith(boxAt(mgl32.Vec3{0, 0, 10}, 1)))
	hidden2 := scene.NewPrimitiveNode(primitiveWith(boxAt(mgl32.Vec3{80, 0, -10}, 1)))
	shown := scene.NewPrimitiveNode(primitiveWith(boxAt(mgl32.Vec3{0, 0, -5}, 1)))

	allHidden := scene.NewGroup("hidden", hidden1, hidden2)
	mixed := scene.NewGroup("mixed", scene.NewGroup("nested", shown))
	g := &scene.Graph{Root: scene.NewGroup("root", allHidden, mixed)}

	New().Update(g, testCamera())
	assert.False(t, allHidden.Visible)
	assert.True(t, mixed.Visible)
	assert.True(t, g.Root.Visible)
	assert.True(t, shown.Primitive.Visible)
}

func TestUpdateNilInputsNoop(t *testing.T) {
	p := primitiveWith(boxAt(mgl32.Vec3{0, 0, 10}, 1))
	g := scene.NewGraph("toolpath", []*scene.Primitive{p})

	c := New()
	assert.NotPanics(t, func() {
		c.Update(nil, testCamera())
		c.Update(g, nil)
	})
	assert.True(t, p.Visible)
}

func TestUpdateDoesNotMutateBounds(t *testing.T) {
	v := boxAt(mgl32.Vec3{0, 0, -10}, 1)
	snapshot := *v
	p := primitiveWith(v)
	New().Update(scene.NewGraph("toolpath", []*scene.Primitive{p}), testCamera())
	assert.Equal(t, snapshot, *p.Bounds())
}
