package gcode

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EndToEnd(t *testing.T) {
	tp, err := Parse("G0 X10 Y10\nG1 X20 Y20\nG1 X30 Y30")
	require.NoError(t, err)

	require.Len(t, tp.Segments, 3)
	modes := []Mode{tp.Segments[0].Mode, tp.Segments[1].Mode, tp.Segments[2].Mode}
	assert.Equal(t, []Mode{Rapid, Linear, Linear}, modes)
	assert.Equal(t, map[string]int{"RAPID": 1, "LINEAR": 2, "ARC_CW": 0, "ARC_CCW": 0}, tp.Counts.Map())
	assert.Equal(t, []int{0, 1, 2}, tp.LineMap)
	assert.Equal(t, 3, tp.LineCount)

	assert.Equal(t, mgl64.Vec3{0, 0, 0}, tp.Segments[0].Start)
	assert.Equal(t, mgl64.Vec3{10, 10, 0}, tp.Segments[0].End)
	assert.Equal(t, tp.Segments[0].End, tp.Segments[1].Start)
}

func TestParse_Deterministic(t *testing.T) {
	src := "N10 G0 X1 Y2 Z3\nG1 X4 F300 S12000\n(comment)\nG2 X6 Y2 I1 J-1\nG1 X8 ; trailing\nG3 X0 Y0 R5\n"
	a, err := Parse(src)
	require.NoError(t, err)
	b, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_ModalCarryOver(t *testing.T) {
	tp, err := Parse("G1 X1 F100\nX2\nY3\nG0 Z5\nX9")
	require.NoError(t, err)

	want := []Mode{Linear, Linear, Linear, Rapid, Rapid}
	require.Len(t, tp.Segments, len(want))
	for i, m := range want {
		assert.Equal(t, m, tp.Segments[i].Mode, "segment %d", i)
	}

	// Feed persists until overwritten.
	for i := 0; i < 5; i++ {
		assert.True(t, tp.Segments[i].HasFeed)
		assert.Equal(t, 100.0, tp.Segments[i].Feed)
	}
	assert.False(t, tp.Segments[0].HasSpindle)
}

func TestParse_DefaultModeIsRapid(t *testing.T) {
	tp, err := Parse("X5 Y5")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 1)
	assert.Equal(t, Rapid, tp.Segments[0].Mode)
}

func TestParse_ArcMissingParams(t *testing.T) {
	_, err := Parse("G0 X0 Y0\nG1 X5\nG2 X10 Y0\nG1 X20")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.True(t, errors.Is(err, ErrArcMissingParams))
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_ArcModalWithoutParams(t *testing.T) {
	// Modal arc carry-over still needs arc parameters on the new line.
	_, err := Parse("G2 X10 Y0 I5 J0\nX20 Y0")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestParse_ArcForms(t *testing.T) {
	tp, err := Parse("G2 X10 Y0 I5 J0\nG3 X0 Y0 R5\nG2 X10 I5")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 3)

	a := tp.Segments[0].Arc
	require.NotNil(t, a)
	assert.True(t, a.HasOffset)
	assert.False(t, a.HasRadius)
	assert.Equal(t, [2]float64{5, 0}, a.Offset)

	r := tp.Segments[1].Arc
	require.NotNil(t, r)
	assert.True(t, r.HasRadius)
	assert.False(t, r.HasOffset)
	assert.Equal(t, 5.0, r.Radius)

	// A single offset is enough; the other defaults to zero.
	assert.Equal(t, [2]float64{5, 0}, tp.Segments[2].Arc.Offset)
	assert.Equal(t, 2, tp.Counts.Get(ArcCW))
	assert.Equal(t, 1, tp.Counts.Get(ArcCCW))
}

func TestParse_ArcSingleOffset(t *testing.T) {
	tp, err := Parse("G0 X0 Y0\nG3 X0 Y10 J5\nG18\nG2 X10 Z0 K5")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 3)

	j := tp.Segments[1].Arc
	require.NotNil(t, j)
	assert.True(t, j.HasOffset)
	assert.Equal(t, [2]float64{0, 5}, j.Offset)

	// In the XZ plane K is the second offset.
	k := tp.Segments[2].Arc
	require.NotNil(t, k)
	assert.Equal(t, PlaneXZ, k.Plane)
	assert.True(t, k.HasOffset)
	assert.Equal(t, [2]float64{0, 5}, k.Offset)

	// An offset outside the arc plane does not count.
	_, err = Parse("G2 X10 Y0 K5")
	assert.ErrorIs(t, err, ErrArcMissingParams)
}

func TestParse_DegenerateRadiusArc(t *testing.T) {
	_, err := Parse("G2 R5")
	assert.ErrorIs(t, err, ErrDegenerateArc)
}

func TestParse_FullCircleFromOffsets(t *testing.T) {
	tp, err := Parse("G0 X5 Y0\nG2 I-5 J0")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 2)
	assert.Equal(t, tp.Segments[1].Start, tp.Segments[1].End)
}

func TestParse_MultipleModesOnLine(t *testing.T) {
	tp, err := Parse("G0 X1 Y1 G1 X5 Y5")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 2)
	assert.Equal(t, Rapid, tp.Segments[0].Mode)
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, tp.Segments[0].End)
	assert.Equal(t, Linear, tp.Segments[1].Mode)
	assert.Equal(t, mgl64.Vec3{5, 5, 0}, tp.Segments[1].End)
	assert.Equal(t, []int{0, 0}, tp.LineMap)

	// Mode without axis words only switches the modal mode.
	tp, err = Parse("G0 G1 X3")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 1)
	assert.Equal(t, Linear, tp.Segments[0].Mode)
}

func TestParse_LineMapSkipsNonMotion(t *testing.T) {
	src := "%\n(header)\n\nG21 G90\nM3 S1000\nG0 X1\n\nG1 X2 Y2\n%"
	tp, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 7}, tp.LineMap)
	assert.Equal(t, 9, tp.LineCount)
	assert.True(t, tp.Segments[0].HasSpindle)
	assert.Equal(t, 1000.0, tp.Segments[0].Spindle)

	first, end := tp.SegmentsForLine(7)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, end)
	first, end = tp.SegmentsForLine(4)
	assert.Equal(t, first, end)
	assert.Equal(t, 7, tp.LineOf(1))
	assert.Equal(t, -1, tp.LineOf(2))
}

func TestParse_CountsSumToTotal(t *testing.T) {
	sources := []string{
		"",
		"G0 X1",
		"G0 X1\nG1 Y2\nG2 X3 Y2 I1 J0\nG3 X1 Y2 R1\nG1 X0",
		"G1 X1 G0 Y1 G1 Z1\n; comment\nG2 X2 I1",
	}
	for _, src := range sources {
		tp, err := Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, len(tp.Segments), tp.Counts.Total(), src)
		assert.Equal(t, len(tp.Segments), len(tp.LineMap), src)
	}
}

func TestParse_IncrementalAndUnits(t *testing.T) {
	tp, err := Parse("G20 G91\nG1 X1 Y1\nX1\nG90 X0")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 3)
	assert.Equal(t, Inches, tp.Units)
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, tp.Segments[0].End)
	assert.Equal(t, mgl64.Vec3{2, 1, 0}, tp.Segments[1].End)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, tp.Segments[2].End)
}

func TestParse_CompactWordsAndCase(t *testing.T) {
	tp, err := Parse("n5 g1x1.5y-2z+0.25f120\r\n")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 1)
	s := tp.Segments[0]
	assert.Equal(t, mgl64.Vec3{1.5, -2, 0.25}, s.End)
	assert.Equal(t, 120.0, s.Feed)
}

func TestParse_BadNumber(t *testing.T) {
	_, err := Parse("G1 X1\nG1 X1-2")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.ErrorIs(t, err, ErrBadNumber)

	// Unrelated words with odd values are tolerated.
	_, err = Parse("M6 T#1\nG1 X1")
	assert.NoError(t, err)
}

func TestParse_AuxAxes(t *testing.T) {
	tp, err := Parse("G1 X1 A90\nG1 X2\nG1 B45")
	require.NoError(t, err)
	require.Len(t, tp.Segments, 3)
	assert.Equal(t, map[byte]float64{'A': 90}, tp.Segments[0].Aux)
	assert.Equal(t, map[byte]float64{'A': 90}, tp.Segments[1].Aux)
	assert.Equal(t, map[byte]float64{'A': 90, 'B': 45}, tp.Segments[2].Aux)
	assert.Equal(t, tp.Segments[1].End, tp.Segments[2].End)
}

func TestParse_Bounds(t *testing.T) {
	tp, err := Parse("G0 X-5 Y2\nG1 X10 Y-3 Z-1")
	require.NoError(t, err)
	assert.True(t, tp.Bounds.Valid)
	assert.Equal(t, mgl64.Vec3{-5, -3, -1}, tp.Bounds.Min)
	assert.Equal(t, mgl64.Vec3{10, 2, 0}, tp.Bounds.Max)
}

func TestModeStrings(t *testing.T) {
	tests := []struct {
		mode     Mode
		name     string
		mnemonic string
		arc      bool
	}{
		{Rapid, "RAPID", "G0", false},
		{Linear, "LINEAR", "G1", false},
		{ArcCW, "ARC_CW", "G2", true},
		{ArcCCW, "ARC_CCW", "G3", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.mode.String())
		assert.Equal(t, tt.mnemonic, tt.mode.Mnemonic())
		assert.Equal(t, tt.arc, tt.mode.IsArc())
	}
}
