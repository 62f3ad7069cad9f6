package ttf

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestPackedPoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Count 0 means "all points".
	s := stream([]byte{0x00})
	points, all := readPackedPoints(s, 8)
	require.True(t, all)
	require.Nil(t, points)
	require.NoError(t, s.err)

	// Three points as byte deltas: 2, +3, +1.
	s = stream([]byte{0x03, 0x02, 2, 3, 1})
	points, all = readPackedPoints(s, 8)
	require.False(t, all)
	require.Equal(t, []uint16{2, 5, 6}, points)

	// Word-sized run.
	s = stream([]byte{0x02, 0x81, 0x01, 0x00, 0x02, 0x00})
	points, _ = readPackedPoints(s, 600)
	require.Equal(t, []uint16{256, 768}, points)

	// More points than the glyph has.
	s = stream([]byte{0x05, 0x04, 1, 1, 1, 1, 1})
	_, _ = readPackedPoints(s, 3)
	require.Error(t, s.err)
}

func TestPackedDeltas(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Mixed runs: two bytes, three zeros, one word.
	s := stream([]byte{
		0x01, 0x0a, 0xf6, // two int8 deltas: 10, -10
		0x82,             // three zeros
		0x40, 0x01, 0x2c, // one int16 delta: 300
	})
	deltas := readPackedDeltas(s, 6)
	require.NoError(t, s.err)
	require.Equal(t, []int16{10, -10, 0, 0, 0, 300}, deltas)

	// Truncated stream fails.
	s = stream([]byte{0x03, 0x01})
	require.Nil(t, readPackedDeltas(s, 4))
}

func TestTupleScalar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	one := NormCoord(16384)
	half := NormCoord(8192)
	// Peak at +1, no intermediate range: proportional below the peak.
	require.Equal(t, 1.0, tupleScalar([]NormCoord{one}, []NormCoord{one}, nil, nil))
	require.Equal(t, 0.5, tupleScalar([]NormCoord{half}, []NormCoord{one}, nil, nil))
	require.Equal(t, 0.0, tupleScalar([]NormCoord{0}, []NormCoord{one}, nil, nil))
	require.Equal(t, 0.0, tupleScalar([]NormCoord{-half}, []NormCoord{one}, nil, nil))
	// Zero peak axes never contribute.
	require.Equal(t, 1.0, tupleScalar([]NormCoord{half}, []NormCoord{0}, nil, nil))
	// Intermediate region scales up and down the tent.
	require.Equal(t, 0.5,
		tupleScalar([]NormCoord{NormCoord(12288)}, []NormCoord{half},
			[]NormCoord{0}, []NormCoord{one}))
	require.Equal(t, 0.0,
		tupleScalar([]NormCoord{-half}, []NormCoord{half},
			[]NormCoord{0}, []NormCoord{one}))
}

func TestInferAxis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Point between two referenced neighbors moves proportionally.
	require.Equal(t, float32(15), inferAxis(50, 0, 100, 10, 20))
	// Points outside the neighbor span ride along with the nearer edge.
	require.Equal(t, float32(10), inferAxis(-5, 0, 100, 10, 20))
	require.Equal(t, float32(20), inferAxis(120, 0, 100, 10, 20))
	// Equal neighbor coordinates with differing deltas pin the point.
	require.Equal(t, float32(0), inferAxis(50, 80, 80, 10, 20))
	require.Equal(t, float32(7), inferAxis(50, 80, 80, 7, 7))
}

// gvarSquareShift builds a gvar table for the metricFont layout: glyph 1
// (the square, 4 points) gains an x delta of +10 on every point at
// wght = maximum.
func gvarSquareShift() []byte {
	serialized := []byte{
		0x00,                                           // point count 0: all points
		0x07, 10, 10, 10, 10, 0, 0, 0, 0,               // x deltas, 8 points incl. phantoms
		0x87,                                           // y deltas: 8 zeros
	}
	if len(serialized)%2 != 0 {
		serialized = append(serialized, 0)
	}
	// Per-glyph variation data: header, one tuple header with embedded
	// peak at +1, then the serialized points and deltas.
	glyphData := make([]byte, 10, 10+len(serialized))
	putU16(glyphData, 0, 1) // one tuple, no shared points
	putU16(glyphData, 2, 10)
	putU16(glyphData, 4, uint16(len(serialized)))
	putU16(glyphData, 6, embeddedPeakTuple)
	putI16(glyphData, 8, 16384)
	glyphData = append(glyphData, serialized...)
	if len(glyphData)%2 != 0 {
		glyphData = append(glyphData, 0)
	}

	b := make([]byte, 20+3*2)
	putU16(b, 0, 1)                   // major version
	putU16(b, 4, 1)                   // axis count
	putU32(b, 8, 20)                  // shared tuples offset (none)
	putU16(b, 12, 2)                  // glyph count
	putU16(b, 14, 0)                  // short offsets
	putU32(b, 16, uint32(20+3*2))     // data array offset
	putU16(b, 20, 0)                  // glyph 0: empty
	putU16(b, 22, 0)                  // glyph 1 data starts at 0
	putU16(b, 24, uint16(len(glyphData)/2))
	return append(b, glyphData...)
}

func TestGvarShiftsOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	tables := variableFont()
	tables["gvar"] = gvarSquareShift()
	otf, err := Parse(buildSFNT(tables, 0))
	require.NoError(t, err)

	// Default instance: unshifted square with the stored bounding box.
	rec := &pathRecorder{}
	bbox, err := otf.GlyphOutline(1, rec)
	require.NoError(t, err)
	require.Equal(t, "M 50 0 L 50 750 L 450 750 L 450 0 L 50 0 Z", rec.String())
	require.Equal(t, Rect{XMin: 50, YMin: 0, XMax: 450, YMax: 750}, bbox)

	// At wght maximum the tuple applies fully: x shifted by +10.
	require.NoError(t, otf.SetVariation(T("wght"), 900))
	rec = &pathRecorder{}
	bbox, err = otf.GlyphOutline(1, rec)
	require.NoError(t, err)
	require.Equal(t, "M 60 0 L 60 750 L 460 750 L 460 0 L 60 0 Z", rec.String())
	require.Equal(t, Rect{XMin: 60, YMin: 0, XMax: 460, YMax: 750}, bbox,
		"varied bounding box comes from the emitted path")

	// Halfway up the axis the delta scales to +5.
	require.NoError(t, otf.SetVariation(T("wght"), 650))
	rec = &pathRecorder{}
	_, err = otf.GlyphOutline(1, rec)
	require.NoError(t, err)
	require.Equal(t, "M 55 0 L 55 750 L 455 750 L 455 0 L 55 0 Z", rec.String())

	// Explicit coordinates do not disturb the active instance.
	rec = &pathRecorder{}
	_, err = otf.GlyphOutlineAt(1, rec, []NormCoord{0})
	require.NoError(t, err)
	require.Equal(t, "M 50 0 L 50 750 L 450 750 L 450 0 L 50 0 Z", rec.String())
	require.Equal(t, NormCoord(8192), otf.Coords()[0])
}

func TestGvarSubsetTupleIUP(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// The tuple references the two diagonal corners 0 and 2 with x deltas
	// +20 and +40. Interpolation gives the bottom-left neighbors the
	// nearer edge's delta: point 1 shares x=50 with point 0 and follows
	// it, point 3 shares x=450 with point 2 and follows that.
	serialized := []byte{
		0x02, 0x01, 0, 2, // points 0 and 2
		0x01, 20, 40, // x deltas
		0x81, // y deltas: two zeros
	}
	glyphData := make([]byte, 10, 10+len(serialized))
	putU16(glyphData, 0, 1)
	putU16(glyphData, 2, 10)
	putU16(glyphData, 4, uint16(len(serialized)))
	putU16(glyphData, 6, embeddedPeakTuple|privatePointNumbers)
	putI16(glyphData, 8, 16384)
	glyphData = append(glyphData, serialized...)
	if len(glyphData)%2 != 0 {
		glyphData = append(glyphData, 0)
	}
	b := make([]byte, 20+3*2)
	putU16(b, 0, 1)
	putU16(b, 4, 1)
	putU32(b, 8, 20)
	putU16(b, 12, 2)
	putU16(b, 14, 0)
	putU32(b, 16, uint32(20+3*2))
	putU16(b, 20, 0)
	putU16(b, 22, 0)
	putU16(b, 24, uint16(len(glyphData)/2))

	tables := variableFont()
	tables["gvar"] = append(b, glyphData...)
	otf, err := Parse(buildSFNT(tables, 0))
	require.NoError(t, err)
	require.NoError(t, otf.SetVariation(T("wght"), 900))
	rec := &pathRecorder{}
	_, err = otf.GlyphOutline(1, rec)
	require.NoError(t, err)
	require.Equal(t, "M 70 0 L 70 750 L 490 750 L 490 0 L 70 0 Z", rec.String())
}
