package ttf

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestOutlineSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(metricFont(), 0))
	require.NoError(t, err)
	rec := &pathRecorder{}
	bbox, err := otf.GlyphOutline(1, rec)
	require.NoError(t, err)
	require.Equal(t, "M 50 0 L 50 750 L 450 750 L 450 0 L 50 0 Z", rec.String())
	require.Equal(t, Rect{XMin: 50, YMin: 0, XMax: 450, YMax: 750}, bbox)
}

func TestOutlineEmptyGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(metricFont(), 0))
	require.NoError(t, err)
	rec := &pathRecorder{}
	bbox, err := otf.GlyphOutline(0, rec)
	require.NoError(t, err)
	require.Empty(t, rec.String(), "empty glyph must not emit path commands")
	require.True(t, bbox.IsEmpty())
}

func TestOutlineGlyphIndexOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(metricFont(), 0))
	require.NoError(t, err)
	_, err = otf.GlyphOutline(2, &pathRecorder{})
	require.True(t, errors.Is(err, ErrOutOfRange), "expected ErrOutOfRange, got %v", err)
}

func TestOutlineBrokenGlyphIsLocal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Glyph 0 claims one contour but carries no point data; glyph 1 stays
	// decodable.
	broken := make([]byte, 12)
	putI16(broken, 0, 1)
	square := squareGlyph()
	glyf := append(append([]byte{}, broken...), square...)
	if len(glyf)%2 != 0 {
		glyf = append(glyf, 0)
	}
	tables := metricFont()
	tables["glyf"] = glyf
	tables["loca"] = shortLoca(0, 12, uint16(12+len(square)+len(square)%2))
	otf, err := Parse(buildSFNT(tables, 0))
	require.NoError(t, err)

	_, err = otf.GlyphOutline(0, &pathRecorder{})
	require.True(t, errors.Is(err, ErrMalformedGlyph), "expected ErrMalformedGlyph, got %v", err)

	rec := &pathRecorder{}
	_, err = otf.GlyphOutline(1, rec)
	require.NoError(t, err, "other glyphs must stay decodable")
	require.Equal(t, "M 50 0 L 50 750 L 450 750 L 450 0 L 50 0 Z", rec.String())
}

// compositeFont builds a three-glyph font: empty glyph 0, the square as
// glyph 1, and glyph 2 referencing the square with an offset.
func compositeFont(componentOf2 uint16, dx, dy int16) map[string][]byte {
	square := squareGlyph()
	if len(square)%2 != 0 {
		square = append(square, 0)
	}
	comp := make([]byte, 18)
	putI16(comp, 0, -1)
	putI16(comp, 2, 50+dx)
	putI16(comp, 4, 0+dy)
	putI16(comp, 6, 450+dx)
	putI16(comp, 8, 750+dy)
	putU16(comp, 10, arg1And2AreWords|argsAreXYValues)
	putU16(comp, 12, componentOf2)
	putI16(comp, 14, dx)
	putI16(comp, 16, dy)
	hmtx := make([]byte, 12)
	putU16(hmtx, 0, 500)
	putU16(hmtx, 4, 540)
	putU16(hmtx, 8, 540)
	glyf := append(append([]byte{}, square...), comp...)
	return map[string][]byte{
		"head": headTable(1000, 0),
		"hhea": hheaTable(800, -200, 90, 3),
		"maxp": maxpTable(3),
		"hmtx": hmtx,
		"loca": shortLoca(0, 0, uint16(len(square)), uint16(len(square)+len(comp))),
		"glyf": glyf,
	}
}

func TestOutlineComposite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(compositeFont(1, 10, 20), 0))
	require.NoError(t, err)
	rec := &pathRecorder{}
	bbox, err := otf.GlyphOutline(2, rec)
	require.NoError(t, err)
	require.Equal(t, "M 60 20 L 60 770 L 460 770 L 460 20 L 60 20 Z", rec.String())
	require.Equal(t, Rect{XMin: 60, YMin: 20, XMax: 460, YMax: 770}, bbox,
		"composite bounding box reflects the emitted path, not the stored header")
}

func TestOutlineCompositeCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Glyph 2 references itself; bounded recursion must fail the call
	// instead of overflowing.
	otf, err := Parse(buildSFNT(compositeFont(2, 0, 0), 0))
	require.NoError(t, err)
	_, err = otf.GlyphOutline(2, &pathRecorder{})
	require.True(t, errors.Is(err, ErrMalformedGlyph), "expected ErrMalformedGlyph, got %v", err)
}

// --- Implicit on-curve midpoints -------------------------------------------

func TestSinkImplicitMidpoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	rec := &pathRecorder{}
	sink := newOutlineSink(rec)
	sink.pushPoint(point{0, 0}, true, false)
	sink.pushPoint(point{100, 100}, false, false)
	sink.pushPoint(point{200, -100}, false, true)
	// Two consecutive off-curve points imply an on-curve point at their
	// midpoint; the trailing off-curve closes back to the start.
	require.Equal(t, "M 0 0 Q 100 100 150 0 Q 200 -100 0 0 Z", rec.String())
}

func TestSinkContourStartsOffCurve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	rec := &pathRecorder{}
	sink := newOutlineSink(rec)
	sink.pushPoint(point{100, 0}, false, false)
	sink.pushPoint(point{200, 100}, true, false)
	sink.pushPoint(point{0, 100}, false, true)
	// The contour start is the first on-curve point; the leading off-curve
	// point becomes the closing control point.
	require.Equal(t, "M 200 100 Q 0 100 50 50 Q 100 0 200 100 Z", rec.String())
}

func TestSinkAllOffCurve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// A contour of only off-curve points starts at the midpoint of the
	// first two.
	rec := &pathRecorder{}
	sink := newOutlineSink(rec)
	sink.pushPoint(point{0, 0}, false, false)
	sink.pushPoint(point{100, 0}, false, false)
	sink.pushPoint(point{100, 100}, false, false)
	sink.pushPoint(point{0, 100}, false, true)
	require.Equal(t,
		"M 50 0 Q 100 0 100 50 Q 100 100 50 100 Q 0 100 0 50 Q 0 0 50 0 Z",
		rec.String())
}
