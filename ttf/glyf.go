package ttf

import "fmt"

// Decoding of TrueType glyph outlines from the 'glyf' table.
//
// A glyph record starts with a header (contour count and bounding box).
// A non-negative contour count introduces a simple glyph: packed per-point
// flags followed by delta-encoded x and y coordinates. A negative count
// introduces a composite glyph referencing other glyphs with an offset and
// an optional 2×2 transform.

// Simple glyph flags.
const (
	onCurvePoint       = 0x01
	xShortVector       = 0x02
	yShortVector       = 0x04
	repeatFlag         = 0x08
	xIsSameOrPositive  = 0x10
	yIsSameOrPositive  = 0x20
)

// Composite glyph flags.
const (
	arg1And2AreWords    = 0x0001
	argsAreXYValues     = 0x0002
	weHaveAScale        = 0x0008
	moreComponents      = 0x0020
	weHaveAnXAndYScale  = 0x0040
	weHaveATwoByTwo     = 0x0080
)

// glyphPoint is one decoded point of a simple glyph, in font units.
// Variation deltas are added in place before the point stream is fed to
// the outline sink.
type glyphPoint struct {
	x, y    float32
	onCurve bool
}

// GlyphOutline emits the outline of a glyph through builder, at the font's
// currently active variation coordinates (the default instance unless
// SetVariation/SetVariations was called). It returns the glyph's bounding
// box in font units.
//
// A glyph without an outline (e.g. a space) emits no path commands and
// returns an empty Rect with a nil error. Structurally broken glyph data
// fails with ErrMalformedGlyph; other glyphs of the font stay decodable.
func (f *Font) GlyphOutline(g GlyphIndex, builder OutlineBuilder) (Rect, error) {
	return f.GlyphOutlineAt(g, builder, f.coords)
}

// GlyphOutlineAt is GlyphOutline with an explicit set of normalized
// variation coordinates, leaving the font's active instance untouched.
// coords must be empty or match the font's axis count.
func (f *Font) GlyphOutlineAt(g GlyphIndex, builder OutlineBuilder, coords []NormCoord) (Rect, error) {
	if int(g) >= int(f.NumGlyphs()) {
		return Rect{}, fmt.Errorf("%w: glyph %d of %d", ErrOutOfRange, g, f.NumGlyphs())
	}
	if len(coords) != 0 && f.Fvar != nil && len(coords) != len(f.Fvar.axes) {
		return Rect{}, fmt.Errorf("%w: %d coordinates for %d axes", ErrOutOfRange, len(coords), len(f.Fvar.axes))
	}
	if allDefault(coords) {
		coords = nil
	}
	sink := newOutlineSink(builder)
	if f.Loca != nil && len(f.glyf) > 0 {
		return f.glyfOutline(g, sink, coords)
	}
	if f.CFF != nil {
		return f.CFF.outline(g, sink)
	}
	return Rect{}, malformedGlyph(g, "font has no outline data")
}

// GlyphBoundingBox returns the bounding box of a glyph at the currently
// active variation coordinates, without emitting any path commands.
func (f *Font) GlyphBoundingBox(g GlyphIndex) (Rect, error) {
	return f.GlyphOutline(g, nullBuilder{})
}

// nullBuilder discards all path commands. Used for bounding-box queries.
type nullBuilder struct{}

func (nullBuilder) MoveTo(x, y float32)                        {}
func (nullBuilder) LineTo(x, y float32)                        {}
func (nullBuilder) QuadTo(cx, cy, x, y float32)                {}
func (nullBuilder) CurveTo(cx1, cy1, cx2, cy2, x, y float32)   {}
func (nullBuilder) ClosePath()                                 {}

func allDefault(coords []NormCoord) bool {
	for _, c := range coords {
		if c != 0 {
			return false
		}
	}
	return true
}

// glyfOutline decodes glyph g and reports its bounding box. For an unvaried
// top-level simple glyph the box stored in the glyph header is authoritative
// and returned as is. Composite and varied outlines report the box actually
// traced by the emitted path, since stored boxes go stale under component
// transforms and deltas.
func (f *Font) glyfOutline(g GlyphIndex, sink *outlineSink, coords []NormCoord) (Rect, error) {
	stored, composite, err := f.outlineGlyphRec(g, sink, coords, 0)
	if err != nil {
		return Rect{}, err
	}
	if !composite && coords == nil {
		return stored, nil
	}
	if bbox, ok := sink.bbox.rect(); ok {
		return bbox, nil
	}
	return Rect{}, nil
}

// outlineGlyphRec decodes one glyph record, recursing into components.
// It reports the bounding box stored in the glyph header and whether the
// glyph was composite at any level.
func (f *Font) outlineGlyphRec(g GlyphIndex, sink *outlineSink, coords []NormCoord, depth int) (Rect, bool, error) {
	if depth > MaxComponentDepth {
		return Rect{}, false, malformedGlyph(g, "component nesting exceeds depth %d", MaxComponentDepth)
	}
	offset, length, err := f.Loca.glyphRange(g)
	if err != nil {
		return Rect{}, false, malformedGlyph(g, "no location entry")
	}
	if length == 0 {
		return Rect{}, false, nil // no outline, valid for e.g. space glyphs
	}
	data, err := f.glyf.view(int(offset), int(length))
	if err != nil {
		return Rect{}, false, malformedGlyph(g, "glyph data [%d:%d] outside glyf table", offset, offset+length)
	}
	s := stream(data)
	numContours := s.readI16()
	bbox := Rect{
		XMin: s.readI16(), YMin: s.readI16(),
		XMax: s.readI16(), YMax: s.readI16(),
	}
	if s.err != nil {
		return Rect{}, false, malformedGlyph(g, "glyph header truncated")
	}
	switch {
	case numContours > 0:
		if err := f.outlineSimple(g, s, int(numContours), sink, coords); err != nil {
			return Rect{}, false, err
		}
		return bbox, false, nil
	case numContours < 0:
		if err := f.outlineComposite(g, s, sink, coords, depth); err != nil {
			return Rect{}, false, err
		}
		return bbox, true, nil
	}
	return bbox, false, nil // zero contours with a header, treated as empty
}

// outlineSimple decodes a simple glyph's point stream and feeds it through
// the sink, applying glyph variation deltas first when coords are active.
func (f *Font) outlineSimple(g GlyphIndex, s *byteStream, numContours int, sink *outlineSink, coords []NormCoord) error {
	if numContours > MaxContourCount {
		return malformedGlyph(g, "%d contours", numContours)
	}
	endPts := make([]uint16, numContours)
	prev := -1
	for i := range endPts {
		e := s.readU16()
		if int(e) < prev {
			return malformedGlyph(g, "contour end points not ascending")
		}
		prev = int(e)
		endPts[i] = e
	}
	numPoints := prev + 1
	if s.err != nil || numPoints <= 0 || numPoints > MaxPointCount {
		return malformedGlyph(g, "contour end point array")
	}
	instructionLen := s.readU16()
	s.skip(int(instructionLen))

	// Flags, with run-length repeats.
	flags := make([]uint8, numPoints)
	for i := 0; i < numPoints; {
		flag := s.readU8()
		flags[i] = flag
		i++
		if flag&repeatFlag != 0 {
			repeats := int(s.readU8())
			for r := 0; r < repeats && i < numPoints; r++ {
				flags[i] = flag
				i++
			}
		}
	}
	points := make([]glyphPoint, numPoints)

	// Coordinates are deltas against the previous point; the short/same
	// flag bits select the encoding per point.
	var x int32
	for i, flag := range flags {
		switch {
		case flag&xShortVector != 0:
			d := int32(s.readU8())
			if flag&xIsSameOrPositive == 0 {
				d = -d
			}
			x += d
		case flag&xIsSameOrPositive == 0:
			x += int32(s.readI16())
		}
		points[i].x = float32(x)
		points[i].onCurve = flag&onCurvePoint != 0
	}
	var y int32
	for i, flag := range flags {
		switch {
		case flag&yShortVector != 0:
			d := int32(s.readU8())
			if flag&yIsSameOrPositive == 0 {
				d = -d
			}
			y += d
		case flag&yIsSameOrPositive == 0:
			y += int32(s.readI16())
		}
		points[i].y = float32(y)
	}
	if s.err != nil {
		return malformedGlyph(g, "point coordinate data truncated")
	}
	if coords != nil && f.gvar != nil {
		f.gvar.applyToPoints(g, coords, points, endPts)
	}
	contourStart := 0
	for _, e := range endPts {
		end := int(e)
		for i := contourStart; i <= end; i++ {
			sink.pushPoint(point{points[i].x, points[i].y}, points[i].onCurve, i == end)
		}
		contourStart = end + 1
	}
	return nil
}

// outlineComposite decodes a composite glyph: a list of component glyph
// references, each with an offset and an optional scale or 2×2 transform.
// Components are emitted recursively with combined transforms. Variation
// deltas of a composite glyph move the component offsets, one delta per
// component.
func (f *Font) outlineComposite(g GlyphIndex, s *byteStream, sink *outlineSink, coords []NormCoord, depth int) error {
	var offsets []point
	if coords != nil && f.gvar != nil {
		if n := countComponents(stream(s.tail())); n > 0 {
			offsets = f.gvar.componentOffsets(g, coords, n)
		}
	}
	for i := 0; ; i++ {
		flags := s.readU16()
		component := GlyphIndex(s.readU16())
		if s.err != nil {
			return malformedGlyph(g, "component record truncated")
		}
		var dx, dy float32
		if flags&arg1And2AreWords != 0 {
			a1, a2 := s.readI16(), s.readI16()
			if flags&argsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		} else {
			a1, a2 := s.readI8(), s.readI8()
			if flags&argsAreXYValues != 0 {
				dx, dy = float32(a1), float32(a2)
			}
		}
		// Anchor-point matching (argsAreXYValues unset) is rare and needs
		// the already-emitted point list; such components keep a zero
		// offset, like most lightweight readers.
		xf := identityTransform()
		xf.e, xf.f = dx, dy
		switch {
		case flags&weHaveAScale != 0:
			sc := s.readF2Dot14().Float()
			xf.a, xf.d = sc, sc
		case flags&weHaveAnXAndYScale != 0:
			xf.a = s.readF2Dot14().Float()
			xf.d = s.readF2Dot14().Float()
		case flags&weHaveATwoByTwo != 0:
			xf.a = s.readF2Dot14().Float()
			xf.b = s.readF2Dot14().Float()
			xf.c = s.readF2Dot14().Float()
			xf.d = s.readF2Dot14().Float()
		}
		if s.err != nil {
			return malformedGlyph(g, "component transform truncated")
		}
		if i < len(offsets) {
			xf.e += offsets[i].x
			xf.f += offsets[i].y
		}
		if int(component) >= int(f.NumGlyphs()) {
			return malformedGlyph(g, "component references glyph %d of %d", component, f.NumGlyphs())
		}
		outer := sink.xform
		sink.xform = outer.combine(xf)
		_, _, err := f.outlineGlyphRec(component, sink, coords, depth+1)
		sink.xform = outer
		if err != nil {
			return err
		}
		if flags&moreComponents == 0 {
			break
		}
	}
	return nil
}

// countComponents scans a composite glyph's component records without
// decoding them, to size the variation delta request.
func countComponents(s *byteStream) int {
	n := 0
	for {
		flags := s.readU16()
		s.skip(2) // component glyph index
		if flags&arg1And2AreWords != 0 {
			s.skip(4)
		} else {
			s.skip(2)
		}
		switch {
		case flags&weHaveAScale != 0:
			s.skip(2)
		case flags&weHaveAnXAndYScale != 0:
			s.skip(4)
		case flags&weHaveATwoByTwo != 0:
			s.skip(8)
		}
		if s.err != nil {
			return n
		}
		n++
		if flags&moreComponents == 0 {
			return n
		}
	}
}

// GlyphAdvance returns the horizontal advance width of a glyph in font
// units, including any HVAR variation adjustment for the active instance.
func (f *Font) GlyphAdvance(g GlyphIndex) (uint16, error) {
	if int(g) >= int(f.NumGlyphs()) {
		return 0, fmt.Errorf("%w: glyph %d of %d", ErrOutOfRange, g, f.NumGlyphs())
	}
	if f.HMtx == nil {
		return 0, malformed("font has no horizontal metrics")
	}
	advance, _, ok := f.HMtx.HMetrics(g)
	if !ok {
		return 0, malformedGlyph(g, "no metrics record")
	}
	if f.hvar != nil && !allDefault(f.coords) {
		delta := f.hvar.advanceDelta(g, f.coords)
		adjusted := float64(advance) + delta
		if adjusted < 0 {
			return 0, nil
		}
		return uint16(adjusted + 0.5), nil
	}
	return advance, nil
}

// GlyphSideBearing returns the left side bearing of a glyph in font units,
// including any HVAR variation adjustment for the active instance.
func (f *Font) GlyphSideBearing(g GlyphIndex) (int16, error) {
	if int(g) >= int(f.NumGlyphs()) {
		return 0, fmt.Errorf("%w: glyph %d of %d", ErrOutOfRange, g, f.NumGlyphs())
	}
	if f.HMtx == nil {
		return 0, malformed("font has no horizontal metrics")
	}
	_, lsb, ok := f.HMtx.HMetrics(g)
	if !ok {
		return 0, malformedGlyph(g, "no metrics record")
	}
	if f.hvar != nil && !allDefault(f.coords) {
		delta := f.hvar.sideBearingDelta(g, f.coords)
		return int16(float64(lsb) + delta + 0.5), nil
	}
	return lsb, nil
}
