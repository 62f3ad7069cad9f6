package ttf

import "math"

// OutlineBuilder receives a glyph outline as a sequence of path commands.
// The engine calls the methods in drawing order: each contour starts with
// MoveTo and ends with ClosePath. Coordinates are in font units, y up.
//
// TrueType outlines produce quadratic segments (QuadTo), CFF outlines cubic
// ones (CurveTo); a builder should handle both, as a font may carry either
// flavour.
type OutlineBuilder interface {
	MoveTo(x, y float32)
	LineTo(x, y float32)
	QuadTo(cx, cy, x, y float32)
	CurveTo(cx1, cy1, cx2, cy2, x, y float32)
	ClosePath()
}

// Rect is a glyph bounding box in font units.
type Rect struct {
	XMin, YMin int16
	XMax, YMax int16
}

// IsEmpty reports whether the box has zero area.
func (r Rect) IsEmpty() bool {
	return r.XMin >= r.XMax || r.YMin >= r.YMax
}

// --- Transforms ------------------------------------------------------------

// transform is an affine 2×2 matrix with translation, as used by composite
// glyph components:
//
//	| a b |       | e |
//	| c d |   +   | f |
type transform struct {
	a, b, c, d, e, f float32
}

func identityTransform() transform {
	return transform{a: 1, d: 1}
}

func (t transform) isIdentity() bool {
	return t == identityTransform()
}

func (t transform) apply(x, y float32) (float32, float32) {
	return t.a*x + t.c*y + t.e, t.b*x + t.d*y + t.f
}

// combine returns the transform equivalent to applying inner first, then t.
func (t transform) combine(inner transform) transform {
	return transform{
		a: t.a*inner.a + t.c*inner.b,
		b: t.b*inner.a + t.d*inner.b,
		c: t.a*inner.c + t.c*inner.d,
		d: t.b*inner.c + t.d*inner.d,
		e: t.a*inner.e + t.c*inner.f + t.e,
		f: t.b*inner.e + t.d*inner.f + t.f,
	}
}

// --- Bounding box accumulation ---------------------------------------------

// bboxAccum grows a bounding box point by point. Control points are included;
// the box is therefore the hull of the path's control polygon, which is what
// font consumers conventionally get for composite and variable outlines.
type bboxAccum struct {
	xMin, yMin float32
	xMax, yMax float32
	seen       bool
}

func (bb *bboxAccum) extend(x, y float32) {
	if !bb.seen {
		bb.xMin, bb.xMax = x, x
		bb.yMin, bb.yMax = y, y
		bb.seen = true
		return
	}
	if x < bb.xMin {
		bb.xMin = x
	}
	if x > bb.xMax {
		bb.xMax = x
	}
	if y < bb.yMin {
		bb.yMin = y
	}
	if y > bb.yMax {
		bb.yMax = y
	}
}

// rect rounds the accumulated box outward to integer font units.
func (bb *bboxAccum) rect() (Rect, bool) {
	if !bb.seen {
		return Rect{}, false
	}
	return Rect{
		XMin: int16(math.Floor(float64(bb.xMin))),
		YMin: int16(math.Floor(float64(bb.yMin))),
		XMax: int16(math.Ceil(float64(bb.xMax))),
		YMax: int16(math.Ceil(float64(bb.yMax))),
	}, true
}

// --- Outline sink ----------------------------------------------------------

// outlineSink adapts the raw point stream of a glyph to the OutlineBuilder
// protocol. It applies the active component transform, tracks the bounding
// box, and reconstructs the on-curve points that the format leaves implicit:
// two consecutive off-curve points imply an on-curve point at their midpoint.
//
// The reconstruction keeps three pieces of state per contour. firstOnCurve
// is the contour's starting point once known. If a contour starts with
// off-curve points, firstOffCurve holds the first of them until the start
// can be derived. lastOffCurve holds a pending control point waiting for
// the segment's end.
type outlineSink struct {
	builder OutlineBuilder
	xform   transform
	bbox    bboxAccum

	firstOnCurve  point
	firstOffCurve point
	lastOffCurve  point
	hasFirstOn    bool
	hasFirstOff   bool
	hasLastOff    bool
}

type point struct {
	x, y float32
}

func midpoint(a, b point) point {
	return point{(a.x + b.x) / 2, (a.y + b.y) / 2}
}

func newOutlineSink(builder OutlineBuilder) *outlineSink {
	return &outlineSink{builder: builder, xform: identityTransform()}
}

func (s *outlineSink) moveTo(p point) {
	x, y := s.xform.apply(p.x, p.y)
	s.bbox.extend(x, y)
	s.builder.MoveTo(x, y)
}

func (s *outlineSink) lineTo(p point) {
	x, y := s.xform.apply(p.x, p.y)
	s.bbox.extend(x, y)
	s.builder.LineTo(x, y)
}

func (s *outlineSink) quadTo(ctrl, p point) {
	cx, cy := s.xform.apply(ctrl.x, ctrl.y)
	x, y := s.xform.apply(p.x, p.y)
	s.bbox.extend(cx, cy)
	s.bbox.extend(x, y)
	s.builder.QuadTo(cx, cy, x, y)
}

func (s *outlineSink) curveTo(ctrl1, ctrl2, p point) {
	cx1, cy1 := s.xform.apply(ctrl1.x, ctrl1.y)
	cx2, cy2 := s.xform.apply(ctrl2.x, ctrl2.y)
	x, y := s.xform.apply(p.x, p.y)
	s.bbox.extend(cx1, cy1)
	s.bbox.extend(cx2, cy2)
	s.bbox.extend(x, y)
	s.builder.CurveTo(cx1, cy1, cx2, cy2, x, y)
}

// pushPoint feeds one decoded glyph point into the sink. last marks the
// final point of a contour and triggers contour completion.
func (s *outlineSink) pushPoint(p point, onCurve, last bool) {
	if !s.hasFirstOn {
		if onCurve {
			s.firstOnCurve, s.hasFirstOn = p, true
			s.moveTo(p)
		} else if s.hasFirstOff {
			// Contour starts with two off-curve points: start at their
			// implied midpoint.
			mid := midpoint(s.firstOffCurve, p)
			s.firstOnCurve, s.hasFirstOn = mid, true
			s.lastOffCurve, s.hasLastOff = p, true
			s.moveTo(mid)
		} else {
			s.firstOffCurve, s.hasFirstOff = p, true
		}
	} else {
		switch {
		case s.hasLastOff && onCurve:
			ctrl := s.lastOffCurve
			s.hasLastOff = false
			s.quadTo(ctrl, p)
		case s.hasLastOff && !onCurve:
			mid := midpoint(s.lastOffCurve, p)
			s.quadTo(s.lastOffCurve, mid)
			s.lastOffCurve = p
		case onCurve:
			s.lineTo(p)
		default:
			s.lastOffCurve, s.hasLastOff = p, true
		}
	}
	if last {
		s.finishContour()
	}
}

// finishContour closes the current contour back to its starting point,
// resolving any pending control points on the way.
func (s *outlineSink) finishContour() {
	if s.hasFirstOff && s.hasLastOff {
		ctrl := s.lastOffCurve
		s.hasLastOff = false
		s.quadTo(ctrl, midpoint(ctrl, s.firstOffCurve))
	}
	if s.hasFirstOn && s.hasFirstOff {
		s.quadTo(s.firstOffCurve, s.firstOnCurve)
	} else if s.hasFirstOn && s.hasLastOff {
		s.quadTo(s.lastOffCurve, s.firstOnCurve)
	} else if s.hasFirstOn {
		s.lineTo(s.firstOnCurve)
	}
	s.hasFirstOn = false
	s.hasFirstOff = false
	s.hasLastOff = false
	s.builder.ClosePath()
}
