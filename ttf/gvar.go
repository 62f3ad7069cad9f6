package ttf

import "fmt"

// Glyph variation deltas, table 'gvar'.
//
// Each glyph owns a list of tuple variations. A tuple names a region of the
// design space by its peak (and optionally an intermediate start/end range)
// and carries packed per-point deltas. At a given set of coordinates, every
// tuple contributes scalar × delta; tuples that reference only a subset of
// the glyph's points have the remaining deltas inferred by interpolation
// along each contour (IUP).
//
// Point counts in this table include the four phantom points appended after
// the outline points (or after the components, for composite glyphs).

const phantomPointCount = 4

// Tuple header flags.
const (
	embeddedPeakTuple  = 0x8000
	intermediateRegion = 0x4000
	privatePointNumbers = 0x2000
	tupleIndexMask     = 0x0fff
)

// sharedPointNumbers flags the per-glyph tuple count.
const sharedPointNumbers = 0x8000

type gvarTable struct {
	axisCount        int
	sharedTupleCount int
	sharedTuples     binarySegm // sharedTupleCount * axisCount F2Dot14 values
	offsets          []uint32   // glyphCount+1 offsets into data
	data             binarySegm // glyph variation data array
}

func parseGvar(b binarySegm, axisCount, glyphCount int) (*gvarTable, error) {
	s := stream(b)
	major := s.readU16()
	s.skip(2) // minor version
	tableAxisCount := int(s.readU16())
	sharedTupleCount := int(s.readU16())
	sharedTuplesOffset := s.readU32()
	tableGlyphCount := int(s.readU16())
	flags := s.readU16()
	dataArrayOffset := s.readU32()
	if s.err != nil || major != 1 {
		return nil, fmt.Errorf("unsupported gvar header")
	}
	if tableAxisCount != axisCount {
		return nil, fmt.Errorf("gvar axis count %d does not match fvar (%d)", tableAxisCount, axisCount)
	}
	if tableGlyphCount > glyphCount {
		tableGlyphCount = glyphCount
	}
	g := &gvarTable{axisCount: axisCount, sharedTupleCount: sharedTupleCount}
	var err error
	g.sharedTuples, err = b.view(int(sharedTuplesOffset), sharedTupleCount*axisCount*2)
	if err != nil {
		return nil, fmt.Errorf("shared tuples out of bounds")
	}
	g.offsets = make([]uint32, tableGlyphCount+1)
	longOffsets := flags&1 != 0
	for i := range g.offsets {
		if longOffsets {
			g.offsets[i] = s.readU32()
		} else {
			g.offsets[i] = uint32(s.readU16()) * 2
		}
	}
	if s.err != nil {
		return nil, fmt.Errorf("glyph offset array truncated")
	}
	g.data, err = b.view(int(dataArrayOffset), len(b)-int(dataArrayOffset))
	if err != nil {
		return nil, fmt.Errorf("glyph variation data out of bounds")
	}
	return g, nil
}

// applyToPoints adds the blended deltas for a simple glyph to its decoded
// points. endPts delimits the contours for IUP inference. A glyph without
// variation data is left untouched.
func (g *gvarTable) applyToPoints(gid GlyphIndex, coords []NormCoord, points []glyphPoint, endPts []uint16) {
	deltas := g.deltasFor(gid, coords, len(points)+phantomPointCount, points, endPts)
	if deltas == nil {
		return
	}
	for i := range points {
		points[i].x += deltas[i].x
		points[i].y += deltas[i].y
	}
}

// componentOffsets returns the blended offset deltas for the components of
// a composite glyph, one per component, or nil if the glyph has no
// variation data.
func (g *gvarTable) componentOffsets(gid GlyphIndex, coords []NormCoord, numComponents int) []point {
	deltas := g.deltasFor(gid, coords, numComponents+phantomPointCount, nil, nil)
	if deltas == nil {
		return nil
	}
	return deltas[:numComponents]
}

// deltasFor blends all applicable tuples of a glyph into one delta per
// point. basePoints/endPts enable IUP inference for subset tuples; both are
// nil for composite glyphs, whose unreferenced deltas stay zero.
func (g *gvarTable) deltasFor(gid GlyphIndex, coords []NormCoord, numPoints int, basePoints []glyphPoint, endPts []uint16) []point {
	if int(gid)+1 >= len(g.offsets) {
		return nil
	}
	start, end := g.offsets[gid], g.offsets[gid+1]
	if start >= end {
		return nil
	}
	data, err := g.data.view(int(start), int(end-start))
	if err != nil {
		return nil
	}
	s := stream(data)
	tupleCount := s.readU16()
	dataOffset := s.readU16()
	if s.err != nil {
		return nil
	}
	serialized, err := data.view(int(dataOffset), len(data)-int(dataOffset))
	if err != nil {
		return nil
	}
	ser := stream(serialized)
	var sharedPoints []uint16
	sharedAll := false
	if tupleCount&sharedPointNumbers != 0 {
		sharedPoints, sharedAll = readPackedPoints(ser, numPoints)
		if ser.err != nil {
			return nil
		}
	}
	count := int(tupleCount & 0x0fff)

	deltas := make([]point, numPoints)
	for t := 0; t < count; t++ {
		dataSize := int(s.readU16())
		tupleIndex := s.readU16()
		if s.err != nil {
			return nil
		}
		peak := make([]NormCoord, g.axisCount)
		if tupleIndex&embeddedPeakTuple != 0 {
			for a := range peak {
				peak[a] = NormCoord(s.readI16())
			}
		} else {
			shared := int(tupleIndex & tupleIndexMask)
			if shared >= g.sharedTupleCount {
				return nil
			}
			for a := range peak {
				peak[a] = NormCoord(int16(g.sharedTuples.U16((shared*g.axisCount + a) * 2)))
			}
		}
		var imStart, imEnd []NormCoord
		if tupleIndex&intermediateRegion != 0 {
			imStart = make([]NormCoord, g.axisCount)
			imEnd = make([]NormCoord, g.axisCount)
			for a := range imStart {
				imStart[a] = NormCoord(s.readI16())
			}
			for a := range imEnd {
				imEnd[a] = NormCoord(s.readI16())
			}
		}
		if s.err != nil {
			return nil
		}
		tupleData := ser.readBytes(dataSize)
		if ser.err != nil {
			return nil
		}
		scalar := tupleScalar(coords, peak, imStart, imEnd)
		if scalar == 0 {
			continue
		}
		td := stream(tupleData)
		tuplePoints, tupleAll := sharedPoints, sharedAll
		if tupleIndex&privatePointNumbers != 0 {
			tuplePoints, tupleAll = readPackedPoints(td, numPoints)
		} else if sharedPoints == nil && !sharedAll {
			tupleAll = true
		}
		if td.err != nil {
			return nil
		}
		refCount := numPoints
		if !tupleAll {
			refCount = len(tuplePoints)
		}
		xs := readPackedDeltas(td, refCount)
		ys := readPackedDeltas(td, refCount)
		if td.err != nil {
			return nil
		}
		if tupleAll {
			for i := 0; i < numPoints; i++ {
				deltas[i].x += float32(scalar * float64(xs[i]))
				deltas[i].y += float32(scalar * float64(ys[i]))
			}
			continue
		}
		// Subset tuple: explicit deltas on the referenced points, inferred
		// deltas on the rest of each touched contour.
		tupleDeltas := make([]point, numPoints)
		referenced := make([]bool, numPoints)
		for i, p := range tuplePoints {
			if int(p) >= numPoints {
				return nil
			}
			tupleDeltas[p] = point{float32(xs[i]), float32(ys[i])}
			referenced[p] = true
		}
		if basePoints != nil {
			inferUnreferenced(tupleDeltas, referenced, basePoints, endPts)
		}
		for i := 0; i < numPoints; i++ {
			deltas[i].x += float32(scalar) * tupleDeltas[i].x
			deltas[i].y += float32(scalar) * tupleDeltas[i].y
		}
	}
	return deltas
}

// tupleScalar evaluates a tuple's region at the given coordinates.
func tupleScalar(coords, peak, imStart, imEnd []NormCoord) float64 {
	scalar := 1.0
	for a := range peak {
		p := peak[a]
		if p == 0 {
			continue
		}
		var coord NormCoord
		if a < len(coords) {
			coord = coords[a]
		}
		if coord == p {
			continue
		}
		if imStart == nil {
			if coord == 0 || coord < minCoord(0, p) || coord > maxCoord(0, p) {
				return 0
			}
			scalar *= coord.Float() / p.Float()
			continue
		}
		start, end := imStart[a], imEnd[a]
		if start > p || p > end {
			continue
		}
		if start < 0 && end > 0 {
			continue
		}
		if coord < start || coord > end {
			return 0
		}
		if coord < p {
			if p != start {
				scalar *= (coord.Float() - start.Float()) / (p.Float() - start.Float())
			}
		} else {
			if p != end {
				scalar *= (end.Float() - coord.Float()) / (end.Float() - p.Float())
			}
		}
	}
	return scalar
}

func minCoord(a, b NormCoord) NormCoord {
	if a < b {
		return a
	}
	return b
}

func maxCoord(a, b NormCoord) NormCoord {
	if a > b {
		return a
	}
	return b
}

// readPackedPoints decodes a packed point-number list. A stored count of
// zero means "all points of the glyph".
func readPackedPoints(s *byteStream, numPoints int) ([]uint16, bool) {
	control := s.readU8()
	var count int
	if control&0x80 != 0 {
		count = int(control&0x7f)<<8 | int(s.readU8())
	} else {
		count = int(control)
	}
	if count == 0 {
		return nil, true
	}
	if count > numPoints {
		s.err = errBufferBounds
		return nil, false
	}
	points := make([]uint16, 0, count)
	var last uint16
	for len(points) < count {
		run := s.readU8()
		runLen := int(run&0x7f) + 1
		words := run&0x80 != 0
		for r := 0; r < runLen && len(points) < count; r++ {
			if words {
				last += s.readU16()
			} else {
				last += uint16(s.readU8())
			}
			points = append(points, last)
		}
	}
	return points, false
}

// Packed delta run flags.
const (
	deltasAreZero  = 0x80
	deltasAreWords = 0x40
	deltaRunMask   = 0x3f
)

// readPackedDeltas decodes count packed deltas.
func readPackedDeltas(s *byteStream, count int) []int16 {
	deltas := make([]int16, 0, count)
	for len(deltas) < count {
		control := s.readU8()
		if s.err != nil {
			return nil
		}
		runLen := int(control&deltaRunMask) + 1
		for r := 0; r < runLen && len(deltas) < count; r++ {
			switch {
			case control&deltasAreZero != 0:
				deltas = append(deltas, 0)
			case control&deltasAreWords != 0:
				deltas = append(deltas, s.readI16())
			default:
				deltas = append(deltas, int16(s.readI8()))
			}
		}
	}
	return deltas
}

// inferUnreferenced fills in deltas for points a subset tuple left out, by
// interpolation along each contour. A point between two referenced
// neighbors moves proportionally when its coordinate lies between theirs,
// and rides along with the nearer edge otherwise. Contours with no
// referenced point keep zero deltas; phantom points are never inferred.
func inferUnreferenced(deltas []point, referenced []bool, basePoints []glyphPoint, endPts []uint16) {
	start := 0
	for _, e := range endPts {
		end := int(e)
		if end >= len(basePoints) {
			return
		}
		inferContour(deltas, referenced, basePoints, start, end)
		start = end + 1
	}
}

func inferContour(deltas []point, referenced []bool, basePoints []glyphPoint, start, end int) {
	refs := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		if referenced[i] {
			refs = append(refs, i)
		}
	}
	if len(refs) == 0 {
		return
	}
	if len(refs) == 1 {
		for i := start; i <= end; i++ {
			deltas[i] = deltas[refs[0]]
		}
		return
	}
	for i := start; i <= end; i++ {
		if referenced[i] {
			continue
		}
		// Nearest referenced neighbors, wrapping around the contour.
		prev, next := refs[len(refs)-1], refs[0]
		for _, r := range refs {
			if r < i {
				prev = r
			}
			if r > i {
				next = r
				break
			}
		}
		deltas[i].x = inferAxis(basePoints[i].x, basePoints[prev].x, basePoints[next].x, deltas[prev].x, deltas[next].x)
		deltas[i].y = inferAxis(basePoints[i].y, basePoints[prev].y, basePoints[next].y, deltas[prev].y, deltas[next].y)
	}
}

func inferAxis(c, c1, c2, d1, d2 float32) float32 {
	if c1 == c2 {
		if d1 == d2 {
			return d1
		}
		return 0
	}
	if c1 > c2 {
		c1, c2 = c2, c1
		d1, d2 = d2, d1
	}
	if c <= c1 {
		return d1
	}
	if c >= c2 {
		return d2
	}
	ratio := (c - c1) / (c2 - c1)
	return d1 + ratio*(d2-d1)
}
