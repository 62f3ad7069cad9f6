package ttf

import "math"

// Compact Font Format outlines, table 'CFF '.
//
// The table is a container of INDEX structures (name, top DICT, strings,
// global subroutines) followed by per-glyph Type 2 charstrings. Only the
// parts needed for outline extraction are decoded: the top DICT's
// CharStrings offset, the private DICT's local subroutine index, and the
// global subroutine index.

// CFFTable holds the decoded skeleton of a 'CFF ' table.
type CFFTable struct {
	tableBase
	charStrings cffIndex
	globalSubrs cffIndex
	localSubrs  cffIndex
	globalBias  int
	localBias   int
}

func newCFFTable(tag Tag, b binarySegm, offset, size uint32) *CFFTable {
	t := &CFFTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// cffIndex is a parsed INDEX: a count and resolved data ranges.
type cffIndex struct {
	data    binarySegm
	offsets []uint32 // count+1 offsets, zero-based
}

func (ix cffIndex) count() int {
	if len(ix.offsets) == 0 {
		return 0
	}
	return len(ix.offsets) - 1
}

func (ix cffIndex) entry(i int) (binarySegm, bool) {
	if i < 0 || i+1 >= len(ix.offsets) {
		return nil, false
	}
	start, end := ix.offsets[i], ix.offsets[i+1]
	if start > end || int(end) > len(ix.data) {
		return nil, false
	}
	return ix.data[start:end], true
}

// parseIndex reads the INDEX at the stream position and leaves the stream
// behind its data.
func parseIndex(s *byteStream) (cffIndex, error) {
	count := int(s.readU16())
	if s.err != nil {
		return cffIndex{}, errBufferBounds
	}
	if count == 0 {
		return cffIndex{}, nil
	}
	offSize := int(s.readU8())
	if s.err != nil || offSize < 1 || offSize > 4 {
		return cffIndex{}, errBufferBounds
	}
	offsets := make([]uint32, count+1)
	for i := range offsets {
		var v uint32
		for b := 0; b < offSize; b++ {
			v = v<<8 | uint32(s.readU8())
		}
		if v == 0 {
			// INDEX offsets are one-based; zero is invalid.
			s.err = errBufferBounds
		}
		offsets[i] = v - 1
	}
	if s.err != nil {
		return cffIndex{}, errBufferBounds
	}
	dataLen := int(offsets[count])
	data := s.readBytes(dataLen)
	if s.err != nil {
		return cffIndex{}, errBufferBounds
	}
	return cffIndex{data: data, offsets: offsets}, nil
}

// Top and private DICT operators used here.
const (
	dictCharStrings = 17
	dictPrivate     = 18
	dictSubrs       = 19
)

func parseCFF(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newCFFTable(tag, b, offset, size)
	hdrSize, err := b.u8(2)
	if err != nil || hdrSize < 4 {
		ec.addError(tag, "Header", "CFF header unreadable", SeverityMajor, offset)
		return nil, malformed("CFF header")
	}
	s := stream(b)
	s.skip(int(hdrSize))
	if _, err := parseIndex(s); err != nil { // Name INDEX
		return nil, malformed("CFF name index")
	}
	topDicts, err := parseIndex(s)
	if err != nil {
		return nil, malformed("CFF top DICT index")
	}
	if _, err := parseIndex(s); err != nil { // String INDEX
		return nil, malformed("CFF string index")
	}
	t.globalSubrs, err = parseIndex(s)
	if err != nil {
		return nil, malformed("CFF global subr index")
	}
	top, ok := topDicts.entry(0)
	if !ok {
		return nil, malformed("CFF top DICT missing")
	}
	var charStringsOffset int
	var privateOffset, privateSize int
	walkDict(top, func(op int, operands []float64) {
		switch op {
		case dictCharStrings:
			if len(operands) == 1 {
				charStringsOffset = int(operands[0])
			}
		case dictPrivate:
			if len(operands) == 2 {
				privateSize = int(operands[0])
				privateOffset = int(operands[1])
			}
		}
	})
	if charStringsOffset <= 0 || charStringsOffset >= len(b) {
		return nil, malformed("CFF charstrings offset %d", charStringsOffset)
	}
	cs := stream(b)
	cs.skip(charStringsOffset)
	t.charStrings, err = parseIndex(cs)
	if err != nil {
		return nil, malformed("CFF charstrings index")
	}
	if privateOffset > 0 && privateSize > 0 {
		priv, err := b.view(privateOffset, privateSize)
		if err != nil {
			return nil, malformed("CFF private DICT out of bounds")
		}
		var subrsOffset int
		walkDict(priv, func(op int, operands []float64) {
			if op == dictSubrs && len(operands) == 1 {
				subrsOffset = int(operands[0])
			}
		})
		if subrsOffset > 0 {
			// Subrs offset is relative to the private DICT.
			ls := stream(b)
			ls.skip(privateOffset + subrsOffset)
			t.localSubrs, err = parseIndex(ls)
			if err != nil {
				ec.addWarning(tag, "local subr index unreadable, ignoring", offset)
				t.localSubrs = cffIndex{}
			}
		}
	}
	t.globalBias = subrBias(t.globalSubrs.count())
	t.localBias = subrBias(t.localSubrs.count())
	return t, nil
}

// subrBias is the Type 2 subroutine number bias, depending on subr count.
func subrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	}
	return 32768
}

// walkDict iterates a DICT's operator entries. Operands precede their
// operator; two-byte operators carry the 12 escape.
func walkDict(dict binarySegm, visit func(op int, operands []float64)) {
	var operands []float64
	pos := 0
	for pos < len(dict) {
		b0 := dict[pos]
		switch {
		case b0 <= 21: // operator
			op := int(b0)
			pos++
			if b0 == 12 && pos < len(dict) {
				op = 12<<8 | int(dict[pos])
				pos++
			}
			visit(op, operands)
			operands = operands[:0]
		case b0 == 28:
			if pos+3 > len(dict) {
				return
			}
			operands = append(operands, float64(int16(u16(dict[pos+1:]))))
			pos += 3
		case b0 == 29:
			if pos+5 > len(dict) {
				return
			}
			operands = append(operands, float64(int32(u32(dict[pos+1:]))))
			pos += 5
		case b0 == 30: // real number, nibble-encoded; skipped, not needed here
			pos++
			for pos < len(dict) {
				nibbles := dict[pos]
				pos++
				if nibbles&0x0f == 0x0f || nibbles&0xf0 == 0xf0 {
					break
				}
			}
			operands = append(operands, 0)
		case b0 >= 32 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
			pos++
		case b0 >= 247 && b0 <= 250:
			if pos+2 > len(dict) {
				return
			}
			operands = append(operands, float64((int(b0)-247)*256+int(dict[pos+1])+108))
			pos += 2
		case b0 >= 251 && b0 <= 254:
			if pos+2 > len(dict) {
				return
			}
			operands = append(operands, float64(-(int(b0)-251)*256-int(dict[pos+1])-108))
			pos += 2
		default:
			pos++
		}
	}
}

// --- Type 2 charstring interpreter -----------------------------------------

// Charstring operators.
const (
	csHstem     = 1
	csVstem     = 3
	csVmoveto   = 4
	csRlineto   = 5
	csHlineto   = 6
	csVlineto   = 7
	csRrcurveto = 8
	csCallsubr  = 10
	csReturn    = 11
	csEndchar   = 14
	csHstemhm   = 18
	csHintmask  = 19
	csCntrmask  = 20
	csRmoveto   = 21
	csHmoveto   = 22
	csVstemhm   = 23
	csRcurveline = 24
	csRlinecurve = 25
	csVvcurveto  = 26
	csHhcurveto  = 27
	csCallgsubr  = 29
	csVhcurveto  = 30
	csHvcurveto  = 31
	csHflex      = 12<<8 | 34
	csFlex       = 12<<8 | 35
	csHflex1     = 12<<8 | 36
	csFlex1      = 12<<8 | 37
)

// outline interprets the charstring of glyph g, emitting its path through
// the sink. The bounding box is whatever the emitted path traced.
func (t *CFFTable) outline(g GlyphIndex, sink *outlineSink) (Rect, error) {
	cs, ok := t.charStrings.entry(int(g))
	if !ok {
		return Rect{}, malformedGlyph(g, "no charstring")
	}
	if len(cs) == 0 {
		return Rect{}, nil
	}
	ip := &charstringInterp{cff: t, sink: sink}
	ip.run(cs)
	if ip.failed {
		return Rect{}, malformedGlyph(g, "charstring does not interpret")
	}
	ip.closeContour()
	if bbox, ok := sink.bbox.rect(); ok {
		return bbox, nil
	}
	return Rect{}, nil
}

// charstringInterp executes one glyph's Type 2 charstring. Operand encoding
// and operator semantics follow Adobe TN #5177; the optional leading width
// operand is detected on the first stack-clearing operator and skipped.
type charstringInterp struct {
	cff  *CFFTable
	sink *outlineSink

	stack    []float64
	argStart int // skips a detected width operand
	x, y     float64

	widthDone  bool
	pathOpen   bool
	hstemCount int
	vstemCount int
	callDepth  int
	opsCount   int
	failed     bool
}

func (ip *charstringInterp) argCount() int { return len(ip.stack) - ip.argStart }

func (ip *charstringInterp) arg(i int) float64 { return ip.stack[ip.argStart+i] }

func (ip *charstringInterp) pop() float64 {
	if len(ip.stack) == 0 {
		ip.failed = true
		return 0
	}
	v := ip.stack[len(ip.stack)-1]
	ip.stack = ip.stack[:len(ip.stack)-1]
	return v
}

func (ip *charstringInterp) clear() {
	ip.argStart = 0
	ip.stack = ip.stack[:0]
}

// checkWidth inspects the first stack-clearing operator: an odd operand
// surplus is the glyph's width and gets skipped.
func (ip *charstringInterp) checkWidth(op int) {
	if ip.widthDone {
		return
	}
	hasWidth := false
	switch op {
	case csEndchar, csHstem, csHstemhm, csVstem, csVstemhm, csHintmask, csCntrmask:
		hasWidth = ip.argCount()&1 != 0
	case csHmoveto, csVmoveto:
		hasWidth = ip.argCount() > 1
	case csRmoveto:
		hasWidth = ip.argCount() > 2
	default:
		return
	}
	if hasWidth && len(ip.stack) > 0 {
		ip.argStart = 1
	}
	ip.widthDone = true
}

func (ip *charstringInterp) moveTo() {
	ip.closeContour()
	ip.sink.moveTo(point{float32(ip.x), float32(ip.y)})
	ip.pathOpen = true
}

func (ip *charstringInterp) closeContour() {
	if ip.pathOpen {
		ip.sink.builder.ClosePath()
		ip.pathOpen = false
	}
}

func (ip *charstringInterp) lineTo() {
	ip.sink.lineTo(point{float32(ip.x), float32(ip.y)})
}

func (ip *charstringInterp) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	ip.sink.curveTo(
		point{float32(x1), float32(y1)},
		point{float32(x2), float32(y2)},
		point{float32(x3), float32(y3)})
	ip.x, ip.y = x3, y3
}

// relCurveTo emits a curve from six relative deltas.
func (ip *charstringInterp) relCurveTo(dxa, dya, dxb, dyb, dxc, dyc float64) {
	x1 := ip.x + dxa
	y1 := ip.y + dya
	x2 := x1 + dxb
	y2 := y1 + dyb
	ip.curveTo(x1, y1, x2, y2, x2+dxc, y2+dyc)
}

func (ip *charstringInterp) run(data []byte) {
	pos := 0
	for pos < len(data) {
		if ip.failed {
			return
		}
		ip.opsCount++
		if ip.opsCount > MaxCharstringOps {
			ip.failed = true
			return
		}
		b0 := data[pos]
		if b0 >= 32 || b0 == 28 || b0 == 255 {
			val, consumed := charstringOperand(data[pos:])
			if consumed == 0 {
				ip.failed = true
				return
			}
			ip.stack = append(ip.stack, val)
			pos += consumed
			continue
		}
		op := int(b0)
		pos++
		if b0 == 12 && pos < len(data) {
			op = 12<<8 | int(data[pos])
			pos++
		}
		switch op {
		case csHstem, csHstemhm:
			ip.checkWidth(op)
			ip.hstemCount += ip.argCount() / 2
			ip.clear()

		case csVstem, csVstemhm:
			ip.checkWidth(op)
			ip.vstemCount += ip.argCount() / 2
			ip.clear()

		case csHintmask, csCntrmask:
			ip.checkWidth(op)
			if ip.argCount() > 0 { // implicit vstem
				ip.vstemCount += ip.argCount() / 2
			}
			ip.clear()
			pos += (ip.hstemCount + ip.vstemCount + 7) / 8

		case csRmoveto:
			ip.checkWidth(op)
			dy := ip.pop()
			dx := ip.pop()
			ip.x += dx
			ip.y += dy
			ip.moveTo()
			ip.clear()

		case csHmoveto:
			ip.checkWidth(op)
			ip.x += ip.pop()
			ip.moveTo()
			ip.clear()

		case csVmoveto:
			ip.checkWidth(op)
			ip.y += ip.pop()
			ip.moveTo()
			ip.clear()

		case csRlineto:
			for i := 0; i+2 <= ip.argCount(); i += 2 {
				ip.x += ip.arg(i)
				ip.y += ip.arg(i + 1)
				ip.lineTo()
			}
			ip.clear()

		case csHlineto, csVlineto:
			horizontal := op == csHlineto
			for i := 0; i < ip.argCount(); i++ {
				if horizontal {
					ip.x += ip.arg(i)
				} else {
					ip.y += ip.arg(i)
				}
				ip.lineTo()
				horizontal = !horizontal
			}
			ip.clear()

		case csRrcurveto:
			for i := 0; i+6 <= ip.argCount(); i += 6 {
				ip.relCurveTo(ip.arg(i), ip.arg(i+1), ip.arg(i+2), ip.arg(i+3), ip.arg(i+4), ip.arg(i+5))
			}
			ip.clear()

		case csRcurveline:
			if ac := ip.argCount(); ac >= 8 {
				i := 0
				for i+6 <= ac-2 {
					ip.relCurveTo(ip.arg(i), ip.arg(i+1), ip.arg(i+2), ip.arg(i+3), ip.arg(i+4), ip.arg(i+5))
					i += 6
				}
				ip.x += ip.arg(i)
				ip.y += ip.arg(i + 1)
				ip.lineTo()
			}
			ip.clear()

		case csRlinecurve:
			if ac := ip.argCount(); ac >= 8 {
				i := 0
				for i+2 <= ac-6 {
					ip.x += ip.arg(i)
					ip.y += ip.arg(i + 1)
					ip.lineTo()
					i += 2
				}
				ip.relCurveTo(ip.arg(i), ip.arg(i+1), ip.arg(i+2), ip.arg(i+3), ip.arg(i+4), ip.arg(i+5))
			}
			ip.clear()

		case csVvcurveto:
			i := 0
			dx1 := 0.0
			if ip.argCount()&1 != 0 {
				dx1 = ip.arg(0)
				i++
			}
			for ; i+4 <= ip.argCount(); i += 4 {
				x1 := ip.x + dx1
				y1 := ip.y + ip.arg(i)
				x2 := x1 + ip.arg(i+1)
				y2 := y1 + ip.arg(i+2)
				ip.curveTo(x1, y1, x2, y2, x2, y2+ip.arg(i+3))
				dx1 = 0
			}
			ip.clear()

		case csHhcurveto:
			i := 0
			dy1 := 0.0
			if ip.argCount()&1 != 0 {
				dy1 = ip.arg(0)
				i++
			}
			for ; i+4 <= ip.argCount(); i += 4 {
				x1 := ip.x + ip.arg(i)
				y1 := ip.y + dy1
				x2 := x1 + ip.arg(i+1)
				y2 := y1 + ip.arg(i+2)
				ip.curveTo(x1, y1, x2, y2, x2+ip.arg(i+3), y2)
				dy1 = 0
			}
			ip.clear()

		case csVhcurveto:
			ip.alternatingCurves(true)
			ip.clear()

		case csHvcurveto:
			ip.alternatingCurves(false)
			ip.clear()

		case csHflex:
			if ip.argCount() == 7 {
				startY := ip.y
				x1 := ip.x + ip.arg(0)
				y1 := ip.y
				x2 := x1 + ip.arg(1)
				y2 := y1 + ip.arg(2)
				ip.curveTo(x1, y1, x2, y2, x2+ip.arg(3), y2)
				x4 := ip.x + ip.arg(4)
				x5 := x4 + ip.arg(5)
				ip.curveTo(x4, ip.y, x5, startY, x5+ip.arg(6), startY)
			}
			ip.clear()

		case csFlex:
			if ip.argCount() == 13 {
				x1 := ip.x + ip.arg(0)
				y1 := ip.y + ip.arg(1)
				x2 := x1 + ip.arg(2)
				y2 := y1 + ip.arg(3)
				ip.curveTo(x1, y1, x2, y2, x2+ip.arg(4), y2+ip.arg(5))
				x4 := ip.x + ip.arg(6)
				y4 := ip.y + ip.arg(7)
				x5 := x4 + ip.arg(8)
				y5 := y4 + ip.arg(9)
				ip.curveTo(x4, y4, x5, y5, x5+ip.arg(10), y5+ip.arg(11))
			}
			ip.clear()

		case csHflex1:
			if ip.argCount() == 9 {
				startY := ip.y
				x1 := ip.x + ip.arg(0)
				y1 := ip.y + ip.arg(1)
				x2 := x1 + ip.arg(2)
				y2 := y1 + ip.arg(3)
				ip.curveTo(x1, y1, x2, y2, x2+ip.arg(4), y2)
				x4 := ip.x + ip.arg(5)
				y4 := ip.y
				x5 := x4 + ip.arg(6)
				y5 := y4 + ip.arg(7)
				ip.curveTo(x4, y4, x5, y5, x5+ip.arg(8), startY)
			}
			ip.clear()

		case csFlex1:
			if ip.argCount() == 11 {
				var dx, dy float64
				for i := 0; i < 10; i += 2 {
					dx += ip.arg(i)
					dy += ip.arg(i + 1)
				}
				startX, startY := ip.x, ip.y
				x1 := ip.x + ip.arg(0)
				y1 := ip.y + ip.arg(1)
				x2 := x1 + ip.arg(2)
				y2 := y1 + ip.arg(3)
				ip.curveTo(x1, y1, x2, y2, x2+ip.arg(4), y2+ip.arg(5))
				x4 := ip.x + ip.arg(6)
				y4 := ip.y + ip.arg(7)
				x5 := x4 + ip.arg(8)
				y5 := y4 + ip.arg(9)
				if math.Abs(dx) > math.Abs(dy) {
					ip.curveTo(x4, y4, x5, y5, x5+ip.arg(10), startY)
				} else {
					ip.curveTo(x4, y4, x5, y5, startX, y5+ip.arg(10))
				}
			}
			ip.clear()

		case csCallsubr:
			ip.callSubr(ip.cff.localSubrs, ip.cff.localBias)

		case csCallgsubr:
			ip.callSubr(ip.cff.globalSubrs, ip.cff.globalBias)

		case csReturn:
			return

		case csEndchar:
			ip.checkWidth(op)
			ip.clear()
			return

		default:
			// Unknown operator, clear the stack and carry on.
			ip.clear()
		}
	}
}

func (ip *charstringInterp) callSubr(subrs cffIndex, bias int) {
	if len(ip.stack) == 0 {
		return
	}
	num := int(ip.pop()) + bias
	sub, ok := subrs.entry(num)
	if !ok || ip.callDepth >= MaxCharstringSubr {
		return
	}
	ip.callDepth++
	ip.run(sub)
	ip.callDepth--
}

// alternatingCurves handles vhcurveto/hvcurveto: curve groups whose first
// tangent alternates between vertical and horizontal.
func (ip *charstringInterp) alternatingCurves(startVertical bool) {
	ac := ip.argCount()
	i := 0
	vertical := startVertical
	for i+4 <= ac {
		var x1, y1, x2, y2, x3, y3 float64
		if vertical {
			x1 = ip.x
			y1 = ip.y + ip.arg(i)
			x2 = x1 + ip.arg(i+1)
			y2 = y1 + ip.arg(i+2)
			x3 = x2 + ip.arg(i+3)
			y3 = y2
		} else {
			x1 = ip.x + ip.arg(i)
			y1 = ip.y
			x2 = x1 + ip.arg(i+1)
			y2 = y1 + ip.arg(i+2)
			x3 = x2
			y3 = y2 + ip.arg(i+3)
		}
		i += 4
		// A single trailing operand adjusts the last curve's free
		// coordinate.
		if ac-i == 1 {
			if vertical {
				y3 += ip.arg(i)
			} else {
				x3 += ip.arg(i)
			}
			i++
		}
		ip.curveTo(x1, y1, x2, y2, x3, y3)
		vertical = !vertical
	}
}

// charstringOperand decodes one numeric charstring operand, returning the
// value and the bytes consumed.
func charstringOperand(data []byte) (float64, int) {
	b0 := data[0]
	switch {
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), 1
	case b0 >= 247 && b0 <= 250:
		if len(data) < 2 {
			return 0, 0
		}
		return float64((int(b0)-247)*256 + int(data[1]) + 108), 2
	case b0 >= 251 && b0 <= 254:
		if len(data) < 2 {
			return 0, 0
		}
		return float64(-(int(b0)-251)*256 - int(data[1]) - 108), 2
	case b0 == 28:
		if len(data) < 3 {
			return 0, 0
		}
		return float64(int16(u16(data[1:]))), 3
	case b0 == 255: // 16.16 fixed point
		if len(data) < 5 {
			return 0, 0
		}
		return float64(int32(u32(data[1:]))) / 65536.0, 5
	}
	return 0, 0
}
