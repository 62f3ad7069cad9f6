package ttf

import (
	"fmt"
	"math"
)

// Code comments occasionally cite passages from the OpenType specification
// version 1.9; see https://learn.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts for font table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxTableCount     = 512   // top-level tables: real fonts have < 30
	MaxGlyphCount     = 65536 // maximum glyph index (uint16)
	MaxAxisCount      = 64    // variation axes: typically < 8
	MaxFontsInTTC     = 1024  // fonts in a collection: typically < 10
	MaxContourCount   = 8192  // contours per simple glyph
	MaxPointCount     = 32768 // points per simple glyph
	MaxCharstringOps  = 65536 // interpreted charstring operators per glyph
	MaxCharstringSubr = 10    // charstring subroutine call nesting
)

// Maximum recursion depth for composite glyphs. Bounded recursion keeps
// cyclic component references from overflowing the stack.
const MaxComponentDepth = 16

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

const (
	sigTrueType  = 0x00010000 // TrueType outlines
	sigOpenType  = 0x4f54544f // 'OTTO', CFF outlines
	sigAppleTrue = 0x74727565 // 'true', Apple flavour of TrueType
	sigTTC       = 0x74746366 // 'ttcf', TrueType collection
)

// Parse parses a TrueType or OpenType font from a byte slice. If the slice
// holds a font collection, the first font of the collection is used.
//
// A ttf.Font needs ongoing access to the font's byte data after the Parse
// function returns. Its elements are assumed immutable while the ttf.Font
// remains in use.
func Parse(font []byte) (*Font, error) {
	return ParseCollectionEntry(font, 0)
}

// FontsInCollection returns the number of fonts in a font collection
// (*.ttc), or 1 for a single-font container, or 0 if the data is not
// a recognizable font.
func FontsInCollection(font []byte) int {
	src := binarySegm(font)
	sig, err := src.u32(0)
	if err != nil {
		return 0
	}
	switch sig {
	case sigTTC:
		n, err := src.u32(8)
		if err != nil || n > MaxFontsInTTC {
			return 0
		}
		return int(n)
	case sigTrueType, sigOpenType, sigAppleTrue:
		return 1
	}
	return 0
}

// ParseCollectionEntry parses font number index from a font collection.
// For single-font containers only index 0 is valid. Indices at or beyond the
// collection's font count fail with ErrFontIndexOutOfBounds.
func ParseCollectionEntry(font []byte, index int) (*Font, error) {
	src := binarySegm(font)
	sig, err := src.u32(0)
	if err != nil {
		return nil, malformed("font data too short for header")
	}
	if sig == sigTTC {
		// TTC header: tag, version, numFonts (u32), then numFonts u32
		// offsets to the per-font table directories.
		n, err := src.u32(8)
		if err != nil {
			return nil, malformed("collection header truncated")
		}
		if n > MaxFontsInTTC {
			return nil, malformed("collection claims %d fonts", n)
		}
		if index < 0 || index >= int(n) {
			return nil, fmt.Errorf("%w: font %d of %d", ErrFontIndexOutOfBounds, index, n)
		}
		dirOffset, err := src.u32(12 + index*4)
		if err != nil {
			return nil, malformed("collection offset table truncated")
		}
		if dirOffset > uint32(len(src)) {
			return nil, malformed("collection entry %d offset %d exceeds font size %d",
				index, dirOffset, len(src))
		}
		return parseFontAt(src, dirOffset)
	}
	if index != 0 {
		return nil, fmt.Errorf("%w: font %d of 1", ErrFontIndexOutOfBounds, index)
	}
	return parseFontAt(src, 0)
}

// parseFontAt parses the table directory starting at dirOffset. Table offsets
// within the directory are relative to the start of the whole stream, which
// is what makes collection entries work on a shared byte slice.
func parseFontAt(src binarySegm, dirOffset uint32) (*Font, error) {
	h := FontHeader{}
	h.FontType = src.U32(int(dirOffset))
	if !(h.FontType == sigOpenType ||
		h.FontType == sigTrueType ||
		h.FontType == sigAppleTrue) {
		return nil, malformed("font type not supported: %x", h.FontType)
	}
	var err error
	if h.TableCount, err = src.u16(int(dirOffset) + 4); err != nil {
		return nil, malformed("table directory truncated")
	}
	if h.TableCount > MaxTableCount {
		return nil, malformed("font claims %d tables", h.TableCount)
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	ec := &errorCollector{}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}

	// "The table directory is followed immediately by the table record
	// entries … sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, malformed("table count too large: %v", err)
	}
	recBase, err := checkedAddInt(int(dirOffset), 12)
	if err != nil {
		return nil, malformed("directory offset too large: %v", err)
	}
	buf, err := src.view(recBase, tableRecordsSize)
	if err != nil {
		return nil, malformed("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			// Required by the spec but violated by fonts in the wild;
			// the directory stays usable, so record and continue.
			ec.addWarning(tag, "table records not sorted by tag", uint32(recBase))
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])

		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			ec.addError(tag, "Size", fmt.Sprintf("size calculation overflow: %v", err), SeverityCritical, off)
			return nil, malformed("table %s: size calculation overflow: %v", tag, err)
		}
		if off > uint32(len(src)) || tableEnd > uint32(len(src)) {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d", off, tableEnd, len(src)), SeverityCritical, off)
			return nil, malformed("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, tableEnd, len(src))
		}
		if _, ok := otf.tables[tag]; ok {
			// Duplicate tag: first record wins, per common reader behavior.
			ec.addWarning(tag, "duplicate table record ignored", off)
			continue
		}
		otf.tables[tag], err = parseTable(tag, src[off:tableEnd], off, size, ec)
		if err != nil {
			return nil, err
		}
	}
	if err := connectTables(otf, ec); err != nil {
		return nil, err
	}
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// RequiredTables lists the tables a font must carry to be usable by this
// engine. Outline and variation tables are optional; their absence only
// fails the queries that need them.
var RequiredTables = []string{
	"head", "hhea", "maxp",
}

// connectTables performs consistency checks and wires up the dependencies
// between tables: hmtx needs hhea's metric count and maxp's glyph count,
// loca needs head's entry format, the variation tables need fvar's axis
// count.
func connectTables(otf *Font, ec *errorCollector) error {
	for _, tag := range RequiredTables {
		if otf.tables[T(tag)] == nil {
			ec.addError(T(tag), "Missing", "missing required table", SeverityCritical, 0)
			return malformed("missing required table %s", tag)
		}
	}
	otf.Head = otf.tables[T("head")].Self().AsHead()
	otf.HHea = otf.tables[T("hhea")].Self().AsHHea()
	otf.MaxP = otf.tables[T("maxp")].Self().AsMaxP()
	if otf.Head == nil || otf.HHea == nil || otf.MaxP == nil {
		return malformed("required table failed to parse")
	}
	numGlyphs := otf.MaxP.NumGlyphs
	if numGlyphs > MaxGlyphCount {
		ec.addError(T("maxp"), "NumGlyphs", fmt.Sprintf("glyph count %d out of range", numGlyphs), SeverityCritical, 0)
		return malformed("glyph count %d out of range", numGlyphs)
	}

	if mx := otf.tables[T("hmtx")]; mx != nil {
		hmtx := mx.Self().AsHMtx()
		if otf.HHea.NumberOfHMetrics > numGlyphs {
			ec.addError(T("hhea"), "NumberOfHMetrics",
				fmt.Sprintf("value %d exceeds maxp.NumGlyphs %d", otf.HHea.NumberOfHMetrics, numGlyphs),
				SeverityMajor, 0)
			return malformed("hhea.NumberOfHMetrics (%d) exceeds maxp.NumGlyphs (%d)",
				otf.HHea.NumberOfHMetrics, numGlyphs)
		}
		if err := hmtx.parseAll(numGlyphs, otf.HHea.NumberOfHMetrics); err != nil {
			ec.addError(T("hmtx"), "Metrics", err.Error(), SeverityCritical, 0)
			return malformed("hmtx: %v", err)
		}
		otf.HMtx = hmtx
	}

	if lo := otf.tables[T("loca")]; lo != nil {
		loca := lo.Self().AsLoca()
		switch otf.Head.IndexToLocFormat {
		case 0:
			// short format, entries are uint16 offsets divided by 2
		case 1:
			loca.longFormat = true
		default:
			ec.addError(T("head"), "IndexToLocFormat",
				fmt.Sprintf("invalid value: %d (must be 0 or 1)", otf.Head.IndexToLocFormat),
				SeverityCritical, 0)
			return malformed("invalid head.IndexToLocFormat: %d", otf.Head.IndexToLocFormat)
		}
		entrySize := 2
		if loca.longFormat {
			entrySize = 4
		}
		expected, err := checkedMulInt(numGlyphs+1, entrySize)
		if err != nil {
			return malformed("loca size calculation overflow: %v", err)
		}
		if int(loca.length) < expected {
			ec.addError(T("loca"), "Size",
				fmt.Sprintf("table size %d insufficient for %d glyphs (need %d)", loca.length, numGlyphs, expected),
				SeverityCritical, 0)
			return malformed("loca table size (%d) insufficient for %d glyphs (need %d)",
				loca.length, numGlyphs, expected)
		}
		loca.locCnt = numGlyphs + 1
		otf.Loca = loca
	}
	if gl := otf.tables[T("glyf")]; gl != nil {
		otf.glyf = gl.Binary()
	}
	if cf := otf.tables[T("CFF ")]; cf != nil {
		otf.CFF = cf.Self().AsCFF()
	}

	// Variable font tables. A broken variation table degrades the font to
	// its default instance instead of failing the parse.
	if fv := otf.tables[T("fvar")]; fv != nil {
		fvar := fv.Self().AsFvar()
		if fvar != nil && len(fvar.axes) > 0 {
			otf.Fvar = fvar
			otf.coords = make([]NormCoord, len(fvar.axes))
			otf.userCoords = make([]NormCoord, len(fvar.axes))
		}
	}
	if otf.Fvar != nil {
		if av := otf.tables[T("avar")]; av != nil {
			if seg, ok := checkAvar(av.Binary(), len(otf.Fvar.axes)); ok {
				otf.avar = seg
			} else {
				ec.addWarning(T("avar"), "axis remapping table unusable, ignoring", 0)
			}
		}
		if gv := otf.tables[T("gvar")]; gv != nil {
			gvar, err := parseGvar(gv.Binary(), len(otf.Fvar.axes), numGlyphs)
			if err != nil {
				ec.addWarning(T("gvar"), fmt.Sprintf("glyph variation table unusable: %v", err), 0)
			} else {
				otf.gvar = gvar
			}
		}
		if hv := otf.tables[T("HVAR")]; hv != nil {
			hvar, err := parseHvar(hv.Binary())
			if err != nil {
				ec.addWarning(T("HVAR"), fmt.Sprintf("metric variation table unusable: %v", err), 0)
			} else {
				otf.hvar = hvar
			}
		}
		if mv := otf.tables[T("MVAR")]; mv != nil {
			otf.mvar = mv.Binary()
		}
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("hmtx"):
		return parseHMtx(t, b, offset, size, ec)
	case T("loca"):
		return parseLoca(t, b, offset, size, ec)
	case T("glyf"):
		// Raw glyph data. Individual glyph records are decoded lazily,
		// per outline request; see glyf.go.
		return newTable(t, b, offset, size), nil
	case T("fvar"):
		return parseFvar(t, b, offset, size, ec)
	case T("CFF "):
		return parseCFF(t, b, offset, size, ec)
	}
	tracer().Debugf("font contains table (%s), kept uninterpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		ec.addError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), SeverityCritical, offset)
		return nil, malformed("size of head table")
	}
	t := newHeadTable(tag, b, offset, size)
	t.Flags, _ = b.u16(16)
	t.UnitsPerEm, _ = b.u16(18)
	t.XMin, _ = b.i16(36)
	t.YMin, _ = b.i16(38)
	t.XMax, _ = b.i16(40)
	t.YMax, _ = b.i16(42)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		ec.addError(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), SeverityCritical, offset)
		return nil, malformed("hhea table incomplete")
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	t.AdvanceWidthMax, _ = b.u16(10)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// Fonts with CFF data use version 0.5 of this table, specifying only the
// numGlyphs field. Fonts with TrueType outlines use version 1.0, where all
// data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), SeverityCritical, offset)
		return nil, malformed("maxp table incomplete")
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// Dependencies (taken from the Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea'
// (Horizontal Header) table. Fonts that lack an 'hhea' table must not have
// an 'hmtx' table. Decoding is deferred to connectTables, once hhea and
// maxp are known.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size == 0 {
		return nil, nil
	}
	return newHMtxTable(tag, b, offset, size), nil
}

// --- Loca table ------------------------------------------------------------

// Dependencies (taken from the Apple Developer page about TrueType):
// The size of entries in the 'loca' table must be appropriate for the value
// of the indexToLocFormat field of the 'head' table. The number of entries
// must be the same as the numGlyphs field of the 'maxp' table.
func parseLoca(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newLocaTable(tag, b, offset, size), nil
}
