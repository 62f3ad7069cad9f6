package ttf

import "fmt"

// Font represents the internal structure of a TrueType or OpenType font.
// It is an immutable view over the font's byte data plus the resolved table
// directory and decoded metrics tables.
//
// A Font borrows the byte slice passed to Parse; the slice must outlive the
// Font and must not be mutated. All decoded state is immutable after Parse,
// with one exception: the active variation coordinates, which are set by
// SetVariation/SetVariations and read by outline requests. Mutating the
// coordinates concurrently with an in-flight outline request on the same
// handle is not safe; callers sharing a handle across goroutines must
// either serialize access or use one handle per goroutine.
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	Head   *HeadTable // font header, required
	HHea   *HHeaTable // horizontal header, required
	MaxP   *MaxPTable // maximum profile, required
	HMtx   *HMtxTable // horizontal metrics, optional
	Loca   *LocaTable // glyph locations, optional (TrueType outlines)
	Fvar   *FvarTable // variation axes, optional (variable fonts)
	CFF    *CFFTable  // compact font format outlines, optional

	glyf binarySegm // raw 'glyf' data, optional
	gvar *gvarTable // glyph variation deltas, optional
	avar binarySegm // axis value remapping, optional
	hvar *hvarTable // metric variation (advance/LSB), optional
	mvar binarySegm // global metric variation, optional

	// Active normalized variation coordinates, in fvar axis order. Empty
	// for non-variable fonts. The only mutable state of the handle.
	coords     []NormCoord
	userCoords []NormCoord // pre-avar values, kept so remapping stays idempotent

	parseErrors   []FontError
	parseWarnings []FontWarning
}

// FontHeader is the first structure of an SFNT stream: the container
// signature and the number of top-level tables.
//
// Fonts with TrueType outlines use the value 0x00010000 for the FontType,
// fonts containing CFF data use 0x4F54544F ('OTTO'). The Apple specification
// additionally allows 'true'. Collections carry a 'ttcf' header in front of
// the per-font table directories.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned. Absence of an optional table is not
// an error; tables are only mandatory for the queries that need them (e.g.,
// outline extraction requires either 'glyf'+'loca' or 'CFF ').
//
// Table tag names are case-sensitive, following the names in the OpenType
// specification.
func (f *Font) Table(tag Tag) Table {
	if t, ok := f.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font.
func (f *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	return tags
}

// NumGlyphs returns the total number of glyphs in the font, as stated by
// the 'maxp' table.
func (f *Font) NumGlyphs() uint16 {
	return uint16(f.MaxP.NumGlyphs)
}

// UnitsPerEm returns the font's design units per em square.
// Values outside the valid range 16…16384 are reported as 0.
func (f *Font) UnitsPerEm() uint16 {
	upem := f.Head.UnitsPerEm
	if upem < 16 || upem > 16384 {
		return 0
	}
	return upem
}

// Ascender returns the typographic ascender from the horizontal header,
// in font units.
func (f *Font) Ascender() int16 {
	return f.HHea.Ascender
}

// Descender returns the typographic descender from the horizontal header,
// in font units (usually negative).
func (f *Font) Descender() int16 {
	return f.HHea.Descender
}

// LineGap returns the typographic line gap, in font units.
func (f *Font) LineGap() int16 {
	return f.HHea.LineGap
}

// Height returns ascender − descender, in font units.
func (f *Font) Height() int16 {
	return f.Ascender() - f.Descender()
}

// Errors returns all errors encountered during font parsing. These errors
// represent issues that were found but did not prevent parsing from
// completing. Clients can inspect them to decide whether the font is
// suitable for their use case.
func (f *Font) Errors() []FontError {
	if f.parseErrors == nil {
		return []FontError{}
	}
	return f.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (f *Font) Warnings() []FontWarning {
	if f.parseWarnings == nil {
		return []FontWarning{}
	}
	return f.parseWarnings
}

// GlyphIndex is a glyph index in a font. Index 0 is the “missing glyph”
// by convention and always resolves to a (possibly empty) outline.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, or other named entity.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("glyf"))
//
// If b is shorter or longer, it will be silently extended or cut as
// appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as
// appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various font tables.
//
// Required tables for this engine: 'head' (font header), 'hhea' (horizontal
// header) and 'maxp' (maximum profile). For TrueType outlines: 'glyf'
// (glyph data) and 'loca' (index to location). For CFF outlines: 'CFF '.
// For variable fonts: 'fvar' (axes), optionally 'avar', 'gvar', 'HVAR',
// 'MVAR'.
//
// Every table contained in the font is retained, at least as a generic
// table type; no table information is dropped during parsing.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of font tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsFvar returns this table as an fvar table, or nil.
func (tself TableSelf) AsFvar() *FvarTable {
	if k, ok := safeSelf(tself).(*FvarTable); ok {
		return k
	}
	return nil
}

// AsCFF returns this table as a CFF table, or nil.
func (tself TableSelf) AsCFF() *CFFTable {
	if k, ok := safeSelf(tself).(*CFFTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font: units per em, the
// global bounding box, and the width of 'loca' entries.
type HeadTable struct {
	tableBase
	Flags            uint16
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // needed to interpret loca table
	XMin, YMin       int16  // global bounding box
	XMax, YMax       int16
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the 'glyf' table. By definition, index zero
// points to the “missing character”. Entry format depends on
// head.IndexToLocFormat: short entries are uint16 offsets divided by two,
// long entries are plain uint32 offsets.
type LocaTable struct {
	tableBase
	longFormat bool
	locCnt     int // number of location entries (numGlyphs + 1)
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// entry returns location entry i, or an error for out-of-range indices.
func (t *LocaTable) entry(i int) (uint32, error) {
	if i < 0 || i >= t.locCnt {
		return 0, errBufferBounds
	}
	if t.longFormat {
		return t.data.u32(i * 4)
	}
	loc, err := t.data.u16(i * 2)
	if err != nil {
		return 0, err
	}
	return uint32(loc) * 2, nil // short entries are doubled, per format
}

// glyphRange resolves a glyph's data segment within 'glyf' as an
// (offset, length) pair. A zero-length result is a valid “no outline”.
func (t *LocaTable) glyphRange(gid GlyphIndex) (uint32, uint32, error) {
	start, err := t.entry(int(gid))
	if err != nil {
		return 0, 0, err
	}
	end, err := t.entry(int(gid) + 1)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errBufferBounds
	}
	return start, end - start, nil
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender         int16
	Descender        int16
	LineGap          int16
	AdvanceWidthMax  uint16
	NumberOfHMetrics int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// HMtxTable contains per-glyph horizontal metrics. The table holds
// NumberOfHMetrics long records (advance width + left side bearing),
// optionally followed by bare left-side-bearing entries for the remaining
// glyphs. Glyphs beyond the long-record array share the advance width of
// the last long record — the format's monospace tail compaction. This rule
// is reproduced exactly; a short metrics array is not an error.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

func (t *HMtxTable) parseAll(numGlyphs, numberOfHMetrics int) error {
	if t == nil {
		return nil
	}
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfHMetrics < 0 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(t.data) {
		return fmt.Errorf("hmtx table too small: need %d bytes, have %d", required, len(t.data))
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		aw, err := t.data.u16(i * 4)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx long metric %d: %w", i, err)
		}
		lsb, err := t.data.i16(i*4 + 2)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx long metric lsb %d: %w", i, err)
		}
		longMetrics[i] = HMetricRecord{AdvanceWidth: aw, LeftSideBearing: lsb}
	}
	lsbCount := numGlyphs - numberOfHMetrics
	leftSideBearings := make([]int16, lsbCount)
	base := numberOfHMetrics * 4
	for i := 0; i < lsbCount; i++ {
		lsb, err := t.data.i16(base + i*2)
		if err != nil {
			return fmt.Errorf("cannot parse hmtx lsb %d: %w", i, err)
		}
		leftSideBearings[i] = lsb
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
// Glyphs beyond the long-record array reuse the last record's advance
// width (monospace tail compaction).
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	if len(t.longMetrics) == 0 {
		return 0, 0, false
	}
	i := int(g) - len(t.longMetrics)
	if i >= len(t.leftSideBearings) {
		return 0, 0, false
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}
