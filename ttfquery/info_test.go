package ttfquery

import (
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/truetype/ttf"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf *ttf.Font
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.truetype").SetTraceLevel(tracing.LevelError)
	otf, err := ttf.Parse(buildSFNT(queryFont()))
	env.Require().NoError(err)
	env.otf = otf
	tracing.Select("font.truetype").SetTraceLevel(tracing.LevelInfo)
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	fti := FontType(env.otf)
	env.Equal("TrueType", fti, "expected font type of test font to be TrueType")
}

func (env *InfoTestEnviron) TestNameInfo() {
	info := NameInfo(env.otf)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	env.Equal("Test Family", fam)
	env.Equal("Regular", info["subfamily"])
}

func (env *InfoTestEnviron) TestAxisName() {
	env.Require().True(env.otf.IsVariable())
	axis, err := env.otf.Axis(0)
	env.Require().NoError(err)
	env.Equal("Weight", AxisName(env.otf, axis))
}

func (env *InfoTestEnviron) TestHeadInfo() {
	h, ok := HeadInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'head'")
	env.Equal(env.otf.UnitsPerEm(), h.UnitsPerEm, "expected matching UnitsPerEm")
	env.Equal(uint32(0x5F0F3CF5), h.MagicNumber, "expected OpenType head magic number")
	env.Equal(int16(0), h.IndexToLocFormat)
}

func (env *InfoTestEnviron) TestMaxPInfo() {
	m, ok := MaxPInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'maxp'")
	env.Equal(env.otf.NumGlyphs(), m.NumGlyphs, "expected matching numGlyphs")
	env.NotZero(m.VersionFixed, "expected maxp version to be set")
	env.False(m.HasExtendedProfile, "6-byte maxp has no extended profile")
}

func (env *InfoTestEnviron) TestFontMetrics() {
	metrics := FontMetrics(env.otf)
	env.EqualValues(800, metrics.Ascent)
	env.EqualValues(-200, metrics.Descent)
	env.EqualValues(90, metrics.LineGap)
	env.EqualValues(540, metrics.MaxAdvance)
	env.EqualValues(1000, metrics.UnitsPerEm)
}

func (env *InfoTestEnviron) TestGlyphMetrics() {
	metrics := GlyphMetrics(env.otf, 1)
	env.EqualValues(540, metrics.Advance)
	env.EqualValues(50, metrics.LSB)
	env.EqualValues(50, metrics.BBox.MinX)
	env.EqualValues(750, metrics.BBox.MaxY)
	// rsb = aw - (lsb + xMax - xMin)
	env.EqualValues(90, metrics.RSB)
}

// --- Helpers ----------------------------------------------------------

func putU16(b []byte, at int, v uint16) {
	b[at] = byte(v >> 8)
	b[at+1] = byte(v)
}

func putU32(b []byte, at int, v uint32) {
	b[at] = byte(v >> 24)
	b[at+1] = byte(v >> 16)
	b[at+2] = byte(v >> 8)
	b[at+3] = byte(v)
}

// buildSFNT assembles a single-font SFNT stream from table payloads.
func buildSFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	dirSize := 12 + 16*len(tags)
	total := dirSize
	for _, tag := range tags {
		total += (len(tables[tag]) + 3) &^ 3
	}
	b := make([]byte, total)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, uint16(len(tags)))
	offset := dirSize
	for i, tag := range tags {
		rec := 12 + 16*i
		copy(b[rec:], tag)
		putU32(b, rec+8, uint32(offset))
		putU32(b, rec+12, uint32(len(tables[tag])))
		copy(b[offset:], tables[tag])
		offset += (len(tables[tag]) + 3) &^ 3
	}
	return b
}

// queryFont builds a font with an empty glyph 0, a square glyph 1, a name
// table and one variation axis.
func queryFont() map[string][]byte {
	head := make([]byte, 54)
	putU32(head, 12, 0x5F0F3CF5)
	putU16(head, 18, 1000) // unitsPerEm

	hhea := make([]byte, 36)
	descender := int16(-200)
	putU16(hhea, 4, 800)               // ascender
	putU16(hhea, 6, uint16(descender)) // descender
	putU16(hhea, 8, 90)              // line gap
	putU16(hhea, 10, 540)            // advance width max
	putU16(hhea, 34, 2)              // numberOfHMetrics

	maxp := make([]byte, 6)
	putU32(maxp, 0, 0x00010000)
	putU16(maxp, 4, 2)

	hmtx := make([]byte, 8)
	putU16(hmtx, 0, 500)
	putU16(hmtx, 4, 540)
	putU16(hmtx, 6, 50)

	// One-contour square with corners (50,0) (50,750) (450,750) (450,0).
	glyf := []byte{
		0, 1, 0, 50, 0, 0, 1, 194, 2, 238, // header, bbox 50/0/450/750
		0, 3, 0, 0, // endPts, no instructions
		0x33, 0x11, 0x21, 0x11,
		50, 0x01, 0x90,
		0x02, 0xee, 0xfd, 0x12,
		0, // pad to even length for short loca
	}
	loca := make([]byte, 6)
	putU16(loca, 4, uint16(len(glyf)/2))

	fvar := make([]byte, 16+20)
	putU16(fvar, 0, 1)  // major version
	putU16(fvar, 4, 16) // axes array offset
	putU16(fvar, 8, 1)  // axis count
	putU16(fvar, 10, 20)
	copy(fvar[16:], "wght")
	putU32(fvar, 20, 100<<16)
	putU32(fvar, 24, 400<<16)
	putU32(fvar, 28, 900<<16)
	putU16(fvar, 34, 257) // axis name ID

	return map[string][]byte{
		"head": head,
		"hhea": hhea,
		"maxp": maxp,
		"hmtx": hmtx,
		"loca": loca,
		"glyf": glyf,
		"fvar": fvar,
		"name": nameTable(map[uint16]string{
			1:   "Test Family",
			2:   "Regular",
			4:   "Test Family Regular",
			257: "Weight",
		}),
	}
}

// nameTable builds a name table with Windows BMP records.
func nameTable(entries map[uint16]string) []byte {
	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	storageOffset := 6 + 12*len(ids)
	b := make([]byte, storageOffset)
	putU16(b, 2, uint16(len(ids)))
	putU16(b, 4, uint16(storageOffset))
	strOffset := 0
	var storage []byte
	for i, id := range ids {
		encoded := utf16be(entries[uint16(id)])
		rec := 6 + 12*i
		putU16(b, rec, 3)   // platform Windows
		putU16(b, rec+2, 1) // encoding BMP
		putU16(b, rec+4, 0x409)
		putU16(b, rec+6, uint16(id))
		putU16(b, rec+8, uint16(len(encoded)))
		putU16(b, rec+10, uint16(strOffset))
		storage = append(storage, encoded...)
		strOffset += len(encoded)
	}
	return append(b, storage...)
}

func utf16be(s string) []byte {
	b := make([]byte, 0, len(s)*2)
	for _, r := range s {
		b = append(b, byte(uint16(r)>>8), byte(r))
	}
	return b
}
