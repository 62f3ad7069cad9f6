package ttf

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	tag := Tag(0x676c7966)
	if tag.String() != "glyf" {
		t.Errorf("expected tag 0x676c7966 to be 'glyf', is %s", tag.String())
	}
	tag = MakeTag([]byte("glyf"))
	if tag.String() != "glyf" {
		t.Errorf("expected tag MakeTag(glyf) to be 'glyf', is %s", tag.String())
	}
	tag = T("glyf")
	if tag.String() != "glyf" {
		t.Errorf("expected tag T(glyf) to be 'glyf', is %s", tag.String())
	}
}

func TestTableName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	tb := tableBase{}
	tb.name = 0x676c7966
	s := tb.Self().NameTag().String()
	if s != "glyf" {
		t.Errorf("expected table name to be glyf, is %v", s)
	}
}

// ---------------------------------------------------------------------------
// Synthetic font assembly. Tests build minimal but structurally valid SFNT
// streams from raw table payloads.

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

func putI16(b []byte, at int, v int16) {
	putU16(b, at, uint16(v))
}

// buildSFNT assembles a single-font SFNT stream from table payloads.
// baseOffset shifts all table record offsets, for embedding the directory
// in a collection.
func buildSFNT(tables map[string][]byte, baseOffset int) []byte {
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
	putU32(b, 0, sigTrueType)
	putU16(b, 4, uint16(len(tags)))
	offset := dirSize
	for i, tag := range tags {
		rec := 12 + 16*i
		copy(b[rec:], tag)
		putU32(b, rec+8, uint32(baseOffset+offset))
		putU32(b, rec+12, uint32(len(tables[tag])))
		copy(b[offset:], tables[tag])
		offset += (len(tables[tag]) + 3) &^ 3
	}
	return b
}

func headTable(unitsPerEm uint16, indexToLocFormat uint16) []byte {
	b := make([]byte, 54)
	putU16(b, 18, unitsPerEm)
	putU16(b, 50, indexToLocFormat)
	return b
}

func hheaTable(ascender, descender, lineGap int16, numberOfHMetrics uint16) []byte {
	b := make([]byte, 36)
	putI16(b, 4, ascender)
	putI16(b, 6, descender)
	putI16(b, 8, lineGap)
	putU16(b, 34, numberOfHMetrics)
	return b
}

func maxpTable(numGlyphs uint16) []byte {
	b := make([]byte, 6)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, numGlyphs)
	return b
}

// shortLoca builds a short-format loca table from glyph byte offsets.
func shortLoca(offsets ...uint16) []byte {
	b := make([]byte, len(offsets)*2)
	for i, off := range offsets {
		putU16(b, i*2, off/2)
	}
	return b
}

// squareGlyph is a one-contour glyph with all-on-curve corner points at
// (50,0) (50,750) (450,750) (450,0).
func squareGlyph() []byte {
	b := make([]byte, 0, 32)
	hdr := make([]byte, 10)
	putI16(hdr, 0, 1) // one contour
	putI16(hdr, 2, 50)
	putI16(hdr, 4, 0)
	putI16(hdr, 6, 450)
	putI16(hdr, 8, 750)
	b = append(b, hdr...)
	b = append(b, 0, 3) // endPtsOfContours = [3]
	b = append(b, 0, 0) // no instructions
	b = append(b,
		0x33, // on, x short positive, y same
		0x11, // on, x same, y word
		0x21, // on, x word, y same
		0x11, // on, x same, y word
	)
	b = append(b, 50)          // x: +50
	b = append(b, 0x01, 0x90)  // x: +400
	b = append(b, 0x02, 0xee)  // y: +750
	b = append(b, 0xfd, 0x12)  // y: -750
	return b
}

// metricFont builds a parseable font with the square as glyph 1 and an
// empty glyph 0.
func metricFont() map[string][]byte {
	square := squareGlyph()
	if len(square)%2 != 0 { // short loca needs even offsets
		square = append(square, 0)
	}
	hmtx := make([]byte, 8)
	putU16(hmtx, 0, 500) // glyph 0 advance
	putI16(hmtx, 2, 0)
	putU16(hmtx, 4, 540) // glyph 1 advance
	putI16(hmtx, 6, 50)
	return map[string][]byte{
		"head": headTable(1000, 0),
		"hhea": hheaTable(800, -200, 90, 2),
		"maxp": maxpTable(2),
		"hmtx": hmtx,
		"loca": shortLoca(0, 0, uint16(len(square))),
		"glyf": square,
	}
}

// ---------------------------------------------------------------------------
// pathRecorder captures emitted path commands as an SVG-like string.

type pathRecorder struct {
	sb strings.Builder
}

func (p *pathRecorder) MoveTo(x, y float32) {
	fmt.Fprintf(&p.sb, "M %g %g ", x, y)
}

func (p *pathRecorder) LineTo(x, y float32) {
	fmt.Fprintf(&p.sb, "L %g %g ", x, y)
}

func (p *pathRecorder) QuadTo(cx, cy, x, y float32) {
	fmt.Fprintf(&p.sb, "Q %g %g %g %g ", cx, cy, x, y)
}

func (p *pathRecorder) CurveTo(cx1, cy1, cx2, cy2, x, y float32) {
	fmt.Fprintf(&p.sb, "C %g %g %g %g %g %g ", cx1, cy1, cx2, cy2, x, y)
}

func (p *pathRecorder) ClosePath() {
	p.sb.WriteString("Z ")
}

func (p *pathRecorder) String() string {
	return strings.TrimSpace(p.sb.String())
}
