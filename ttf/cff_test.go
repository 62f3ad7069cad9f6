package ttf

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestSubrBias(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	require.Equal(t, 107, subrBias(0))
	require.Equal(t, 107, subrBias(1239))
	require.Equal(t, 1131, subrBias(1240))
	require.Equal(t, 1131, subrBias(33899))
	require.Equal(t, 32768, subrBias(33900))
}

func TestCharstringOperand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	for _, tc := range []struct {
		data     []byte
		want     float64
		consumed int
	}{
		{[]byte{139}, 0, 1},
		{[]byte{189}, 50, 1},
		{[]byte{32}, -107, 1},
		{[]byte{246}, 107, 1},
		{[]byte{249, 130}, 750, 2},
		{[]byte{253, 130}, -750, 2},
		{[]byte{28, 0x03, 0xe8}, 1000, 3},
		{[]byte{28, 0xfc, 0x18}, -1000, 3},
		{[]byte{255, 0x00, 0x01, 0x80, 0x00}, 1.5, 5},
	} {
		got, consumed := charstringOperand(tc.data)
		require.Equal(t, tc.want, got, "operand % x", tc.data)
		require.Equal(t, tc.consumed, consumed, "operand % x", tc.data)
	}
	// Truncated multi-byte operands signal zero consumption.
	_, consumed := charstringOperand([]byte{255, 1, 2})
	require.Equal(t, 0, consumed)
}

// buildCFF assembles a minimal CFF table with one charstring glyph.
func buildCFF(t *testing.T, charstring []byte) []byte {
	t.Helper()
	index := func(entries ...[]byte) []byte {
		if len(entries) == 0 {
			return []byte{0, 0}
		}
		b := []byte{0, byte(len(entries)), 1} // count, offSize 1
		offset := 1
		b = append(b, byte(offset))
		for _, e := range entries {
			offset += len(e)
			b = append(b, byte(offset))
		}
		for _, e := range entries {
			b = append(b, e...)
		}
		return b
	}
	header := []byte{1, 0, 4, 1}
	nameIndex := index([]byte("Test"))
	// Top DICT: int32 operand (patched below) + CharStrings operator.
	topDict := []byte{29, 0, 0, 0, 0, dictCharStrings}
	topDictIndex := index(topDict)
	stringIndex := index()
	gsubrIndex := index()
	prefix := len(header) + len(nameIndex) + len(topDictIndex) + len(stringIndex) + len(gsubrIndex)

	b := make([]byte, 0, prefix+16+len(charstring))
	b = append(b, header...)
	b = append(b, nameIndex...)
	b = append(b, topDictIndex...)
	b = append(b, stringIndex...)
	b = append(b, gsubrIndex...)
	b = append(b, index(charstring)...)
	// Patch the CharStrings offset inside the top DICT.
	dictPos := len(header) + len(nameIndex) + 5 // count, offSize and two offsets precede the DICT
	putU32(b, dictPos+1, uint32(prefix))
	return b
}

func TestCFFSquareOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// 50 0 rmoveto  0 750 rlineto  400 0 rlineto  0 -750 rlineto  endchar
	charstring := []byte{
		189, 139, csRmoveto,
		139, 249, 130, csRlineto,
		248, 36, 139, csRlineto,
		139, 253, 130, csRlineto,
		csEndchar,
	}
	data := buildCFF(t, charstring)
	ec := &errorCollector{}
	table, err := parseCFF(T("CFF "), data, 0, uint32(len(data)), ec)
	require.NoError(t, err)
	cff := table.Self().AsCFF()
	require.NotNil(t, cff)
	require.Equal(t, 1, cff.charStrings.count())

	rec := &pathRecorder{}
	bbox, err := cff.outline(0, newOutlineSink(rec))
	require.NoError(t, err)
	require.Equal(t, "M 50 0 L 50 750 L 450 750 L 450 0 Z", rec.String())
	require.Equal(t, Rect{XMin: 50, YMin: 0, XMax: 450, YMax: 750}, bbox)
}

func TestCFFWidthOperandIsSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// A leading surplus operand on the first stack-clearing operator is
	// the glyph width: "600 50 0 rmoveto ..." draws like "50 0 rmoveto".
	charstring := []byte{
		28, 0x02, 0x58, 189, 139, csRmoveto,
		139, 249, 130, csRlineto,
		csEndchar,
	}
	data := buildCFF(t, charstring)
	ec := &errorCollector{}
	table, err := parseCFF(T("CFF "), data, 0, uint32(len(data)), ec)
	require.NoError(t, err)
	cff := table.Self().AsCFF()

	rec := &pathRecorder{}
	_, err = cff.outline(0, newOutlineSink(rec))
	require.NoError(t, err)
	require.Equal(t, "M 50 0 L 50 750 Z", rec.String())
}

func TestCFFCurves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// "0 0 rmoveto 10 20 30 40 50 60 rrcurveto endchar"
	charstring := []byte{
		139, 139, csRmoveto,
		149, 159, 169, 179, 189, 199, csRrcurveto,
		csEndchar,
	}
	data := buildCFF(t, charstring)
	ec := &errorCollector{}
	table, err := parseCFF(T("CFF "), data, 0, uint32(len(data)), ec)
	require.NoError(t, err)
	cff := table.Self().AsCFF()

	rec := &pathRecorder{}
	_, err = cff.outline(0, newOutlineSink(rec))
	require.NoError(t, err)
	require.Equal(t, "M 0 0 C 10 20 40 60 90 120 Z", rec.String())
}

func TestCFFGlyphWithoutCharstring(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	data := buildCFF(t, []byte{csEndchar})
	ec := &errorCollector{}
	table, err := parseCFF(T("CFF "), data, 0, uint32(len(data)), ec)
	require.NoError(t, err)
	cff := table.Self().AsCFF()
	_, err = cff.outline(5, newOutlineSink(&pathRecorder{}))
	require.Error(t, err)
}
