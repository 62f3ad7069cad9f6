package ttf

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

// fvarWght builds an fvar table with a single 'wght' axis 100…900,
// default 400.
func fvarWght() []byte {
	b := make([]byte, 16+20)
	putU16(b, 0, 1)  // major version
	putU16(b, 4, 16) // axes array offset
	putU16(b, 8, 1)  // axis count
	putU16(b, 10, 20)
	copy(b[16:], "wght")
	putU32(b, 20, 100<<16) // minimum
	putU32(b, 24, 400<<16) // default
	putU32(b, 28, 900<<16) // maximum
	putU16(b, 34, 257)     // axis name ID
	return b
}

func variableFont() map[string][]byte {
	tables := metricFont()
	tables["fvar"] = fvarWght()
	return tables
}

func TestFvarAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(variableFont(), 0))
	require.NoError(t, err)
	require.True(t, otf.IsVariable())
	require.Equal(t, 1, otf.AxisCount())

	axis, err := otf.Axis(0)
	require.NoError(t, err)
	require.Equal(t, T("wght"), axis.Tag)
	require.Equal(t, 100.0, axis.Minimum)
	require.Equal(t, 400.0, axis.Default)
	require.Equal(t, 900.0, axis.Maximum)
	require.False(t, axis.Hidden)
	require.EqualValues(t, 257, axis.NameID)

	_, err = otf.Axis(1)
	require.True(t, errors.Is(err, ErrOutOfRange))

	axis, ok := otf.AxisByTag(T("wght"))
	require.True(t, ok)
	require.Equal(t, T("wght"), axis.Tag)
	_, ok = otf.AxisByTag(T("wdth"))
	require.False(t, ok)
}

func TestNormalization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(variableFont(), 0))
	require.NoError(t, err)
	for _, tc := range []struct {
		value float64
		want  NormCoord
	}{
		{400, 0},      // default
		{100, -16384}, // minimum
		{900, 16384},  // maximum
		{650, 8192},   // halfway up
		{250, -8192},  // halfway down
		{1000, 16384}, // clamped to maximum
		{0, -16384},   // clamped to minimum
	} {
		require.NoError(t, otf.SetVariation(T("wght"), tc.value))
		require.Equal(t, tc.want, otf.Coords()[0], "wght=%g", tc.value)
	}
}

func TestSetVariationUnknownAxis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(variableFont(), 0))
	require.NoError(t, err)
	err = otf.SetVariation(T("wdth"), 100)
	require.True(t, errors.Is(err, ErrUnknownAxis), "expected ErrUnknownAxis, got %v", err)

	plain, err := Parse(buildSFNT(metricFont(), 0))
	require.NoError(t, err)
	err = plain.SetVariation(T("wght"), 700)
	require.True(t, errors.Is(err, ErrUnknownAxis))
}

func TestSetVariationsLengthMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	otf, err := Parse(buildSFNT(variableFont(), 0))
	require.NoError(t, err)
	err = otf.SetVariations([]float64{700, 100})
	require.True(t, errors.Is(err, ErrOutOfRange), "expected ErrOutOfRange, got %v", err)
	require.NoError(t, otf.SetVariations([]float64{700}))
	require.Equal(t, NormCoord(9830), otf.Coords()[0]) // (700-400)/500 in 2.14
}

func TestSetVariationIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	// Repeatedly setting the same user value must not re-map an already
	// mapped coordinate, even with avar present.
	tables := variableFont()
	avar := make([]byte, 8+2+3*4)
	putU16(avar, 0, 1) // major version
	putU16(avar, 6, 1) // axis count
	putU16(avar, 8, 3) // position map count
	putI16(avar, 10, -16384)
	putI16(avar, 12, -16384)
	putI16(avar, 14, 0)
	putI16(avar, 16, 0)
	putI16(avar, 18, 16384)
	putI16(avar, 20, 8192) // +1.0 squeezed to +0.5
	tables["avar"] = avar
	otf, err := Parse(buildSFNT(tables, 0))
	require.NoError(t, err)

	require.NoError(t, otf.SetVariation(T("wght"), 900))
	require.Equal(t, NormCoord(8192), otf.Coords()[0])
	require.NoError(t, otf.SetVariation(T("wght"), 900))
	require.Equal(t, NormCoord(8192), otf.Coords()[0], "second set must not re-map")

	// Mid-range values interpolate within the mapped segment.
	require.NoError(t, otf.SetVariation(T("wght"), 650))
	require.Equal(t, NormCoord(4096), otf.Coords()[0])
}

func TestAvarMapValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.truetype")
	defer teardown()
	//
	seg := make([]byte, 3*4)
	putI16(seg, 0, -16384)
	putI16(seg, 2, -16384)
	putI16(seg, 4, 0)
	putI16(seg, 6, 4096)
	putI16(seg, 8, 16384)
	putI16(seg, 10, 16384)
	require.Equal(t, NormCoord(4096), avarMapValue(seg, 3, 0))
	require.Equal(t, NormCoord(-16384), avarMapValue(seg, 3, -16384))
	require.Equal(t, NormCoord(16384), avarMapValue(seg, 3, 16384))
	// Halfway between the second and third pair.
	require.Equal(t, NormCoord(10240), avarMapValue(seg, 3, 8192))
	// An empty segment map is the identity.
	require.Equal(t, NormCoord(1234), avarMapValue(nil, 0, 1234))
}
