package ttf

import "fmt"

// Variation axes of a variable font, from table 'fvar'.
//
// User-facing axis values (e.g. weight 400) are normalized to the format's
// 2.14 fixed-point domain before any variation table consumes them: the
// axis default maps to 0, the minimum to -1, the maximum to +1, piecewise
// linearly. An optional 'avar' table post-processes the normalized value.

// NormCoord is a normalized axis coordinate in 2.14 fixed-point,
// in the range [-16384, 16384] for [-1.0, 1.0].
type NormCoord int16

// Float converts c to a float64 in [-1.0, 1.0].
func (c NormCoord) Float() float64 {
	return float64(c) / 16384.0
}

// VariationAxis describes one axis of design-space variation.
type VariationAxis struct {
	Tag     Tag     // axis tag, e.g. 'wght'
	Minimum float64 // lowest user coordinate
	Default float64 // user coordinate of the default instance
	Maximum float64 // highest user coordinate
	Hidden  bool    // axis should not be exposed in UIs
	NameID  uint16  // 'name' table entry for the axis name
}

// FvarTable is the parsed axis list of table 'fvar'.
type FvarTable struct {
	tableBase
	axes []VariationAxis
}

const hiddenAxisFlag = 0x0001

func newFvarTable(tag Tag, b binarySegm, offset, size uint32) *FvarTable {
	t := &FvarTable{}
	t.tableBase = tableBase{data: b, name: tag, offset: offset, length: size}
	t.self = t
	return t
}

// fvar header: majorVersion, minorVersion, axesArrayOffset, reserved,
// axisCount, axisSize, instanceCount, instanceSize; all uint16 except the
// leading version pair. Axis records are 20 bytes.
func parseFvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newFvarTable(tag, b, offset, size)
	if size < 16 {
		ec.addWarning(tag, "fvar table too small, ignoring", offset)
		return t, nil
	}
	major, _ := b.u16(0)
	if major != 1 {
		ec.addWarning(tag, fmt.Sprintf("unsupported fvar version %d, ignoring", major), offset)
		return t, nil
	}
	axesOffset, _ := b.u16(4)
	axisCount, _ := b.u16(8)
	axisSize, _ := b.u16(10)
	if axisCount == 0 || axisCount > MaxAxisCount || axisSize < 20 {
		ec.addWarning(tag, fmt.Sprintf("implausible axis layout (count=%d, size=%d), ignoring", axisCount, axisSize), offset)
		return t, nil
	}
	axes := make([]VariationAxis, 0, axisCount)
	for i := 0; i < int(axisCount); i++ {
		rec, err := b.view(int(axesOffset)+i*int(axisSize), 20)
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("axis record %d out of bounds, ignoring table", i), offset)
			return t, nil
		}
		seg := binarySegm(rec)
		axis := VariationAxis{Tag: Tag(seg.U32(0))}
		axis.Minimum, _ = seg.fixed(4)
		axis.Default, _ = seg.fixed(8)
		axis.Maximum, _ = seg.fixed(12)
		flags := seg.U16(16)
		axis.Hidden = flags&hiddenAxisFlag != 0
		axis.NameID = seg.U16(18)
		if axis.Minimum > axis.Default || axis.Default > axis.Maximum {
			ec.addWarning(tag, fmt.Sprintf("axis %s has inverted range [%g, %g, %g], ignoring table",
				axis.Tag, axis.Minimum, axis.Default, axis.Maximum), offset)
			return t, nil
		}
		axes = append(axes, axis)
	}
	t.axes = axes
	return t, nil
}

// --- Axis queries on the font ----------------------------------------------

// IsVariable reports whether the font carries design-space variation axes.
func (f *Font) IsVariable() bool {
	return f.Fvar != nil && len(f.Fvar.axes) > 0
}

// AxisCount returns the number of variation axes, 0 for non-variable fonts.
func (f *Font) AxisCount() int {
	if f.Fvar == nil {
		return 0
	}
	return len(f.Fvar.axes)
}

// Axis returns variation axis number i, in the order of the font's axis
// list. Fails with ErrOutOfRange for invalid indices.
func (f *Font) Axis(i int) (VariationAxis, error) {
	if f.Fvar == nil || i < 0 || i >= len(f.Fvar.axes) {
		return VariationAxis{}, fmt.Errorf("%w: axis %d of %d", ErrOutOfRange, i, f.AxisCount())
	}
	return f.Fvar.axes[i], nil
}

// AxisByTag returns the variation axis with the given tag.
func (f *Font) AxisByTag(tag Tag) (VariationAxis, bool) {
	if f.Fvar == nil {
		return VariationAxis{}, false
	}
	for _, axis := range f.Fvar.axes {
		if axis.Tag == tag {
			return axis, true
		}
	}
	return VariationAxis{}, false
}

// Axes returns all variation axes in font order. The returned slice is a
// copy and may be modified by the caller.
func (f *Font) Axes() []VariationAxis {
	if f.Fvar == nil {
		return nil
	}
	axes := make([]VariationAxis, len(f.Fvar.axes))
	copy(axes, f.Fvar.axes)
	return axes
}

// Coords returns the active normalized variation coordinates, one per axis
// in font order. The returned slice is a copy.
func (f *Font) Coords() []NormCoord {
	coords := make([]NormCoord, len(f.coords))
	copy(coords, f.coords)
	return coords
}

// SetVariation sets one axis of the active variation instance to a user
// coordinate (e.g. 700 for 'wght'). Values outside the axis range are
// clamped. Fails with ErrUnknownAxis if the font has no such axis.
//
// Setting an axis repeatedly is idempotent: the mapping always starts from
// the raw user value, never from an already-mapped coordinate.
func (f *Font) SetVariation(tag Tag, value float64) error {
	if f.Fvar == nil {
		return fmt.Errorf("%w: %s (font is not variable)", ErrUnknownAxis, tag)
	}
	for i, axis := range f.Fvar.axes {
		if axis.Tag == tag {
			f.userCoords[i] = normalize(axis, value)
			f.remapCoords()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAxis, tag)
}

// SetVariations sets all axes of the active variation instance at once,
// in font axis order. len(values) must match AxisCount.
func (f *Font) SetVariations(values []float64) error {
	if f.Fvar == nil {
		return fmt.Errorf("%w: font is not variable", ErrUnknownAxis)
	}
	if len(values) != len(f.Fvar.axes) {
		return fmt.Errorf("%w: %d values for %d axes", ErrOutOfRange, len(values), len(f.Fvar.axes))
	}
	for i, axis := range f.Fvar.axes {
		f.userCoords[i] = normalize(axis, values[i])
	}
	f.remapCoords()
	return nil
}

// remapCoords recomputes the effective coordinates from the raw normalized
// user coordinates, applying the avar mapping when present.
func (f *Font) remapCoords() {
	copy(f.coords, f.userCoords)
	if f.avar != nil {
		avarMapCoords(f.avar, f.coords)
	}
}

// normalize converts a user axis value to a normalized 2.14 coordinate.
// The value is clamped to the axis range first; the default maps to 0, the
// extremes to ±1.
func normalize(axis VariationAxis, value float64) NormCoord {
	if value < axis.Minimum {
		value = axis.Minimum
	} else if value > axis.Maximum {
		value = axis.Maximum
	}
	var norm float64
	switch {
	case value < axis.Default && axis.Default > axis.Minimum:
		norm = (value - axis.Default) / (axis.Default - axis.Minimum)
	case value > axis.Default && axis.Maximum > axis.Default:
		norm = (value - axis.Default) / (axis.Maximum - axis.Default)
	}
	return clampCoord(norm)
}

// clampCoord rounds a [-1,1] float to 2.14 and clamps the result.
// Magnitudes below half a 2.14 step collapse to 0.
func clampCoord(norm float64) NormCoord {
	scaled := norm * 16384.0
	var fixed int
	if scaled >= 0 {
		fixed = int(scaled + 0.5)
	} else {
		fixed = int(scaled - 0.5)
	}
	if fixed > 16384 {
		fixed = 16384
	} else if fixed < -16384 {
		fixed = -16384
	}
	return NormCoord(fixed)
}
