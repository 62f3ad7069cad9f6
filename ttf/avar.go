package ttf

// Axis value remapping, table 'avar'.
//
// The table holds one segment map per axis, each a list of
// (fromCoordinate, toCoordinate) pairs in 2.14. A normalized coordinate is
// mapped piecewise linearly between the surrounding pairs; coordinates
// outside the mapped range are shifted by the edge pair's offset.

// checkAvar validates the avar header against the font's axis count and
// returns the table data when usable. Segment maps are variable-length, so
// validation walks all of them once.
func checkAvar(b binarySegm, axisCount int) (binarySegm, bool) {
	s := stream(b)
	major := s.readU16()
	s.skip(2) // minor version
	s.skip(2) // reserved
	n := int(s.readU16())
	if s.err != nil || major != 1 || n != axisCount {
		return nil, false
	}
	for axis := 0; axis < n; axis++ {
		pairs := int(s.readU16())
		s.skip(pairs * 4)
	}
	if s.err != nil {
		return nil, false
	}
	return b, true
}

// avarMapCoords maps all coordinates in place. b must have passed checkAvar
// with len(coords) axes.
func avarMapCoords(b binarySegm, coords []NormCoord) {
	s := stream(b)
	s.skip(8) // header, validated by checkAvar
	for axis := range coords {
		pairs := int(s.readU16())
		seg := s.readBytes(pairs * 4)
		if s.err != nil {
			return
		}
		coords[axis] = avarMapValue(seg, pairs, coords[axis])
	}
}

// avarMapValue applies one axis's segment map to a coordinate.
func avarMapValue(seg binarySegm, pairs int, value NormCoord) NormCoord {
	if pairs == 0 {
		return value
	}
	from := func(i int) NormCoord { return NormCoord(int16(seg.U16(i * 4))) }
	to := func(i int) NormCoord { return NormCoord(int16(seg.U16(i*4 + 2))) }

	if value <= from(0) {
		return clampCoord(value.Float() - from(0).Float() + to(0).Float())
	}
	last := pairs - 1
	if value >= from(last) {
		return clampCoord(value.Float() - from(last).Float() + to(last).Float())
	}
	// Find the surrounding pair and interpolate.
	i := 0
	for i < last && from(i+1) < value {
		i++
	}
	if from(i+1) == value {
		return to(i + 1)
	}
	f0, f1 := from(i).Float(), from(i+1).Float()
	t0, t1 := to(i).Float(), to(i+1).Float()
	if f1 == f0 {
		return clampCoord(t0)
	}
	ratio := (value.Float() - f0) / (f1 - f0)
	return clampCoord(t0 + (t1-t0)*ratio)
}
