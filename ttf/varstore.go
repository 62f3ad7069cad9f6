package ttf

import "fmt"

// Item variation store, the delta machinery shared by HVAR and MVAR.
//
// The store holds a region list (per-axis start/peak/end triples in 2.14)
// and groups of delta sets. A (outer, inner) index pair selects one delta
// set; its deltas are blended with the scalar contribution of each region
// at the active coordinates.

type itemVarStore struct {
	data        binarySegm
	regionList  binarySegm // region axis triples, regionCount * axisCount * 6 bytes
	axisCount   int
	regionCount int
	dataOffsets []uint32 // offsets of the item variation data subtables
}

func parseItemVarStore(b binarySegm) (*itemVarStore, error) {
	format, err := b.u16(0)
	if err != nil || format != 1 {
		return nil, fmt.Errorf("unsupported variation store format %d", format)
	}
	regionListOffset, _ := b.u32(2)
	dataCount, _ := b.u16(6)
	st := &itemVarStore{data: b}
	st.dataOffsets = make([]uint32, dataCount)
	for i := 0; i < int(dataCount); i++ {
		off, err := b.u32(8 + i*4)
		if err != nil {
			return nil, fmt.Errorf("variation data offsets truncated")
		}
		st.dataOffsets[i] = off
	}
	rl, err := b.view(int(regionListOffset), 4)
	if err != nil {
		return nil, fmt.Errorf("region list out of bounds")
	}
	st.axisCount = int(binarySegm(rl).U16(0))
	st.regionCount = int(binarySegm(rl).U16(2))
	size, err := checkedMulInt(st.regionCount, st.axisCount*6)
	if err != nil {
		return nil, err
	}
	st.regionList, err = b.view(int(regionListOffset)+4, size)
	if err != nil {
		return nil, fmt.Errorf("region list truncated")
	}
	return st, nil
}

// regionScalar evaluates one region's contribution at the given coordinates.
func (st *itemVarStore) regionScalar(region int, coords []NormCoord) float64 {
	scalar := 1.0
	for axis := 0; axis < st.axisCount; axis++ {
		base := (region*st.axisCount + axis) * 6
		start := NormCoord(int16(st.regionList.U16(base)))
		peak := NormCoord(int16(st.regionList.U16(base + 2)))
		end := NormCoord(int16(st.regionList.U16(base + 4)))
		var coord NormCoord
		if axis < len(coords) {
			coord = coords[axis]
		}
		scalar *= axisScalar(start, peak, end, coord)
		if scalar == 0 {
			return 0
		}
	}
	return scalar
}

// axisScalar is the per-axis tent function of the variation model.
// Degenerate regions (peak outside [start, end], or a region straddling
// zero) contribute a neutral factor 1.
func axisScalar(start, peak, end, coord NormCoord) float64 {
	if peak == 0 || coord == peak {
		return 1
	}
	if start > peak || peak > end {
		return 1
	}
	if start < 0 && end > 0 {
		return 1
	}
	if coord <= start || end <= coord {
		return 0
	}
	if coord < peak {
		return (coord.Float() - start.Float()) / (peak.Float() - start.Float())
	}
	return (end.Float() - coord.Float()) / (end.Float() - peak.Float())
}

// delta evaluates the delta set at (outer, inner) for the given coordinates.
func (st *itemVarStore) delta(outer, inner int, coords []NormCoord) float64 {
	if outer < 0 || outer >= len(st.dataOffsets) {
		return 0
	}
	data, err := st.data.view(int(st.dataOffsets[outer]), 6)
	if err != nil {
		return 0
	}
	seg := binarySegm(data)
	itemCount := int(seg.U16(0))
	shortCount := int(seg.U16(2))
	regionIndexCount := int(seg.U16(4))
	if inner < 0 || inner >= itemCount || shortCount > regionIndexCount {
		return 0
	}
	// Delta sets follow the region index array; each set holds shortCount
	// int16 deltas and (regionIndexCount - shortCount) int8 deltas.
	setSize := shortCount*2 + (regionIndexCount - shortCount)
	base := int(st.dataOffsets[outer]) + 6 + regionIndexCount*2 + inner*setSize
	var total float64
	for i := 0; i < regionIndexCount; i++ {
		regionIndex, err := st.data.u16(int(st.dataOffsets[outer]) + 6 + i*2)
		if err != nil || int(regionIndex) >= st.regionCount {
			return 0
		}
		var d float64
		if i < shortCount {
			v, err := st.data.i16(base + i*2)
			if err != nil {
				return 0
			}
			d = float64(v)
		} else {
			v, err := st.data.i8(base + shortCount*2 + (i - shortCount))
			if err != nil {
				return 0
			}
			d = float64(v)
		}
		if d == 0 {
			continue
		}
		total += d * st.regionScalar(int(regionIndex), coords)
	}
	return total
}

// --- Delta-set index map ---------------------------------------------------

// deltaSetIndexMap maps a glyph ID to an (outer, inner) delta-set index
// pair, with bit-packed entries. A nil map is the identity mapping
// (outer 0, inner = glyph ID).
type deltaSetIndexMap struct {
	data      binarySegm
	entrySize int
	innerBits uint
	mapCount  int
}

func parseDeltaSetIndexMap(b binarySegm) (*deltaSetIndexMap, error) {
	entryFormat, err := b.u16(0)
	if err != nil {
		return nil, fmt.Errorf("index map truncated")
	}
	mapCount, _ := b.u16(2)
	m := &deltaSetIndexMap{
		innerBits: uint(entryFormat&0x000f) + 1,
		entrySize: int((entryFormat&0x0030)>>4) + 1,
		mapCount:  int(mapCount),
	}
	size, err := checkedMulInt(m.entrySize, m.mapCount)
	if err != nil {
		return nil, err
	}
	m.data, err = b.view(4, size)
	if err != nil {
		return nil, fmt.Errorf("index map entries truncated")
	}
	return m, nil
}

func (m *deltaSetIndexMap) lookup(g GlyphIndex) (outer, inner int) {
	if m == nil {
		return 0, int(g)
	}
	i := int(g)
	if i >= m.mapCount {
		// Glyphs past the map reuse its last entry.
		i = m.mapCount - 1
	}
	if i < 0 {
		return 0, 0
	}
	var entry uint32
	for b := 0; b < m.entrySize; b++ {
		v, err := m.data.u8(i*m.entrySize + b)
		if err != nil {
			return 0, 0
		}
		entry = entry<<8 | uint32(v)
	}
	return int(entry >> m.innerBits), int(entry & (1<<m.innerBits - 1))
}

// --- HVAR ------------------------------------------------------------------

// hvarTable varies horizontal metrics (advance width, side bearings) with
// the active instance.
type hvarTable struct {
	store      *itemVarStore
	advanceMap *deltaSetIndexMap // nil: identity mapping
	lsbMap     *deltaSetIndexMap // nil: no LSB deltas
	hasLsbMap  bool
}

func parseHvar(b binarySegm) (*hvarTable, error) {
	major, err := b.u16(0)
	if err != nil || major != 1 {
		return nil, fmt.Errorf("unsupported HVAR version")
	}
	storeOffset, _ := b.u32(4)
	advanceMapOffset, _ := b.u32(8)
	lsbMapOffset, _ := b.u32(12)
	storeData, err := b.view(int(storeOffset), len(b)-int(storeOffset))
	if err != nil {
		return nil, fmt.Errorf("variation store out of bounds")
	}
	store, err := parseItemVarStore(storeData)
	if err != nil {
		return nil, err
	}
	t := &hvarTable{store: store}
	if advanceMapOffset != 0 {
		mapData, err := b.view(int(advanceMapOffset), len(b)-int(advanceMapOffset))
		if err != nil {
			return nil, fmt.Errorf("advance index map out of bounds")
		}
		if t.advanceMap, err = parseDeltaSetIndexMap(mapData); err != nil {
			return nil, err
		}
	}
	if lsbMapOffset != 0 {
		mapData, err := b.view(int(lsbMapOffset), len(b)-int(lsbMapOffset))
		if err != nil {
			return nil, fmt.Errorf("lsb index map out of bounds")
		}
		if t.lsbMap, err = parseDeltaSetIndexMap(mapData); err != nil {
			return nil, err
		}
		t.hasLsbMap = true
	}
	return t, nil
}

func (t *hvarTable) advanceDelta(g GlyphIndex, coords []NormCoord) float64 {
	outer, inner := t.advanceMap.lookup(g)
	return t.store.delta(outer, inner, coords)
}

func (t *hvarTable) sideBearingDelta(g GlyphIndex, coords []NormCoord) float64 {
	if !t.hasLsbMap {
		return 0
	}
	outer, inner := t.lsbMap.lookup(g)
	return t.store.delta(outer, inner, coords)
}

// --- MVAR ------------------------------------------------------------------

// MetricsDelta returns the variation delta for a font-wide metric value
// (table 'MVAR'), e.g. T("hasc") for the horizontal ascender, at the
// currently active instance. Metrics without an MVAR record, and
// non-variable fonts, yield 0.
func (f *Font) MetricsDelta(tag Tag) float64 {
	if f.mvar == nil || allDefault(f.coords) {
		return 0
	}
	b := f.mvar
	major := b.U16(0)
	if major != 1 {
		return 0
	}
	recordSize := int(b.U16(6))
	recordCount := int(b.U16(8))
	storeOffset := int(b.U16(10))
	if recordSize < 8 || recordCount == 0 || storeOffset == 0 {
		return 0
	}
	storeData, err := b.view(storeOffset, len(b)-storeOffset)
	if err != nil {
		return 0
	}
	store, err := parseItemVarStore(storeData)
	if err != nil {
		return 0
	}
	// Value records are sorted by tag; a linear scan is fine for the
	// handful of records real fonts carry.
	for i := 0; i < recordCount; i++ {
		rec, err := b.view(12+i*recordSize, 8)
		if err != nil {
			return 0
		}
		seg := binarySegm(rec)
		if Tag(seg.U32(0)) != tag {
			continue
		}
		outer := int(seg.U16(4))
		inner := int(seg.U16(6))
		return store.delta(outer, inner, f.coords)
	}
	return 0
}
