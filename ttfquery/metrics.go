package ttfquery

import (
	"math"

	"github.com/npillmayer/truetype/ttf"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType classifies a font by its outline format, returning "TrueType"
// for glyf-based fonts, "OpenType" for CFF-based fonts, and "Unknown"
// for fonts carrying neither.
func FontType(otf *ttf.Font) string {
	if otf == nil {
		return "Unknown"
	}
	if otf.Table(ttf.T("glyf")) != nil {
		return "TrueType"
	}
	if otf.Table(ttf.T("CFF ")) != nil {
		return "OpenType"
	}
	return "Unknown"
}

// FontMetrics retrieves selected metrics of a font.
//
// For a variable font with a non-default active instance, metric deltas
// from table 'MVAR' are applied to ascender, descender and line gap.
func FontMetrics(otf *ttf.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	metrics.Ascent = sfnt.Units(otf.Ascender())
	metrics.Descent = sfnt.Units(otf.Descender())
	metrics.LineGap = sfnt.Units(otf.LineGap())
	if hhea := otf.HHea; hhea != nil {
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if otf.IsVariable() {
		metrics.Ascent += roundDelta(otf.MetricsDelta(ttf.T("hasc")))
		metrics.Descent += roundDelta(otf.MetricsDelta(ttf.T("hdsc")))
		metrics.LineGap += roundDelta(otf.MetricsDelta(ttf.T("hlgp")))
	}
	metrics.UnitsPerEm = sfnt.Units(otf.UnitsPerEm())
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphMetrics retrieves metrics for a given glyph, at the font's active
// variation instance.
func GlyphMetrics(otf *ttf.Font, gid ttf.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if aw, err := otf.GlyphAdvance(gid); err == nil {
		metrics.Advance = sfnt.Units(aw)
	}
	if lsb, err := otf.GlyphSideBearing(gid); err == nil {
		metrics.LSB = sfnt.Units(lsb)
	}
	if bbox, err := otf.GlyphBoundingBox(gid); err == nil {
		metrics.BBox = BoundingBox{
			MinX: sfnt.Units(bbox.XMin),
			MinY: sfnt.Units(bbox.YMin),
			MaxX: sfnt.Units(bbox.XMax),
			MaxY: sfnt.Units(bbox.YMax),
		}
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// Glyphs without contours have no bbox; their RSB stays zero.
	if !metrics.BBox.IsEmpty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

func roundDelta(d float64) sfnt.Units {
	return sfnt.Units(math.Round(d))
}
