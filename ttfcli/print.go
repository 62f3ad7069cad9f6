package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/truetype/ttf"
	"github.com/npillmayer/truetype/ttfquery"
	"github.com/pterm/pterm"
)

var ERR_NO_FONT = errors.New("no font loaded")

func (intp *Intp) checkFont() error {
	if intp.font == nil {
		return ERR_NO_FONT
	}
	return nil
}

func tablesOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	data := [][]string{
		{"Tag", "Offset", "Size"},
	}
	for _, tag := range intp.font.TableTags() {
		off, size := intp.font.Table(tag).Extent()
		data = append(data, []string{
			tag.String(),
			fmt.Sprintf("%d", off),
			fmt.Sprintf("%d", size),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func infoOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	pterm.Printf("Type: %s\n", ttfquery.FontType(intp.font))
	names := ttfquery.NameInfo(intp.font)
	if family := names["family"]; family != "" {
		pterm.Printf("Family: %s\n", family)
	}
	if sub := names["subfamily"]; sub != "" {
		pterm.Printf("Subfamily: %s\n", sub)
	}
	if version := names["version"]; version != "" {
		pterm.Printf("Version: %s\n", version)
	}
	metrics := ttfquery.FontMetrics(intp.font)
	pterm.Printf("Units/em: %d\n", metrics.UnitsPerEm)
	pterm.Printf("Ascent: %d  Descent: %d  LineGap: %d\n",
		metrics.Ascent, metrics.Descent, metrics.LineGap)
	pterm.Printf("Glyphs: %d\n", intp.font.NumGlyphs())
	if intp.font.IsVariable() {
		pterm.Printf("Variable font with %d axes\n", intp.font.AxisCount())
	}
	return nil, false
}

func headOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	h, ok := ttfquery.HeadInfo(intp.font)
	if !ok {
		return errors.New("cannot decode table 'head'"), false
	}
	pterm.Printf("Version: %d.%d  Revision: %#x\n", h.MajorVersion, h.MinorVersion, h.FontRevision)
	pterm.Printf("Magic: %#x  Flags: %#04x  MacStyle: %#04x\n", h.MagicNumber, h.Flags, h.MacStyle)
	pterm.Printf("Units/em: %d  LowestRecPPEM: %d\n", h.UnitsPerEm, h.LowestRecPPEM)
	pterm.Printf("BBox: (%d,%d) - (%d,%d)\n", h.XMin, h.YMin, h.XMax, h.YMax)
	pterm.Printf("IndexToLocFormat: %d\n", h.IndexToLocFormat)
	return nil, false
}

func maxpOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	m, ok := ttfquery.MaxPInfo(intp.font)
	if !ok {
		return errors.New("cannot decode table 'maxp'"), false
	}
	pterm.Printf("Version: %#x  Glyphs: %d\n", m.VersionFixed, m.NumGlyphs)
	if m.HasExtendedProfile {
		pterm.Printf("MaxPoints: %d  MaxContours: %d\n", m.MaxPoints, m.MaxContours)
		pterm.Printf("MaxCompositePoints: %d  MaxComponentDepth: %d\n",
			m.MaxCompositePoints, m.MaxComponentDepth)
	}
	return nil, false
}

func axesOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	if !intp.font.IsVariable() {
		pterm.Println("font has no variation axes")
		return nil, false
	}
	data := [][]string{
		{"Tag", "Name", "Min", "Default", "Max", "Current"},
	}
	coords := intp.font.Coords()
	for i, axis := range intp.font.Axes() {
		name := ttfquery.AxisName(intp.font, axis)
		data = append(data, []string{
			axis.Tag.String(),
			name,
			fmt.Sprintf("%g", axis.Minimum),
			fmt.Sprintf("%g", axis.Default),
			fmt.Sprintf("%g", axis.Maximum),
			fmt.Sprintf("%g", coords[i].Float()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func variationOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("usage: var:<axis>:<value>"), false
	}
	value, err := strconv.ParseFloat(op.arg2, 64)
	if err != nil {
		return fmt.Errorf("axis value not numeric: %v", op.arg2), false
	}
	if err = intp.font.SetVariation(ttf.T(tag), value); err != nil {
		return err, false
	}
	pterm.Printf("%s = %g, normalized coords now %v\n", tag, value, intp.font.Coords())
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	gid, err := glyphArg(intp, op)
	if err != nil {
		return err, false
	}
	metrics := ttfquery.GlyphMetrics(intp.font, gid)
	pterm.Printf("Glyph %d: advance=%d lsb=%d rsb=%d\n",
		gid, metrics.Advance, metrics.LSB, metrics.RSB)
	pterm.Printf("BBox: (%d,%d) - (%d,%d)\n",
		metrics.BBox.MinX, metrics.BBox.MinY, metrics.BBox.MaxX, metrics.BBox.MaxY)
	return nil, false
}

func outlineOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	gid, err := glyphArg(intp, op)
	if err != nil {
		return err, false
	}
	printer := &pathPrinter{}
	bbox, err := intp.font.GlyphOutline(gid, printer)
	if err != nil {
		return err, false
	}
	pterm.Println(printer.String())
	pterm.Printf("BBox: (%d,%d) - (%d,%d)\n", bbox.XMin, bbox.YMin, bbox.XMax, bbox.YMax)
	return nil, false
}

func issuesOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkFont(); err != nil {
		return
	}
	errs := intp.font.Errors()
	warns := intp.font.Warnings()
	pterm.Printf("Issues: errors=%d warnings=%d\n", len(errs), len(warns))
	for _, e := range errs {
		pterm.Printf("error: %s\n", e.Error())
	}
	for _, w := range warns {
		pterm.Printf("warning: %s\n", w.String())
	}
	return nil, false
}

func glyphArg(intp *Intp, op *Op) (ttf.GlyphIndex, error) {
	arg, ok := op.hasArg()
	if !ok {
		return 0, errors.New("glyph index argument required")
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("glyph index not numeric: %v", arg)
	}
	if i < 0 || i >= int(intp.font.NumGlyphs()) {
		return 0, fmt.Errorf("glyph index out of range: %d", i)
	}
	return ttf.GlyphIndex(i), nil
}

// pathPrinter collects outline commands as an SVG-like path string.
type pathPrinter struct {
	sb strings.Builder
}

func (p *pathPrinter) MoveTo(x, y float32) {
	fmt.Fprintf(&p.sb, "M %g %g ", x, y)
}

func (p *pathPrinter) LineTo(x, y float32) {
	fmt.Fprintf(&p.sb, "L %g %g ", x, y)
}

func (p *pathPrinter) QuadTo(cx, cy, x, y float32) {
	fmt.Fprintf(&p.sb, "Q %g %g %g %g ", cx, cy, x, y)
}

func (p *pathPrinter) CurveTo(cx1, cy1, cx2, cy2, x, y float32) {
	fmt.Fprintf(&p.sb, "C %g %g %g %g %g %g ", cx1, cy1, cx2, cy2, x, y)
}

func (p *pathPrinter) ClosePath() {
	p.sb.WriteString("Z ")
}

func (p *pathPrinter) String() string {
	return strings.TrimSpace(p.sb.String())
}
