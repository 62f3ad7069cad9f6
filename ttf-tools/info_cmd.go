package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/truetype/ttf"
	"github.com/npillmayer/truetype/ttfquery"
	"github.com/thatisuday/commando"
)

func runInfoCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf := mustLoadFont(fontPath, mustFlagInt(flags["index"], "index"))

	fmt.Printf("Path: %s\n", fontPath)
	fmt.Printf("Type: %s\n", ttfquery.FontType(otf))
	names := ttfquery.NameInfo(otf)
	if family := names["family"]; family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	if sub := names["subfamily"]; sub != "" {
		fmt.Printf("Subfamily: %s\n", sub)
	}
	if version := names["version"]; version != "" {
		fmt.Printf("Version: %s\n", version)
	}
	metrics := ttfquery.FontMetrics(otf)
	fmt.Printf("Units/em: %d\n", metrics.UnitsPerEm)
	fmt.Printf("Metrics: ascent=%d descent=%d linegap=%d\n",
		metrics.Ascent, metrics.Descent, metrics.LineGap)
	fmt.Printf("Glyphs: %d\n", otf.NumGlyphs())

	tags := otf.TableTags()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag.String())
	}
	fmt.Println()
	if otf.IsVariable() {
		fmt.Printf("Variable font with %d axes\n", otf.AxisCount())
	}

	errs := otf.Errors()
	warns := otf.Warnings()
	fmt.Printf("Issues: errors=%d warnings=%d\n", len(errs), len(warns))

	if len(args["tables"].Value) > 0 {
		printSelectedTables(otf, args["tables"].Value)
	}
	if mustFlagBool(flags["errors"], "errors") {
		for _, e := range errs {
			fmt.Printf("error: %s\n", e.Error())
		}
		for _, w := range warns {
			fmt.Printf("warning: %s\n", w.String())
		}
	}
}

func printSelectedTables(otf *ttf.Font, raw string) {
	for _, t := range splitCSVSpace(raw) {
		tagName := strings.TrimSpace(t)
		if tagName == "" {
			continue
		}
		tag := ttf.T(tagName)
		table := otf.Table(tag)
		if table == nil {
			fmt.Printf("table %s: missing\n", tagName)
			continue
		}
		off, size := table.Extent()
		fmt.Printf("table %s: offset=%d size=%d\n", tagName, off, size)
	}
}

func runAxesCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf := mustLoadFont(fontPath, mustFlagInt(flags["index"], "index"))
	if !otf.IsVariable() {
		fmt.Println("font has no variation axes")
		return
	}
	for _, axis := range otf.Axes() {
		name := ttfquery.AxisName(otf, axis)
		if name != "" {
			name = " (" + name + ")"
		}
		hidden := ""
		if axis.Hidden {
			hidden = " hidden"
		}
		fmt.Printf("%s%s: %g .. %g .. %g%s\n",
			axis.Tag.String(), name, axis.Minimum, axis.Default, axis.Maximum, hidden)
	}
}

func runOutlineCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf := mustLoadFont(fontPath, mustFlagInt(flags["index"], "index"))
	applyVariations(otf, flags["var"])
	gid := mustGlyphArg(otf, args["glyph"])

	printer := &pathPrinter{}
	bbox, err := otf.GlyphOutline(gid, printer)
	if err != nil {
		fatalf("cannot decode glyph %d: %v", gid, err)
	}
	fmt.Println(printer.String())
	fmt.Printf("bbox: (%d,%d) - (%d,%d)\n", bbox.XMin, bbox.YMin, bbox.XMax, bbox.YMax)
	if aw, err := otf.GlyphAdvance(gid); err == nil {
		fmt.Printf("advance: %d\n", aw)
	}
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
