package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/truetype"
	"github.com/npillmayer/truetype/ttf"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("ttf-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for TrueType/OpenType font diagnostics and outline extraction.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("info").
		SetDescription("Print diagnostics and table information for a TrueType or OpenType font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("tables...", "optional list of table tags (e.g. head,hmtx,glyf)", "").
		AddFlag("index,i", "font index within a collection file", commando.Int, 0).
		AddFlag("errors,e", "print parse errors and warnings", commando.Bool, nil).
		SetAction(runInfoCommand)

	commando.
		Register("axes").
		SetDescription("List the variation axes of a variable font.").
		SetShortDescription("variation axes").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddFlag("index,i", "font index within a collection file", commando.Int, 0).
		SetAction(runAxesCommand)

	commando.
		Register("outline").
		SetDescription("Print the decoded outline path of a glyph.").
		SetShortDescription("glyph outline").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("glyph", "glyph index", "").
		AddFlag("index,i", "font index within a collection file", commando.Int, 0).
		AddFlag("var,v", "variation instance (e.g. wght=700,wdth=80)", commando.String, "-").
		SetAction(runOutlineCommand)

	commando.
		Register("view").
		SetDescription("Render a glyph outline to a PNG image.").
		SetShortDescription("glyph to image").
		AddArgument("font", "font file path (TTF, OTF or TTC)", "").
		AddArgument("glyph", "glyph index", "").
		AddFlag("index,i", "font index within a collection file", commando.Int, 0).
		AddFlag("var,v", "variation instance (e.g. wght=700,wdth=80)", commando.String, "-").
		AddFlag("output,o", "output PNG file", commando.String, "ttf-tools-view.png").
		AddFlag("show-bbox,B", "draw a red bounding-box outline", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em", commando.Int, 96).
		AddFlag("width,W", "image width in pixels", commando.Int, 320).
		AddFlag("height,H", "image height in pixels", commando.Int, 240).
		SetAction(runViewCommand)

	commando.Parse(nil)
}

// --- Shared helpers ---------------------------------------------------

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ttf-tools: "+format+"\n", args...)
	os.Exit(1)
}

func mustLoadFont(fontPath string, index int) *ttf.Font {
	f, err := truetype.LoadFont(fontPath)
	if err != nil {
		fatalf("cannot load font %s: %v", fontPath, err)
	}
	if index > 0 {
		otf, err := ttf.ParseCollectionEntry(f.Binary, index)
		if err != nil {
			fatalf("cannot decode collection entry %d: %v", index, err)
		}
		return otf
	}
	return f.Font
}

func mustGlyphArg(otf *ttf.Font, arg commando.ArgValue) ttf.GlyphIndex {
	i, err := strconv.Atoi(strings.TrimSpace(arg.Value))
	if err != nil {
		fatalf("glyph index not numeric: %s", arg.Value)
	}
	if i < 0 || i >= int(otf.NumGlyphs()) {
		fatalf("glyph index out of range: %d (font has %d glyphs)", i, otf.NumGlyphs())
	}
	return ttf.GlyphIndex(i)
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	v, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return v
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	v, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return v
}

// applyVariations parses a "tag=value,tag=value" list and selects the
// instance on the font. The commando default "-" means no variation.
func applyVariations(otf *ttf.Font, flag commando.FlagValue) {
	raw, err := flag.GetString()
	if err != nil {
		fatalf("invalid --var flag: %v", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return
	}
	for _, part := range splitCSVSpace(raw) {
		tagval := strings.SplitN(part, "=", 2)
		if len(tagval) != 2 {
			fatalf("invalid variation setting: %s", part)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(tagval[1]), 64)
		if err != nil {
			fatalf("variation value not numeric: %s", tagval[1])
		}
		if err := otf.SetVariation(ttf.T(strings.TrimSpace(tagval[0])), value); err != nil {
			fatalf("cannot set variation %s: %v", part, err)
		}
	}
}

func splitCSVSpace(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
