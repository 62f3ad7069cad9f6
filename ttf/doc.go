/*
Package ttf decodes TrueType and OpenType font binaries into queryable
glyph metrics and vector outlines.

Intended audience for this package are:

▪︎ text-rendering engines that need glyph outlines without linking a full
shaping stack

▪︎ font inspection tools and design applications

▪︎ any application needing glyph-level access to an SFNT font container

Package `ttf` deliberately stops short of text shaping: it maps glyph IDs
(not characters) to metrics and outlines. Callers are expected to bring
their own character-to-glyph mapping. Kerning, ligatures and rasterization
are out of scope; the package produces vector paths and metrics only.

Outlines are emitted through the OutlineBuilder interface, one path command
at a time, so consumers decide how (and whether) to buffer geometry.
Variable fonts are supported: axis coordinates set on a Font are normalized
to the format's 2.14 fixed-point domain and blended into the base outline
via the glyph-variation (`gvar`) delta machinery.

A Font only borrows the byte slice it was parsed from. The slice must stay
alive and unmodified for as long as the Font is in use.

# Status

TrueType (`glyf`/`loca`) and CFF outlines are supported, as are font
collections (*.ttc) and variable fonts (`fvar`/`avar`/`gvar`/`HVAR`/`MVAR`).
CFF2 is not.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.truetype'
func tracer() tracing.Trace {
	return tracing.Select("font.truetype")
}
