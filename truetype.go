/*
Package truetype is for typeface and font handling.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

▪︎ A "variable font" carries several variants of a typeface in a single
binary and interpolates between them along design axes.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package truetype

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/truetype/internal/fontload"
	"github.com/npillmayer/truetype/ttf"
	"github.com/npillmayer/truetype/ttfquery"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.truetype'
func tracer() tracing.Trace {
	return tracing.Select("font.truetype")
}

// ScalableFont is an internal representation of an outline-font of type
// TTF or OTF.
type ScalableFont = fontload.ScalableFont

// LoadFont loads a TrueType or OpenType font (TTF or OTF) from a file.
func LoadFont(fontfile string) (*ScalableFont, error) {
	f, err := fontload.LoadFont(fontfile)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("loaded and parsed SFNT %s", f.Fontname)
	return f, nil
}

// ParseFont loads a TrueType or OpenType font (TTF or OTF) from memory.
//
// For collection files (TTC), the first font of the collection is used.
func ParseFont(fbytes []byte) (*ScalableFont, error) {
	return fontload.ParseFont(fbytes)
}

// FromBinary parses raw TrueType or OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete SFNT stream, either a single
// font or a collection (in which case the collection's first font is
// decoded). It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ttf.Font, error) {
	return ttf.Parse(data)
}

// FromBinaryIndexed parses one font out of a collection (TTC) stream.
// For single-font streams only index 0 is valid.
func FromBinaryIndexed(data []byte, index int) (*ttf.Font, error) {
	return ttf.ParseCollectionEntry(data, index)
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(f *ttf.Font) (family, subfamily string) {
	for nameId, stringValue := range ttfquery.NamesRange(f) {
		switch nameId {
		case sfnt.NameIDFamily:
			family = stringValue
		case sfnt.NameIDSubfamily:
			subfamily = stringValue
		}
	}
	return
}
