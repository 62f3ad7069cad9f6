package fontload

import (
	"os"

	"github.com/npillmayer/truetype/ttf"
	"github.com/npillmayer/truetype/ttfquery"
)

// ScalableFont is a parsed scalable font with original bytes and decoded view.
type ScalableFont struct {
	Fontname string
	Filepath string // file path, empty for in-memory fonts
	Binary   []byte
	Font     *ttf.Font
}

// LoadFont loads a TrueType or OpenType font (TTF or OTF) from a file.
func LoadFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseFont loads a TrueType or OpenType font (TTF or OTF) from memory.
func ParseFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.Font, err = ttf.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.Fontname = ttfquery.NameInfo(f.Font)["fullname"]
	return f, nil
}
