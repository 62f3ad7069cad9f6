package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/truetype/ttf"
	"github.com/thatisuday/commando"
	"golang.org/x/image/vector"
)

func runViewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf := mustLoadFont(fontPath, mustFlagInt(flags["index"], "index"))
	applyVariations(otf, flags["var"])
	gid := mustGlyphArg(otf, args["glyph"])

	outPath, err := flags["output"].GetString()
	if err != nil {
		fatalf("invalid --output flag: %v", err)
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		fatalf("output path is empty")
	}
	ppem := mustFlagInt(flags["ppem"], "ppem")
	width := mustFlagInt(flags["width"], "width")
	height := mustFlagInt(flags["height"], "height")
	showBBox := mustFlagBool(flags["show-bbox"], "show-bbox")
	if ppem <= 0 {
		fatalf("--ppem must be > 0")
	}
	if width <= 0 || height <= 0 {
		fatalf("--width and --height must be > 0")
	}

	if err := renderGlyphPNG(otf, gid, outPath, width, height, ppem, showBBox); err != nil {
		fatalf("render failed: %v", err)
	}
	fmt.Printf("wrote %s (glyph=%d)\n", outPath, gid)
}

func renderGlyphPNG(otf *ttf.Font, gid ttf.GlyphIndex, outPath string, width int, height int, ppem int, showBBox bool) error {
	upem := float32(otf.UnitsPerEm())
	if upem <= 0 {
		return fmt.Errorf("invalid units-per-em")
	}
	scale := float32(ppem) / upem

	bbox, err := otf.GlyphBoundingBox(gid)
	if err != nil {
		return fmt.Errorf("cannot decode glyph %d: %w", gid, err)
	}
	glyphCenterX := (float32(bbox.XMin) + float32(bbox.XMax)) / 2 * scale
	// Positive y in font units is upward; image Y grows downward.
	glyphCenterY := -(float32(bbox.YMin) + float32(bbox.YMax)) / 2 * scale
	tx := float32(width)/2 - glyphCenterX
	ty := float32(height)/2 - glyphCenterY

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)

	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	builder := &rasterBuilder{rast: rast, scale: scale, tx: tx, ty: ty}
	if _, err := otf.GlyphOutline(gid, builder); err != nil {
		return fmt.Errorf("cannot decode glyph %d: %w", gid, err)
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})

	if showBBox {
		drawRectOutline(img,
			int(tx+float32(bbox.XMin)*scale), int(ty-float32(bbox.YMax)*scale),
			int(tx+float32(bbox.XMax)*scale), int(ty-float32(bbox.YMin)*scale),
			color.RGBA{255, 0, 0, 255})
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}

// rasterBuilder feeds decoded outline segments into a vector rasterizer,
// scaling from font units to pixels and flipping the y axis.
type rasterBuilder struct {
	rast   *vector.Rasterizer
	scale  float32
	tx, ty float32
}

func (rb *rasterBuilder) x(v float32) float32 { return rb.tx + v*rb.scale }
func (rb *rasterBuilder) y(v float32) float32 { return rb.ty - v*rb.scale }

func (rb *rasterBuilder) MoveTo(x, y float32) {
	rb.rast.MoveTo(rb.x(x), rb.y(y))
}

func (rb *rasterBuilder) LineTo(x, y float32) {
	rb.rast.LineTo(rb.x(x), rb.y(y))
}

func (rb *rasterBuilder) QuadTo(cx, cy, x, y float32) {
	rb.rast.QuadTo(rb.x(cx), rb.y(cy), rb.x(x), rb.y(y))
}

func (rb *rasterBuilder) CurveTo(cx1, cy1, cx2, cy2, x, y float32) {
	rb.rast.CubeTo(rb.x(cx1), rb.y(cy1), rb.x(cx2), rb.y(cy2), rb.x(x), rb.y(y))
}

func (rb *rasterBuilder) ClosePath() {
	rb.rast.ClosePath()
}

func drawRectOutline(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for x := x0; x <= x1; x++ {
		img.Set(x, y0, c)
		img.Set(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.Set(x0, y, c)
		img.Set(x1, y, c)
	}
}
