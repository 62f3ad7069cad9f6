package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "var", "variation", "axes":
		pterm.Info.Println("Variation axes")
		pterm.Println(`
	Variable fonts carry design axes in table 'fvar'. Each axis has a
	4-byte tag ('wght', 'wdth', ...) and a value range in design units.

	axes              list the axes of the loaded font
	var:wght:700      select an instance by setting an axis value

	Values are clamped to the axis range and normalized internally.
	Outlines and metrics reflect the selected instance.
	`)
	case "glyph", "outline":
		pterm.Info.Println("Glyph queries")
		pterm.Println(`
	glyph:5           print metrics for glyph index 5
	outline:5         print the decoded outline path of glyph index 5

	Outlines come from table 'glyf' or 'CFF ', whichever the font has.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	tables            list the font's tables
	info              general font information
	head, maxp        typed views of the respective tables
	axes              variation axes (variable fonts)
	var:<axis>:<val>  select a variation instance
	glyph:<gid>       glyph metrics
	outline:<gid>     glyph outline path
	errors            parse errors and warnings
	help:<topic>      more on 'var' or 'glyph'
	quit              leave
	`)
	}
}
