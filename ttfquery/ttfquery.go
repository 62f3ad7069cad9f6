/*
Package ttfquery provides queries against a decoded TrueType or OpenType font.

The functions in this package are read-only views over a ttf.Font. They
never mutate the font and are safe for concurrent use, with the exception
of queries that depend on the font's active variation instance.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttfquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'font.truetype'
func tracer() tracing.Trace {
	return tracing.Select("font.truetype")
}

func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}
