package ttf

import (
	"errors"
	"fmt"
)

// Error kinds of the engine. Construction-time errors (ErrMalformedFont,
// ErrFontIndexOutOfBounds) abort handle creation entirely; per-glyph and
// per-axis errors are localized to the failing call and leave the Font
// usable. Callers match with errors.Is.
var (
	// ErrMalformedFont signals a broken font container: unrecognized
	// signature, truncated table directory, or table bounds outside the
	// buffer. A Font is never returned together with this error.
	ErrMalformedFont = errors.New("malformed font")

	// ErrFontIndexOutOfBounds signals a collection index ≥ the number of
	// fonts in a TrueType collection.
	ErrFontIndexOutOfBounds = errors.New("font index out of bounds")

	// ErrMalformedGlyph signals structurally broken glyph data. It fails a
	// single outline request only; other glyphs of the same font remain
	// decodable.
	ErrMalformedGlyph = errors.New("malformed glyph")

	// ErrUnknownAxis signals a variation-axis tag not present in the font.
	ErrUnknownAxis = errors.New("unknown variation axis")

	// ErrOutOfRange signals an axis index or coordinate-vector length that
	// does not match the font's axis list.
	ErrOutOfRange = errors.New("index out of range")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFont, fmt.Sprintf(format, args...))
}

func malformedGlyph(gid GlyphIndex, format string, args ...any) error {
	return fmt.Errorf("%w %d: %s", ErrMalformedGlyph, gid, fmt.Sprintf(format, args...))
}

// ErrorSeverity represents the severity level of a font parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered during font parsing.
// Errors are accumulated during initial parsing and can be inspected after
// parsing completes.
type FontError struct {
	Table    Tag           // table where the error occurred (e.g., "glyf", "fvar")
	Section  string        // specific section within the table
	Issue    string        // human-readable description of the issue
	Severity ErrorSeverity // severity level of the error
	Offset   uint32        // byte offset in the font file (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// FontWarning represents a non-critical issue encountered during font parsing.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // table where the warning occurred
	Issue  string // human-readable description of the warning
	Offset uint32 // byte offset in the font file (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// errorCollector accumulates errors and warnings during font parsing.
// This is an internal helper used by the parser to collect issues as they
// are discovered.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

// addError records a parsing error.
func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	ec.errors = append(ec.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

// addWarning records a parsing warning.
func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	ec.warnings = append(ec.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

// hasErrors returns true if any errors have been recorded.
func (ec *errorCollector) hasErrors() bool {
	return len(ec.errors) > 0
}

// hasCriticalErrors returns true if any critical errors have been recorded.
func (ec *errorCollector) hasCriticalErrors() bool {
	for _, err := range ec.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
