// Package toolreport extracts structured metadata from the free-form text
// reports produced by external geospatial inspection tools.
//
// The parsers are deliberately forgiving: every field is independently
// optional, an unrecognized or malformed line is skipped, and parsing never
// returns an error. Callers treat absent fields as "not detected" rather
// than as a failure. Each recognized line marker maps to exactly one field
// through an explicit scanner table, so the set of markers a parser
// understands is visible in one place and testable on its own.
package toolreport

import (
	"regexp"
	"strconv"
	"strings"
)

// Extent is a bounding box in the report's native coordinate space.
type Extent struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// PixelSize is the ground size of one raster pixel. Y is typically negative
// (north-up rasters decrease in Y per row).
type PixelSize struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Band describes one raster band: its 1-based index and pixel type.
type Band struct {
	Number    int    `json:"number"`
	PixelType string `json:"pixel_type"`
}

// coordPair matches one parenthesized coordinate pair, e.g. "(-74.25, 40.49)".
var coordPair = regexp.MustCompile(`\(\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s*,\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s*\)`)

// parseCoordPair extracts the first coordinate pair found in s.
func parseCoordPair(s string) (x, y float64, ok bool) {
	m := coordPair.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// parseInt parses a base-10 integer out of a trimmed string fragment.
func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func intPtr(n int) *int           { return &n }
func int64Ptr(n int64) *int64     { return &n }
func strPtr(s string) *string     { return &s }
func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
