package toolreport

import (
	"regexp"
	"strings"
)

// DefaultSRID is assumed when a raster report carries no EPSG code.
const DefaultSRID = 4326

// RasterReport holds the metadata a raster inspection tool report yields.
// Nil fields were not present (or not parseable) in the report, except SRID
// which defaults to DefaultSRID when no EPSG code is detected.
type RasterReport struct {
	Width      *int
	Height     *int
	Projection *string
	SRID       int
	Extent     *Extent
	PixelSize  *PixelSize
	Bands      []Band
}

var (
	sizeRe      = regexp.MustCompile(`^Size is (\d+),\s*(\d+)`)
	projRe      = regexp.MustCompile(`(?:PROJCS|GEOGCS)\["([^"]+)"`)
	epsgRe      = regexp.MustCompile(`"EPSG"\s*,\s*"?(\d+)"?`)
	pixelSizeRe = regexp.MustCompile(`^Pixel Size = \(\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s*,\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s*\)`)
	bandRe      = regexp.MustCompile(`^Band (\d+)\b`)
	bandTypeRe  = regexp.MustCompile(`Type=(\w+)`)
)

// cornerBlockLines is how many lines follow a "Corner Coordinates:" header:
// upper left, lower left, upper right, lower right, center.
const cornerBlockLines = 5

// rasterScanner binds one recognized marker to a scan function. A scanner
// sees the full line slice and its own line index so block markers (corner
// coordinates) can consume the lines that follow; it returns how many extra
// lines it consumed.
type rasterScanner struct {
	matches func(line string) bool
	apply   func(lines []string, i int, rep *RasterReport) int
}

// rasterScanners is the full set of markers the raster parser understands.
var rasterScanners = []rasterScanner{
	{
		matches: func(line string) bool { return sizeRe.MatchString(line) },
		apply: func(lines []string, i int, rep *RasterReport) int {
			m := sizeRe.FindStringSubmatch(lines[i])
			w, okW := parseInt(m[1])
			h, okH := parseInt(m[2])
			if okW && okH {
				rep.Width = intPtr(int(w))
				rep.Height = intPtr(int(h))
			}
			return 0
		},
	},
	{
		matches: func(line string) bool { return projRe.MatchString(line) && strings.Contains(line, "CS[") },
		apply: func(lines []string, i int, rep *RasterReport) int {
			// First PROJCS/GEOGCS name wins: the outermost CRS of the WKT
			// block appears before any nested datum definitions.
			if rep.Projection == nil {
				rep.Projection = strPtr(projRe.FindStringSubmatch(lines[i])[1])
			}
			return 0
		},
	},
	{
		matches: func(line string) bool { return epsgRe.MatchString(line) },
		apply: func(lines []string, i int, rep *RasterReport) int {
			// Last EPSG authority wins: gdalinfo nests datum/spheroid
			// authorities first and closes the WKT with the CRS's own code.
			m := epsgRe.FindAllStringSubmatch(lines[i], -1)
			if n, ok := parseInt(m[len(m)-1][1]); ok {
				rep.SRID = int(n)
			}
			return 0
		},
	},
	{
		matches: func(line string) bool { return strings.HasPrefix(line, "Corner Coordinates:") },
		apply: func(lines []string, i int, rep *RasterReport) int {
			consumed := 0
			var ext *Extent
			for j := i + 1; j <= i+cornerBlockLines && j < len(lines); j++ {
				consumed++
				x, y, ok := parseCoordPair(lines[j])
				if !ok {
					continue
				}
				if ext == nil {
					ext = &Extent{MinX: x, MinY: y, MaxX: x, MaxY: y}
					continue
				}
				if x < ext.MinX {
					ext.MinX = x
				}
				if x > ext.MaxX {
					ext.MaxX = x
				}
				if y < ext.MinY {
					ext.MinY = y
				}
				if y > ext.MaxY {
					ext.MaxY = y
				}
			}
			rep.Extent = ext
			return consumed
		},
	},
	{
		matches: func(line string) bool { return pixelSizeRe.MatchString(line) },
		apply: func(lines []string, i int, rep *RasterReport) int {
			m := pixelSizeRe.FindStringSubmatch(lines[i])
			x, okX := parseFloat(m[1])
			y, okY := parseFloat(m[2])
			if okX && okY {
				rep.PixelSize = &PixelSize{X: x, Y: y}
			}
			return 0
		},
	},
	{
		matches: func(line string) bool { return bandRe.MatchString(line) },
		apply: func(lines []string, i int, rep *RasterReport) int {
			m := bandRe.FindStringSubmatch(lines[i])
			n, ok := parseInt(m[1])
			if !ok {
				return 0
			}
			band := Band{Number: int(n)}
			if tm := bandTypeRe.FindStringSubmatch(lines[i]); tm != nil {
				band.PixelType = tm[1]
			}
			rep.Bands = append(rep.Bands, band)
			return 0
		},
	},
}

// ParseRasterReport scans a raster inspection report and returns whatever
// metadata it recognizes. It never fails; when no EPSG code is present the
// SRID defaults to DefaultSRID.
func ParseRasterReport(text string) RasterReport {
	rep := RasterReport{SRID: DefaultSRID}
	lines := splitLines(text)
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for i := 0; i < len(lines); i++ {
		for _, s := range rasterScanners {
			if s.matches(lines[i]) {
				i += s.apply(lines, i, &rep)
				break
			}
		}
	}
	return rep
}
