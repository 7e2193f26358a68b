package toolreport

import "strings"

// VectorReport holds the metadata a vector inspection tool report yields.
// Nil fields were not present (or not parseable) in the report.
type VectorReport struct {
	GeometryType *string
	FeatureCount *int64
	Extent       *Extent
}

// vectorScanner binds one recognized line marker to the field it populates.
type vectorScanner struct {
	marker string
	apply  func(rest string, rep *VectorReport)
}

// vectorScanners is the full set of line markers the vector parser
// understands. Markers are matched as line prefixes after trimming.
var vectorScanners = []vectorScanner{
	{
		marker: "Geometry:",
		apply: func(rest string, rep *VectorReport) {
			if g := strings.TrimSpace(rest); g != "" {
				rep.GeometryType = strPtr(g)
			}
		},
	},
	{
		marker: "Feature Count:",
		apply: func(rest string, rep *VectorReport) {
			if n, ok := parseInt(rest); ok {
				rep.FeatureCount = int64Ptr(n)
			}
		},
	},
	{
		marker: "Extent:",
		apply: func(rest string, rep *VectorReport) {
			// Two coordinate pairs: "(xmin, ymin) - (xmax, ymax)".
			pairs := coordPair.FindAllStringSubmatch(rest, 2)
			if len(pairs) != 2 {
				return
			}
			minX, minY, ok1 := parseCoordPair(pairs[0][0])
			maxX, maxY, ok2 := parseCoordPair(pairs[1][0])
			if !ok1 || !ok2 {
				return
			}
			rep.Extent = &Extent{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
		},
	},
}

// ParseVectorReport scans a vector inspection report line by line and
// returns whatever metadata it recognizes. It never fails; an empty or
// garbage report yields a zero-valued VectorReport.
func ParseVectorReport(text string) VectorReport {
	var rep VectorReport
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		for _, s := range vectorScanners {
			if strings.HasPrefix(line, s.marker) {
				s.apply(line[len(s.marker):], &rep)
				break
			}
		}
	}
	return rep
}
