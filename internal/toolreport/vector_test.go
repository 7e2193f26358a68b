package toolreport

import "testing"

const sampleVectorReport = `INFO: Open of 'parcels.shp'
      using driver 'ESRI Shapefile' successful.

Layer name: parcels
Geometry: Polygon
Feature Count: 42
Extent: (-74.250000, 40.490000) - (-73.700000, 40.910000)
Layer SRS WKT:
GEOGCS["WGS 84",
    AUTHORITY["EPSG","4326"]]
`

func TestParseVectorReport_Full(t *testing.T) {
	rep := ParseVectorReport(sampleVectorReport)

	if rep.GeometryType == nil || *rep.GeometryType != "Polygon" {
		t.Errorf("GeometryType = %v, want Polygon", rep.GeometryType)
	}
	if rep.FeatureCount == nil || *rep.FeatureCount != 42 {
		t.Errorf("FeatureCount = %v, want 42", rep.FeatureCount)
	}
	if rep.Extent == nil {
		t.Fatal("Extent is nil, want parsed extent")
	}
	if rep.Extent.MinX != -74.25 || rep.Extent.MinY != 40.49 {
		t.Errorf("Extent min = (%v, %v), want (-74.25, 40.49)", rep.Extent.MinX, rep.Extent.MinY)
	}
	if rep.Extent.MaxX != -73.70 || rep.Extent.MaxY != 40.91 {
		t.Errorf("Extent max = (%v, %v), want (-73.70, 40.91)", rep.Extent.MaxX, rep.Extent.MaxY)
	}
}

func TestParseVectorReport_MissingFields(t *testing.T) {
	rep := ParseVectorReport("Layer name: roads\nGeometry: Line String\n")

	if rep.GeometryType == nil || *rep.GeometryType != "Line String" {
		t.Errorf("GeometryType = %v, want Line String", rep.GeometryType)
	}
	if rep.FeatureCount != nil {
		t.Errorf("FeatureCount = %v, want nil", *rep.FeatureCount)
	}
	if rep.Extent != nil {
		t.Errorf("Extent = %+v, want nil", *rep.Extent)
	}
}

func TestParseVectorReport_EmptyInput(t *testing.T) {
	rep := ParseVectorReport("")

	if rep.GeometryType != nil || rep.FeatureCount != nil || rep.Extent != nil {
		t.Errorf("expected zero report for empty input, got %+v", rep)
	}
}

func TestParseVectorReport_MalformedValues(t *testing.T) {
	report := "Geometry:\nFeature Count: lots\nExtent: (broken\n"
	rep := ParseVectorReport(report)

	if rep.GeometryType != nil {
		t.Errorf("GeometryType = %q, want nil for empty value", *rep.GeometryType)
	}
	if rep.FeatureCount != nil {
		t.Errorf("FeatureCount = %d, want nil for non-numeric value", *rep.FeatureCount)
	}
	if rep.Extent != nil {
		t.Errorf("Extent = %+v, want nil for malformed extent", *rep.Extent)
	}
}
