package toolreport

import "testing"

const sampleRasterReport = `Driver: GTiff/GeoTIFF
Files: relief.tif
Size is 512, 256
Coordinate System is:
PROJCS["WGS 84 / UTM zone 18N",
    GEOGCS["WGS 84",
        DATUM["WGS_1984",
            SPHEROID["WGS 84",6378137,298.257223563,
                AUTHORITY["EPSG","7030"]],
            AUTHORITY["EPSG","6326"]],
        AUTHORITY["EPSG","4326"]],
    AUTHORITY["EPSG","32618"]]
Origin = (585000.000000000000000,4515600.000000000000000)
Pixel Size = (0.001,-0.001)
Corner Coordinates:
Upper Left  (  585000.000, 4515600.000) ( 74d 0'48.72"W, 40d47'14.51"N)
Lower Left  (  585000.000, 4515344.000) ( 74d 0'48.87"W, 40d47' 6.21"N)
Upper Right (  585512.000, 4515600.000) ( 74d 0'26.86"W, 40d47'14.40"N)
Lower Right (  585512.000, 4515344.000) ( 74d 0'27.01"W, 40d47' 6.10"N)
Center      (  585256.000, 4515472.000) ( 74d 0'37.86"W, 40d47'10.31"N)
Band 1 Block=512x16 Type=Byte, ColorInterp=Red
Band 2 Block=512x16 Type=Byte, ColorInterp=Green
Band 3 Block=512x16 Type=UInt16, ColorInterp=Blue
`

func TestParseRasterReport_Full(t *testing.T) {
	rep := ParseRasterReport(sampleRasterReport)

	if rep.Width == nil || *rep.Width != 512 {
		t.Errorf("Width = %v, want 512", rep.Width)
	}
	if rep.Height == nil || *rep.Height != 256 {
		t.Errorf("Height = %v, want 256", rep.Height)
	}
	if rep.Projection == nil || *rep.Projection != "WGS 84 / UTM zone 18N" {
		t.Errorf("Projection = %v, want WGS 84 / UTM zone 18N", rep.Projection)
	}
	if rep.SRID != 32618 {
		t.Errorf("SRID = %d, want 32618 (last EPSG authority)", rep.SRID)
	}
	if rep.PixelSize == nil {
		t.Fatal("PixelSize is nil")
	}
	if rep.PixelSize.X != 0.001 || rep.PixelSize.Y != -0.001 {
		t.Errorf("PixelSize = (%v, %v), want (0.001, -0.001)", rep.PixelSize.X, rep.PixelSize.Y)
	}
	if len(rep.Bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(rep.Bands))
	}
	if rep.Bands[0].Number != 1 || rep.Bands[0].PixelType != "Byte" {
		t.Errorf("band 1 = %+v, want {1 Byte}", rep.Bands[0])
	}
	if rep.Bands[2].Number != 3 || rep.Bands[2].PixelType != "UInt16" {
		t.Errorf("band 3 = %+v, want {3 UInt16}", rep.Bands[2])
	}
}

func TestParseRasterReport_CornerExtent(t *testing.T) {
	rep := ParseRasterReport(sampleRasterReport)

	if rep.Extent == nil {
		t.Fatal("Extent is nil, want extent folded from corner block")
	}
	if rep.Extent.MinX != 585000 || rep.Extent.MaxX != 585512 {
		t.Errorf("Extent X = [%v, %v], want [585000, 585512]", rep.Extent.MinX, rep.Extent.MaxX)
	}
	if rep.Extent.MinY != 4515344 || rep.Extent.MaxY != 4515600 {
		t.Errorf("Extent Y = [%v, %v], want [4515344, 4515600]", rep.Extent.MinY, rep.Extent.MaxY)
	}
}

func TestParseRasterReport_DefaultSRID(t *testing.T) {
	rep := ParseRasterReport("Size is 10, 10\nPixel Size = (1.0,-1.0)\n")

	if rep.SRID != DefaultSRID {
		t.Errorf("SRID = %d, want default %d when no EPSG code present", rep.SRID, DefaultSRID)
	}
}

func TestParseRasterReport_EmptyInput(t *testing.T) {
	rep := ParseRasterReport("")

	if rep.Width != nil || rep.Height != nil || rep.Extent != nil || rep.PixelSize != nil {
		t.Errorf("expected empty report, got %+v", rep)
	}
	if len(rep.Bands) != 0 {
		t.Errorf("got %d bands, want 0", len(rep.Bands))
	}
	if rep.SRID != DefaultSRID {
		t.Errorf("SRID = %d, want default %d", rep.SRID, DefaultSRID)
	}
}

func TestParseRasterReport_TruncatedCornerBlock(t *testing.T) {
	report := "Corner Coordinates:\nUpper Left (  1.0, 2.0)\n"
	rep := ParseRasterReport(report)

	if rep.Extent == nil {
		t.Fatal("Extent is nil, want single-point extent")
	}
	if rep.Extent.MinX != 1.0 || rep.Extent.MaxY != 2.0 {
		t.Errorf("Extent = %+v, want point (1, 2)", *rep.Extent)
	}
}
