package ingest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestDeriveTarget_Deterministic(t *testing.T) {
	id := uuid.MustParse("a3b1c5d7-0000-4000-8000-0123456789ab")

	first := DeriveTarget("geodata", id, KindVectorArchive)
	second := DeriveTarget("geodata", id, KindVectorArchive)

	if first != second {
		t.Errorf("repeated derivation differs: %+v vs %+v", first, second)
	}
	if first.Workspace != "geodata" {
		t.Errorf("Workspace = %q, want geodata", first.Workspace)
	}
	if !strings.HasPrefix(first.Store, "ds_") {
		t.Errorf("vector Store = %q, want ds_ prefix", first.Store)
	}
	if !strings.HasPrefix(first.Table, "upload_") {
		t.Errorf("Table = %q, want upload_ prefix", first.Table)
	}
	if strings.Contains(first.Store, "-") {
		t.Errorf("Store %q carries uuid dashes", first.Store)
	}
}

func TestDeriveTarget_RasterUsesCoverageStore(t *testing.T) {
	id := uuid.New()
	target := DeriveTarget("geodata", id, KindRaster)

	if !strings.HasPrefix(target.Store, "cs_") {
		t.Errorf("raster Store = %q, want cs_ prefix", target.Store)
	}
	if target.Table != "" {
		t.Errorf("raster Table = %q, want empty", target.Table)
	}
}

func TestDeriveTarget_DistinctUploadsDistinctNames(t *testing.T) {
	a := DeriveTarget("geodata", uuid.New(), KindVectorArchive)
	b := DeriveTarget("geodata", uuid.New(), KindVectorArchive)

	if a.Store == b.Store || a.Layer == b.Layer || a.Table == b.Table {
		t.Errorf("distinct uploads derived overlapping names: %+v vs %+v", a, b)
	}
}

func TestPermanentRasterName(t *testing.T) {
	id := uuid.MustParse("a3b1c5d7-0000-4000-8000-0123456789ab")

	name := PermanentRasterName(id, ".TIF")
	if !strings.HasSuffix(name, ".tif") {
		t.Errorf("name = %q, want lowercased extension", name)
	}
	if name != PermanentRasterName(id, ".TIF") {
		t.Error("permanent name is not deterministic")
	}
}
