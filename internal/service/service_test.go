package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/compliance"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/impact"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/store"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

// fakeExtractor serves canned baselines and counts calls.
type fakeExtractor struct {
	baselines map[string]model.Baseline
	calls     int
}

func (f *fakeExtractor) Extract(ctx context.Context, ref string) (model.Baseline, error) {
	f.calls++
	b, ok := f.baselines[ref]
	if !ok {
		return model.Baseline{}, errors.New("unexpected ref: " + ref)
	}
	return b, nil
}

func testBaseline(id, checksum string) model.Baseline {
	return model.Baseline{
		BaselineID: id,
		Timestamp:  "2026-08-30T10:00:00",
		File:       "bracket.step",
		Checksum:   checksum,
		Metadata:   model.Metadata{Schema: "AUTOMOTIVE_DESIGN"},
		BOM: []model.BOMItem{
			{Position: 1, Level: 0, Quantity: 1, Name: "bracket", LabelEntry: "0:1", Type: model.KindPart},
		},
		Geometry: map[string]model.GeometricProps{
			"0:1": {Name: "bracket", Volume: 123.456, SurfaceArea: 60.111},
		},
	}
}

func writeBaselineFile(t *testing.T, b model.Baseline) string {
	t.Helper()
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBaseline_PersistedFile(t *testing.T) {
	svc := New(nil, tolerance.Default())
	path := writeBaselineFile(t, testBaseline("CFG_x", "abc"))

	b, err := svc.LoadBaseline(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if b.BaselineID != "CFG_x" {
		t.Errorf("loaded %q", b.BaselineID)
	}
}

func TestLoadBaseline_ModelRefWithoutExtractor(t *testing.T) {
	svc := New(nil, tolerance.Default())
	_, err := svc.LoadBaseline(context.Background(), "bracket.step")
	if !errors.Is(err, ErrNoExtractor) {
		t.Fatalf("expected ErrNoExtractor, got %v", err)
	}
}

func TestLoadBaseline_CachesByContentIdentity(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "bracket.step")
	if err := os.WriteFile(ref, []byte("ISO-10303-21;"), 0o644); err != nil {
		t.Fatal(err)
	}

	fx := &fakeExtractor{baselines: map[string]model.Baseline{ref: testBaseline("CFG_x", "abc")}}
	svc := New(fx, tolerance.Default())

	for i := 0; i < 3; i++ {
		if _, err := svc.LoadBaseline(context.Background(), ref); err != nil {
			t.Fatal(err)
		}
	}
	if fx.calls != 1 {
		t.Errorf("extractor called %d times, want 1", fx.calls)
	}
}

func TestLoadBaseline_UnstattableRefNotCached(t *testing.T) {
	// The ref never exists on disk, so each load extracts again.
	fx := &fakeExtractor{baselines: map[string]model.Baseline{"remote.step": testBaseline("CFG_x", "abc")}}
	svc := New(fx, tolerance.Default())

	for i := 0; i < 2; i++ {
		if _, err := svc.LoadBaseline(context.Background(), "remote.step"); err != nil {
			t.Fatal(err)
		}
	}
	if fx.calls != 2 {
		t.Errorf("extractor called %d times, want 2", fx.calls)
	}
}

func TestCompare_EndToEnd(t *testing.T) {
	svc := New(nil, tolerance.Default())
	path1 := writeBaselineFile(t, testBaseline("CFG_a", "sum1"))
	path2 := writeBaselineFile(t, testBaseline("CFG_b", "sum1"))

	report, err := svc.Compare(context.Background(), path1, path2)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Identical || report.Impact.Level != impact.LevelNone {
		t.Errorf("same checksum must short-circuit: %+v", report.Impact)
	}
}

func TestAnalyze(t *testing.T) {
	svc := New(nil, tolerance.Default())
	path := writeBaselineFile(t, testBaseline("CFG_x", "abc"))

	report, err := svc.Analyze(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if report.BOM.TotalCount != 1 || report.Geometry.Totals.ComponentCount != 1 {
		t.Errorf("unexpected counts: %+v", report)
	}
	if report.Geometry.Totals.VolumeMM3 != 123.46 {
		t.Errorf("totals should round to 2 decimals, got %g", report.Geometry.Totals.VolumeMM3)
	}
	if report.Validation.OverallStatus != compliance.StatusPass {
		t.Errorf("validation = %+v", report.Validation)
	}
}

func TestGeometry_ComponentFilter(t *testing.T) {
	b := testBaseline("CFG_x", "abc")
	b.Geometry["0:2"] = model.GeometricProps{Name: "plate", Volume: 10}
	svc := New(nil, tolerance.Default())
	path := writeBaselineFile(t, b)

	report, err := svc.Geometry(context.Background(), path, "plate")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Components) != 1 || report.Totals.VolumeMM3 != 10 {
		t.Errorf("filter failed: %+v", report)
	}

	_, err = svc.Geometry(context.Background(), path, "missing")
	var nf *model.ComponentNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ComponentNotFoundError, got %v", err)
	}
	if len(nf.Suggestions) == 0 {
		t.Error("error should carry name suggestions")
	}
}

func TestSaveBaseline_AssignsID(t *testing.T) {
	b := testBaseline("CFG_keep", "abc")
	svc := New(nil, tolerance.Default())
	st := store.NewStore(t.TempDir())

	saved, err := svc.SaveBaseline(context.Background(), writeBaselineFile(t, b), st)
	if err != nil {
		t.Fatal(err)
	}
	if saved.BaselineID != "CFG_keep" {
		t.Errorf("existing id must be preserved, got %q", saved.BaselineID)
	}
	if !st.Exists("CFG_keep") {
		t.Error("baseline not persisted")
	}
}

func TestSaveBaseline_GeneratedID(t *testing.T) {
	// A loaded file always has an ID, so exercise the generation path via a
	// fake extractor returning an unidentified baseline.
	dir := t.TempDir()
	ref := filepath.Join(dir, "bracket.step")
	if err := os.WriteFile(ref, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := testBaseline("", "abc")
	fx := &fakeExtractor{baselines: map[string]model.Baseline{ref: b}}
	svc := New(fx, tolerance.Default())
	st := store.NewStore(filepath.Join(dir, "store"))

	saved, err := svc.SaveBaseline(context.Background(), ref, st)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(saved.BaselineID, "CFG_") {
		t.Errorf("generated id = %q", saved.BaselineID)
	}
	if !st.Exists(saved.BaselineID) {
		t.Error("baseline not persisted under the generated id")
	}
}

func TestInterfaces(t *testing.T) {
	b := testBaseline("CFG_x", "abc")
	b.Geometry = map[string]model.GeometricProps{
		"0:1": {
			Name:         "plate",
			CenterOfMass: []float64{0, 0, 0},
			BBox:         &model.BBox{Dims: [3]float64{40, 20, 5}},
		},
		"0:2": {
			Name:         "rib",
			CenterOfMass: []float64{10, 0, 0},
			BBox:         &model.BBox{Dims: [3]float64{30, 10, 5}},
		},
	}
	svc := New(nil, tolerance.Default())
	path := writeBaselineFile(t, b)

	report, err := svc.Interfaces(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Total != 1 {
		t.Errorf("expected 1 interface, got %+v", report.Summary)
	}
	if report.File != "bracket.step" {
		t.Errorf("file = %q", report.File)
	}
}
