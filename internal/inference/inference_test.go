package inference

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

func component(name string, center []float64, dims [3]float64, holes ...model.Hole) model.GeometricProps {
	return model.GeometricProps{
		Name:         name,
		CenterOfMass: center,
		BBox:         &model.BBox{Dims: dims},
		Features:     &model.FeatureSignature{Holes: holes},
	}
}

func TestClassifyPair_ContactByDistance(t *testing.T) {
	// Centers 10mm apart with a 40mm max extent: under the contact factor
	// (0.3 * 40 = 12), so this pair is a contact, not a proximity.
	tol := tolerance.Default()
	p1 := component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5})
	p2 := component("rib", []float64{10, 0, 0}, [3]float64{30, 10, 5})

	iface, ok := classifyPair("0:1", "0:2", p1, p2, tol)
	if !ok {
		t.Fatal("expected an interface")
	}
	if iface.Type != Contact {
		t.Errorf("expected contact, got %s", iface.Type)
	}
	if iface.Severity != SeverityMajor {
		t.Errorf("contact must be major, got %s", iface.Severity)
	}
	if iface.Distance != 10 {
		t.Errorf("expected distance 10, got %g", iface.Distance)
	}
}

func TestClassifyPair_ProximityBeyondContact(t *testing.T) {
	tol := tolerance.Default()
	p1 := component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5})
	p2 := component("rib", []float64{30, 0, 0}, [3]float64{30, 10, 5})

	iface, ok := classifyPair("0:1", "0:2", p1, p2, tol)
	if !ok {
		t.Fatal("expected an interface")
	}
	if iface.Type != Proximity || iface.Severity != SeverityMinor {
		t.Errorf("expected minor proximity, got %s/%s", iface.Type, iface.Severity)
	}
}

func TestClassifyPair_RejectsDistantPair(t *testing.T) {
	tol := tolerance.Default()
	p1 := component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5})
	p2 := component("rib", []float64{100, 0, 0}, [3]float64{30, 10, 5})

	if _, ok := classifyPair("0:1", "0:2", p1, p2, tol); ok {
		t.Error("pair beyond the reject factor must produce nothing")
	}
}

func TestClassifyPair_FasteningOverridesDistance(t *testing.T) {
	// Aligned holes make the pair a fastening even at contact distance.
	tol := tolerance.Default()
	p1 := component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5},
		model.Hole{D: 5, X: 10, Y: 10, Z: 0},
		model.Hole{D: 5, X: 30, Y: 10, Z: 0},
	)
	p2 := component("cover", []float64{5, 0, 0}, [3]float64{40, 20, 2},
		model.Hole{D: 5, X: 10.5, Y: 10, Z: 1},
		model.Hole{D: 5, X: 30, Y: 10.5, Z: 1},
	)

	iface, ok := classifyPair("0:1", "0:2", p1, p2, tol)
	if !ok {
		t.Fatal("expected an interface")
	}
	if iface.Type != Fastening {
		t.Errorf("expected fastening, got %s", iface.Type)
	}
	if iface.Severity != SeverityCritical {
		t.Errorf("fastening must be critical, got %s", iface.Severity)
	}
	if iface.FastenerCount != 2 || iface.FastenerDiameter != 5 {
		t.Errorf("expected 2 fasteners Ø5, got %d Ø%g", iface.FastenerCount, iface.FastenerDiameter)
	}
}

func TestClassifyPair_SkipsMissingSpatialData(t *testing.T) {
	tol := tolerance.Default()
	p1 := component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5})
	p2 := model.GeometricProps{Name: "ghost"}

	if _, ok := classifyPair("0:1", "0:2", p1, p2, tol); ok {
		t.Error("pair lacking spatial data must be skipped")
	}
}

func TestInfer_BudgetExceeded(t *testing.T) {
	tol := tolerance.Default()
	tol.MaxComponents = 2

	geom := map[string]model.GeometricProps{
		"0:1": component("a", []float64{0, 0, 0}, [3]float64{1, 1, 1}),
		"0:2": component("b", []float64{0, 0, 0}, [3]float64{1, 1, 1}),
		"0:3": component("c", []float64{0, 0, 0}, [3]float64{1, 1, 1}),
	}

	_, err := Infer(geom, tol)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestAlignHoles_RequiresTwoAlignedAxes(t *testing.T) {
	tol := tolerance.Default()
	h1 := []model.Hole{{D: 5, X: 0, Y: 0, Z: 0}}
	// Same diameter, but offset past the alignment tolerance on two axes.
	h2 := []model.Hole{{D: 5, X: 3, Y: 3, Z: 0}}

	if matches := AlignHoles(h1, h2, tol); len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestAlignHoles_ConsumesEachHoleOnce(t *testing.T) {
	tol := tolerance.Default()
	h1 := []model.Hole{
		{D: 5, X: 0, Y: 0, Z: 0},
		{D: 5, X: 0.5, Y: 0, Z: 0},
	}
	h2 := []model.Hole{{D: 5, X: 0, Y: 0, Z: 0.5}}

	if matches := AlignHoles(h1, h2, tol); len(matches) != 1 {
		t.Errorf("one target hole can match once, got %d matches", len(matches))
	}
}

func TestDominantDiameter_TieBreaksToSmaller(t *testing.T) {
	matches := []Match{
		{A: model.Hole{D: 8}},
		{A: model.Hole{D: 5}},
	}
	count, d := dominantDiameter(matches)
	if count != 2 || d != 5 {
		t.Errorf("expected (2, 5), got (%d, %g)", count, d)
	}
}

func TestClassifyPair_MutuallyExclusiveTypes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a pair yields at most one interface with severity fixed by type", prop.ForAll(
		func(dx float64, holeOffset float64) bool {
			tol := tolerance.Default()
			p1 := component("a", []float64{0, 0, 0}, [3]float64{40, 20, 5},
				model.Hole{D: 5, X: 10, Y: 10, Z: 0})
			p2 := component("b", []float64{dx, 0, 0}, [3]float64{30, 10, 5},
				model.Hole{D: 5, X: 10 + holeOffset, Y: 10, Z: 0})

			iface, ok := classifyPair("0:1", "0:2", p1, p2, tol)
			if !ok {
				return true
			}
			switch iface.Type {
			case Fastening:
				return iface.Severity == SeverityCritical
			case Contact:
				return iface.Severity == SeverityMajor
			case Proximity:
				return iface.Severity == SeverityMinor
			}
			return false
		},
		gen.Float64Range(0, 120),
		gen.Float64Range(0, 10),
	))

	properties.TestingRun(t)
}

func TestInfer_GraphIsBidirectional(t *testing.T) {
	tol := tolerance.Default()
	geom := map[string]model.GeometricProps{
		"0:1": component("plate", []float64{0, 0, 0}, [3]float64{40, 20, 5}),
		"0:2": component("rib", []float64{10, 0, 0}, [3]float64{30, 10, 5}),
	}

	analysis, err := Infer(geom, tol)
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Interfaces) != 1 {
		t.Fatalf("expected 1 interface, got %d", len(analysis.Interfaces))
	}
	if len(analysis.AssemblyGraph["plate"]) != 1 || len(analysis.AssemblyGraph["rib"]) != 1 {
		t.Errorf("graph must carry both directions: %v", analysis.AssemblyGraph)
	}
	if analysis.Summary.ByType[Contact] != 1 {
		t.Errorf("summary should count the contact: %+v", analysis.Summary)
	}
}
