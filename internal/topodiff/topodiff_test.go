package topodiff

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

func props(dims [3]float64, holes ...model.Hole) model.GeometricProps {
	return model.GeometricProps{
		Name:     "bracket",
		BBox:     &model.BBox{Dims: dims},
		Features: &model.FeatureSignature{Holes: holes},
	}
}

func TestReconcile_DiameterModifiedAtSamePosition(t *testing.T) {
	// A hole replaced by a slightly offset hole with a new diameter is a
	// diameter change, not a delete plus an add.
	tol := tolerance.Default()
	msgs := Reconcile(
		[]model.Hole{{D: 5.0, X: 0, Y: 0, Z: 0}},
		[]model.Hole{{D: 6.0, X: 0.1, Y: 0, Z: 0}},
		tol,
	)

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(msgs), msgs)
	}
	if msgs[0].Category != CategoryDiameter {
		t.Errorf("expected category %s, got %s", CategoryDiameter, msgs[0].Category)
	}
	if msgs[0].Text != "Ø modified @(0,0): 5 → 6" {
		t.Errorf("unexpected text: %q", msgs[0].Text)
	}
}

func TestReconcile_MovedHoleKeepsDiameter(t *testing.T) {
	tol := tolerance.Default()
	msgs := Reconcile(
		[]model.Hole{{D: 5.0, X: 0, Y: 0, Z: 0}},
		[]model.Hole{{D: 5.0, X: 50, Y: 50, Z: 0}},
		tol,
	)

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(msgs), msgs)
	}
	if msgs[0].Category != CategoryMoved {
		t.Errorf("expected category %s, got %s", CategoryMoved, msgs[0].Category)
	}
	if msgs[0].Text != "moved (Ø5): to (50,50)" {
		t.Errorf("unexpected text: %q", msgs[0].Text)
	}
}

func TestReconcile_DeletedAndAdded(t *testing.T) {
	tol := tolerance.Default()
	msgs := Reconcile(
		[]model.Hole{{D: 5.0, X: 0, Y: 0, Z: 0}},
		[]model.Hole{{D: 8.0, X: 100, Y: 100, Z: 0}},
		tol,
	)

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d: %v", len(msgs), msgs)
	}
	if msgs[0].Category != CategoryDeleted {
		t.Errorf("expected deleted first, got %s", msgs[0].Category)
	}
	if msgs[1].Category != CategoryAdded {
		t.Errorf("expected added second, got %s", msgs[1].Category)
	}
}

func TestReconcile_ExactDuplicatesCollapse(t *testing.T) {
	tol := tolerance.Default()
	// The same hole listed twice on one side is a single set member.
	msgs := Reconcile(
		[]model.Hole{{D: 5, X: 1, Y: 2, Z: 0}, {D: 5, X: 1, Y: 2, Z: 0}},
		[]model.Hole{{D: 5, X: 1, Y: 2, Z: 0}},
		tol,
	)
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %v", msgs)
	}
}

func TestReconcile_OrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("output independent of input hole order", prop.ForAll(
		func(seed int64) bool {
			tol := tolerance.Default()
			h1 := []model.Hole{
				{D: 3, X: 0, Y: 0, Z: 0},
				{D: 5, X: 10, Y: 0, Z: 0},
				{D: 5, X: 20, Y: 5, Z: 0},
				{D: 8, X: 30, Y: 30, Z: 2},
			}
			h2 := []model.Hole{
				{D: 4, X: 0.1, Y: 0, Z: 0},
				{D: 5, X: 90, Y: 0, Z: 0},
				{D: 8, X: 30, Y: 30, Z: 2},
			}

			want := Reconcile(h1, h2, tol)

			r := rand.New(rand.NewSource(seed))
			s1 := shuffled(r, h1)
			s2 := shuffled(r, h2)
			got := Reconcile(s1, s2, tol)

			if len(got) != len(want) {
				return false
			}
			for i := range got {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestReconcile_SymmetricDifference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genHoles := gen.SliceOf(gen.IntRange(0, 4).Map(func(i int) model.Hole {
		// Coarse grid so sides overlap often.
		return model.Hole{D: float64(2 + i), X: float64(i * 10), Y: float64(i * 5), Z: 0}
	}))

	properties.Property("every set1-only hole and set2-only hole is accounted for once", prop.ForAll(
		func(h1, h2 []model.Hole) bool {
			tol := tolerance.Default()
			msgs := Reconcile(h1, h2, tol)

			removedOnly := len(sortedDifference(toSet(h1), toSet(h2)))
			addedOnly := len(sortedDifference(toSet(h2), toSet(h1)))

			// Each pair-consuming message accounts for one removed and one
			// added hole; deleted/added messages account for one each.
			pairs, deleted, added := 0, 0, 0
			for _, m := range msgs {
				switch m.Category {
				case CategoryDiameter, CategoryMoved:
					pairs++
				case CategoryDeleted:
					deleted++
				case CategoryAdded:
					added++
				}
			}
			return pairs+deleted == removedOnly && pairs+added == addedOnly
		},
		genHoles,
		genHoles,
	))

	properties.TestingRun(t)
}

func TestCompare_EnvelopeChange(t *testing.T) {
	tol := tolerance.Default()
	geom1 := map[string]model.GeometricProps{"0:1": props([3]float64{10, 20, 30})}
	geom2 := map[string]model.GeometricProps{"0:1": props([3]float64{10, 20, 30.5})}

	diffs := Compare(geom1, geom2, tol)
	if len(diffs) != 1 {
		t.Fatalf("expected 1 component diff, got %d", len(diffs))
	}
	if diffs[0].Messages[0].Category != CategoryEnvelope {
		t.Errorf("expected envelope message, got %s", diffs[0].Messages[0].Category)
	}
	if !strings.Contains(diffs[0].Description, "bracket:") {
		t.Errorf("description should carry the component name: %q", diffs[0].Description)
	}
}

func TestCompare_EnvelopeWithinTolerance(t *testing.T) {
	tol := tolerance.Default()
	geom1 := map[string]model.GeometricProps{"0:1": props([3]float64{10, 20, 30})}
	geom2 := map[string]model.GeometricProps{"0:1": props([3]float64{10.05, 20, 29.95})}

	if diffs := Compare(geom1, geom2, tol); len(diffs) != 0 {
		t.Errorf("expected no diffs within tolerance, got %v", diffs)
	}
}

func TestCompare_IgnoresUnsharedEntries(t *testing.T) {
	tol := tolerance.Default()
	geom1 := map[string]model.GeometricProps{"0:1": props([3]float64{1, 1, 1})}
	geom2 := map[string]model.GeometricProps{"0:2": props([3]float64{9, 9, 9})}

	if diffs := Compare(geom1, geom2, tol); len(diffs) != 0 {
		t.Errorf("unshared entries must not diff, got %v", diffs)
	}
}

func TestSummarize_TruncatesLongLists(t *testing.T) {
	var msgs []Message
	for i := 0; i < 12; i++ {
		msgs = append(msgs, Message{Category: CategoryAdded, Text: "added Ø5 @(0,0)"})
	}

	summary := summarize(msgs)
	if !strings.Contains(summary, "(+7 more)") {
		t.Errorf("expected truncation suffix, got %q", summary)
	}
	if strings.Count(summary, "|") != 4 {
		t.Errorf("expected 5 leading messages, got %q", summary)
	}
}

func shuffled(r *rand.Rand, holes []model.Hole) []model.Hole {
	out := make([]model.Hole, len(holes))
	copy(out, holes)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
