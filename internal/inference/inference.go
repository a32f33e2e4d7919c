// Package inference infers the mechanical interfaces connecting components
// within one baseline: fastenings (aligned holes), contacts and proximities.
// The scan is pairwise over all components, so baselines above the
// configured component budget are rejected rather than left to run for
// minutes.
package inference

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

// Type is the inferred interface kind.
type Type string

const (
	Fastening Type = "fastening"
	Contact   Type = "contact"
	Proximity Type = "proximity"
)

// Severity ranks an interface: fastenings are always critical, contacts
// major, proximities minor.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Interface is one inferred relation between two components.
type Interface struct {
	Type       Type     `json:"type"`
	Component1 string   `json:"component1"`
	Component2 string   `json:"component2"`
	Entry1     string   `json:"entry1"`
	Entry2     string   `json:"entry2"`
	Severity   Severity `json:"severity"`

	// Fastening payload.
	FastenerCount    int          `json:"fastener_count,omitempty"`
	FastenerDiameter float64      `json:"fastener_diameter,omitempty"`
	MatchedPositions [][3]float64 `json:"matched_positions,omitempty"`

	// Contact/proximity payload.
	Distance float64 `json:"distance,omitempty"`

	Description string `json:"description"`
}

// Connection is one edge of the assembly graph.
type Connection struct {
	ConnectedTo string   `json:"connected_to"`
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
}

// Summary aggregates interface counts by type and severity.
type Summary struct {
	Total      int              `json:"total_interfaces"`
	ByType     map[Type]int     `json:"by_type"`
	BySeverity map[Severity]int `json:"by_severity"`
}

// Analysis is the full inference result for one baseline.
type Analysis struct {
	Interfaces      []Interface             `json:"interfaces"`
	Summary         Summary                 `json:"summary"`
	CriticalJoints  []Interface             `json:"critical_joints"`
	AssemblyGraph   map[string][]Connection `json:"assembly_graph"`
	Recommendations []string                `json:"recommendations"`
}

// ErrBudgetExceeded is returned when a baseline has more components than the
// pairwise scan budget allows.
var ErrBudgetExceeded = errors.New("component budget exceeded")

// Infer runs the pairwise interface scan over one baseline's geometry map.
// Component pairs lacking envelope or center-of-mass data are skipped, not
// errors. Pairs are visited in sorted entry order so results are
// reproducible.
func Infer(geom map[string]model.GeometricProps, tol tolerance.Config) (Analysis, error) {
	if len(geom) > tol.MaxComponents {
		return Analysis{}, fmt.Errorf("%w: %d components, budget %d",
			ErrBudgetExceeded, len(geom), tol.MaxComponents)
	}

	entries := make([]string, 0, len(geom))
	for entry := range geom {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	interfaces := []Interface{}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if iface, ok := classifyPair(entries[i], entries[j], geom[entries[i]], geom[entries[j]], tol); ok {
				interfaces = append(interfaces, iface)
			}
		}
	}

	return Analysis{
		Interfaces:      interfaces,
		Summary:         summarize(interfaces),
		CriticalJoints:  criticalJoints(interfaces),
		AssemblyGraph:   assemblyGraph(interfaces),
		Recommendations: Recommendations(interfaces),
	}, nil
}

// classifyPair produces at most one interface per component pair: fastening
// when holes align, otherwise contact or proximity by center distance, or
// nothing at all.
func classifyPair(entry1, entry2 string, p1, p2 model.GeometricProps, tol tolerance.Config) (Interface, bool) {
	if !hasSpatialData(p1) || !hasSpatialData(p2) {
		return Interface{}, false
	}

	dist := distance3(p1.CenterOfMass, p2.CenterOfMass)
	maxExtent := maxDim(p1.BBox, p2.BBox)
	if maxExtent == 0 || dist > tol.RejectFactor*maxExtent {
		return Interface{}, false
	}

	base := Interface{
		Component1: p1.Name,
		Component2: p2.Name,
		Entry1:     entry1,
		Entry2:     entry2,
	}

	if matches := AlignHoles(holesOf(p1), holesOf(p2), tol); len(matches) > 0 {
		count, diameter := dominantDiameter(matches)
		positions := make([][3]float64, len(matches))
		for k, m := range matches {
			positions[k] = [3]float64{m.A.X, m.A.Y, m.A.Z}
		}
		base.Type = Fastening
		base.Severity = SeverityCritical
		base.FastenerCount = count
		base.FastenerDiameter = diameter
		base.MatchedPositions = positions
		base.Description = fmt.Sprintf("fastening: %d fastener(s) Ø%gmm between %s and %s",
			count, diameter, p1.Name, p2.Name)
		return base, true
	}

	switch {
	case dist < tol.ContactFactor*maxExtent:
		base.Type = Contact
		base.Severity = SeverityMajor
		base.Distance = dist
		base.Description = fmt.Sprintf("contact between %s and %s (distance %.1fmm)", p1.Name, p2.Name, dist)
		return base, true
	case dist < maxExtent:
		base.Type = Proximity
		base.Severity = SeverityMinor
		base.Distance = dist
		base.Description = fmt.Sprintf("proximity between %s and %s (distance %.1fmm)", p1.Name, p2.Name, dist)
		return base, true
	}
	return Interface{}, false
}

// Match pairs one hole from each component.
type Match struct {
	A model.Hole // first component's hole
	B model.Hole // second component's hole
}

// AlignHoles greedily matches holes across two components. A pair matches
// when diameters agree within the diameter tolerance, at least two of the
// three axis offsets stay under the alignment tolerance, and the full 3D
// separation stays under twice it. Each hole matches at most once,
// first-found wins.
func AlignHoles(h1, h2 []model.Hole, tol tolerance.Config) []Match {
	var matches []Match
	consumed := make([]bool, len(h2))

	for _, a := range h1 {
		for i, b := range h2 {
			if consumed[i] {
				continue
			}
			if math.Abs(a.D-b.D) > tol.DiameterTol {
				continue
			}

			aligned := 0
			if math.Abs(a.X-b.X) < tol.AxisAlignTol {
				aligned++
			}
			if math.Abs(a.Y-b.Y) < tol.AxisAlignTol {
				aligned++
			}
			if math.Abs(a.Z-b.Z) < tol.AxisAlignTol {
				aligned++
			}
			if aligned < 2 {
				continue
			}

			sep := distance3(
				[]float64{a.X, a.Y, a.Z},
				[]float64{b.X, b.Y, b.Z},
			)
			if sep >= 2*tol.AxisAlignTol {
				continue
			}

			matches = append(matches, Match{A: a, B: b})
			consumed[i] = true
			break
		}
	}
	return matches
}

// dominantDiameter groups matches by the first side's hole diameter and
// returns the total match count plus the diameter with the most matches.
// Ties resolve to the smaller diameter.
func dominantDiameter(matches []Match) (int, float64) {
	byDiameter := make(map[float64]int)
	for _, m := range matches {
		byDiameter[m.A.D]++
	}

	best := 0.0
	bestCount := -1
	for d, count := range byDiameter {
		if count > bestCount || (count == bestCount && d < best) {
			best = d
			bestCount = count
		}
	}
	return len(matches), best
}

func summarize(interfaces []Interface) Summary {
	s := Summary{
		Total:      len(interfaces),
		ByType:     map[Type]int{Fastening: 0, Contact: 0, Proximity: 0},
		BySeverity: map[Severity]int{SeverityCritical: 0, SeverityMajor: 0, SeverityMinor: 0},
	}
	for _, iface := range interfaces {
		s.ByType[iface.Type]++
		s.BySeverity[iface.Severity]++
	}
	return s
}

func criticalJoints(interfaces []Interface) []Interface {
	joints := []Interface{}
	for _, iface := range interfaces {
		if iface.Type == Fastening {
			joints = append(joints, iface)
		}
	}
	return joints
}

// assemblyGraph maps each component name to its connections, both
// directions.
func assemblyGraph(interfaces []Interface) map[string][]Connection {
	graph := make(map[string][]Connection)
	for _, iface := range interfaces {
		graph[iface.Component1] = append(graph[iface.Component1], Connection{
			ConnectedTo: iface.Component2,
			Type:        iface.Type,
			Severity:    iface.Severity,
		})
		graph[iface.Component2] = append(graph[iface.Component2], Connection{
			ConnectedTo: iface.Component1,
			Type:        iface.Type,
			Severity:    iface.Severity,
		})
	}
	return graph
}

func hasSpatialData(p model.GeometricProps) bool {
	return p.BBox != nil && len(p.CenterOfMass) == 3
}

func holesOf(p model.GeometricProps) []model.Hole {
	if p.Features == nil {
		return nil
	}
	return p.Features.Holes
}

func maxDim(b1, b2 *model.BBox) float64 {
	max := 0.0
	for _, b := range []*model.BBox{b1, b2} {
		for _, d := range b.Dims {
			if d > max {
				max = d
			}
		}
	}
	return max
}

func distance3(a, b []float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
