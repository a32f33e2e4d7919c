// Package compare orchestrates a full baseline comparison: validation,
// checksum short-circuit, all differs, per-side interface inference, the
// interface diff and the impact classification.
package compare

import (
	"fmt"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/bomdiff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/geomdiff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/ifacediff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/impact"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/inference"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/metadiff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/topodiff"
)

// BaselineRef identifies one side of a comparison.
type BaselineRef struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	Checksum  string `json:"checksum"`
	Timestamp string `json:"timestamp"`
}

// Summary counts changes per category.
type Summary struct {
	TotalChanges       int `json:"total_changes"`
	ComponentsAdded    int `json:"components_added"`
	ComponentsRemoved  int `json:"components_removed"`
	ComponentsModified int `json:"components_modified"`
	GeometryChanges    int `json:"geometry_changes"`
	TopologyChanges    int `json:"topology_changes"`
	InterfaceChanges   int `json:"interface_changes"`
}

// Report is the full comparison result. All fields are produced fresh per
// invocation; neither input baseline is mutated.
type Report struct {
	Baseline1  BaselineRef              `json:"baseline1"`
	Baseline2  BaselineRef              `json:"baseline2"`
	Identical  bool                     `json:"identical"`
	Impact     impact.Report            `json:"impact"`
	BOM        bomdiff.Diff             `json:"bom"`
	Geometry   []geomdiff.Change        `json:"geometry"`
	Topology   []topodiff.ComponentDiff `json:"topology"`
	Metadata   metadiff.Diff            `json:"metadata"`
	Interfaces ifacediff.Diff           `json:"interfaces"`
	Summary    Summary                  `json:"summary"`
}

// Compare runs the full comparison. Both baselines must validate; identical
// checksums short-circuit to an "identical" report with every differ
// skipped, so bit-identical inputs never produce floating-point-noise diffs.
func Compare(b1, b2 *model.Baseline, tol tolerance.Config) (Report, error) {
	if err := b1.Validate(); err != nil {
		return Report{}, fmt.Errorf("baseline 1: %w", err)
	}
	if err := b2.Validate(); err != nil {
		return Report{}, fmt.Errorf("baseline 2: %w", err)
	}

	report := Report{
		Baseline1: ref(b1),
		Baseline2: ref(b2),
	}

	if b1.Checksum == b2.Checksum {
		report.Identical = true
		report.Impact = impact.Report{
			Level:          impact.LevelNone,
			Message:        "Identical files (same checksum)",
			ClashRisks:     []impact.Risk{},
			AssemblyRisks:  []impact.Risk{},
			RetrofitRisks:  []impact.Risk{},
			BOMChanges:     []impact.BOMChange{},
			InterfaceRisks: []impact.InterfaceRisk{},
		}
		return report, nil
	}

	report.BOM = bomdiff.Compare(b1.BOM, b2.BOM)
	report.Geometry = geomdiff.Compare(b1.Geometry, b2.Geometry, b1.Registry, tol.GeometryEpsilon)
	report.Topology = topodiff.Compare(b1.Geometry, b2.Geometry, tol)
	report.Metadata = metadiff.Compare(b1.Metadata, b2.Metadata)

	analysis1, err := inference.Infer(b1.Geometry, tol)
	if err != nil {
		return Report{}, fmt.Errorf("baseline 1 interface inference: %w", err)
	}
	analysis2, err := inference.Infer(b2.Geometry, tol)
	if err != nil {
		return Report{}, fmt.Errorf("baseline 2 interface inference: %w", err)
	}
	report.Interfaces = ifacediff.Compare(analysis1.Interfaces, analysis2.Interfaces, tol.DistanceChangeTol)

	report.Impact = impact.Classify(report.BOM, report.Topology, report.Interfaces)
	report.Summary = summarize(report)
	return report, nil
}

func summarize(r Report) Summary {
	s := Summary{
		ComponentsAdded:    len(r.BOM.Added),
		ComponentsRemoved:  len(r.BOM.Removed),
		ComponentsModified: len(r.BOM.Modified),
		GeometryChanges:    len(r.Geometry),
		TopologyChanges:    len(r.Topology),
		InterfaceChanges:   r.Interfaces.Total(),
	}
	s.TotalChanges = s.ComponentsAdded + s.ComponentsRemoved + s.ComponentsModified +
		s.TopologyChanges + s.InterfaceChanges
	return s
}

func ref(b *model.Baseline) BaselineRef {
	return BaselineRef{
		ID:        b.BaselineID,
		File:      b.File,
		Checksum:  b.Checksum,
		Timestamp: b.Timestamp,
	}
}
