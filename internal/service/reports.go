package service

import (
	"context"
	"math"
	"time"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/compliance"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/inference"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// BOMReport wraps the bill of materials with its aggregate figures.
type BOMReport struct {
	Items      []model.BOMItem `json:"items"`
	TotalCount int             `json:"total_count"`
	MaxDepth   int             `json:"max_depth"`
}

// ComponentsReport wraps the component registry.
type ComponentsReport struct {
	Registry    map[string]model.RegistryEntry `json:"registry"`
	TotalUnique int                            `json:"total_unique"`
}

// GeometryTotals aggregates volume and surface over all components.
type GeometryTotals struct {
	VolumeMM3      float64 `json:"volume_mm3"`
	SurfaceMM2     float64 `json:"surface_mm2"`
	ComponentCount int     `json:"component_count"`
}

// GeometryReport is the geometry-only extraction result, optionally
// filtered to one component.
type GeometryReport struct {
	Components map[string]model.GeometricProps `json:"components"`
	Totals     GeometryTotals                  `json:"totals"`
}

// AnalysisReport is the full single-model analysis.
type AnalysisReport struct {
	File       string `json:"file"`
	Checksum   string `json:"checksum"`
	AnalyzedAt string `json:"analyzed_at"`

	Metadata     model.Metadata                   `json:"metadata"`
	BOM          BOMReport                        `json:"bom"`
	Components   ComponentsReport                 `json:"components"`
	Geometry     GeometryReport                   `json:"geometry"`
	Colors       map[string]model.ColorEntry      `json:"colors,omitempty"`
	Dependencies map[string][]model.DependencyRef `json:"dependencies,omitempty"`
	Validation   compliance.Report                `json:"validation"`
}

// InterfaceReport is the interface inference result for one reference.
type InterfaceReport struct {
	File       string `json:"file"`
	AnalyzedAt string `json:"analyzed_at"`
	inference.Analysis
}

// Analyze runs the full single-model analysis: metadata, BOM, components,
// geometry totals, colors, dependencies and the compliance checks.
func (s *Service) Analyze(ctx context.Context, ref string) (AnalysisReport, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return AnalysisReport{}, err
	}

	return AnalysisReport{
		File:       b.File,
		Checksum:   b.Checksum,
		AnalyzedAt: time.Now().Format(time.RFC3339),
		Metadata:   b.Metadata,
		BOM: BOMReport{
			Items:      b.BOM,
			TotalCount: len(b.BOM),
			MaxDepth:   b.MaxDepth(),
		},
		Components: ComponentsReport{
			Registry:    b.Registry,
			TotalUnique: len(b.Registry),
		},
		Geometry:     geometryReport(b.Geometry),
		Colors:       b.Colors,
		Dependencies: b.Deps,
		Validation:   compliance.Validate(&b),
	}, nil
}

// Geometry returns the geometric properties of a reference, optionally
// filtered by component name. A failed filter returns the
// ComponentNotFoundError with name suggestions.
func (s *Service) Geometry(ctx context.Context, ref, component string) (GeometryReport, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return GeometryReport{}, err
	}

	geom := b.Geometry
	if component != "" {
		geom, err = b.GeometryByName(component)
		if err != nil {
			return GeometryReport{}, err
		}
	}
	return geometryReport(geom), nil
}

// Interfaces runs the interface inference engine over one reference.
func (s *Service) Interfaces(ctx context.Context, ref string) (InterfaceReport, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return InterfaceReport{}, err
	}

	analysis, err := inference.Infer(b.Geometry, s.tol)
	if err != nil {
		return InterfaceReport{}, err
	}
	return InterfaceReport{
		File:       b.File,
		AnalyzedAt: time.Now().Format(time.RFC3339),
		Analysis:   analysis,
	}, nil
}

func geometryReport(geom map[string]model.GeometricProps) GeometryReport {
	totals := GeometryTotals{ComponentCount: len(geom)}
	for _, props := range geom {
		totals.VolumeMM3 += props.Volume
		totals.SurfaceMM2 += props.SurfaceArea
	}
	totals.VolumeMM3 = round2(totals.VolumeMM3)
	totals.SurfaceMM2 = round2(totals.SurfaceMM2)
	return GeometryReport{Components: geom, Totals: totals}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
