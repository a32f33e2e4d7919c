// Package model defines the baseline snapshot data structures shared by
// every analyzer. A Baseline is produced once (by the geometry extraction
// service or by reloading a persisted JSON file) and is read-only afterwards;
// all diff and inference packages consume it without mutation.
package model

import (
	"errors"
	"fmt"
	"sort"
)

// Component kinds as they appear in the BOM.
const (
	KindAssembly = "Assembly"
	KindPart     = "Part"
)

// Baseline is an immutable snapshot of an assembly's structure and geometry.
// The JSON field names are a persistence contract: a baseline written by one
// version must reload in another, so they never change.
type Baseline struct {
	BaselineID string                     `json:"baseline_id"`
	Timestamp  string                     `json:"timestamp"`
	File       string                     `json:"file"`
	Metadata   Metadata                   `json:"metadata"`
	BOM        []BOMItem                  `json:"bom"`
	Registry   map[string]RegistryEntry   `json:"component_registry"`
	Geometry   map[string]GeometricProps  `json:"geometric_properties"`
	Colors     map[string]ColorEntry      `json:"colors,omitempty"`
	Deps       map[string][]DependencyRef `json:"dependencies,omitempty"`
	Checksum   string                     `json:"checksum"`
}

// Metadata holds the model file header fields.
type Metadata struct {
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"`
	Author      string    `json:"author,omitempty"`
	Schema      string    `json:"schema,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

// Product is a product declaration from the model file header.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// BOMItem is one row of the flattened bill of materials. Positions are
// assigned in depth-first pre-order starting at 1; a component's level is
// its parent's level plus one, with the root at level 0.
type BOMItem struct {
	Position   int    `json:"position"`
	Level      int    `json:"level"`
	Quantity   int    `json:"quantity"`
	Name       string `json:"name"`
	LabelEntry string `json:"label_entry"`
	Type       string `json:"type"`
}

// RegistryEntry describes one unique component. ParentEntry links components
// into the hierarchy; Instances lists the BOM positions where it occurs.
type RegistryEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ParentEntry string `json:"parent_entry,omitempty"`
	Instances   []int  `json:"instances,omitempty"`
}

// GeometricProps is the per-component geometric feature record, keyed in the
// baseline by the component's stable label entry.
type GeometricProps struct {
	Name         string            `json:"name"`
	UniqueName   string            `json:"unique_name,omitempty"`
	Path         string            `json:"path,omitempty"`
	Volume       float64           `json:"volume"`
	SurfaceArea  float64           `json:"surface_area"`
	CenterOfMass []float64         `json:"center_of_mass,omitempty"`
	BBox         *BBox             `json:"bbox,omitempty"`
	Features     *FeatureSignature `json:"features_signature,omitempty"`
}

// BBox is the axis-aligned bounding envelope.
type BBox struct {
	Dims       [3]float64 `json:"dims"`
	VolumeBBox float64    `json:"volume_bbox"`
}

// FeatureSignature carries the detected cylindrical-face features (holes)
// and the planar face count used as a fastening proxy.
type FeatureSignature struct {
	Holes            []Hole `json:"holes"`
	PlanarFacesCount int    `json:"planar_faces_count"`
}

// Hole is one cylindrical feature: diameter plus axis location.
type Hole struct {
	D float64 `json:"d"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ColorEntry records a component's display color.
type ColorEntry struct {
	Name string `json:"name"`
	RGB  [3]int `json:"rgb"`
}

// DependencyRef is one parent-to-child edge in the dependency graph.
type DependencyRef struct {
	Entry string `json:"entry"`
	Name  string `json:"name"`
}

// ErrInvalidBaseline is returned when a baseline is missing required fields.
var ErrInvalidBaseline = errors.New("invalid baseline")

// Validate checks that the required baseline fields are present. A
// comparison refuses to proceed on a baseline that fails validation.
func (b *Baseline) Validate() error {
	var missing []string
	if b.BaselineID == "" {
		missing = append(missing, "baseline_id")
	}
	if b.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if b.File == "" {
		missing = append(missing, "file")
	}
	if b.Checksum == "" {
		missing = append(missing, "checksum")
	}
	if len(b.BOM) == 0 {
		missing = append(missing, "bom")
	}
	if len(b.Geometry) == 0 {
		missing = append(missing, "geometric_properties")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrInvalidBaseline, missing)
	}
	return nil
}

// MaxDepth returns the deepest BOM level, or 0 for an empty BOM.
func (b *Baseline) MaxDepth() int {
	depth := 0
	for _, item := range b.BOM {
		if item.Level > depth {
			depth = item.Level
		}
	}
	return depth
}

// DisplayName prefers the registry name for an entry, falling back to the
// geometry record's own name.
func (b *Baseline) DisplayName(entry string) string {
	if reg, ok := b.Registry[entry]; ok && reg.Name != "" {
		return reg.Name
	}
	if props, ok := b.Geometry[entry]; ok {
		return props.Name
	}
	return entry
}

// SortHoles orders holes by (diameter, x, y). Every downstream comparison
// relies on this order for reproducible output, so baselines are normalized
// on load.
func SortHoles(holes []Hole) {
	sort.Slice(holes, func(i, j int) bool {
		if holes[i].D != holes[j].D {
			return holes[i].D < holes[j].D
		}
		if holes[i].X != holes[j].X {
			return holes[i].X < holes[j].X
		}
		return holes[i].Y < holes[j].Y
	})
}

// Normalize re-establishes the invariants a freshly extracted baseline
// guarantees, for baselines reloaded from persisted JSON.
func (b *Baseline) Normalize() {
	for entry, props := range b.Geometry {
		if props.Features != nil {
			SortHoles(props.Features.Holes)
			b.Geometry[entry] = props
		}
	}
}
