// Package geomdiff compares aggregate volume and surface area per shared
// component. Components are joined by stable label entry, unlike the BOM
// differ's name join.
package geomdiff

import (
	"sort"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// PathSeparator joins ancestor names into a hierarchical component path.
const PathSeparator = "->"

// Change records one component whose volume or surface moved beyond the
// epsilon. Before/after values are kept alongside the deltas.
type Change struct {
	Component     string  `json:"component"`
	FullPath      string  `json:"full_path"`
	Entry         string  `json:"entry"`
	VolumeBefore  float64 `json:"volume_before"`
	VolumeAfter   float64 `json:"volume_after"`
	VolumeChange  float64 `json:"volume_change"`
	SurfaceBefore float64 `json:"surface_before"`
	SurfaceAfter  float64 `json:"surface_after"`
	SurfaceChange float64 `json:"surface_change"`
}

// Compare intersects both geometry maps by entry and emits a change for
// every shared component whose volume or surface delta exceeds epsilon.
// The registry from the first baseline supplies hierarchical paths.
func Compare(geom1, geom2 map[string]model.GeometricProps, registry map[string]model.RegistryEntry, epsilon float64) []Change {
	entries := make([]string, 0, len(geom1))
	for entry := range geom1 {
		if _, ok := geom2[entry]; ok {
			entries = append(entries, entry)
		}
	}
	sort.Strings(entries)

	var changes []Change
	for _, entry := range entries {
		props1 := geom1[entry]
		props2 := geom2[entry]

		volDiff := props2.Volume - props1.Volume
		surfDiff := props2.SurfaceArea - props1.SurfaceArea
		if abs(volDiff) <= epsilon && abs(surfDiff) <= epsilon {
			continue
		}

		name := props1.Name
		if reg, ok := registry[entry]; ok && reg.Name != "" {
			name = reg.Name
		}

		changes = append(changes, Change{
			Component:     name,
			FullPath:      FullPath(registry, entry, name),
			Entry:         entry,
			VolumeBefore:  props1.Volume,
			VolumeAfter:   props2.Volume,
			VolumeChange:  volDiff,
			SurfaceBefore: props1.SurfaceArea,
			SurfaceAfter:  props2.SurfaceArea,
			SurfaceChange: surfDiff,
		})
	}
	return changes
}

// FullPath reconstructs the hierarchical path of a component by walking
// parent links up to the root. Consecutive duplicate names are collapsed;
// a component absent from the registry keeps its bare name.
func FullPath(registry map[string]model.RegistryEntry, entry, name string) string {
	reg, ok := registry[entry]
	if !ok {
		return name
	}

	parts := []string{name}
	parent := reg.ParentEntry
	// Walk bounded by registry size to survive a cyclic parent link.
	for steps := 0; parent != "" && steps < len(registry); steps++ {
		parentReg, ok := registry[parent]
		if !ok {
			break
		}
		if parentReg.Name != "" && parentReg.Name != parts[0] {
			parts = append([]string{parentReg.Name}, parts...)
		}
		parent = parentReg.ParentEntry
	}

	if len(parts) == 1 {
		return name
	}
	return strings.Join(parts, PathSeparator)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
