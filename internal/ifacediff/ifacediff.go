// Package ifacediff compares two inferred interface sets.
//
// The canonical key is the sorted component pair plus the interface type.
// Two different-typed interfaces between the same pair stay distinct, but
// multiple same-type interfaces between one pair collapse to a single map
// entry, last one wins.
package ifacediff

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/inference"
)

// Modified is an interface present in both sets whose payload changed. The
// embedded interface is the new state; Previous retains the old one.
type Modified struct {
	inference.Interface
	ChangeDescription string              `json:"change_description"`
	Previous          inference.Interface `json:"previous_state"`
}

// Diff is the interface change set.
type Diff struct {
	Added    []inference.Interface `json:"added"`
	Removed  []inference.Interface `json:"removed"`
	Modified []Modified            `json:"modified"`
}

// HasChanges reports whether the two interface sets differ.
func (d Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// Total counts all interface deltas.
func (d Diff) Total() int {
	return len(d.Added) + len(d.Removed) + len(d.Modified)
}

// Compare keys both sets canonically and computes added, removed and
// modified interfaces. distanceTol is the minimum contact/proximity distance
// delta that counts as a modification. Output is ordered by canonical key.
func Compare(set1, set2 []inference.Interface, distanceTol float64) Diff {
	byKey1 := index(set1)
	byKey2 := index(set2)

	diff := Diff{
		Added:    []inference.Interface{},
		Removed:  []inference.Interface{},
		Modified: []Modified{},
	}

	for _, key := range sortedKeys(byKey2) {
		if _, ok := byKey1[key]; !ok {
			diff.Added = append(diff.Added, byKey2[key])
		}
	}

	for _, key := range sortedKeys(byKey1) {
		iface1 := byKey1[key]
		iface2, ok := byKey2[key]
		if !ok {
			diff.Removed = append(diff.Removed, iface1)
			continue
		}

		var changes []string
		if iface1.Type == inference.Fastening {
			if iface1.FastenerCount != iface2.FastenerCount {
				changes = append(changes, fmt.Sprintf("fastener count: %d → %d",
					iface1.FastenerCount, iface2.FastenerCount))
			}
			if iface1.FastenerDiameter != iface2.FastenerDiameter {
				changes = append(changes, fmt.Sprintf("diameter: Ø%gmm → Ø%gmm",
					iface1.FastenerDiameter, iface2.FastenerDiameter))
			}
		} else if math.Abs(iface1.Distance-iface2.Distance) > distanceTol {
			changes = append(changes, fmt.Sprintf("distance: %.1fmm → %.1fmm",
				iface1.Distance, iface2.Distance))
		}

		if len(changes) > 0 {
			diff.Modified = append(diff.Modified, Modified{
				Interface:         iface2,
				ChangeDescription: strings.Join(changes, "; "),
				Previous:          iface1,
			})
		}
	}

	return diff
}

// Key builds the canonical map key for an interface.
func Key(iface inference.Interface) string {
	a, b := iface.Component1, iface.Component2
	if b < a {
		a, b = b, a
	}
	return a + "||" + b + "||" + string(iface.Type)
}

func index(set []inference.Interface) map[string]inference.Interface {
	byKey := make(map[string]inference.Interface, len(set))
	for _, iface := range set {
		byKey[Key(iface)] = iface
	}
	return byKey
}

func sortedKeys(m map[string]inference.Interface) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
