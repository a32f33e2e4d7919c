// Package bomdiff compares two flattened component hierarchies.
//
// Identity here is the display name, not the stable label entry: two
// differently-labelled components sharing a name are matched, and a renamed
// component shows up as one removal plus one addition. The geometry and
// topology differs key by label entry instead; the two policies are
// deliberately distinct.
package bomdiff

import (
	"fmt"
	"sort"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// Component records one added or removed BOM component.
type Component struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Type       string `json:"type"`
	LabelEntry string `json:"label_entry"`
}

// Modified records a common component whose level or type changed.
type Modified struct {
	Name       string   `json:"name"`
	LabelEntry string   `json:"label_entry"`
	Level      int      `json:"level"`
	Type       string   `json:"type"`
	Changes    []string `json:"changes"`
}

// Diff is the BOM change set.
type Diff struct {
	Added    []Component `json:"added"`
	Removed  []Component `json:"removed"`
	Modified []Modified  `json:"modified"`
	Count1   int         `json:"count1"`
	Count2   int         `json:"count2"`
}

// HasChanges reports whether anything differs between the two BOMs.
func (d Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// Compare indexes both BOMs by name and computes added, removed and modified
// components. Output slices are sorted by name for deterministic reports.
func Compare(bom1, bom2 []model.BOMItem) Diff {
	byName1 := indexByName(bom1)
	byName2 := indexByName(bom2)

	diff := Diff{
		Added:    []Component{},
		Removed:  []Component{},
		Modified: []Modified{},
		Count1:   len(byName1),
		Count2:   len(byName2),
	}

	for _, name := range sortedNames(byName1) {
		item := byName1[name]
		if _, ok := byName2[name]; !ok {
			diff.Removed = append(diff.Removed, Component{
				Name:       name,
				Level:      item.Level,
				Type:       item.Type,
				LabelEntry: item.LabelEntry,
			})
		}
	}

	for _, name := range sortedNames(byName2) {
		item := byName2[name]
		if _, ok := byName1[name]; !ok {
			diff.Added = append(diff.Added, Component{
				Name:       name,
				Level:      item.Level,
				Type:       item.Type,
				LabelEntry: item.LabelEntry,
			})
		}
	}

	for _, name := range sortedNames(byName1) {
		item1 := byName1[name]
		item2, ok := byName2[name]
		if !ok {
			continue
		}

		var changes []string
		if item1.Level != item2.Level {
			changes = append(changes, fmt.Sprintf("level: %d → %d", item1.Level, item2.Level))
		}
		if item1.Type != item2.Type {
			changes = append(changes, fmt.Sprintf("type: %s → %s", item1.Type, item2.Type))
		}

		if len(changes) > 0 {
			diff.Modified = append(diff.Modified, Modified{
				Name:       name,
				LabelEntry: item1.LabelEntry,
				Level:      item2.Level,
				Type:       item2.Type,
				Changes:    changes,
			})
		}
	}

	return diff
}

// indexByName keeps the last occurrence of a duplicated name. Duplicate
// names collapse to one map entry; the compliance checker flags them.
func indexByName(bom []model.BOMItem) map[string]model.BOMItem {
	byName := make(map[string]model.BOMItem, len(bom))
	for _, item := range bom {
		byName[item.Name] = item
	}
	return byName
}

func sortedNames(m map[string]model.BOMItem) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
