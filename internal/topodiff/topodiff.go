// Package topodiff compares bounding envelopes and hole signatures per
// shared component. It contains the hole reconciliation heuristic that maps
// raw removed/added hole sets to modified, moved, deleted and created holes.
package topodiff

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

// Category tags a diff message at the point of creation. The impact
// classifier switches on the tag, never on message text.
type Category string

const (
	CategoryEnvelope Category = "envelope"
	CategoryDiameter Category = "diameter"
	CategoryMoved    Category = "moved"
	CategoryDeleted  Category = "deleted"
	CategoryAdded    Category = "added"
)

// Message is one tagged topology diff message.
type Message struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// ComponentDiff is the per-component topology change record. Messages is the
// full machine-readable list; Differences is the human-readable summary with
// long hole lists truncated.
type ComponentDiff struct {
	Component   string    `json:"component"`
	Entry       string    `json:"entry"`
	Messages    []Message `json:"messages"`
	Differences []string  `json:"differences"`
	Description string    `json:"description"`
}

// Truncation thresholds for the human-readable summary.
const (
	summaryLimit = 10
	summaryHead  = 5
)

// Compare intersects both geometry maps by entry and checks each shared
// component's bounding envelope and hole signature. Components are visited
// in sorted entry order so output is reproducible.
func Compare(geom1, geom2 map[string]model.GeometricProps, tol tolerance.Config) []ComponentDiff {
	entries := make([]string, 0, len(geom1))
	for entry := range geom1 {
		if _, ok := geom2[entry]; ok {
			entries = append(entries, entry)
		}
	}
	sort.Strings(entries)

	var diffs []ComponentDiff
	for _, entry := range entries {
		props1 := geom1[entry]
		props2 := geom2[entry]

		var messages []Message
		var differences []string

		if msg, changed := compareEnvelope(props1.BBox, props2.BBox, tol.EnvelopeTol); changed {
			messages = append(messages, msg)
			differences = append(differences, msg.Text)
		}

		holeMsgs := Reconcile(holes(props1), holes(props2), tol)
		if len(holeMsgs) > 0 {
			messages = append(messages, holeMsgs...)
			differences = append(differences, summarize(holeMsgs))
		}

		if len(messages) == 0 {
			continue
		}

		diffs = append(diffs, ComponentDiff{
			Component:   props1.Name,
			Entry:       entry,
			Messages:    messages,
			Differences: differences,
			Description: props1.Name + ": " + strings.Join(differences, " | "),
		})
	}
	return diffs
}

// compareEnvelope checks the three extents pairwise against the tolerance.
func compareEnvelope(b1, b2 *model.BBox, tol float64) (Message, bool) {
	var d1, d2 [3]float64
	if b1 != nil {
		d1 = b1.Dims
	}
	if b2 != nil {
		d2 = b2.Dims
	}
	for axis := 0; axis < 3; axis++ {
		if math.Abs(d1[axis]-d2[axis]) > tol {
			return Message{
				Category: CategoryEnvelope,
				Text:     fmt.Sprintf("envelope: %v → %v", d1, d2),
			}, true
		}
	}
	return Message{}, false
}

// holeTuple is an exact (x, y, z, diameter) position; converting a hole list
// to a set of tuples removes exact duplicates.
type holeTuple struct {
	X, Y, Z, D float64
}

// Reconcile computes the symmetric difference between two hole signatures
// and greedily maps removed holes onto added ones: an added hole within the
// position tolerance is a diameter change, one with a matching diameter is a
// move, anything unmatched is a deletion or a creation.
//
// Matching is first-found, not minimal total cost. Both sides iterate in
// (diameter, x, y) order so results do not depend on input hole order.
func Reconcile(h1, h2 []model.Hole, tol tolerance.Config) []Message {
	set1 := toSet(h1)
	set2 := toSet(h2)

	removed := sortedDifference(set1, set2)
	added := sortedDifference(set2, set1)
	if len(removed) == 0 && len(added) == 0 {
		return nil
	}

	var messages []Message
	consumed := make([]bool, len(added))

	for _, r := range removed {
		matched := false

		// Same position, different diameter.
		for i, a := range added {
			if consumed[i] {
				continue
			}
			if distance3(r.X, r.Y, r.Z, a.X, a.Y, a.Z) < tol.HolePositionTol {
				messages = append(messages, Message{
					Category: CategoryDiameter,
					Text:     fmt.Sprintf("Ø modified @(%g,%g): %g → %g", r.X, r.Y, r.D, a.D),
				})
				consumed[i] = true
				matched = true
				break
			}
		}

		// Same diameter, new position.
		if !matched {
			for i, a := range added {
				if consumed[i] {
					continue
				}
				if math.Abs(r.D-a.D) <= tol.DiameterTol {
					messages = append(messages, Message{
						Category: CategoryMoved,
						Text:     fmt.Sprintf("moved (Ø%g): to (%g,%g)", r.D, a.X, a.Y),
					})
					consumed[i] = true
					matched = true
					break
				}
			}
		}

		if !matched {
			messages = append(messages, Message{
				Category: CategoryDeleted,
				Text:     fmt.Sprintf("deleted Ø%g @(%g,%g)", r.D, r.X, r.Y),
			})
		}
	}

	// Whatever was never consumed is a genuine new hole.
	for i, a := range added {
		if !consumed[i] {
			messages = append(messages, Message{
				Category: CategoryAdded,
				Text:     fmt.Sprintf("added Ø%g @(%g,%g)", a.D, a.X, a.Y),
			})
		}
	}

	return messages
}

// summarize joins hole messages for a report, truncating long lists.
func summarize(messages []Message) string {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Text
	}
	if len(texts) > summaryLimit {
		head := strings.Join(texts[:summaryHead], " | ")
		return fmt.Sprintf("%s ... (+%d more)", head, len(texts)-summaryHead)
	}
	return strings.Join(texts, " | ")
}

func holes(props model.GeometricProps) []model.Hole {
	if props.Features == nil {
		return nil
	}
	return props.Features.Holes
}

func toSet(holes []model.Hole) map[holeTuple]bool {
	set := make(map[holeTuple]bool, len(holes))
	for _, h := range holes {
		set[holeTuple{X: h.X, Y: h.Y, Z: h.Z, D: h.D}] = true
	}
	return set
}

// sortedDifference returns the tuples in a but not in b, ordered by
// (diameter, x, y).
func sortedDifference(a, b map[holeTuple]bool) []holeTuple {
	var diff []holeTuple
	for t := range a {
		if !b[t] {
			diff = append(diff, t)
		}
	}
	sort.Slice(diff, func(i, j int) bool {
		if diff[i].D != diff[j].D {
			return diff[i].D < diff[j].D
		}
		if diff[i].X != diff[j].X {
			return diff[i].X < diff[j].X
		}
		return diff[i].Y < diff[j].Y
	})
	return diff
}

func distance3(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x1-x2, y1-y2, z1-z2
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
