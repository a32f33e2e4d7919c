// Package impact aggregates every diff output into one ranked severity
// level plus categorized risk buckets.
package impact

import (
	"fmt"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/bomdiff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/ifacediff"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/inference"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/topodiff"
)

// Level is the single ranked severity label for a comparison.
type Level string

const (
	LevelCriticalInterface Level = "critical_interface"
	LevelCriticalClash     Level = "critical_clash"
	LevelCriticalAssembly  Level = "critical_assembly"
	LevelCriticalMissing   Level = "critical_missing"
	LevelMajorRetrofit     Level = "major_retrofit"
	LevelMajorBOM          Level = "major_bom"
	LevelMinorGeometry     Level = "minor_geometry"
	LevelNone              Level = "none"
)

// Risk is one categorized topology risk.
type Risk struct {
	Component string             `json:"component"`
	Issue     string             `json:"issue"`
	Severity  inference.Severity `json:"severity"`
}

// BOMChange is one added or removed component.
type BOMChange struct {
	Type      string             `json:"type"`
	Component string             `json:"component"`
	Severity  inference.Severity `json:"severity"`
}

// InterfaceRisk is one interface removal or modification.
type InterfaceRisk struct {
	Type       string             `json:"type"`
	Components string             `json:"components"`
	Issue      string             `json:"issue"`
	Severity   inference.Severity `json:"severity"`
}

// Statistics counts risks per category.
type Statistics struct {
	ClashRisks     int `json:"clash_risks"`
	AssemblyRisks  int `json:"assembly_risks"`
	RetrofitRisks  int `json:"retrofit_risks"`
	BOMChanges     int `json:"bom_changes"`
	InterfaceRisks int `json:"interface_risks"`
}

// Report is the final impact assessment.
type Report struct {
	Level          Level           `json:"level"`
	Message        string          `json:"message"`
	ClashRisks     []Risk          `json:"clash_risks"`
	AssemblyRisks  []Risk          `json:"assembly_risks"`
	RetrofitRisks  []Risk          `json:"retrofit_risks"`
	BOMChanges     []BOMChange     `json:"bom_changes"`
	InterfaceRisks []InterfaceRisk `json:"interface_risks"`
	Statistics     Statistics      `json:"statistics"`
}

// Classify buckets every change by its category tag and resolves the overall
// level by fixed priority, first match wins.
func Classify(bom bomdiff.Diff, topo []topodiff.ComponentDiff, ifaces ifacediff.Diff) Report {
	report := Report{
		ClashRisks:     []Risk{},
		AssemblyRisks:  []Risk{},
		RetrofitRisks:  []Risk{},
		BOMChanges:     []BOMChange{},
		InterfaceRisks: []InterfaceRisk{},
	}

	for _, diff := range topo {
		for _, msg := range diff.Messages {
			risk := Risk{Component: diff.Component, Issue: msg.Text}
			switch msg.Category {
			case topodiff.CategoryEnvelope:
				risk.Severity = inference.SeverityCritical
				report.ClashRisks = append(report.ClashRisks, risk)
			case topodiff.CategoryDeleted, topodiff.CategoryMoved:
				risk.Severity = inference.SeverityCritical
				report.AssemblyRisks = append(report.AssemblyRisks, risk)
			case topodiff.CategoryDiameter, topodiff.CategoryAdded:
				risk.Severity = inference.SeverityMajor
				report.RetrofitRisks = append(report.RetrofitRisks, risk)
			}
		}
	}

	for _, comp := range bom.Removed {
		report.BOMChanges = append(report.BOMChanges, BOMChange{
			Type:      "removed",
			Component: comp.Name,
			Severity:  inference.SeverityCritical,
		})
	}
	for _, comp := range bom.Added {
		report.BOMChanges = append(report.BOMChanges, BOMChange{
			Type:      "added",
			Component: comp.Name,
			Severity:  inference.SeverityMajor,
		})
	}

	for _, iface := range ifaces.Removed {
		if iface.Type == inference.Fastening {
			report.InterfaceRisks = append(report.InterfaceRisks, InterfaceRisk{
				Type:       "removed_fastening",
				Components: pair(iface),
				Issue: fmt.Sprintf("fastening removed (%d fastener(s) Ø%gmm)",
					iface.FastenerCount, iface.FastenerDiameter),
				Severity: inference.SeverityCritical,
			})
			continue
		}
		report.InterfaceRisks = append(report.InterfaceRisks, InterfaceRisk{
			Type:       "removed_interface",
			Components: pair(iface),
			Issue:      fmt.Sprintf("%s interface removed", iface.Type),
			Severity:   inference.SeverityMajor,
		})
	}
	for _, mod := range ifaces.Modified {
		severity := inference.SeverityMinor
		if mod.Type == inference.Fastening {
			severity = inference.SeverityMajor
		}
		report.InterfaceRisks = append(report.InterfaceRisks, InterfaceRisk{
			Type:       "modified_interface",
			Components: pair(mod.Interface),
			Issue:      mod.ChangeDescription,
			Severity:   severity,
		})
	}

	report.Statistics = Statistics{
		ClashRisks:     len(report.ClashRisks),
		AssemblyRisks:  len(report.AssemblyRisks),
		RetrofitRisks:  len(report.RetrofitRisks),
		BOMChanges:     len(report.BOMChanges),
		InterfaceRisks: len(report.InterfaceRisks),
	}

	report.Level, report.Message = resolve(report, bom, topo)
	return report
}

// resolve applies the severity ladder.
func resolve(r Report, bom bomdiff.Diff, topo []topodiff.ComponentDiff) (Level, string) {
	switch {
	case hasCriticalInterface(r.InterfaceRisks):
		return LevelCriticalInterface, "Critical assembly interface changes"
	case len(r.ClashRisks) > 0:
		return LevelCriticalClash, "Clash risks detected"
	case len(r.AssemblyRisks) > 0:
		return LevelCriticalAssembly, "Assembly problems detected"
	case len(bom.Removed) > 0:
		return LevelCriticalMissing, "Missing components"
	case len(r.RetrofitRisks) > 0:
		return LevelMajorRetrofit, "Major functional changes"
	case len(bom.Added) > 0:
		return LevelMajorBOM, "Significant BOM additions"
	case len(topo) > 0:
		return LevelMinorGeometry, "Minor geometry changes"
	default:
		return LevelNone, "No significant changes"
	}
}

func hasCriticalInterface(risks []InterfaceRisk) bool {
	for _, risk := range risks {
		if risk.Severity == inference.SeverityCritical {
			return true
		}
	}
	return false
}

func pair(iface inference.Interface) string {
	return iface.Component1 + " ↔ " + iface.Component2
}
