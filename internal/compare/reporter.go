package compare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCLI formats a comparison report for terminal output.
func FormatCLI(report Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Baseline 1: %s (%s)\n", report.Baseline1.ID, report.Baseline1.File))
	sb.WriteString(fmt.Sprintf("Baseline 2: %s (%s)\n", report.Baseline2.ID, report.Baseline2.File))

	if report.Identical {
		sb.WriteString("\n✓ IDENTICAL - files share the same checksum\n")
		return sb.String()
	}

	if report.Summary.TotalChanges == 0 {
		sb.WriteString("\n✓ No changes detected\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\nImpact: %s — %s\n", report.Impact.Level, report.Impact.Message))
	sb.WriteString(fmt.Sprintf("Total: %d change(s)\n", report.Summary.TotalChanges))

	for _, comp := range report.BOM.Removed {
		sb.WriteString(fmt.Sprintf("  - %s\n", comp.Name))
	}
	for _, comp := range report.BOM.Added {
		sb.WriteString(fmt.Sprintf("  + %s\n", comp.Name))
	}
	for _, mod := range report.BOM.Modified {
		sb.WriteString(fmt.Sprintf("  ~ %s (%s)\n", mod.Name, strings.Join(mod.Changes, ", ")))
	}

	for _, change := range report.Geometry {
		sb.WriteString(fmt.Sprintf("  %s:\n", change.FullPath))
		sb.WriteString(fmt.Sprintf("    volume: %.2f → %.2f mm³ (%+.2f)\n",
			change.VolumeBefore, change.VolumeAfter, change.VolumeChange))
		sb.WriteString(fmt.Sprintf("    surface: %.2f → %.2f mm² (%+.2f)\n",
			change.SurfaceBefore, change.SurfaceAfter, change.SurfaceChange))
	}

	for _, diff := range report.Topology {
		sb.WriteString(fmt.Sprintf("  ⚠ %s\n", diff.Description))
	}

	for _, change := range report.Metadata.Changes {
		sb.WriteString(fmt.Sprintf("  %s\n", change))
	}

	for _, risk := range report.Impact.InterfaceRisks {
		sb.WriteString(fmt.Sprintf("  ► %s: %s\n", risk.Components, risk.Issue))
	}

	return sb.String()
}

// FormatJSON formats a comparison report as indented JSON.
func FormatJSON(report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
