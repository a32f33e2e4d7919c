// Package compliance runs an independent rule set over a single baseline:
// metadata presence, schema family, hierarchy depth, naming, geometry
// availability and duplicate names.
package compliance

import (
	"fmt"
	"strings"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Check is one validation outcome.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Statistics aggregates check outcomes.
type Statistics struct {
	TotalChecks int `json:"total_checks"`
	Passed      int `json:"passed"`
	Warnings    int `json:"warnings"`
	Failures    int `json:"failures"`
}

// Report is the full compliance result for one baseline.
type Report struct {
	OverallStatus  Status     `json:"overall_status"`
	OverallMessage string     `json:"overall_message"`
	Checks         []Check    `json:"checks"`
	Statistics     Statistics `json:"statistics"`
}

// Recognized schema families for industrial model exchange.
var validSchemas = []string{"CONFIG_CONTROL_DESIGN", "AUTOMOTIVE_DESIGN", "AP203", "AP214"}

// maxHierarchyDepth is the level beyond which a hierarchy is flagged.
const maxHierarchyDepth = 10

// Validate runs all checks. It never returns an error: problems surface as
// failed or warned checks.
func Validate(b *model.Baseline) Report {
	checks := []Check{
		checkMetadata(b),
		checkSchema(b),
		checkHierarchy(b),
		checkNaming(b),
		checkGeometry(b),
		checkDuplicates(b),
	}

	stats := Statistics{TotalChecks: len(checks)}
	for _, c := range checks {
		switch c.Status {
		case StatusPass:
			stats.Passed++
		case StatusWarning:
			stats.Warnings++
		case StatusFail:
			stats.Failures++
		}
	}

	status := StatusPass
	message := "All checks passed"
	if stats.Failures > 0 {
		status = StatusFail
		message = fmt.Sprintf("%d check(s) failed", stats.Failures)
	} else if stats.Warnings > 0 {
		status = StatusWarning
		message = fmt.Sprintf("%d warning(s)", stats.Warnings)
	}

	return Report{
		OverallStatus:  status,
		OverallMessage: message,
		Checks:         checks,
		Statistics:     stats,
	}
}

func checkMetadata(b *model.Baseline) Check {
	if b.Metadata.Schema != "" || b.Metadata.Description != "" || len(b.Metadata.Products) > 0 {
		return Check{Name: "metadata", Status: StatusPass, Message: "Metadata present and valid"}
	}
	return Check{Name: "metadata", Status: StatusWarning, Message: "Metadata missing or incomplete"}
}

func checkSchema(b *model.Baseline) Check {
	schema := b.Metadata.Schema
	for _, valid := range validSchemas {
		if strings.Contains(schema, valid) {
			return Check{Name: "schema", Status: StatusPass, Message: "Valid model schema: " + schema}
		}
	}
	return Check{Name: "schema", Status: StatusWarning, Message: "Non-standard model schema: " + schema}
}

func checkHierarchy(b *model.Baseline) Check {
	depth := b.MaxDepth()
	if depth <= maxHierarchyDepth {
		return Check{
			Name:    "hierarchy",
			Status:  StatusPass,
			Message: fmt.Sprintf("Acceptable hierarchy depth: %d levels", depth),
		}
	}
	return Check{
		Name:    "hierarchy",
		Status:  StatusWarning,
		Message: fmt.Sprintf("Excessive hierarchy: %d levels", depth),
	}
}

func checkNaming(b *model.Baseline) Check {
	unnamed := 0
	for _, item := range b.BOM {
		if strings.TrimSpace(item.Name) == "" {
			unnamed++
		}
	}
	if unnamed > 0 {
		return Check{
			Name:    "naming",
			Status:  StatusFail,
			Message: fmt.Sprintf("%d unnamed component(s)", unnamed),
		}
	}
	return Check{Name: "naming", Status: StatusPass, Message: "All components are named"}
}

func checkGeometry(b *model.Baseline) Check {
	if len(b.Geometry) > 0 {
		return Check{
			Name:    "geometry",
			Status:  StatusPass,
			Message: fmt.Sprintf("%d component(s) with geometric properties", len(b.Geometry)),
		}
	}
	return Check{Name: "geometry", Status: StatusFail, Message: "Geometric properties not computed"}
}

func checkDuplicates(b *model.Baseline) Check {
	counts := make(map[string]int)
	for _, item := range b.BOM {
		counts[item.Name]++
	}
	duplicates := 0
	for _, count := range counts {
		if count > 1 {
			duplicates++
		}
	}
	if duplicates > 0 {
		return Check{
			Name:    "duplicates",
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d duplicated component name(s)", duplicates),
		}
	}
	return Check{Name: "duplicates", Status: StatusPass, Message: "No duplicated names"}
}
