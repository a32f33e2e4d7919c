package inference

import (
	"fmt"
	"sort"
	"strings"
)

// Recommendations derives advisory notes from an interface list: missing or
// scarce fastenings, structurally critical components, isolated components
// and fastener diameter spread.
func Recommendations(interfaces []Interface) []string {
	var recs []string

	fastenings := 0
	perComponent := make(map[string]int)
	diameters := make(map[float64]bool)
	allComponents := make(map[string]bool)

	for _, iface := range interfaces {
		allComponents[iface.Component1] = true
		allComponents[iface.Component2] = true
		if iface.Type != Fastening {
			continue
		}
		fastenings++
		perComponent[iface.Component1]++
		perComponent[iface.Component2]++
		diameters[iface.FastenerDiameter] = true
	}

	if fastenings == 0 {
		recs = append(recs, "No fastening detected. Check that the assembly is properly constrained.")
	} else if fastenings < 3 {
		recs = append(recs, fmt.Sprintf(
			"Only %d fastening interface(s). Consider adding fastening points for rigidity.", fastenings))
	}

	var critical []string
	for comp, count := range perComponent {
		if count >= 3 {
			critical = append(critical, comp)
		}
	}
	if len(critical) > 0 {
		sort.Strings(critical)
		recs = append(recs, fmt.Sprintf(
			"Structurally critical components (≥3 fastenings): %s", strings.Join(firstN(critical, 3), ", ")))
	}

	var isolated []string
	for comp := range allComponents {
		if perComponent[comp] == 0 {
			isolated = append(isolated, comp)
		}
	}
	if len(isolated) > 0 && len(isolated) <= 5 {
		sort.Strings(isolated)
		recs = append(recs, fmt.Sprintf(
			"Components without direct fastening: %s", strings.Join(firstN(isolated, 3), ", ")))
	}

	if len(diameters) > 3 {
		recs = append(recs, fmt.Sprintf(
			"%d distinct fastener diameters in use. Consider standardization to reduce variety.", len(diameters)))
	}

	if len(recs) == 0 {
		recs = append(recs, "Assembly configuration is consistent.")
	}
	return recs
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
