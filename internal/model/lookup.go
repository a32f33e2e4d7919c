package model

import (
	"fmt"
	"sort"
	"strings"
)

// suggestionLimit caps how many existing names a not-found error carries.
const suggestionLimit = 10

// ComponentNotFoundError reports a failed component lookup along with up to
// ten existing names the caller might have meant.
type ComponentNotFoundError struct {
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions"`
	More        int      `json:"more"`
}

func (e *ComponentNotFoundError) Error() string {
	msg := fmt.Sprintf("component %q not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("; available: %s", strings.Join(e.Suggestions, ", "))
	}
	if e.More > 0 {
		msg += fmt.Sprintf(" (and %d more)", e.More)
	}
	return msg
}

// GeometryByName returns the geometry records whose simple name, unique name
// or hierarchical path matches the given component name. A miss returns a
// ComponentNotFoundError listing existing names.
func (b *Baseline) GeometryByName(name string) (map[string]GeometricProps, error) {
	matched := make(map[string]GeometricProps)
	for entry, props := range b.Geometry {
		if props.Name == name || props.UniqueName == name || props.Path == name {
			matched[entry] = props
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}

	seen := make(map[string]bool)
	var available []string
	for _, props := range b.Geometry {
		for _, n := range []string{props.Name, props.UniqueName} {
			if n != "" && !seen[n] {
				seen[n] = true
				available = append(available, n)
			}
		}
	}
	sort.Strings(available)

	suggestions := available
	more := 0
	if len(available) > suggestionLimit {
		suggestions = available[:suggestionLimit]
		more = len(available) - suggestionLimit
	}
	return nil, &ComponentNotFoundError{Name: name, Suggestions: suggestions, More: more}
}
