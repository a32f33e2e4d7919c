// Package metadiff compares the model file header blocks of two baselines.
package metadiff

import (
	"fmt"
	"sort"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// Diff is the metadata change set.
type Diff struct {
	SchemaChanged   bool     `json:"schema_changed"`
	Schema1         string   `json:"schema1,omitempty"`
	Schema2         string   `json:"schema2,omitempty"`
	ProductsAdded   []string `json:"products_added"`
	ProductsRemoved []string `json:"products_removed"`
	Changes         []string `json:"changes"`
}

// HasChanges reports whether the metadata blocks differ.
func (d Diff) HasChanges() bool {
	return d.SchemaChanged || len(d.ProductsAdded) > 0 || len(d.ProductsRemoved) > 0
}

// Compare checks the schema strings for equality and computes the product
// set difference by name.
func Compare(m1, m2 model.Metadata) Diff {
	diff := Diff{
		ProductsAdded:   []string{},
		ProductsRemoved: []string{},
		Changes:         []string{},
	}

	if m1.Schema != m2.Schema {
		diff.SchemaChanged = true
		diff.Schema1 = m1.Schema
		diff.Schema2 = m2.Schema
		diff.Changes = append(diff.Changes, fmt.Sprintf("schema: %s → %s", m1.Schema, m2.Schema))
	}

	names1 := productNames(m1.Products)
	names2 := productNames(m2.Products)

	for name := range names2 {
		if !names1[name] {
			diff.ProductsAdded = append(diff.ProductsAdded, name)
		}
	}
	for name := range names1 {
		if !names2[name] {
			diff.ProductsRemoved = append(diff.ProductsRemoved, name)
		}
	}
	sort.Strings(diff.ProductsAdded)
	sort.Strings(diff.ProductsRemoved)

	for _, name := range diff.ProductsAdded {
		diff.Changes = append(diff.Changes, "product added: "+name)
	}
	for _, name := range diff.ProductsRemoved {
		diff.Changes = append(diff.Changes, "product removed: "+name)
	}

	return diff
}

func productNames(products []model.Product) map[string]bool {
	names := make(map[string]bool, len(products))
	for _, p := range products {
		names[p.Name] = true
	}
	return names
}
