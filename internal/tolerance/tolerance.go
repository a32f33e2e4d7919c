// Package tolerance holds the numeric thresholds the differs and the
// interface inference engine work with. The defaults match the values the
// analyzers were tuned with; a YAML file can override individual entries.
package tolerance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of thresholds. All distances share the model's
// units (millimetres for STEP files).
type Config struct {
	// GeometryEpsilon is the absolute volume/surface delta below which a
	// geometry change is treated as floating-point noise.
	GeometryEpsilon float64 `yaml:"geometry_epsilon"`
	// EnvelopeTol is the per-axis tolerance on bounding envelope extents.
	EnvelopeTol float64 `yaml:"envelope_tolerance"`
	// HolePositionTol is the 3D distance under which a removed and an added
	// hole count as the same hole with a modified diameter.
	HolePositionTol float64 `yaml:"hole_position_tolerance"`
	// DiameterTol is the tolerance for treating two hole diameters as equal.
	DiameterTol float64 `yaml:"diameter_tolerance"`
	// AxisAlignTol is the per-axis tolerance for hole alignment across two
	// components; at least two of three axes must be within it, and the full
	// 3D separation must stay below twice it.
	AxisAlignTol float64 `yaml:"axis_align_tolerance"`
	// ContactFactor scales the larger bounding extent to decide contact.
	ContactFactor float64 `yaml:"contact_factor"`
	// RejectFactor scales the larger bounding extent to reject distant pairs.
	RejectFactor float64 `yaml:"reject_factor"`
	// DistanceChangeTol is the minimum contact/proximity distance delta that
	// counts as an interface modification.
	DistanceChangeTol float64 `yaml:"distance_change_tolerance"`
	// MaxComponents bounds the O(n²) interface scan. Inference fails closed
	// when a baseline exceeds it.
	MaxComponents int `yaml:"max_components"`
}

// Default returns the built-in thresholds.
func Default() Config {
	return Config{
		GeometryEpsilon:   0.01,
		EnvelopeTol:       0.1,
		HolePositionTol:   0.5,
		DiameterTol:       0.1,
		AxisAlignTol:      2.0,
		ContactFactor:     0.3,
		RejectFactor:      2.0,
		DistanceChangeTol: 1.0,
		MaxComponents:     500,
	}
}

// fileOverride mirrors Config with pointer fields so an absent YAML key
// leaves the default untouched.
type fileOverride struct {
	GeometryEpsilon   *float64 `yaml:"geometry_epsilon"`
	EnvelopeTol       *float64 `yaml:"envelope_tolerance"`
	HolePositionTol   *float64 `yaml:"hole_position_tolerance"`
	DiameterTol       *float64 `yaml:"diameter_tolerance"`
	AxisAlignTol      *float64 `yaml:"axis_align_tolerance"`
	ContactFactor     *float64 `yaml:"contact_factor"`
	RejectFactor      *float64 `yaml:"reject_factor"`
	DistanceChangeTol *float64 `yaml:"distance_change_tolerance"`
	MaxComponents     *int     `yaml:"max_components"`
}

// Parse applies YAML content over the defaults.
func Parse(content []byte) (Config, error) {
	var f fileOverride
	if err := yaml.Unmarshal(content, &f); err != nil {
		return Config{}, fmt.Errorf("invalid tolerance YAML: %w", err)
	}

	cfg := Default()
	if f.GeometryEpsilon != nil {
		cfg.GeometryEpsilon = *f.GeometryEpsilon
	}
	if f.EnvelopeTol != nil {
		cfg.EnvelopeTol = *f.EnvelopeTol
	}
	if f.HolePositionTol != nil {
		cfg.HolePositionTol = *f.HolePositionTol
	}
	if f.DiameterTol != nil {
		cfg.DiameterTol = *f.DiameterTol
	}
	if f.AxisAlignTol != nil {
		cfg.AxisAlignTol = *f.AxisAlignTol
	}
	if f.ContactFactor != nil {
		cfg.ContactFactor = *f.ContactFactor
	}
	if f.RejectFactor != nil {
		cfg.RejectFactor = *f.RejectFactor
	}
	if f.DistanceChangeTol != nil {
		cfg.DistanceChangeTol = *f.DistanceChangeTol
	}
	if f.MaxComponents != nil {
		cfg.MaxComponents = *f.MaxComponents
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromPath reads a tolerance file. A missing path is not an error when
// it is empty; callers pass "" to get the defaults.
func LoadFromPath(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(content)
}

func (c Config) validate() error {
	positives := map[string]float64{
		"geometry_epsilon":          c.GeometryEpsilon,
		"envelope_tolerance":        c.EnvelopeTol,
		"hole_position_tolerance":   c.HolePositionTol,
		"diameter_tolerance":        c.DiameterTol,
		"axis_align_tolerance":      c.AxisAlignTol,
		"contact_factor":            c.ContactFactor,
		"reject_factor":             c.RejectFactor,
		"distance_change_tolerance": c.DistanceChangeTol,
	}
	for name, v := range positives {
		if v <= 0 {
			return fmt.Errorf("tolerance %s must be positive, got %v", name, v)
		}
	}
	if c.MaxComponents <= 0 {
		return fmt.Errorf("max_components must be positive, got %d", c.MaxComponents)
	}
	if c.ContactFactor >= c.RejectFactor {
		return fmt.Errorf("contact_factor (%v) must be below reject_factor (%v)", c.ContactFactor, c.RejectFactor)
	}
	return nil
}
