package tolerance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.GeometryEpsilon != 0.01 || cfg.EnvelopeTol != 0.1 || cfg.HolePositionTol != 0.5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxComponents != 500 {
		t.Errorf("max components = %d, want 500", cfg.MaxComponents)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestParse_PartialOverride(t *testing.T) {
	cfg, err := Parse([]byte("hole_position_tolerance: 1.5\nmax_components: 200\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HolePositionTol != 1.5 {
		t.Errorf("override not applied: %g", cfg.HolePositionTol)
	}
	if cfg.MaxComponents != 200 {
		t.Errorf("override not applied: %d", cfg.MaxComponents)
	}
	// Untouched keys keep their defaults.
	if cfg.DiameterTol != 0.1 {
		t.Errorf("default lost: %g", cfg.DiameterTol)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "hole_position_tolerance: [", "invalid tolerance YAML"},
		{"negative tolerance", "diameter_tolerance: -1\n", "must be positive"},
		{"zero budget", "max_components: 0\n", "must be positive"},
		{"contact above reject", "contact_factor: 3.0\n", "must be below reject_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tolerances.yaml")
	if err := os.WriteFile(path, []byte("envelope_tolerance: 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnvelopeTol != 0.25 {
		t.Errorf("envelope tolerance = %g, want 0.25", cfg.EnvelopeTol)
	}
}

func TestLoadFromPath_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := LoadFromPath("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
