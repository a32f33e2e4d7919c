// Package service wires the analyzers behind the top-level operations the
// front ends expose. It owns baseline loading: persisted JSON files load
// directly, native model references go through the extraction service, with
// an LRU cache keyed by path and modification time so repeated operations on
// one model extract only once.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/compare"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/compliance"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/extract"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/store"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

// ErrNoExtractor is returned when a native model reference is given but no
// extraction service is configured.
var ErrNoExtractor = errors.New("no extraction service configured")

// cacheSize bounds the number of extracted baselines kept in memory.
const cacheSize = 64

// Service exposes the analysis operations over loadable baselines.
type Service struct {
	extractor extract.Extractor
	tol       tolerance.Config
	cache     *lru.Cache[string, model.Baseline]
}

// New creates a service. extractor may be nil when only persisted baselines
// are used.
func New(extractor extract.Extractor, tol tolerance.Config) *Service {
	cache, err := lru.New[string, model.Baseline](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Service{extractor: extractor, tol: tol, cache: cache}
}

// Tolerances returns the thresholds the service analyses with.
func (s *Service) Tolerances() tolerance.Config {
	return s.tol
}

// LoadBaseline resolves a reference into a validated baseline. A .stp/.step
// reference is delegated to the extraction service; anything else is read as
// a persisted baseline JSON file.
func (s *Service) LoadBaseline(ctx context.Context, ref string) (model.Baseline, error) {
	if !extract.IsModelRef(ref) {
		return store.ReadFile(ref)
	}
	if s.extractor == nil {
		return model.Baseline{}, fmt.Errorf("%w, cannot analyze %s", ErrNoExtractor, ref)
	}

	key := cacheKey(ref)
	if key != "" {
		if b, ok := s.cache.Get(key); ok {
			return b, nil
		}
	}

	b, err := s.extractor.Extract(ctx, ref)
	if err != nil {
		return model.Baseline{}, err
	}
	if key != "" {
		s.cache.Add(key, b)
	}
	return b, nil
}

// cacheKey ties a cached baseline to the file's current content identity.
// An unstattable file is not cached.
func cacheKey(ref string) string {
	info, err := os.Stat(ref)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", ref, info.Size(), info.ModTime().UnixNano())
}

// Compare loads both references and runs the full comparison.
func (s *Service) Compare(ctx context.Context, ref1, ref2 string) (compare.Report, error) {
	b1, err := s.LoadBaseline(ctx, ref1)
	if err != nil {
		return compare.Report{}, err
	}
	b2, err := s.LoadBaseline(ctx, ref2)
	if err != nil {
		return compare.Report{}, err
	}
	return compare.Compare(&b1, &b2, s.tol)
}

// BOM returns the reference's bill of materials only.
func (s *Service) BOM(ctx context.Context, ref string) ([]model.BOMItem, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return nil, err
	}
	return b.BOM, nil
}

// Validate runs the compliance checks over one reference.
func (s *Service) Validate(ctx context.Context, ref string) (compliance.Report, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return compliance.Report{}, err
	}
	return compliance.Validate(&b), nil
}

// SaveBaseline loads a reference and persists it into the given store,
// returning the stored baseline.
func (s *Service) SaveBaseline(ctx context.Context, ref string, st *store.Store) (model.Baseline, error) {
	b, err := s.LoadBaseline(ctx, ref)
	if err != nil {
		return model.Baseline{}, err
	}
	if b.BaselineID == "" {
		b.BaselineID = store.NewBaselineID(b.File, time.Now())
	}
	if err := st.Save(b); err != nil {
		return model.Baseline{}, err
	}
	return b, nil
}
