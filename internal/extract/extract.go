// Package extract is the boundary with the external geometry extraction
// service. Given a native model reference it returns a full Baseline; any
// failure aborts the whole operation, there are no partial baselines.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
)

// ErrModelNotFound is returned for a dangling model reference.
var ErrModelNotFound = errors.New("model file not found")

// ErrExtraction is returned when the extraction service fails. It is fatal
// for the operation that needed the baseline.
var ErrExtraction = errors.New("extraction failed")

// Extractor produces a baseline from a native model reference.
type Extractor interface {
	Extract(ctx context.Context, ref string) (model.Baseline, error)
}

// IsModelRef reports whether a reference points at a native model file
// rather than a persisted baseline.
func IsModelRef(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasSuffix(lower, ".stp") || strings.HasSuffix(lower, ".step")
}

// ValidateModelRef checks that a model reference exists locally and carries
// a known extension.
func ValidateModelRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: empty reference", ErrModelNotFound)
	}
	if !IsModelRef(ref) {
		return fmt.Errorf("invalid extension, expected .stp or .step: %s", ref)
	}
	if _, err := os.Stat(ref); err != nil {
		return fmt.Errorf("%w: %s", ErrModelNotFound, ref)
	}
	return nil
}

// Client calls an extraction service over HTTP. The service accepts a model
// reference and responds with the baseline JSON record.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type extractRequest struct {
	File string `json:"file"`
}

// Extract requests a baseline for the given model reference.
func (c *Client) Extract(ctx context.Context, ref string) (model.Baseline, error) {
	if err := ValidateModelRef(ref); err != nil {
		return model.Baseline{}, err
	}

	body, err := json.Marshal(extractRequest{File: ref})
	if err != nil {
		return model.Baseline{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return model.Baseline{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Baseline{}, fmt.Errorf("%w for %s: %v", ErrExtraction, ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Baseline{}, fmt.Errorf("%w for %s: service returned %s", ErrExtraction, ref, resp.Status)
	}

	var b model.Baseline
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return model.Baseline{}, fmt.Errorf("%w for %s: %v", ErrExtraction, ref, err)
	}
	if err := b.Validate(); err != nil {
		return model.Baseline{}, fmt.Errorf("%w for %s: %v", ErrExtraction, ref, err)
	}
	b.Normalize()
	return b, nil
}
