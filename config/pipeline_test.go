package config

import (
	"testing"

	"capflow/core/types"
)

func TestLoadPipelineParams_DefaultsWithoutFile(t *testing.T) {
	params, err := LoadPipelineParams("/nonexistent/capflow.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Classifier.BigOrderThreshold != 100000 {
		t.Fatalf("expected default big order threshold 100000, got %v", params.Classifier.BigOrderThreshold)
	}
	if params.Builder.WindowSec != 30 {
		t.Fatalf("expected default window_sec 30, got %v", params.Builder.WindowSec)
	}
	if len(params.MAPeriods) != 3 {
		t.Fatalf("expected 3 default MA periods, got %d", len(params.MAPeriods))
	}
	if params.Weights[types.LabelAggBuy] != 1.5 {
		t.Fatalf("expected default AGG_BUY weight 1.5, got %v", params.Weights[types.LabelAggBuy])
	}
	if params.Chip.PriceBins != 100 {
		t.Fatalf("expected default price_bins 100, got %v", params.Chip.PriceBins)
	}
	if params.Chip.ValidationDistance != 0.20 {
		t.Fatalf("expected default validation_distance 0.20, got %v", params.Chip.ValidationDistance)
	}
}

func TestLoadPipelineParams_RejectsNonPositiveThreshold(t *testing.T) {
	t.Setenv("CAPFLOW_CLASSIFIER_BIG_ORDER_THRESHOLD", "-5")
	_, err := LoadPipelineParams("/nonexistent/capflow.yaml")
	if err == nil {
		t.Fatalf("expected an error for a non-positive threshold override")
	}
}
