package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultEngine_IsValid(t *testing.T) {
	cfg := DefaultEngine()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default engine config must validate, got: %v", err)
	}
}

func TestDefaultEngine_Breakpoints(t *testing.T) {
	cfg := DefaultEngine()

	// Published cutoffs: PHQ-9 20-27 severe, GAD-7 15-21 severe, stress 9-10 severe
	last := cfg.Bands.PHQ9[len(cfg.Bands.PHQ9)-1]
	if last.Min != 20 || last.Max != 27 || last.Ordinal != 4 {
		t.Errorf("unexpected PHQ-9 severe band: %+v", last)
	}
	last = cfg.Bands.GAD7[len(cfg.Bands.GAD7)-1]
	if last.Min != 15 || last.Max != 21 || last.Ordinal != 4 {
		t.Errorf("unexpected GAD-7 severe band: %+v", last)
	}
	last = cfg.Bands.Stress[len(cfg.Bands.Stress)-1]
	if last.Min != 9 || last.Max != 10 || last.Ordinal != 4 {
		t.Errorf("unexpected stress severe band: %+v", last)
	}
}

func TestEngineConfig_Validate_EmptyHighTier(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Keywords.High = nil

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for empty high severity list")
	}
}

func TestEngineConfig_Validate_OverlappingTiers(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Keywords.Low = append(cfg.Keywords.Low, cfg.Keywords.High[0])

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for keyword in two tiers")
	}
	if !strings.Contains(err.Error(), cfg.Keywords.High[0]) {
		t.Errorf("expected error to name the duplicated keyword, got: %v", err)
	}
}

func TestEngineConfig_Validate_BandGap(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Bands.PHQ9[1].Min = 6 // gap: 5 is uncovered

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for gap in PHQ-9 bands")
	}
}

func TestEngineConfig_Validate_BandsNotCoveringRange(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Bands.GAD7[len(cfg.Bands.GAD7)-1].Max = 20 // 21 uncovered

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for GAD-7 bands not covering [0,21]")
	}
}

func TestEngineConfig_Validate_NonMonotonicOrdinals(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Bands.Stress[2].Ordinal = 0

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for non-increasing ordinals")
	}
}

func TestEngineConfig_Validate_BadWeights(t *testing.T) {
	cfg := DefaultEngine()
	cfg.Scoring.Medium.PointsPerMatch = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero points_per_match")
	}

	cfg = DefaultEngine()
	cfg.Scoring.High.Cap = 101
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for cap above 100")
	}
}

func TestLoadEngine_MissingFile(t *testing.T) {
	_, err := LoadEngine(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Errorf("expected *EngineError, got %T", err)
	}
}

func TestLoadEngine_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("crisis_keywords: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadEngine(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("expected YAML parse error, got: %v", err)
	}
}

func TestLoadEngine_NormalizesKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
crisis_keywords:
  high_severity: ["  Kill Myself ", "SUICIDE"]
  medium_severity: ["hopeless"]
  low_severity: ["sad"]
severity_bands:
  phq9:
    - {min: 0, max: 27, label: "All", ordinal: 0}
  gad7:
    - {min: 0, max: 21, label: "All", ordinal: 0}
  stress:
    - {min: 0, max: 10, label: "All", ordinal: 0}
scoring:
  high: {points_per_match: 30, cap: 90, gate: 0}
  medium: {points_per_match: 15, cap: 60, gate: 50}
  low: {points_per_match: 10, cap: 30, gate: 30}
  sentiment_strong_bonus: 10
  sentiment_moderate_bonus: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEngine(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Keywords.High[0] != "kill myself" || cfg.Keywords.High[1] != "suicide" {
		t.Errorf("expected lowercased trimmed keywords, got %v", cfg.Keywords.High)
	}
}
