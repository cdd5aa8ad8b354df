package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EngineError indicates the engine configuration is missing or malformed.
// It is fatal: the classification engine must not start without a valid
// keyword and breakpoint configuration.
type EngineError struct {
	Path   string
	Reason string
}

func (e *EngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("engine config %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("engine config: %s", e.Reason)
}

// EngineConfig is the static classification configuration loaded once at
// process start and treated as immutable thereafter.
type EngineConfig struct {
	Keywords  KeywordTiers               `yaml:"crisis_keywords"`
	Bands     BandTables                 `yaml:"severity_bands"`
	Scoring   ScoringWeights             `yaml:"scoring"`
	Resources map[string][]ResourceEntry `yaml:"emergency_contacts"`
}

// KeywordTiers holds the three ordered, disjoint keyword sets
type KeywordTiers struct {
	High   []string `yaml:"high_severity"`
	Medium []string `yaml:"medium_severity"`
	Low    []string `yaml:"low_severity"`
}

// Band is one severity range of a questionnaire total
type Band struct {
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Label   string `yaml:"label"`
	Ordinal int    `yaml:"ordinal"` // 0=none .. 4=severe, monotonic across bands
}

// BandTables holds the severity breakpoints per signal
type BandTables struct {
	PHQ9   []Band `yaml:"phq9"`
	GAD7   []Band `yaml:"gad7"`
	Stress []Band `yaml:"stress"` // 0-10 scale
}

// TierWeight is the aggregator weighting for one keyword tier.
// Gate > 0 means matches only contribute while the running score is below
// Gate; Gate 0 means the tier always contributes.
type TierWeight struct {
	PointsPerMatch int `yaml:"points_per_match"`
	Cap            int `yaml:"cap"`
	Gate           int `yaml:"gate"`
}

// ScoringWeights holds all score aggregator parameters
type ScoringWeights struct {
	High                   TierWeight `yaml:"high"`
	Medium                 TierWeight `yaml:"medium"`
	Low                    TierWeight `yaml:"low"`
	SentimentStrongBonus   int        `yaml:"sentiment_strong_bonus"`
	SentimentModerateBonus int        `yaml:"sentiment_moderate_bonus"`
}

// ResourceEntry is one crisis helpline in the resource directory
type ResourceEntry struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	Kind  string `yaml:"kind"`
}

// DefaultEngine returns the built-in engine configuration. The band
// breakpoints are the published PHQ-9/GAD-7 cutoffs and must not drift:
// scorers elsewhere depend on these exact ranges.
func DefaultEngine() *EngineConfig {
	return &EngineConfig{
		Keywords: KeywordTiers{
			High: []string{
				"kill myself", "want to kill", "suicide", "end my life",
				"want to die", "better off dead", "no reason to live",
				"hurt myself", "self harm",
			},
			Medium: []string{
				"hopeless", "worthless", "can't go on", "give up",
				"no point", "hate myself", "can't take it anymore",
			},
			Low: []string{
				"sad", "depressed", "anxious", "lonely", "stressed",
				"overwhelmed", "tired of everything",
			},
		},
		Bands: BandTables{
			PHQ9: []Band{
				{Min: 0, Max: 4, Label: "None/Minimal", Ordinal: 0},
				{Min: 5, Max: 9, Label: "Mild", Ordinal: 1},
				{Min: 10, Max: 14, Label: "Moderate", Ordinal: 2},
				{Min: 15, Max: 19, Label: "Moderately severe", Ordinal: 3},
				{Min: 20, Max: 27, Label: "Severe", Ordinal: 4},
			},
			GAD7: []Band{
				{Min: 0, Max: 4, Label: "Minimal", Ordinal: 0},
				{Min: 5, Max: 9, Label: "Mild", Ordinal: 1},
				{Min: 10, Max: 14, Label: "Moderate", Ordinal: 2},
				{Min: 15, Max: 21, Label: "Severe", Ordinal: 4},
			},
			Stress: []Band{
				{Min: 0, Max: 2, Label: "None", Ordinal: 0},
				{Min: 3, Max: 4, Label: "Low", Ordinal: 1},
				{Min: 5, Max: 6, Label: "Moderate", Ordinal: 2},
				{Min: 7, Max: 8, Label: "High", Ordinal: 3},
				{Min: 9, Max: 10, Label: "Severe", Ordinal: 4},
			},
		},
		Scoring: ScoringWeights{
			High:                   TierWeight{PointsPerMatch: 45, Cap: 90, Gate: 0},
			Medium:                 TierWeight{PointsPerMatch: 15, Cap: 60, Gate: 50},
			Low:                    TierWeight{PointsPerMatch: 10, Cap: 30, Gate: 30},
			SentimentStrongBonus:   10,
			SentimentModerateBonus: 5,
		},
		Resources: map[string][]ResourceEntry{
			"india": {
				{Name: "AASRA", Phone: "+91-9820466726", Kind: "hotline"},
				{Name: "Vandrevala Foundation", Phone: "1860-2662-345", Kind: "hotline"},
				{Name: "iCall", Phone: "+91-9152987821", Kind: "hotline"},
			},
			"international": {
				{Name: "988 Suicide & Crisis Lifeline", Phone: "988", Kind: "hotline"},
				{Name: "Crisis Text Line", Phone: "Text HOME to 741741", Kind: "text"},
			},
		},
	}
}

// LoadEngine reads the engine configuration from a YAML file, normalizes
// keywords, and validates it. A missing or malformed file is an EngineError;
// callers treat that as fatal.
func LoadEngine(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &EngineError{Path: path, Reason: err.Error()}
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &EngineError{Path: path, Reason: "invalid YAML: " + err.Error()}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, &EngineError{Path: path, Reason: err.Error()}
	}
	return &cfg, nil
}

// normalize lowercases and trims all keywords. Matching is done against a
// lowercased message, so the configuration must be lowercase too.
func (c *EngineConfig) normalize() {
	for _, tier := range []*[]string{&c.Keywords.High, &c.Keywords.Medium, &c.Keywords.Low} {
		out := (*tier)[:0]
		for _, kw := range *tier {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				out = append(out, kw)
			}
		}
		*tier = out
	}
}

// Validate checks keyword tiers, band tables, and scoring weights
func (c *EngineConfig) Validate() error {
	if len(c.Keywords.High) == 0 {
		return fmt.Errorf("high severity keyword list is empty")
	}
	if err := validateDisjoint(c.Keywords); err != nil {
		return err
	}

	for name, table := range map[string]struct {
		bands []Band
		max   int
	}{
		"phq9":   {c.Bands.PHQ9, 27},
		"gad7":   {c.Bands.GAD7, 21},
		"stress": {c.Bands.Stress, 10},
	} {
		if err := validateBands(name, table.bands, table.max); err != nil {
			return err
		}
	}

	for name, w := range map[string]TierWeight{
		"high": c.Scoring.High, "medium": c.Scoring.Medium, "low": c.Scoring.Low,
	} {
		if w.PointsPerMatch <= 0 {
			return fmt.Errorf("scoring.%s: points_per_match must be positive", name)
		}
		if w.Cap <= 0 || w.Cap > 100 {
			return fmt.Errorf("scoring.%s: cap must be in (0,100]", name)
		}
		if w.Gate < 0 {
			return fmt.Errorf("scoring.%s: gate must not be negative", name)
		}
	}
	if c.Scoring.SentimentStrongBonus < 0 || c.Scoring.SentimentModerateBonus < 0 {
		return fmt.Errorf("scoring: sentiment bonuses must not be negative")
	}
	return nil
}

// validateDisjoint rejects a keyword appearing in more than one tier
func validateDisjoint(k KeywordTiers) error {
	seen := make(map[string]string, len(k.High)+len(k.Medium)+len(k.Low))
	for tier, list := range map[string][]string{"high": k.High, "medium": k.Medium, "low": k.Low} {
		for _, kw := range list {
			if prev, ok := seen[kw]; ok {
				return fmt.Errorf("keyword %q appears in both %s and %s tiers", kw, prev, tier)
			}
			seen[kw] = tier
		}
	}
	return nil
}

// validateBands requires contiguous coverage of [0,max] with monotonic ordinals
func validateBands(name string, bands []Band, max int) error {
	if len(bands) == 0 {
		return fmt.Errorf("severity_bands.%s: no bands defined", name)
	}
	next := 0
	prevOrdinal := -1
	for i, b := range bands {
		if b.Min != next {
			return fmt.Errorf("severity_bands.%s[%d]: expected min %d, got %d", name, i, next, b.Min)
		}
		if b.Max < b.Min {
			return fmt.Errorf("severity_bands.%s[%d]: max %d below min %d", name, i, b.Max, b.Min)
		}
		if b.Ordinal < 0 || b.Ordinal > 4 {
			return fmt.Errorf("severity_bands.%s[%d]: ordinal %d out of range [0,4]", name, i, b.Ordinal)
		}
		if b.Ordinal <= prevOrdinal {
			return fmt.Errorf("severity_bands.%s[%d]: ordinal %d not increasing", name, i, b.Ordinal)
		}
		if b.Label == "" {
			return fmt.Errorf("severity_bands.%s[%d]: label is required", name, i)
		}
		next = b.Max + 1
		prevOrdinal = b.Ordinal
	}
	if next != max+1 {
		return fmt.Errorf("severity_bands.%s: bands cover [0,%d], expected [0,%d]", name, next-1, max)
	}
	return nil
}
