package service

import (
	"log/slog"
	"strings"

	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/model"
)

// CrisisClassifier classifies free-text messages against the configured
// keyword tiers and aggregates matches into a bounded crisis score.
type CrisisClassifier struct {
	engine    *config.EngineConfig
	sentiment SentimentScorer
}

// CrisisClassifierConfig holds dependencies for the classifier
type CrisisClassifierConfig struct {
	Engine    *config.EngineConfig
	Sentiment SentimentScorer
}

// NewCrisisClassifier creates a classifier bound to an immutable engine config
func NewCrisisClassifier(cfg CrisisClassifierConfig) *CrisisClassifier {
	return &CrisisClassifier{
		engine:    cfg.Engine,
		sentiment: cfg.Sentiment,
	}
}

// Classify resolves the severity tier of a single message. Tiers are checked
// in descending severity and the first tier with any match decides the
// result; only that tier's matches are recorded. Sentiment scoring is
// best-effort: a scorer failure degrades to a neutral compound rather than
// failing the classification.
func (c *CrisisClassifier) Classify(text string) (*model.CrisisClassification, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if len(trimmed) > model.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	norm := normalizeMessage(trimmed)

	result := &model.CrisisClassification{
		Tier:            model.TierNone,
		MatchedKeywords: []string{},
	}

	tiers := []struct {
		tier     model.CrisisTier
		keywords []string
	}{
		{model.TierHigh, c.engine.Keywords.High},
		{model.TierMedium, c.engine.Keywords.Medium},
		{model.TierLow, c.engine.Keywords.Low},
	}
	for _, t := range tiers {
		matched := matchKeywords(norm, t.keywords)
		if len(matched) > 0 {
			result.Tier = t.tier
			result.MatchedKeywords = matched
			break
		}
	}
	result.CrisisTrigger = result.Tier == model.TierHigh

	compound, err := c.sentiment.Score(trimmed)
	if err != nil {
		slog.Warn("sentiment scoring failed, treating message as neutral",
			slog.String("error", err.Error()))
		compound = 0
	}
	result.SentimentCompound = compound

	return result, nil
}

// Aggregate converts a classification into the 0-100 crisis score. Each
// tier's matches contribute a fixed number of points up to a per-tier cap;
// lower tiers are gated and stop contributing once the running score has
// passed their gate. Strongly negative sentiment adds a flat bonus.
func (c *CrisisClassifier) Aggregate(cl *model.CrisisClassification) int {
	score := 0

	tiers := []struct {
		tier   model.CrisisTier
		weight config.TierWeight
	}{
		{model.TierHigh, c.engine.Scoring.High},
		{model.TierMedium, c.engine.Scoring.Medium},
		{model.TierLow, c.engine.Scoring.Low},
	}
	for _, t := range tiers {
		if cl.Tier != t.tier {
			continue
		}
		if t.weight.Gate > 0 && score >= t.weight.Gate {
			continue
		}
		contribution := len(cl.MatchedKeywords) * t.weight.PointsPerMatch
		if contribution > t.weight.Cap {
			contribution = t.weight.Cap
		}
		score += contribution
	}

	switch {
	case cl.SentimentCompound <= model.SentimentStrongNegative:
		score += c.engine.Scoring.SentimentStrongBonus
	case cl.SentimentCompound <= model.SentimentModerateNegative:
		score += c.engine.Scoring.SentimentModerateBonus
	}

	if score > model.MaxCrisisScore {
		score = model.MaxCrisisScore
	}
	if score < model.MinCrisisScore {
		score = model.MinCrisisScore
	}
	return score
}

// normalizeMessage lowercases a message and collapses runs of whitespace so
// keyword matching is insensitive to casing and spacing
func normalizeMessage(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// matchKeywords returns the keywords found as substrings of the normalized
// message, preserving configuration order
func matchKeywords(norm string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(norm, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
