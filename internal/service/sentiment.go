package service

import (
	"math"
	"strings"
)

// SentimentScorer computes a polarity compound score in [-1, 1] for a text.
// Any external scorer satisfying this interface can be plugged in; the
// classifier treats it as a best-effort collaborator and falls back to a
// neutral 0.0 when it fails.
type SentimentScorer interface {
	Score(text string) (float64, error)
}

// Valence lexicon for the built-in scorer. Values roughly follow the VADER
// scale (-4 to +4 before normalization).
var sentimentLexicon = map[string]float64{
	"good": 1.9, "great": 3.1, "happy": 2.7, "hope": 1.9, "hopeful": 2.3,
	"love": 3.2, "loved": 2.9, "better": 1.9, "calm": 1.3, "fine": 0.8,
	"okay": 0.9, "relieved": 2.0, "safe": 1.7, "support": 1.7, "thankful": 2.7,
	"grateful": 2.6, "excited": 2.2, "proud": 2.3, "strong": 1.5, "well": 1.1,

	"sad": -2.1, "unhappy": -1.8, "depressed": -2.7, "anxious": -1.9,
	"anxiety": -1.9, "worried": -1.4, "scared": -2.2, "afraid": -2.2,
	"lonely": -2.0, "alone": -1.0, "tired": -1.2, "exhausted": -1.9,
	"stressed": -1.8, "overwhelmed": -2.0, "hurt": -2.4, "pain": -2.3,
	"hopeless": -3.1, "worthless": -3.0, "miserable": -2.8, "terrible": -2.4,
	"awful": -2.3, "hate": -2.7, "angry": -2.2, "crying": -2.1, "cry": -1.8,
	"die": -2.9, "dying": -2.9, "dead": -2.6, "death": -2.4, "kill": -3.2,
	"suicide": -3.5, "suicidal": -3.5, "harm": -2.5, "broken": -2.0,
	"empty": -1.9, "numb": -1.8, "trapped": -2.3, "useless": -2.6,
	"failure": -2.4, "fail": -1.9, "guilt": -2.0, "guilty": -2.0,
	"ashamed": -2.2, "panic": -2.4, "nightmare": -2.2, "dark": -1.3,
}

// Words that flip the valence of the words that follow them
var sentimentNegations = map[string]bool{
	"not": true, "no": true, "never": true, "cant": true, "can't": true,
	"cannot": true, "dont": true, "don't": true, "wont": true, "won't": true,
	"isnt": true, "isn't": true, "without": true, "nothing": true,
}

// Words that amplify the valence of the word that follows
var sentimentBoosters = map[string]float64{
	"very": 0.293, "really": 0.293, "so": 0.293, "extremely": 0.293,
	"totally": 0.293, "completely": 0.293, "absolutely": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "bit": -0.293,
}

// normalization constant, same role as VADER's alpha
const sentimentAlpha = 15.0

// LexiconSentiment is the built-in rule-based polarity scorer. It never
// returns an error; external scorers plugged in behind SentimentScorer may.
type LexiconSentiment struct{}

// NewLexiconSentiment creates the built-in sentiment scorer
func NewLexiconSentiment() *LexiconSentiment {
	return &LexiconSentiment{}
}

// Score computes the compound polarity of a text in [-1, 1].
// 0.0 means neutral.
func (s *LexiconSentiment) Score(text string) (float64, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0, nil
	}

	var sum float64
	for i, raw := range words {
		word := strings.Trim(raw, ".,!?;:\"'()")
		valence, ok := sentimentLexicon[word]
		if !ok {
			continue
		}

		// Look back up to three words for negations and boosters
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := strings.Trim(words[i-back], ".,!?;:\"'()")
			if sentimentNegations[prev] {
				valence = -valence * 0.74
				break
			}
			if boost, ok := sentimentBoosters[prev]; ok && boost != 0 {
				if valence > 0 {
					valence += boost
				} else {
					valence -= boost
				}
			}
		}

		sum += valence
	}

	if sum == 0 {
		return 0, nil
	}

	// Normalize to [-1, 1]
	compound := sum / math.Sqrt(sum*sum+sentimentAlpha)
	return clampFloat(compound, -1, 1), nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
