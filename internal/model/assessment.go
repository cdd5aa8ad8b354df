package model

import "time"

// QuestionnaireKind identifies a standardized questionnaire
type QuestionnaireKind string

const (
	QuestionnairePHQ9 QuestionnaireKind = "phq9"
	QuestionnaireGAD7 QuestionnaireKind = "gad7"
)

// Answer vector constraints
const (
	PHQ9QuestionCount = 9
	GAD7QuestionCount = 7
	MinAnswerValue    = 0
	MaxAnswerValue    = 3

	PHQ9MaxScore = PHQ9QuestionCount * MaxAnswerValue // 27
	GAD7MaxScore = GAD7QuestionCount * MaxAnswerValue // 21

	// Stress is self-reported on a 0-10 scale. The bands in the default
	// engine config assume this scale; there is no 0-60 variant.
	MinStressLevel = 0
	MaxStressLevel = 10

	// PHQ-9 question 9 (self-harm ideation) at this value or above forces
	// a crisis trigger regardless of the total score.
	PHQ9CrisisQuestionIndex = 8
	PHQ9CrisisAnswerMin     = 2
)

// QuestionCount returns the required answer-vector length for the questionnaire
func (k QuestionnaireKind) QuestionCount() int {
	switch k {
	case QuestionnairePHQ9:
		return PHQ9QuestionCount
	case QuestionnaireGAD7:
		return GAD7QuestionCount
	}
	return 0
}

// SeverityBand is an ordered severity classification of a questionnaire total.
// Ordinal comparisons are meaningful: a higher band is always worse.
type SeverityBand int

const (
	BandNone SeverityBand = iota // "None/Minimal" on PHQ-9, "Minimal" on GAD-7
	BandMild
	BandModerate
	BandModeratelySevere // PHQ-9 only; GAD-7 and stress skip straight to severe/high
	BandSevere
)

// QuestionnaireScore is the result of scoring one answer vector.
// RawSum is always the plain sum of the answers; Band is a pure function of
// RawSum and the questionnaire kind.
type QuestionnaireScore struct {
	Kind          QuestionnaireKind `json:"questionnaire"`
	RawSum        int               `json:"score"`
	MaxScore      int               `json:"max_score"`
	Band          SeverityBand      `json:"-"`
	BandLabel     string            `json:"level"`
	CrisisTrigger bool              `json:"crisis_trigger"`
}

// RiskLevel is the composite risk classification across all available signals.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota - 1
	RiskNone
	RiskLow
	RiskModerate
	RiskHigh
	RiskSevere
)

// String returns the API representation of the risk level
func (r RiskLevel) String() string {
	switch r {
	case RiskNone:
		return "None"
	case RiskLow:
		return "Low"
	case RiskModerate:
		return "Moderate"
	case RiskHigh:
		return "High"
	case RiskSevere:
		return "Severe"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler for JSON serialization
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RiskFromBand maps a severity band ordinal to the composite risk scale.
// The mapping is monotonic: a higher band never yields a lower risk.
func RiskFromBand(b SeverityBand) RiskLevel {
	switch b {
	case BandNone:
		return RiskNone
	case BandMild:
		return RiskLow
	case BandModerate:
		return RiskModerate
	case BandModeratelySevere:
		return RiskHigh
	case BandSevere:
		return RiskSevere
	}
	return RiskUnknown
}

// Assessment represents a persisted questionnaire submission with its scores
type Assessment struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PHQ9Score     int       `json:"phq9_score"`
	GAD7Score     int       `json:"gad7_score"`
	StressLevel   int       `json:"stress_level"`
	RiskLevel     RiskLevel `json:"risk_level"`
	CrisisTrigger bool      `json:"crisis_trigger"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedOn     time.Time `json:"created_on"`
}

// SubmitAssessmentRequest represents a questionnaire submission
type SubmitAssessmentRequest struct {
	PHQ9Answers []int   `json:"phq9_answers"`
	GAD7Answers []int   `json:"gad7_answers"`
	StressLevel int     `json:"stress_level"`
	Notes       *string `json:"notes,omitempty"`
}

// AssessmentResult is the scored outcome returned to the caller
type AssessmentResult struct {
	Assessment    *Assessment        `json:"assessment"`
	PHQ9          QuestionnaireScore `json:"phq9"`
	GAD7          QuestionnaireScore `json:"gad7"`
	StressBand    SeverityBand       `json:"-"`
	RiskLevel     RiskLevel          `json:"composite_risk_level"`
	CrisisTrigger bool               `json:"crisis_trigger"`
}
