package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/model"
)

// AssessmentRepository defines the interface for assessment storage
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Assessment, error)
}

// AssessmentService scores questionnaire submissions and persists them
type AssessmentService struct {
	engine     *config.EngineConfig
	repo       AssessmentRepository
	userRepo   UserRepository
	escalation *EscalationController
}

// AssessmentServiceConfig holds configuration for the assessment service
type AssessmentServiceConfig struct {
	Engine     *config.EngineConfig
	Repo       AssessmentRepository
	UserRepo   UserRepository
	Escalation *EscalationController
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(cfg AssessmentServiceConfig) *AssessmentService {
	return &AssessmentService{
		engine:     cfg.Engine,
		repo:       cfg.Repo,
		userRepo:   cfg.UserRepo,
		escalation: cfg.Escalation,
	}
}

// Score validates an answer vector and scores it against the configured
// severity bands. The raw score is always the plain sum of answers; the band
// is a pure function of that sum. For PHQ-9, an elevated answer on the
// self-harm question raises a crisis trigger regardless of the total.
func (s *AssessmentService) Score(kind model.QuestionnaireKind, answers []int) (model.QuestionnaireScore, error) {
	var (
		bands    []config.Band
		maxScore int
	)
	switch kind {
	case model.QuestionnairePHQ9:
		bands, maxScore = s.engine.Bands.PHQ9, model.PHQ9MaxScore
	case model.QuestionnaireGAD7:
		bands, maxScore = s.engine.Bands.GAD7, model.GAD7MaxScore
	default:
		return model.QuestionnaireScore{}, fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, kind)
	}

	if len(answers) != kind.QuestionCount() {
		return model.QuestionnaireScore{}, fmt.Errorf("%w: %s requires %d answers, got %d",
			ErrAnswerCount, kind, kind.QuestionCount(), len(answers))
	}

	sum := 0
	for i, a := range answers {
		if a < model.MinAnswerValue || a > model.MaxAnswerValue {
			return model.QuestionnaireScore{}, fmt.Errorf("%w: answer %d is %d",
				ErrAnswerOutOfRange, i+1, a)
		}
		sum += a
	}

	band, label := lookupBand(bands, sum)

	score := model.QuestionnaireScore{
		Kind:      kind,
		RawSum:    sum,
		MaxScore:  maxScore,
		Band:      band,
		BandLabel: label,
	}
	if kind == model.QuestionnairePHQ9 &&
		answers[model.PHQ9CrisisQuestionIndex] >= model.PHQ9CrisisAnswerMin {
		score.CrisisTrigger = true
	}
	return score, nil
}

// ScoreStress bands a self-reported stress level on the 0-10 scale
func (s *AssessmentService) ScoreStress(level int) (model.SeverityBand, error) {
	if level < model.MinStressLevel || level > model.MaxStressLevel {
		return 0, fmt.Errorf("%w: %d", ErrStressOutOfRange, level)
	}
	band, _ := lookupBand(s.engine.Bands.Stress, level)
	return band, nil
}

// CompositeRisk combines the available severity bands into one risk level by
// taking the worst. Absent signals are skipped; with no signals at all the
// result is RiskUnknown, never RiskNone.
func (s *AssessmentService) CompositeRisk(bands ...*model.SeverityBand) model.RiskLevel {
	risk := model.RiskUnknown
	for _, b := range bands {
		if b == nil {
			continue
		}
		if r := model.RiskFromBand(*b); r > risk {
			risk = r
		}
	}
	return risk
}

// Submit scores a full submission, persists it, and runs the crisis trigger
// through the escalation controller. A trigger forces the composite risk to
// severe. Escalation is best-effort here: the assessment is already saved,
// and a collaborator outage must not fail the submission.
func (s *AssessmentService) Submit(ctx context.Context, userID string, req model.SubmitAssessmentRequest) (*model.AssessmentResult, error) {
	phq9, err := s.Score(model.QuestionnairePHQ9, req.PHQ9Answers)
	if err != nil {
		return nil, err
	}
	gad7, err := s.Score(model.QuestionnaireGAD7, req.GAD7Answers)
	if err != nil {
		return nil, err
	}
	stressBand, err := s.ScoreStress(req.StressLevel)
	if err != nil {
		return nil, err
	}

	risk := s.CompositeRisk(&phq9.Band, &gad7.Band, &stressBand)
	if phq9.CrisisTrigger {
		risk = model.RiskSevere
	}

	assessment := &model.Assessment{
		UserID:        userID,
		PHQ9Score:     phq9.RawSum,
		GAD7Score:     gad7.RawSum,
		StressLevel:   req.StressLevel,
		RiskLevel:     risk,
		CrisisTrigger: phq9.CrisisTrigger,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, err
	}

	if phq9.CrisisTrigger && s.escalation != nil {
		s.escalateTrigger(ctx, userID)
	}

	return &model.AssessmentResult{
		Assessment:    assessment,
		PHQ9:          phq9,
		GAD7:          gad7,
		StressBand:    stressBand,
		RiskLevel:     risk,
		CrisisTrigger: phq9.CrisisTrigger,
	}, nil
}

// History returns the user's most recent assessments, newest first
func (s *AssessmentService) History(ctx context.Context, userID string, limit int) ([]*model.Assessment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}

// escalateTrigger runs a forced high-severity escalation for a PHQ-9 crisis
// trigger. Failures are logged, not returned.
func (s *AssessmentService) escalateTrigger(ctx context.Context, userID string) {
	input := EscalationInput{
		UserID:        userID,
		Tier:          model.TierHigh,
		CrisisScore:   model.MaxCrisisScore,
		CrisisTrigger: true,
	}
	if user, err := s.userRepo.GetByID(ctx, userID); err != nil {
		slog.Error("guardian lookup failed during assessment escalation",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	} else if user != nil && user.HasGuardian() {
		input.GuardianPhone = *user.GuardianPhone
	}

	if _, err := s.escalation.Decide(ctx, input); err != nil {
		slog.Error("assessment escalation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// lookupBand finds the band containing value. Band tables are validated at
// load time to cover the full range, so a miss is impossible for in-range
// values; the last band is returned as a safety net.
func lookupBand(bands []config.Band, value int) (model.SeverityBand, string) {
	for _, b := range bands {
		if value >= b.Min && value <= b.Max {
			return model.SeverityBand(b.Ordinal), b.Label
		}
	}
	last := bands[len(bands)-1]
	return model.SeverityBand(last.Ordinal), last.Label
}
