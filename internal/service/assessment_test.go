package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/model"
)

type mockAssessmentRepo struct {
	assessments []*model.Assessment
	createErr   error
}

func (m *mockAssessmentRepo) Create(ctx context.Context, a *model.Assessment) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = "assessment:1"
	a.CreatedOn = time.Now()
	m.assessments = append(m.assessments, a)
	return nil
}

func (m *mockAssessmentRepo) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Assessment, error) {
	var out []*model.Assessment
	for _, a := range m.assessments {
		if a.UserID == userID {
			out = append(out, a)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// recordingNotifier captures guardian alerts
type recordingNotifier struct {
	sent    []string
	sendErr error
}

func (n *recordingNotifier) Send(ctx context.Context, phone, message string) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, phone)
	return nil
}

func setupAssessmentService(t *testing.T) (*AssessmentService, *mockAssessmentRepo, *mockUserRepo, *recordingNotifier) {
	t.Helper()

	repo := &mockAssessmentRepo{}
	userRepo := newMockUserRepo()
	notifier := &recordingNotifier{}

	controller := NewEscalationController(EscalationControllerConfig{
		Store:    NewMemoryStateStore(),
		Notifier: notifier,
	})

	svc := NewAssessmentService(AssessmentServiceConfig{
		Engine:     config.DefaultEngine(),
		Repo:       repo,
		UserRepo:   userRepo,
		Escalation: controller,
	})
	return svc, repo, userRepo, notifier
}

func answersOf(n, value int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestAssessmentService_Score_PHQ9Bands(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	tests := []struct {
		name  string
		sum   int
		band  model.SeverityBand
		label string
	}{
		{"minimal", 4, model.BandNone, "None/Minimal"},
		{"mild", 9, model.BandMild, "Mild"},
		{"moderate", 14, model.BandModerate, "Moderate"},
		{"moderately severe", 19, model.BandModeratelySevere, "Moderately severe"},
		{"severe", 27, model.BandSevere, "Severe"},
		{"lower edge mild", 5, model.BandMild, "Mild"},
		{"zero", 0, model.BandNone, "None/Minimal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := answersFromSum(model.PHQ9QuestionCount, tt.sum)
			score, err := svc.Score(model.QuestionnairePHQ9, answers)
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if score.RawSum != tt.sum {
				t.Errorf("expected raw sum %d, got %d", tt.sum, score.RawSum)
			}
			if score.Band != tt.band {
				t.Errorf("expected band %d, got %d", tt.band, score.Band)
			}
			if score.BandLabel != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, score.BandLabel)
			}
			if score.MaxScore != model.PHQ9MaxScore {
				t.Errorf("expected max score %d, got %d", model.PHQ9MaxScore, score.MaxScore)
			}
		})
	}
}

// answersFromSum distributes sum over n answers without exceeding the
// per-answer maximum, keeping the crisis question at zero where possible
func answersFromSum(n, sum int) []int {
	out := make([]int, n)
	for i := 0; i < n && sum > 0; i++ {
		v := sum
		if v > model.MaxAnswerValue {
			v = model.MaxAnswerValue
		}
		out[i] = v
		sum -= v
	}
	return out
}

func TestAssessmentService_Score_GAD7Bands(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	tests := []struct {
		sum  int
		band model.SeverityBand
	}{
		{0, model.BandNone},
		{4, model.BandNone},
		{5, model.BandMild},
		{10, model.BandModerate},
		{15, model.BandSevere},
		{21, model.BandSevere},
	}

	for _, tt := range tests {
		answers := answersFromSum(model.GAD7QuestionCount, tt.sum)
		score, err := svc.Score(model.QuestionnaireGAD7, answers)
		if err != nil {
			t.Fatalf("Score(%d) failed: %v", tt.sum, err)
		}
		if score.Band != tt.band {
			t.Errorf("sum %d: expected band %d, got %d", tt.sum, tt.band, score.Band)
		}
	}
}

func TestAssessmentService_Score_Monotonic(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	prev := model.SeverityBand(-1)
	for sum := 0; sum <= model.PHQ9MaxScore; sum++ {
		score, err := svc.Score(model.QuestionnairePHQ9, answersFromSum(model.PHQ9QuestionCount, sum))
		if err != nil {
			t.Fatalf("Score(%d) failed: %v", sum, err)
		}
		if score.Band < prev {
			t.Fatalf("band decreased at sum %d: %d -> %d", sum, prev, score.Band)
		}
		prev = score.Band
	}
}

func TestAssessmentService_Score_Validation(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	tests := []struct {
		name    string
		kind    model.QuestionnaireKind
		answers []int
		wantErr error
	}{
		{"unknown questionnaire", "mood-check", answersOf(9, 1), ErrUnknownQuestionnaire},
		{"too few answers", model.QuestionnairePHQ9, answersOf(8, 1), ErrAnswerCount},
		{"too many answers", model.QuestionnaireGAD7, answersOf(8, 1), ErrAnswerCount},
		{"answer above range", model.QuestionnairePHQ9, append(answersOf(8, 1), 4), ErrAnswerOutOfRange},
		{"negative answer", model.QuestionnairePHQ9, append(answersOf(8, 1), -1), ErrAnswerOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Score(tt.kind, tt.answers)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAssessmentService_Score_CrisisQuestion(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	// Low total but elevated self-harm answer still triggers
	answers := make([]int, model.PHQ9QuestionCount)
	answers[model.PHQ9CrisisQuestionIndex] = 2
	score, err := svc.Score(model.QuestionnairePHQ9, answers)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !score.CrisisTrigger {
		t.Error("expected crisis trigger from self-harm question")
	}
	if score.Band != model.BandNone {
		t.Errorf("trigger must not change the band, got %d", score.Band)
	}

	// Value 1 stays below the trigger threshold
	answers[model.PHQ9CrisisQuestionIndex] = 1
	score, err = svc.Score(model.QuestionnairePHQ9, answers)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score.CrisisTrigger {
		t.Error("answer below threshold must not trigger")
	}
}

func TestAssessmentService_ScoreStress(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	if _, err := svc.ScoreStress(11); !errors.Is(err, ErrStressOutOfRange) {
		t.Errorf("expected ErrStressOutOfRange, got %v", err)
	}
	if _, err := svc.ScoreStress(-1); !errors.Is(err, ErrStressOutOfRange) {
		t.Errorf("expected ErrStressOutOfRange, got %v", err)
	}

	band, err := svc.ScoreStress(7)
	if err != nil {
		t.Fatalf("ScoreStress failed: %v", err)
	}
	if band != model.SeverityBand(3) {
		t.Errorf("expected high stress band, got %d", band)
	}
}

func TestAssessmentService_CompositeRisk(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)

	mild := model.BandMild
	moderate := model.BandModerate
	severe := model.BandSevere

	tests := []struct {
		name  string
		bands []*model.SeverityBand
		want  model.RiskLevel
	}{
		{"worst signal wins", []*model.SeverityBand{&mild, &moderate, &mild}, model.RiskModerate},
		{"single severe", []*model.SeverityBand{&severe}, model.RiskSevere},
		{"absent signals skipped", []*model.SeverityBand{nil, &mild, nil}, model.RiskLow},
		{"all absent is unknown", []*model.SeverityBand{nil, nil, nil}, model.RiskUnknown},
		{"no signals is unknown", nil, model.RiskUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CompositeRisk(tt.bands...); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAssessmentService_Submit(t *testing.T) {
	svc, repo, _, _ := setupAssessmentService(t)
	ctx := context.Background()

	// Mild depression, moderate anxiety, low stress
	phq9 := answersFromSum(model.PHQ9QuestionCount, 8)
	gad7 := answersFromSum(model.GAD7QuestionCount, 11)

	result, err := svc.Submit(ctx, "user:1", model.SubmitAssessmentRequest{
		PHQ9Answers: phq9,
		GAD7Answers: gad7,
		StressLevel: 4,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.PHQ9.RawSum != 8 || result.GAD7.RawSum != 11 {
		t.Errorf("unexpected raw sums: phq9=%d gad7=%d", result.PHQ9.RawSum, result.GAD7.RawSum)
	}
	if result.RiskLevel != model.RiskModerate {
		t.Errorf("expected composite Moderate, got %s", result.RiskLevel)
	}
	if result.CrisisTrigger {
		t.Error("no crisis trigger expected")
	}
	if len(repo.assessments) != 1 {
		t.Fatalf("expected 1 persisted assessment, got %d", len(repo.assessments))
	}
	if repo.assessments[0].RiskLevel != model.RiskModerate {
		t.Errorf("persisted risk mismatch: %s", repo.assessments[0].RiskLevel)
	}
}

func TestAssessmentService_Submit_CrisisTriggerForcesSevere(t *testing.T) {
	svc, repo, userRepo, notifier := setupAssessmentService(t)
	ctx := context.Background()

	phone := "+91-9820466726"
	user := &model.User{Email: "trigger@example.com", GuardianPhone: &phone, GuardianConsent: true}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	// Everything minimal except the self-harm question
	phq9 := make([]int, model.PHQ9QuestionCount)
	phq9[model.PHQ9CrisisQuestionIndex] = 3

	result, err := svc.Submit(ctx, user.ID, model.SubmitAssessmentRequest{
		PHQ9Answers: phq9,
		GAD7Answers: make([]int, model.GAD7QuestionCount),
		StressLevel: 0,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if !result.CrisisTrigger {
		t.Fatal("expected crisis trigger")
	}
	if result.RiskLevel != model.RiskSevere {
		t.Errorf("trigger must force Severe, got %s", result.RiskLevel)
	}
	if len(repo.assessments) != 1 {
		t.Fatalf("expected persisted assessment")
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != phone {
		t.Errorf("expected one guardian alert to %s, got %v", phone, notifier.sent)
	}
}

func TestAssessmentService_Submit_WorkedExamples(t *testing.T) {
	svc, _, _, _ := setupAssessmentService(t)
	ctx := context.Background()

	// Heavy symptom load with an elevated self-harm answer
	result, err := svc.Submit(ctx, "user:1", model.SubmitAssessmentRequest{
		PHQ9Answers: []int{2, 2, 2, 2, 2, 2, 2, 2, 3},
		GAD7Answers: []int{1, 1, 1, 1, 1, 1, 1},
		StressLevel: 4,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.PHQ9.RawSum != 19 {
		t.Errorf("expected PHQ-9 sum 19, got %d", result.PHQ9.RawSum)
	}
	if result.PHQ9.BandLabel != "Moderately severe" {
		t.Errorf("expected Moderately severe band, got %q", result.PHQ9.BandLabel)
	}
	if !result.CrisisTrigger {
		t.Error("expected crisis trigger")
	}
	if result.RiskLevel != model.RiskSevere {
		t.Errorf("expected Severe, got %s", result.RiskLevel)
	}

	// Fully clean submission
	result, err = svc.Submit(ctx, "user:1", model.SubmitAssessmentRequest{
		PHQ9Answers: make([]int, model.PHQ9QuestionCount),
		GAD7Answers: make([]int, model.GAD7QuestionCount),
		StressLevel: 0,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.CrisisTrigger {
		t.Error("no crisis trigger expected")
	}
	if result.RiskLevel != model.RiskNone {
		t.Errorf("expected None, got %s", result.RiskLevel)
	}
}

func TestAssessmentService_Submit_ValidationFailureIsNotPersisted(t *testing.T) {
	svc, repo, _, _ := setupAssessmentService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user:1", model.SubmitAssessmentRequest{
		PHQ9Answers: answersOf(5, 1),
		GAD7Answers: answersOf(model.GAD7QuestionCount, 1),
		StressLevel: 3,
	})
	if !errors.Is(err, ErrAnswerCount) {
		t.Fatalf("expected ErrAnswerCount, got %v", err)
	}
	if len(repo.assessments) != 0 {
		t.Error("invalid submission must not be persisted")
	}
}
