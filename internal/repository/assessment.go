package repository

import (
	"context"
	"errors"

	"github.com/havenhealth/haven/api/internal/database"
	"github.com/havenhealth/haven/api/internal/model"
)

// AssessmentRepository handles assessment data access
type AssessmentRepository struct {
	db database.Database
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db database.Database) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create stores a scored assessment
func (r *AssessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	query := `
		CREATE assessment CONTENT {
			user: type::record($user),
			phq9_score: $phq9_score,
			gad7_score: $gad7_score,
			stress_level: $stress_level,
			risk_level: $risk_level,
			crisis_trigger: $crisis_trigger,
			notes: IF $notes IS NOT NULL THEN $notes ELSE NONE END,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":           assessment.UserID,
		"phq9_score":     assessment.PHQ9Score,
		"gad7_score":     assessment.GAD7Score,
		"stress_level":   assessment.StressLevel,
		"risk_level":     int(assessment.RiskLevel),
		"crisis_trigger": assessment.CrisisTrigger,
		"notes":          ptrToNone(assessment.Notes),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	assessment.ID = created.ID
	assessment.CreatedOn = created.CreatedOn
	return nil
}

// GetByUserID returns the user's most recent assessments, newest first
func (r *AssessmentRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Assessment, error) {
	query := `
		SELECT * FROM assessment
		WHERE user = type::record($user)
		ORDER BY created_on DESC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"user":  userID,
		"limit": limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	assessments := make([]*model.Assessment, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		assessments = append(assessments, parseAssessment(data))
	}
	return assessments, nil
}

func parseAssessment(data map[string]interface{}) *model.Assessment {
	assessment := &model.Assessment{
		ID:            convertSurrealID(data["id"]),
		UserID:        convertSurrealID(data["user"]),
		PHQ9Score:     getInt(data, "phq9_score"),
		GAD7Score:     getInt(data, "gad7_score"),
		StressLevel:   getInt(data, "stress_level"),
		RiskLevel:     model.RiskLevel(getInt(data, "risk_level")),
		CrisisTrigger: getBool(data, "crisis_trigger"),
		Notes:         getStringPtr(data, "notes"),
	}
	if t := getTime(data, "created_on"); t != nil {
		assessment.CreatedOn = *t
	}
	return assessment
}
