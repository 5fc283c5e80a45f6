package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/random"
	"github.com/vetta-app/vetta/internal/sqlite"
)

// ErrInvalidToken is returned when a public submission token does not match
// the assessment it targets.
var ErrInvalidToken = errors.NewSentinel("invalid or expired link token")

const publicTokenLength = 32

const assessmentColumns = `id, dealer_id, status, mode, flow, risk_score, reasoning,
	customer_name, customer_phone, vehicle_type, vehicle_specific,
	facts, answers, public_token, applicant_submitted_at, created_at`

type AssessmentRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewAssessmentRepository(dbs *sqlite.Database, logger *slog.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		dbs:    dbs,
		logger: logger.With("source", "AssessmentRepository"),
	}
}

// Create starts a new assessment in status started with a fresh public link
// token. Customer details are optional at this point; the intro step fills
// them in later.
func (r *AssessmentRepository) Create(ctx context.Context, dealerID, mode string, customerName, customerPhone string) (*models.Assessment, error) {
	token, err := random.Letters(publicTokenLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate public token")
	}
	if mode != models.AssessmentModeQR {
		mode = models.AssessmentModeDevice
	}

	assessment := models.Assessment{
		ID:          uuid.NewString(),
		DealerID:    dealerID,
		Status:      models.AssessmentStatusStarted,
		Mode:        mode,
		Flow:        models.AssessmentFlow,
		RiskScore:   models.RiskPending,
		Facts:       "{}",
		Answers:     "[]",
		PublicToken: token,
	}
	if customerName != "" {
		assessment.CustomerName = sql.NullString{String: customerName, Valid: true}
	}
	if customerPhone != "" {
		assessment.CustomerPhone = sql.NullString{String: customerPhone, Valid: true}
	}

	stmt := `INSERT INTO assessments (id, dealer_id, status, mode, flow, risk_score,
	                                  customer_name, customer_phone, facts, answers, public_token)
	         VALUES (@id, @dealer_id, @status, @mode, @flow, @risk_score,
	                 @customer_name, @customer_phone, @facts, @answers, @public_token)`
	params := []any{
		sql.Named("id", assessment.ID),
		sql.Named("dealer_id", assessment.DealerID),
		sql.Named("status", assessment.Status),
		sql.Named("mode", assessment.Mode),
		sql.Named("flow", assessment.Flow),
		sql.Named("risk_score", assessment.RiskScore),
		sql.Named("customer_name", assessment.CustomerName),
		sql.Named("customer_phone", assessment.CustomerPhone),
		sql.Named("facts", assessment.Facts),
		sql.Named("answers", assessment.Answers),
		sql.Named("public_token", assessment.PublicToken),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return nil, errors.Wrap(err, "insert assessment", slog.String("dealer_id", dealerID))
	}
	return &assessment, nil
}

// Get returns the assessment scoped to the dealer that owns it.
func (r *AssessmentRepository) Get(ctx context.Context, dealerID, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	stmt := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = ? AND dealer_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &assessment, stmt, id, dealerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read assessment")
	}
	return &assessment, nil
}

// List returns the dealer's assessments newest first.
func (r *AssessmentRepository) List(ctx context.Context, dealerID string) ([]models.Assessment, error) {
	var assessments []models.Assessment
	stmt := `SELECT ` + assessmentColumns + ` FROM assessments
	         WHERE dealer_id = ? ORDER BY created_at DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &assessments, stmt, dealerID); err != nil {
		return nil, errors.Wrap(err, "list assessments")
	}
	return assessments, nil
}

// Recent returns the dealer's newest assessments capped at limit.
func (r *AssessmentRepository) Recent(ctx context.Context, dealerID string, limit int) ([]models.Assessment, error) {
	var assessments []models.Assessment
	stmt := `SELECT ` + assessmentColumns + ` FROM assessments
	         WHERE dealer_id = ? ORDER BY created_at DESC LIMIT ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &assessments, stmt, dealerID, limit); err != nil {
		return nil, errors.Wrap(err, "list recent assessments")
	}
	return assessments, nil
}

// RecentRiskScores returns the risk scores of the newest assessments, for the
// coaching risk distribution.
func (r *AssessmentRepository) RecentRiskScores(ctx context.Context, dealerID string, limit int) ([]string, error) {
	var risks []string
	stmt := `SELECT risk_score FROM assessments
	         WHERE dealer_id = ? ORDER BY created_at DESC LIMIT ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &risks, stmt, dealerID, limit); err != nil {
		return nil, errors.Wrap(err, "list recent risk scores")
	}
	return risks, nil
}

// SaveIntro records the customer identity and vehicle interest both as
// columns and inside the facts JSON, keeping the dashboard and the risk
// analysis reading the same keys.
func (r *AssessmentRepository) SaveIntro(ctx context.Context, id, customerName, customerPhone, vehicleType, vehicleSpecific string) error {
	factPatch := map[string]any{
		"customer_name":  customerName,
		"customer_phone": customerPhone,
		"vehicle_type":   vehicleType,
	}
	if vehicleSpecific != "" {
		factPatch["vehicle_specific"] = vehicleSpecific
	} else {
		factPatch["vehicle_specific"] = nil
	}
	mergedFacts, err := r.mergeFacts(ctx, id, factPatch)
	if err != nil {
		return err
	}

	var vehicleSpecificCol any
	if vehicleSpecific != "" {
		vehicleSpecificCol = vehicleSpecific
	}
	stmt := `UPDATE assessments
	         SET customer_name = @customer_name, customer_phone = @customer_phone,
	             vehicle_type = @vehicle_type, vehicle_specific = @vehicle_specific,
	             facts = @facts
	         WHERE id = @id`
	params := []any{
		sql.Named("customer_name", customerName),
		sql.Named("customer_phone", customerPhone),
		sql.Named("vehicle_type", vehicleType),
		sql.Named("vehicle_specific", vehicleSpecificCol),
		sql.Named("facts", mergedFacts),
		sql.Named("id", id),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "save intro", slog.String("assessment_id", id))
	}
	return nil
}

// MergeProgress shallow-merges incoming facts over the stored facts JSON,
// optionally replaces the answers transcript, and updates the status.
func (r *AssessmentRepository) MergeProgress(ctx context.Context, id string, facts map[string]any, answers json.RawMessage, status string) error {
	if status == "" {
		status = models.AssessmentStatusInProgress
	}
	mergedFacts, err := r.mergeFacts(ctx, id, facts)
	if err != nil {
		return err
	}

	stmt := `UPDATE assessments SET status = @status, facts = @facts WHERE id = @id`
	params := []any{
		sql.Named("status", status),
		sql.Named("facts", mergedFacts),
		sql.Named("id", id),
	}
	if len(answers) > 0 {
		stmt = `UPDATE assessments SET status = @status, facts = @facts, answers = @answers WHERE id = @id`
		params = append(params, sql.Named("answers", string(answers)))
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "merge progress", slog.String("assessment_id", id))
	}
	return nil
}

// SubmitApplicant finalizes a QR-link submission. The public token must match
// the assessment; dealers never share these tokens across assessments.
func (r *AssessmentRepository) SubmitApplicant(ctx context.Context, id, token string, customerName, customerPhone, vehicleType, vehicleSpecific string, facts map[string]any) error {
	var stored struct {
		PublicToken string `db:"public_token"`
		Facts       string `db:"facts"`
	}
	stmt := `SELECT public_token, facts FROM assessments WHERE id = ?`
	if err := r.dbs.ReadWrite.GetContext(ctx, &stored, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return errors.Wrap(err, "read assessment for submission")
	}
	if stored.PublicToken != token {
		return ErrInvalidToken
	}

	merged := parseFactMap(stored.Facts)
	for k, v := range facts {
		merged[k] = v
	}
	if customerName != "" {
		merged["customer_name"] = customerName
	}
	if customerPhone != "" {
		merged["customer_phone"] = customerPhone
	}
	if vehicleType != "" {
		merged["vehicle_type"] = vehicleType
	}
	if vehicleSpecific != "" {
		merged["vehicle_specific"] = vehicleSpecific
	}
	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrap(err, "marshal merged facts")
	}

	// COALESCE keeps whatever the intro step already saved when the
	// submission leaves a field out.
	stmt = `UPDATE assessments
	        SET customer_name = COALESCE(@customer_name, customer_name),
	            customer_phone = COALESCE(@customer_phone, customer_phone),
	            vehicle_type = COALESCE(@vehicle_type, vehicle_type),
	            vehicle_specific = COALESCE(@vehicle_specific, vehicle_specific),
	            facts = @facts,
	            applicant_submitted_at = strftime('%Y-%m-%dT%H:%M:%fZ')
	        WHERE id = @id`
	params := []any{
		sql.Named("customer_name", nullable(customerName)),
		sql.Named("customer_phone", nullable(customerPhone)),
		sql.Named("vehicle_type", nullable(vehicleType)),
		sql.Named("vehicle_specific", nullable(vehicleSpecific)),
		sql.Named("facts", string(mergedJSON)),
		sql.Named("id", id),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "submit applicant", slog.String("assessment_id", id))
	}
	return nil
}

// Finish stores the risk analysis and marks the assessment completed.
func (r *AssessmentRepository) Finish(ctx context.Context, id, riskScore, reasoning string, facts map[string]any) error {
	mergedFacts, err := r.mergeFacts(ctx, id, facts)
	if err != nil {
		return err
	}
	stmt := `UPDATE assessments
	         SET risk_score = @risk_score, reasoning = @reasoning, facts = @facts, status = @status
	         WHERE id = @id`
	params := []any{
		sql.Named("risk_score", riskScore),
		sql.Named("reasoning", reasoning),
		sql.Named("facts", mergedFacts),
		sql.Named("status", models.AssessmentStatusCompleted),
		sql.Named("id", id),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "finish assessment", slog.String("assessment_id", id))
	}
	return nil
}

// mergeFacts reads the stored facts JSON and shallow-merges patch over it.
// The read goes through the read-write pool so it observes writes earlier in
// the same request.
func (r *AssessmentRepository) mergeFacts(ctx context.Context, id string, patch map[string]any) (string, error) {
	var stored string
	if err := r.dbs.ReadWrite.GetContext(ctx, &stored, `SELECT facts FROM assessments WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "read facts")
	}

	merged := parseFactMap(stored)
	for k, v := range patch {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return "", errors.Wrap(err, "marshal merged facts")
	}
	return string(out), nil
}

// parseFactMap decodes a stored facts column, treating malformed or
// non-object content as empty.
func parseFactMap(stored string) map[string]any {
	facts := map[string]any{}
	if err := json.Unmarshal([]byte(stored), &facts); err != nil {
		return map[string]any{}
	}
	return facts
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
