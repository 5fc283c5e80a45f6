package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/sqlite"
)

type QuestionRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewQuestionRepository(dbs *sqlite.Database, logger *slog.Logger) *QuestionRepository {
	return &QuestionRepository{
		dbs:    dbs,
		logger: logger.With("source", "QuestionRepository"),
	}
}

// List returns the dealer's custom questions oldest first, matching the order
// they are asked in.
func (r *QuestionRepository) List(ctx context.Context, dealerID string) ([]models.CustomQuestion, error) {
	var questions []models.CustomQuestion
	stmt := `SELECT id, dealer_id, question, created_at FROM custom_questions
	         WHERE dealer_id = ? ORDER BY created_at ASC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &questions, stmt, dealerID); err != nil {
		return nil, errors.Wrap(err, "list custom questions")
	}
	return questions, nil
}

func (r *QuestionRepository) Add(ctx context.Context, dealerID, question string) error {
	stmt := `INSERT INTO custom_questions (dealer_id, question) VALUES (@dealer_id, @question)`
	params := []any{
		sql.Named("dealer_id", dealerID),
		sql.Named("question", question),
	}
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "insert custom question", slog.String("dealer_id", dealerID))
	}
	return nil
}

// Delete removes a question, scoped to the owning dealer.
func (r *QuestionRepository) Delete(ctx context.Context, dealerID string, id int64) error {
	stmt := `DELETE FROM custom_questions WHERE id = @id AND dealer_id = @dealer_id`
	params := []any{
		sql.Named("id", id),
		sql.Named("dealer_id", dealerID),
	}
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "delete custom question", slog.Int64("id", id))
	}
	return nil
}
