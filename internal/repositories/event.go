package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/sqlite"
)

type EventRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewEventRepository(dbs *sqlite.Database, logger *slog.Logger) *EventRepository {
	return &EventRepository{
		dbs:    dbs,
		logger: logger.With("source", "EventRepository"),
	}
}

// Insert records a funnel event (scanned, started, completed).
func (r *EventRepository) Insert(ctx context.Context, dealerID, eventType string) error {
	stmt := `INSERT INTO assessment_events (dealer_id, event_type) VALUES (@dealer_id, @event_type)`
	params := []any{
		sql.Named("dealer_id", dealerID),
		sql.Named("event_type", eventType),
	}
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "insert event", slog.String("event_type", eventType))
	}
	return nil
}

// Counts returns per-type event totals for the dealer.
func (r *EventRepository) Counts(ctx context.Context, dealerID string) (map[string]int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	stmt := `SELECT event_type, COUNT(*) FROM assessment_events WHERE dealer_id = ? GROUP BY event_type`
	if rows, err = r.dbs.ReadOnly.QueryContext(ctx, stmt, dealerID); err != nil {
		return nil, errors.Wrap(err, "query event counts")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.Error("could not close rows", errors.SlogError(errors.Wrap(closeErr, "close rows")))
		}
	}()

	counts := map[string]int{}
	for rows.Next() {
		var (
			eventType string
			count     int
		)
		if err = rows.Scan(&eventType, &count); err != nil {
			return nil, errors.Wrap(err, "scan event count")
		}
		counts[eventType] = count
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return counts, nil
}
