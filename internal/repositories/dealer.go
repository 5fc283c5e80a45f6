// Package repositories implements persistence for dealers, assessments,
// settings, custom questions and funnel events on top of the dual-pool
// sqlite database.
package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/random"
	"github.com/vetta-app/vetta/internal/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.NewSentinel("not found")

const apiKeyLength = 40

type DealerRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewDealerRepository(dbs *sqlite.Database, logger *slog.Logger) *DealerRepository {
	return &DealerRepository{
		dbs:    dbs,
		logger: logger.With("source", "DealerRepository"),
	}
}

// Create provisions a dealer with a generated ID and API key.
func (r *DealerRepository) Create(ctx context.Context, name, slug string) (*models.Dealer, error) {
	apiKey, err := random.Letters(apiKeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate api key")
	}
	dealer := models.Dealer{
		ID:     uuid.NewString(),
		Name:   name,
		Slug:   slug,
		APIKey: apiKey,
	}

	stmt := `INSERT INTO dealers (id, name, slug, api_key) VALUES (@id, @name, @slug, @api_key)`
	params := []any{
		sql.Named("id", dealer.ID),
		sql.Named("name", dealer.Name),
		sql.Named("slug", dealer.Slug),
		sql.Named("api_key", dealer.APIKey),
	}
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return nil, errors.Wrap(err, "insert dealer", slog.String("slug", slug))
	}
	return &dealer, nil
}

func (r *DealerRepository) get(ctx context.Context, where string, arg any) (*models.Dealer, error) {
	var dealer models.Dealer
	stmt := `SELECT id, name, slug, api_key, created_at FROM dealers WHERE ` + where
	if err := r.dbs.ReadOnly.GetContext(ctx, &dealer, stmt, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read dealer")
	}
	return &dealer, nil
}

func (r *DealerRepository) GetByID(ctx context.Context, id string) (*models.Dealer, error) {
	return r.get(ctx, "id = ?", id)
}

// GetByKey resolves the public dealer key used in QR links. It accepts the
// dealer's name, slug, or ID, tried in that order.
func (r *DealerRepository) GetByKey(ctx context.Context, key string) (*models.Dealer, error) {
	dealer, err := r.get(ctx, "name = ?", key)
	if err == nil {
		return dealer, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	dealer, err = r.get(ctx, "slug = ?", key)
	if err == nil {
		return dealer, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.get(ctx, "id = ?", key)
}

// GetByAPIKey is the dashboard login lookup.
func (r *DealerRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.Dealer, error) {
	return r.get(ctx, "api_key = ?", apiKey)
}
