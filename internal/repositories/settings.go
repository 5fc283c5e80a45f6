package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/sqlite"
)

type SettingsRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewSettingsRepository(dbs *sqlite.Database, logger *slog.Logger) *SettingsRepository {
	return &SettingsRepository{
		dbs:    dbs,
		logger: logger.With("source", "SettingsRepository"),
	}
}

// Get returns the dealer's saved settings, or the defaults when the dealer
// has never saved any. The defaults are not persisted here; public requests
// must not create rows.
func (r *SettingsRepository) Get(ctx context.Context, dealerID string) (*models.DealerSettings, error) {
	var settings models.DealerSettings
	stmt := `SELECT dealer_id, logo_url, theme_color, contact_email, max_pti_ratio,
	                require_valid_driver_license, min_down_payment,
	                min_residence_months, min_employment_months, created_at, updated_at
	         FROM dealer_settings WHERE dealer_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &settings, stmt, dealerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultDealerSettings(dealerID)
			return &defaults, nil
		}
		return nil, errors.Wrap(err, "read dealer settings")
	}
	return &settings, nil
}

// Upsert writes the full settings row, bumping updated_at.
func (r *SettingsRepository) Upsert(ctx context.Context, settings models.DealerSettings) error {
	stmt := `INSERT INTO dealer_settings (dealer_id, logo_url, theme_color, contact_email, max_pti_ratio,
	                                      require_valid_driver_license, min_down_payment,
	                                      min_residence_months, min_employment_months)
	         VALUES (@dealer_id, @logo_url, @theme_color, @contact_email, @max_pti_ratio,
	                 @require_valid_driver_license, @min_down_payment,
	                 @min_residence_months, @min_employment_months)
	         ON CONFLICT (dealer_id) DO UPDATE SET
	             logo_url                     = excluded.logo_url,
	             theme_color                  = excluded.theme_color,
	             contact_email                = excluded.contact_email,
	             max_pti_ratio                = excluded.max_pti_ratio,
	             require_valid_driver_license = excluded.require_valid_driver_license,
	             min_down_payment             = excluded.min_down_payment,
	             min_residence_months         = excluded.min_residence_months,
	             min_employment_months        = excluded.min_employment_months,
	             updated_at                   = strftime('%Y-%m-%dT%H:%M:%fZ')`
	params := []any{
		sql.Named("dealer_id", settings.DealerID),
		sql.Named("logo_url", settings.LogoURL),
		sql.Named("theme_color", settings.ThemeColor),
		sql.Named("contact_email", settings.ContactEmail),
		sql.Named("max_pti_ratio", settings.MaxPTIRatio),
		sql.Named("require_valid_driver_license", settings.RequireValidDriverLicense),
		sql.Named("min_down_payment", settings.MinDownPayment),
		sql.Named("min_residence_months", settings.MinResidenceMonths),
		sql.Named("min_employment_months", settings.MinEmploymentMonths),
	}
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(err, "upsert dealer settings", slog.String("dealer_id", settings.DealerID))
	}
	return nil
}
