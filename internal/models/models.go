// Package models holds the persistence records shared by the repositories
// and the HTTP handlers.
package models

import "database/sql"

// Dealer is a dealership account. The API key is provisioned out of band by
// the admin CLI and exchanged for a dashboard session at login.
type Dealer struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
	APIKey    string `db:"api_key"`
	CreatedAt string `db:"created_at"`
}

// Assessment statuses.
const (
	AssessmentStatusStarted    = "started"
	AssessmentStatusInProgress = "in_progress"
	AssessmentStatusSubmitted  = "submitted"
	AssessmentStatusCompleted  = "completed"
)

// Assessment modes.
const (
	AssessmentModeDevice = "device"
	AssessmentModeQR     = "qr"
)

// AssessmentFlow names the locked interview flow an assessment was run with.
const AssessmentFlow = "flow1_locked_v2"

// RiskPending is the risk score before analysis has run.
const RiskPending = "pending"

// Assessment is one applicant interview and its risk analysis. Facts and
// Answers hold raw JSON (an object and an array respectively) as stored.
type Assessment struct {
	ID                   string         `db:"id"`
	DealerID             string         `db:"dealer_id"`
	Status               string         `db:"status"`
	Mode                 string         `db:"mode"`
	Flow                 string         `db:"flow"`
	RiskScore            string         `db:"risk_score"`
	Reasoning            sql.NullString `db:"reasoning"`
	CustomerName         sql.NullString `db:"customer_name"`
	CustomerPhone        sql.NullString `db:"customer_phone"`
	VehicleType          sql.NullString `db:"vehicle_type"`
	VehicleSpecific      sql.NullString `db:"vehicle_specific"`
	Facts                string         `db:"facts"`
	Answers              string         `db:"answers"`
	PublicToken          string         `db:"public_token"`
	ApplicantSubmittedAt sql.NullString `db:"applicant_submitted_at"`
	CreatedAt            string         `db:"created_at"`
}

// DealerSettings carries the dashboard branding and the fit thresholds the
// rule engine evaluates completed facts against.
type DealerSettings struct {
	DealerID                  string         `db:"dealer_id"`
	LogoURL                   sql.NullString `db:"logo_url"`
	ThemeColor                string         `db:"theme_color"`
	ContactEmail              sql.NullString `db:"contact_email"`
	MaxPTIRatio               float64        `db:"max_pti_ratio"`
	RequireValidDriverLicense bool           `db:"require_valid_driver_license"`
	MinDownPayment            int            `db:"min_down_payment"`
	MinResidenceMonths        int            `db:"min_residence_months"`
	MinEmploymentMonths       int            `db:"min_employment_months"`
	CreatedAt                 string         `db:"created_at"`
	UpdatedAt                 string         `db:"updated_at"`
}

// DefaultDealerSettings are returned when a dealer has never saved settings.
func DefaultDealerSettings(dealerID string) DealerSettings {
	return DealerSettings{
		DealerID:                  dealerID,
		ThemeColor:                "#1E3A8A",
		MaxPTIRatio:               0.35,
		RequireValidDriverLicense: true,
		MinDownPayment:            1000,
		MinResidenceMonths:        8,
		MinEmploymentMonths:       6,
	}
}

// CustomQuestion is a dealer-authored extra question shown after the locked
// flow on the applicant device.
type CustomQuestion struct {
	ID        int64  `db:"id"`
	DealerID  string `db:"dealer_id"`
	Question  string `db:"question"`
	CreatedAt string `db:"created_at"`
}

// Assessment event types counted on the dashboard funnel.
const (
	EventScanned   = "scanned"
	EventStarted   = "started"
	EventCompleted = "completed"
)

// AssessmentEvent is one funnel event (scan, start, finish).
type AssessmentEvent struct {
	ID        int64  `db:"id"`
	DealerID  string `db:"dealer_id"`
	EventType string `db:"event_type"`
	CreatedAt string `db:"created_at"`
}
