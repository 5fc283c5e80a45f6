// Package interview implements the applicant interview engine: a fixed,
// conditionally-branching question flow that parses free-text answers into
// typed facts one turn at a time. The engine is pure and stateless; all state
// round-trips through the caller on every turn.
package interview

import "slices"

// Message roles and kinds as they appear in the stored transcript.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"

	KindAck     = "ack"
	KindQ       = "q"
	KindSys     = "sys"
	KindClarify = "clarify"
)

// Message is one entry of the append-only conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

// Pay frequency literals.
const (
	PayWeekly   = "weekly"
	PayBiweekly = "biweekly"
	PayMonthly  = "monthly"
)

// Residence type literals.
const (
	ResidenceRent   = "rent"
	ResidenceOwn    = "own"
	ResidenceFamily = "family"
)

// Eat-out frequency buckets.
const (
	EatOutNever     = "never"
	EatOutOneToTwo  = "1-2"
	EatOutThreeFive = "3-5"
	EatOutSixOrMore = "6+"
)

// TagSet is an insertion-order preserving, deduplicated list of string tags.
type TagSet []string

// Add appends tag unless it is already present.
func (s *TagSet) Add(tag string) {
	if !s.Contains(tag) {
		*s = append(*s, tag)
	}
}

// Contains reports whether tag is in the set.
func (s *TagSet) Contains(tag string) bool {
	return slices.Contains(*s, tag)
}

// Facts accumulates everything collected from the applicant over the
// conversation. Every field is optional until its topic has been answered.
// The JSON keys match the stored assessment facts column.
type Facts struct {
	// Income
	PayFrequency *string  `json:"pay_frequency,omitempty"`
	IncomeAmount *float64 `json:"income_amount,omitempty"`

	// Residence
	ResidenceType   *string `json:"residence_type,omitempty"`
	ResidenceMonths *int    `json:"residence_months,omitempty"`

	// Employment
	JobTitle         *string `json:"job_title,omitempty"`
	EmployerName     *string `json:"employer_name,omitempty"`
	CommuteMinutes   *int    `json:"commute_minutes,omitempty"`
	EmploymentMonths *int    `json:"employment_months,omitempty"`

	// License
	HasDriverLicense  *bool `json:"has_driver_license,omitempty"`
	LicenseStateMatch *bool `json:"license_state_match,omitempty"` // in-state true, out-of-state false

	// Vehicle (from the intro step, not part of the question flow)
	VehicleType     *string `json:"vehicle_type,omitempty"`
	VehicleSpecific *string `json:"vehicle_specific,omitempty"`

	// Customer identity (from the intro step)
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`

	// Bills (monthly)
	RentAmount        *float64 `json:"rent_amount,omitempty"` // rent/mortgage or family contribution
	CellPhoneBill     *float64 `json:"cell_phone_bill,omitempty"`
	SubscriptionsBill *float64 `json:"subscriptions_bill,omitempty"`

	// Utilities, only asked when renting or owning
	WaterBill    *float64 `json:"water_bill,omitempty"`
	ElectricBill *float64 `json:"electric_bill,omitempty"`
	WifiBill     *float64 `json:"wifi_bill,omitempty"`

	// Food behavior (weekly)
	EatOutFrequency      *string  `json:"eat_out_frequency,omitempty"`
	EatOutSpendWeekly    *float64 `json:"eat_out_spend_weekly,omitempty"`
	GroceriesSpendWeekly *float64 `json:"groceries_spend_weekly,omitempty"`

	// Down payment
	DownPayment *float64 `json:"down_payment,omitempty"`

	// Credit self-assessment
	CreditImportance  *int    `json:"credit_importance,omitempty"` // 1-10
	CreditBelowReason *string `json:"credit_below_reason,omitempty"`

	// Deal / intention questions, stored as "<letter> - <canonical label>"
	PriorAutoFinancing *string `json:"prior_auto_financing,omitempty"`
	VehiclePriority    *string `json:"vehicle_priority,omitempty"`
	BadDealDefinition  *string `json:"bad_deal_definition,omitempty"`
	VehicleBenefit     *string `json:"vehicle_benefit,omitempty"`

	// Commitment & responsibility
	MechanicalFailurePlan *string `json:"mechanical_failure_plan,omitempty"` // "<letter> - <canonical label>"

	SupportSystem *bool `json:"support_system,omitempty"`

	// Reference contact (no contact info collected, just availability + relation)
	VehicleReferenceAvailable *bool   `json:"vehicle_reference_available,omitempty"`
	VehicleReferenceRelation  *string `json:"vehicle_reference_relation,omitempty"`

	// Household
	SpouseCosigner *bool `json:"spouse_cosigner,omitempty"`

	// Location tie-in
	BornInState *bool `json:"born_in_state,omitempty"`

	// Advisory flags for the downstream risk scoring
	Warnings  TagSet `json:"warnings,omitempty"`
	HardStops TagSet `json:"hard_stops,omitempty"`
}

// Clone returns a copy of the facts that can be mutated without affecting the
// original. Pointer fields are shared because the engine always replaces them
// with freshly allocated values instead of writing through them.
func (f Facts) Clone() Facts {
	clone := f
	clone.Warnings = slices.Clone(f.Warnings)
	clone.HardStops = slices.Clone(f.HardStops)
	return clone
}

func ptr[T any](v T) *T {
	return &v
}
