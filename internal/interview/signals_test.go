package interview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vetta-app/vetta/internal/interview"
)

func TestAddJobSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		title    string
		employer string
		want     []string
		absent   []string
	}{
		{
			name:  "management title",
			title: "Store Manager",
			want:  []string{"job_management_signal"},
		},
		{
			name:  "skilled trade",
			title: "HVAC technician",
			want:  []string{"job_skilled_trade_signal"},
		},
		{
			name:     "gig matches employer too",
			title:    "delivery",
			employer: "DoorDash",
			want:     []string{"job_gig_signal"},
		},
		{
			name:   "temp only matches title",
			title:  "analyst",
			employer: "Temp Solutions Agency",
			absent: []string{"job_temp_or_parttime_signal"},
		},
		{
			name:     "low wage employer",
			title:    "grill",
			employer: "McDonald's",
			want:     []string{"job_low_wage_employer_signal"},
		},
		{
			name:  "low wage title",
			title: "cashier",
			want:  []string{"job_low_wage_title_signal"},
		},
		{
			name:     "multiple signals stack",
			title:    "crew lead",
			employer: "Burger King",
			want:     []string{"job_management_signal", "job_low_wage_employer_signal", "job_low_wage_title_signal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			facts := interview.Facts{}
			if tt.title != "" {
				facts.JobTitle = strp(tt.title)
			}
			if tt.employer != "" {
				facts.EmployerName = strp(tt.employer)
			}
			interview.AddJobSignals(&facts)
			for _, tag := range tt.want {
				assert.True(t, facts.Warnings.Contains(tag), "missing %s, got %v", tag, facts.Warnings)
			}
			for _, tag := range tt.absent {
				assert.False(t, facts.Warnings.Contains(tag), "unexpected %s", tag)
			}
		})
	}
}

func TestAddJobSignals_keepsExistingTags(t *testing.T) {
	t.Parallel()

	facts := interview.Facts{
		JobTitle: strp("nurse"),
		Warnings: interview.TagSet{"bill_non_numeric_water_bill"},
	}
	interview.AddJobSignals(&facts)
	assert.True(t, facts.Warnings.Contains("bill_non_numeric_water_bill"))
	assert.True(t, facts.Warnings.Contains("job_skilled_trade_signal"))
}

func TestRefreshWarnings(t *testing.T) {
	t.Parallel()

	t.Run("all thresholds trip", func(t *testing.T) {
		t.Parallel()
		facts := interview.Facts{
			LicenseStateMatch: boolp(false),
			EmploymentMonths:  intp(3),
			ResidenceMonths:   intp(2),
			DownPayment:       floatp(500),
		}
		interview.RefreshWarnings(&facts)
		assert.True(t, facts.Warnings.Contains("license_out_of_state"))
		assert.True(t, facts.Warnings.Contains("short_job_time"))
		assert.True(t, facts.Warnings.Contains("short_residence_time"))
		assert.True(t, facts.Warnings.Contains("low_down_payment"))
	})

	t.Run("unset fields never warn", func(t *testing.T) {
		t.Parallel()
		facts := interview.Facts{}
		interview.RefreshWarnings(&facts)
		assert.Empty(t, facts.Warnings)
	})

	t.Run("thresholds are strict", func(t *testing.T) {
		t.Parallel()
		facts := interview.Facts{
			EmploymentMonths: intp(6),
			ResidenceMonths:  intp(6),
			DownPayment:      floatp(800),
		}
		interview.RefreshWarnings(&facts)
		assert.Empty(t, facts.Warnings)
	})

	t.Run("re-running does not duplicate", func(t *testing.T) {
		t.Parallel()
		facts := interview.Facts{DownPayment: floatp(100)}
		interview.RefreshWarnings(&facts)
		interview.RefreshWarnings(&facts)
		assert.Equal(t, interview.TagSet{"low_down_payment"}, facts.Warnings)
	})
}
