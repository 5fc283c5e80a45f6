package interview

import "strings"

// Employment signal word lists. Matched as substrings of the normalized job
// title (and employer name where noted), so "Store Manager" hits "manager".
var (
	managementWords = []string{"manager", "supervisor", "lead", "foreman", "director", "owner", "gm", "general manager"}
	skilledWords    = []string{"nurse", "rn", "lpn", "engineer", "technician", "mechanic", "electrician", "plumber", "hvac", "welder", "driver", "cdl"}
	gigWords        = []string{"uber", "lyft", "doordash", "instacart", "gig", "freelance", "self employed", "self-employed", "contractor"}
	tempWords       = []string{"temp", "seasonal", "season", "part time", "part-time", "agency"}

	lowWageEmployers = []string{"chipotle", "mcdonald", "walmart", "dollar tree", "dollar general", "burger king", "taco bell", "wendy", "subway"}
	lowWageTitles    = []string{"cashier", "crew", "server", "host", "dishwasher", "stock", "associate"}
)

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

// AddJobSignals derives advisory employment tags from the stored job title
// and employer name. It only ever adds tags; re-running after an edit keeps
// earlier tags in place.
func AddJobSignals(facts *Facts) {
	var title, employer string
	if facts.JobTitle != nil {
		title = normalize(*facts.JobTitle)
	}
	if facts.EmployerName != nil {
		employer = normalize(*facts.EmployerName)
	}

	if containsAny(title, managementWords) {
		facts.Warnings.Add("job_management_signal")
	}
	if containsAny(title, skilledWords) {
		facts.Warnings.Add("job_skilled_trade_signal")
	}
	if containsAny(title, gigWords) || containsAny(employer, gigWords) {
		facts.Warnings.Add("job_gig_signal")
	}
	if containsAny(title, tempWords) {
		facts.Warnings.Add("job_temp_or_parttime_signal")
	}
	if containsAny(employer, lowWageEmployers) {
		facts.Warnings.Add("job_low_wage_employer_signal")
	}
	if containsAny(title, lowWageTitles) {
		facts.Warnings.Add("job_low_wage_title_signal")
	}
}

// RefreshWarnings appends the cross-field soft warnings that depend on more
// than one answer. Called once per turn right before the next question goes
// out, never on the closing turn.
func RefreshWarnings(facts *Facts) {
	if facts.LicenseStateMatch != nil && !*facts.LicenseStateMatch {
		facts.Warnings.Add("license_out_of_state")
	}
	if facts.EmploymentMonths != nil && *facts.EmploymentMonths < 6 {
		facts.Warnings.Add("short_job_time")
	}
	if facts.ResidenceMonths != nil && *facts.ResidenceMonths < 6 {
		facts.Warnings.Add("short_residence_time")
	}
	if facts.DownPayment != nil && *facts.DownPayment < 800 {
		facts.Warnings.Add("low_down_payment")
	}
}
