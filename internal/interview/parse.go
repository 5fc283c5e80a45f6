package interview

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9\s$+\-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	moneyRe = regexp.MustCompile(`(\$?\s*\d{1,7})(\.\d{1,2})?`)

	hoursRe       = regexp.MustCompile(`(\d{1,2})\s*(hour|hr|hrs)`)
	minutesRe     = regexp.MustCompile(`(\d{1,3})\s*(min|mins|minute|minutes)`)
	yearsRe       = regexp.MustCompile(`(\d{1,2})\s*(year|years|yr|yrs)`)
	monthsRe      = regexp.MustCompile(`(\d{1,3})\s*(month|months|mo|mos)`)
	bareNumberRe  = regexp.MustCompile(`\b(\d{1,3})\b`)
	smallNumberRe = regexp.MustCompile(`\b(\d{1,2})\b`)

	yesRe = regexp.MustCompile(`\b(yes|yep|yeah|sure|correct|i do|i have)\b`)
	noRe  = regexp.MustCompile(`\b(no|nope|nah|dont|do not|i dont|i do not|not)\b`)

	weekRe       = regexp.MustCompile(`\bweek\b`)
	monthWordRe  = regexp.MustCompile(`\bmonth\b`)
	neverRe      = regexp.MustCompile(`\b(never|none|no|0)\b`)
	oneToTenRe   = regexp.MustCompile(`\b(10|[1-9])\b`)
	choiceRe     = regexp.MustCompile(`^\s*([A-E])\b`)
	choiceDigitRe = regexp.MustCompile(`^\s*([1-5])\b`)
	scenarioRe   = regexp.MustCompile(`^\s*([A-D])\b`)
)

// normalize lowercases, folds curly quotes, strips punctuation except $ + -
// and collapses whitespace so that word lists match free text reliably.
func normalize(s string) string {
	t := strings.ToLower(s)
	t = strings.ReplaceAll(t, "’", "'")
	t = nonWordRe.ReplaceAllString(t, " ")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// parseMoney extracts the first dollar-ish token from the text. Cents are
// deliberately ignored, matching how the answers are stored downstream.
// Returns false when no numeric token is present.
func parseMoney(raw string) (float64, bool) {
	t := strings.ReplaceAll(raw, ",", "")
	m := moneyRe.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	digits := strings.TrimSpace(strings.ReplaceAll(m[1], "$", ""))
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseMinutes recognizes "1 hour", "45 min" or any bare 1-3 digit number.
func parseMinutes(raw string) (int, bool) {
	t := normalize(raw)
	if m := hoursRe.FindStringSubmatch(t); m != nil {
		h, err := strconv.Atoi(m[1])
		if err == nil {
			return h * 60, true
		}
	}
	if m := minutesRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	if m := bareNumberRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseMonths recognizes "2 years", "8 months" or any bare 1-3 digit number.
func parseMonths(raw string) (int, bool) {
	t := normalize(raw)
	if m := yearsRe.FindStringSubmatch(t); m != nil {
		y, err := strconv.Atoi(m[1])
		if err == nil {
			return y * 12, true
		}
	}
	if m := monthsRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	if m := bareNumberRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseYesNo returns (value, true) for a recognized yes/no answer and
// (false, false) when the text is ambiguous.
func parseYesNo(raw string) (bool, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	t := normalize(raw)
	if t == "" {
		return false, false
	}

	if trimmed == "y" {
		return true, true
	}
	if trimmed == "n" {
		return false, true
	}

	if yesRe.MatchString(t) {
		return true, true
	}
	if noRe.MatchString(t) {
		return false, true
	}
	return false, false
}

// parsePayFrequency matches weekly, then biweekly, then monthly. The ordering
// is the locked behavior: a plain "weekly" anywhere in the answer wins.
func parsePayFrequency(raw string) (string, bool) {
	t := normalize(raw)
	if strings.Contains(t, "weekly") || weekRe.MatchString(t) {
		return PayWeekly, true
	}
	if strings.Contains(t, "biweekly") || strings.Contains(t, "bi weekly") ||
		strings.Contains(t, "every two weeks") || strings.Contains(t, "2 weeks") {
		return PayBiweekly, true
	}
	if strings.Contains(t, "monthly") || monthWordRe.MatchString(t) {
		return PayMonthly, true
	}
	return "", false
}

// parseChoiceLetter accepts a leading letter A-E (or digits 1-5 mapped onto
// letters) restricted to the allowed set.
func parseChoiceLetter(raw string, allowed string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	upper := strings.ToUpper(trimmed)

	if m := choiceRe.FindStringSubmatch(upper); m != nil {
		if strings.Contains(allowed, m[1]) {
			return m[1], true
		}
		return "", false
	}

	if m := choiceDigitRe.FindStringSubmatch(upper); m != nil {
		c := string(rune('A' + m[1][0] - '1'))
		if strings.Contains(allowed, c) {
			return c, true
		}
	}
	return "", false
}

// parseScenarioChoice accepts A-D or one of the canonical paraphrases of the
// mechanical failure options.
func parseScenarioChoice(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	upper := strings.ToUpper(trimmed)
	if m := scenarioRe.FindStringSubmatch(upper); m != nil {
		return m[1], true
	}

	t := normalize(raw)

	if strings.Contains(t, "take responsibility") || strings.Contains(t, "get it fixed") ||
		strings.Contains(t, "fix it") || strings.Contains(t, "repair it") {
		return "A", true
	}
	if strings.Contains(t, "call") &&
		(strings.Contains(t, "dealership") || strings.Contains(t, "you") || strings.Contains(t, "us") ||
			strings.Contains(t, "shop") || strings.Contains(t, "see if")) {
		return "B", true
	}
	if strings.Contains(t, "drive until") || strings.Contains(t, "tow") ||
		strings.Contains(t, "keep driving") || strings.Contains(t, "until it dies") {
		return "C", true
	}
	if strings.Contains(t, "give the car back") || strings.Contains(t, "return it") ||
		strings.Contains(t, "bring it back") || strings.Contains(t, "give it back") {
		return "D", true
	}

	return "", false
}

// parseEatOutFrequency buckets the answer into never / 1-2 / 3-5 / 6+.
func parseEatOutFrequency(raw string) (string, bool) {
	t := normalize(raw)

	if neverRe.MatchString(t) {
		return EatOutNever, true
	}

	if m := smallNumberRe.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case n <= 0:
				return EatOutNever, true
			case n <= 2:
				return EatOutOneToTwo, true
			case n <= 5:
				return EatOutThreeFive, true
			default:
				return EatOutSixOrMore, true
			}
		}
	}

	if strings.Contains(t, "once") || strings.Contains(t, "twice") {
		return EatOutOneToTwo, true
	}
	if strings.Contains(t, "few") || strings.Contains(t, "some") || strings.Contains(t, "couple") {
		return EatOutOneToTwo, true
	}
	if strings.Contains(t, "often") || strings.Contains(t, "a lot") || strings.Contains(t, "daily") ||
		strings.Contains(t, "every day") {
		return EatOutSixOrMore, true
	}

	// Mentioning groceries here is a miscue meaning they don't eat out.
	if strings.Contains(t, "grocer") {
		return EatOutNever, true
	}

	return "", false
}

// parseResidenceType matches rent / own / family phrasings.
func parseResidenceType(raw string) (string, bool) {
	t := normalize(raw)
	switch {
	case strings.Contains(t, "rent"):
		return ResidenceRent, true
	case strings.Contains(t, "own") || strings.Contains(t, "mortgage"):
		return ResidenceOwn, true
	case strings.Contains(t, "family") || strings.Contains(t, "parents") ||
		strings.Contains(t, "mom") || strings.Contains(t, "dad"):
		return ResidenceFamily, true
	default:
		return "", false
	}
}

// parseCreditImportance extracts a 1-10 rating.
func parseCreditImportance(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	m := oneToTenRe.FindStringSubmatch(trimmed)
	if m == nil {
		m = oneToTenRe.FindStringSubmatch(normalize(raw))
	}
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// priorAutoFinancingLabels et al. are the canonical labels stored into facts.
var (
	priorAutoFinancingLabels = map[string]string{
		"A": "Yes — and I paid it off successfully",
		"B": "Yes — but I had some late payments",
		"C": "Yes — but I was unable to finish paying it off and the vehicle was eventually repossessed",
		"D": "No — this would be my first time financing a vehicle",
	}
	vehiclePriorityLabels = map[string]string{
		"A": "Having reliable transportation so I can work and handle my responsibilities",
		"B": "Being able to keep the vehicle long term",
		"C": "Getting the lowest possible monthly payment",
		"D": "Getting the lowest interest rate possible",
		"E": "Getting approved today so I can move forward with my responsibilities",
	}
	badDealDefinitionLabels = map[string]string{
		"A": "Payments I know I cannot realistically keep up with",
		"B": "A vehicle that is unreliable",
		"C": "Something that prevents me from handling my daily responsibilities",
		"D": "A vehicle with a high payment and high interest that I cannot manage",
	}
	vehicleBenefitLabels = map[string]string{
		"A": "Help me get to work consistently",
		"B": "Help me support my family",
		"C": "Help me improve my financial stability",
		"D": "Help me handle important daily responsibilities",
	}
	mechanicalFailureLabels = map[string]string{
		"A": "Take responsibility to get the car fixed",
		"B": "Call us to see if we can fix it",
		"C": "Drive until a tow is needed",
		"D": "Give the car back",
	}
)

func letterChoice(letter string, labels map[string]string) string {
	return letter + " - " + labels[letter]
}

// ParseAnswer interprets the user's text as an answer to the given topic and
// merges the resulting fact into facts. It reports whether parsing succeeded;
// on failure facts are left untouched so the caller can re-ask. Bill topics
// always succeed: unparseable or negative amounts are coerced to zero with a
// warning tag instead of blocking the flow.
func ParseAnswer(topic Topic, userText string, facts *Facts) bool {
	switch topic {
	case TopicJobTitle:
		v := strings.TrimSpace(userText)
		if len(v) < 2 {
			return false
		}
		facts.JobTitle = ptr(v)
		return true

	case TopicEmployerName:
		v := strings.TrimSpace(userText)
		if len(v) < 2 {
			return false
		}
		facts.EmployerName = ptr(v)
		return true

	case TopicCommuteMinutes:
		m, ok := parseMinutes(userText)
		if !ok || m < 0 {
			return false
		}
		facts.CommuteMinutes = ptr(m)
		return true

	case TopicEmploymentMonths:
		m, ok := parseMonths(userText)
		if !ok || m < 0 {
			return false
		}
		facts.EmploymentMonths = ptr(m)
		return true

	case TopicResidenceType:
		v, ok := parseResidenceType(userText)
		if !ok {
			return false
		}
		facts.ResidenceType = ptr(v)
		return true

	case TopicResidenceMonths:
		m, ok := parseMonths(userText)
		if !ok || m < 0 {
			return false
		}
		facts.ResidenceMonths = ptr(m)
		return true

	case TopicHasDriverLicense:
		yn, ok := parseYesNo(userText)
		if !ok {
			return false
		}
		facts.HasDriverLicense = ptr(yn)
		return true

	case TopicLicenseStateMatch:
		t := normalize(userText)
		if strings.Contains(t, "in state") || strings.Contains(t, "in-state") || strings.Contains(t, "same state") {
			facts.LicenseStateMatch = ptr(true)
			return true
		}
		if strings.Contains(t, "out of state") || strings.Contains(t, "out-of-state") || strings.Contains(t, "different state") {
			facts.LicenseStateMatch = ptr(false)
			return true
		}
		// Fallback: a bare yes is taken to mean in-state.
		if yn, ok := parseYesNo(userText); ok {
			facts.LicenseStateMatch = ptr(yn)
			return true
		}
		return false

	case TopicBornInState:
		yn, ok := parseYesNo(userText)
		if !ok {
			return false
		}
		facts.BornInState = ptr(yn)
		return true

	case TopicSpouseCosigner:
		yn, ok := parseYesNo(userText)
		if !ok {
			return false
		}
		facts.SpouseCosigner = ptr(yn)
		return true

	case TopicPayFrequency:
		f, ok := parsePayFrequency(userText)
		if !ok {
			return false
		}
		facts.PayFrequency = ptr(f)
		return true

	case TopicIncomeAmount:
		n, ok := parseMoney(userText)
		if !ok || n <= 0 {
			return false
		}
		facts.IncomeAmount = ptr(n)
		return true

	case TopicRentAmount, TopicCellPhoneBill, TopicSubscriptionsBill,
		TopicWaterBill, TopicElectricBill, TopicWifiBill:
		return parseBill(topic, userText, facts)

	case TopicEatOutFrequency:
		f, ok := parseEatOutFrequency(userText)
		if !ok {
			return false
		}
		facts.EatOutFrequency = ptr(f)
		return true

	case TopicEatOutSpendWeekly:
		n, ok := parseMoney(userText)
		if !ok {
			facts.Warnings.Add("eat_out_non_numeric")
			facts.EatOutSpendWeekly = ptr(0.0)
			return true
		}
		facts.EatOutSpendWeekly = ptr(max(0, n))
		return true

	case TopicGroceriesSpendWeekly:
		n, ok := parseMoney(userText)
		if !ok {
			facts.Warnings.Add("groceries_non_numeric")
			facts.GroceriesSpendWeekly = ptr(0.0)
			return true
		}
		facts.GroceriesSpendWeekly = ptr(max(0, n))
		return true

	case TopicDownPayment:
		n, ok := parseMoney(userText)
		if !ok || n < 0 {
			return false
		}
		facts.DownPayment = ptr(n)
		return true

	case TopicCreditImportance:
		n, ok := parseCreditImportance(userText)
		if !ok {
			return false
		}
		facts.CreditImportance = ptr(n)
		return true

	case TopicCreditBelowReason:
		v := strings.TrimSpace(userText)
		if len(v) < 3 {
			return false
		}
		facts.CreditBelowReason = ptr(v)
		return true

	case TopicPriorAutoFinancing:
		c, ok := parseChoiceLetter(userText, "ABCD")
		if !ok {
			return false
		}
		facts.PriorAutoFinancing = ptr(letterChoice(c, priorAutoFinancingLabels))
		return true

	case TopicVehiclePriority:
		c, ok := parseChoiceLetter(userText, "ABCDE")
		if !ok {
			return false
		}
		facts.VehiclePriority = ptr(letterChoice(c, vehiclePriorityLabels))
		return true

	case TopicBadDealDefinition:
		c, ok := parseChoiceLetter(userText, "ABCD")
		if !ok {
			return false
		}
		facts.BadDealDefinition = ptr(letterChoice(c, badDealDefinitionLabels))
		return true

	case TopicVehicleBenefit:
		c, ok := parseChoiceLetter(userText, "ABCD")
		if !ok {
			return false
		}
		facts.VehicleBenefit = ptr(letterChoice(c, vehicleBenefitLabels))
		return true

	case TopicMechanicalFailurePlan:
		c, ok := parseScenarioChoice(userText)
		if !ok {
			return false
		}
		facts.MechanicalFailurePlan = ptr(letterChoice(c, mechanicalFailureLabels))
		return true

	case TopicSupportSystem:
		yn, ok := parseYesNo(userText)
		if !ok {
			return false
		}
		facts.SupportSystem = ptr(yn)
		return true

	case TopicVehicleReferenceAvailable:
		yn, ok := parseYesNo(userText)
		if !ok {
			return false
		}
		facts.VehicleReferenceAvailable = ptr(yn)
		if !yn {
			facts.VehicleReferenceRelation = nil
		}
		return true

	case TopicVehicleReferenceRelation:
		if facts.VehicleReferenceAvailable != nil && !*facts.VehicleReferenceAvailable {
			facts.VehicleReferenceRelation = nil
			return true
		}
		v := strings.TrimSpace(userText)
		if len(v) < 2 {
			return false
		}
		facts.VehicleReferenceRelation = ptr(v)
		return true

	default:
		return false
	}
}

// parseBill coerces a bill answer to a number, never failing: unparseable
// input becomes 0 plus a bill_non_numeric_<topic> tag, negative amounts
// become 0 plus a bill_negative_<topic> tag.
func parseBill(topic Topic, userText string, facts *Facts) bool {
	n, ok := parseMoney(userText)
	if !ok {
		facts.Warnings.Add("bill_non_numeric_" + string(topic))
		n = 0
	} else if n < 0 {
		facts.Warnings.Add("bill_negative_" + string(topic))
		n = 0
	}
	v := ptr(n)
	switch topic {
	case TopicRentAmount:
		facts.RentAmount = v
	case TopicCellPhoneBill:
		facts.CellPhoneBill = v
	case TopicSubscriptionsBill:
		facts.SubscriptionsBill = v
	case TopicWaterBill:
		facts.WaterBill = v
	case TopicElectricBill:
		facts.ElectricBill = v
	case TopicWifiBill:
		facts.WifiBill = v
	}
	return true
}
