package interview

import "strings"

// Topic is one named slot in the fixed interview sequence.
type Topic string

const (
	TopicJobTitle         Topic = "job_title"
	TopicEmployerName     Topic = "employer_name"
	TopicCommuteMinutes   Topic = "commute_minutes"
	TopicEmploymentMonths Topic = "employment_months"

	TopicResidenceType   Topic = "residence_type"
	TopicResidenceMonths Topic = "residence_months"

	TopicHasDriverLicense  Topic = "has_driver_license"
	TopicLicenseStateMatch Topic = "license_state_match"

	TopicBornInState Topic = "born_in_state"

	TopicSpouseCosigner Topic = "spouse_cosigner"

	TopicPayFrequency Topic = "pay_frequency"
	TopicIncomeAmount Topic = "income_amount"

	TopicRentAmount        Topic = "rent_amount"
	TopicCellPhoneBill     Topic = "cell_phone_bill"
	TopicSubscriptionsBill Topic = "subscriptions_bill"
	TopicWaterBill         Topic = "water_bill"
	TopicElectricBill      Topic = "electric_bill"
	TopicWifiBill          Topic = "wifi_bill"

	TopicEatOutFrequency      Topic = "eat_out_frequency"
	TopicEatOutSpendWeekly    Topic = "eat_out_spend_weekly"
	TopicGroceriesSpendWeekly Topic = "groceries_spend_weekly"

	TopicDownPayment Topic = "down_payment"

	TopicCreditImportance  Topic = "credit_importance"
	TopicCreditBelowReason Topic = "credit_below_reason"

	TopicPriorAutoFinancing Topic = "prior_auto_financing"
	TopicVehiclePriority    Topic = "vehicle_priority"
	TopicBadDealDefinition  Topic = "bad_deal_definition"
	TopicVehicleBenefit     Topic = "vehicle_benefit"

	TopicMechanicalFailurePlan Topic = "mechanical_failure_plan"
	TopicSupportSystem         Topic = "support_system"

	TopicVehicleReferenceAvailable Topic = "vehicle_reference_available"
	TopicVehicleReferenceRelation  Topic = "vehicle_reference_relation"
)

// flow is the locked stability-first baseline ordering. Conditional skip rules
// are layered on top by NextMissingTopic.
var flow = []Topic{
	TopicJobTitle,
	TopicEmployerName,
	TopicCommuteMinutes,
	TopicEmploymentMonths,

	TopicResidenceType,
	TopicResidenceMonths,

	TopicHasDriverLicense,
	TopicLicenseStateMatch,

	TopicBornInState,

	TopicSpouseCosigner,

	TopicPayFrequency,
	TopicIncomeAmount,

	TopicRentAmount,
	TopicCellPhoneBill,
	TopicSubscriptionsBill,
	TopicWaterBill,
	TopicElectricBill,
	TopicWifiBill,

	TopicEatOutFrequency,
	TopicEatOutSpendWeekly,
	TopicGroceriesSpendWeekly,

	TopicDownPayment,

	TopicCreditImportance,
	TopicCreditBelowReason,

	TopicPriorAutoFinancing,
	TopicVehiclePriority,
	TopicBadDealDefinition,
	TopicVehicleBenefit,

	TopicMechanicalFailurePlan,
	TopicSupportSystem,

	TopicVehicleReferenceAvailable,
	TopicVehicleReferenceRelation,
}

// Flow returns the fixed interview topic ordering.
func Flow() []Topic {
	return append([]Topic(nil), flow...)
}

// IsTopic reports whether t is one of the flow topics.
func IsTopic(t Topic) bool {
	for _, candidate := range flow {
		if candidate == t {
			return true
		}
	}
	return false
}

// ScenarioLeadIn is sent as a standalone assistant message right before the
// mechanical failure question, splitting the scenario into two turns.
const ScenarioLeadIn = "We all know vehicles don’t run forever and they have a funny way of surprising us when we least expect it."

// ClosingMessage ends the interview once every topic is filled.
const ClosingMessage = "Thanks — that’s everything I needed."

// QuestionFor renders the question text for a topic. The multiple-choice
// canonical labels are stored into facts verbatim, so the wording here is
// load-bearing. Unknown topics yield an empty string.
func QuestionFor(topic Topic, _ *Facts) string {
	switch topic {
	case TopicJobTitle:
		return "What’s your current job title?"
	case TopicEmployerName:
		return "What’s the name of your employer (company name)?"
	case TopicCommuteMinutes:
		return "About how long is your commute from home to work (in minutes)?"
	case TopicEmploymentMonths:
		return "How long have you been at this job?"

	case TopicResidenceType:
		return "Do you rent, own, or live with family?"
	case TopicResidenceMonths:
		return "How long have you lived at your current place?"

	case TopicHasDriverLicense:
		return "Do you have a valid driver’s license right now?"
	case TopicLicenseStateMatch:
		return "Is your driver’s license in-state or out-of-state?"

	case TopicBornInState:
		return "Were you born in the same state as this dealership is located?"

	case TopicSpouseCosigner:
		return "If needed, do you have a spouse that can go on the loan with you?"

	case TopicPayFrequency:
		return "Do you get paid weekly, bi-weekly, or monthly?"
	case TopicIncomeAmount:
		return "About how much do you bring home each paycheck after taxes?"

	case TopicRentAmount:
		return "How much is your rent or mortgage each month?"
	case TopicCellPhoneBill:
		return "About how much is your cell phone bill each month?"
	case TopicSubscriptionsBill:
		return "About how much do you spend on subscriptions each month?"

	case TopicWaterBill:
		return "About how much is your water bill each month?"
	case TopicElectricBill:
		return "About how much is your electric bill each month?"
	case TopicWifiBill:
		return "About how much is your Wi-Fi bill each month?"

	case TopicEatOutFrequency:
		return "How often do you eat out each week?"
	case TopicEatOutSpendWeekly:
		return "About how much do you spend eating out per week?"
	case TopicGroceriesSpendWeekly:
		return "About how much do you spend on groceries per week?"

	case TopicDownPayment:
		return "How much can you put down today if everything looks good?"

	case TopicCreditImportance:
		return "How important is building credit to you on a scale of 1–10?"
	case TopicCreditBelowReason:
		return "What would you say is the main reason your credit is below standard?"

	case TopicPriorAutoFinancing:
		return strings.Join([]string{
			"Have you ever financed a vehicle through a dealership or auto loan before?",
			"",
			"A) Yes — and I paid it off successfully",
			"B) Yes — but I had some late payments",
			"C) Yes — but I was unable to finish paying it off and the vehicle was eventually repossessed",
			"D) No — this would be my first time financing a vehicle",
			"",
			"Reply with A, B, C, or D.",
		}, "\n")

	case TopicVehiclePriority:
		return strings.Join([]string{
			"When getting a vehicle, what matters most to you?",
			"",
			"A) Having reliable transportation so I can work and handle my responsibilities",
			"B) Being able to keep the vehicle long term",
			"C) Getting the lowest possible monthly payment",
			"D) Getting the lowest interest rate possible",
			"E) Getting approved today so I can move forward with my responsibilities",
			"",
			"Reply with A, B, C, D, or E.",
		}, "\n")

	case TopicBadDealDefinition:
		return strings.Join([]string{
			"What would make a vehicle a bad deal for you personally?",
			"",
			"A) Payments I know I cannot realistically keep up with",
			"B) A vehicle that is unreliable",
			"C) Something that prevents me from handling my daily responsibilities",
			"D) A vehicle with a high payment and high interest that I cannot manage",
			"",
			"Reply with A, B, C, or D.",
		}, "\n")

	case TopicVehicleBenefit:
		return strings.Join([]string{
			"If you were approved today, how would having this vehicle help you most?",
			"",
			"A) Help me get to work consistently",
			"B) Help me support my family",
			"C) Help me improve my financial stability",
			"D) Help me handle important daily responsibilities",
			"",
			"Reply with A, B, C, or D.",
		}, "\n")

	case TopicMechanicalFailurePlan:
		// Second message only, the lead-in sentence goes out as its own ack.
		return strings.Join([]string{
			"Let’s say your car needs a repair and your payment is due next week. What would you do?",
			"",
			"A) Take responsibility to get the car fixed",
			"B) Call us to see if we can fix it",
			"C) Drive until a tow is needed",
			"D) Give the car back",
			"",
			"Reply with A, B, C, or D.",
		}, "\n")

	case TopicSupportSystem:
		return "Do you have a support system (family/friends) that could help you stay on track if something unexpected happened?"

	case TopicVehicleReferenceAvailable:
		return "Do you have at least one reference contact the dealership could call if needed?"
	case TopicVehicleReferenceRelation:
		return "Okay — what is their relationship to you?"

	default:
		return ""
	}
}

// AckFor returns the short acknowledgment preceding the next question.
func AckFor(topic Topic) string {
	switch topic {
	case TopicCreditBelowReason:
		return "Thanks for sharing."
	default:
		return "Got it."
	}
}

// ClarifyExplain maps a topic to the plain-language hint shown alongside a
// repeated question after a failed or confused answer.
func ClarifyExplain(topic Topic) string {
	switch topic {
	case TopicJobTitle:
		return "Just a quick title is fine — for example: manager, cashier, driver, warehouse, etc."
	case TopicEmployerName:
		return "Just the company name is fine."
	case TopicCommuteMinutes:
		return "Just an estimate like “15 minutes” or “1 hour.”"
	case TopicEmploymentMonths:
		return "Quick estimate is fine — like “6 months” or “2 years.”"
	case TopicResidenceMonths:
		return "Quick estimate is fine — like “8 months” or “3 years.”"
	case TopicLicenseStateMatch:
		return "Just tell me in-state or out-of-state."
	case TopicPayFrequency:
		return "Just pick one: weekly, bi-weekly, or monthly."
	case TopicIncomeAmount:
		return "Just an estimate of your take-home per paycheck."
	case TopicCreditImportance:
		return "Just give me a number from 1 to 10."
	case TopicMechanicalFailurePlan, TopicPriorAutoFinancing, TopicBadDealDefinition, TopicVehicleBenefit:
		return "Just reply with A, B, C, or D (or type the option)."
	case TopicVehiclePriority:
		return "Just reply with A, B, C, D, or E (or type the option)."
	case TopicVehicleReferenceAvailable:
		return "Just reply Yes or No."
	case TopicVehicleReferenceRelation:
		return "Just tell me how they’re connected to you — parent, spouse, sibling, friend, etc."
	case TopicEatOutFrequency:
		return "You can answer like: never, 1, 2, 3, 5, daily, etc."
	default:
		return "No worries — quick answer is fine."
	}
}
