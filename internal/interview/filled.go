package interview

import "strings"

// IsFactFilled reports whether a topic no longer needs to be asked, either
// because an acceptable value is stored or because a skip rule applies.
//
// Skip rules: living with family skips the utility bills, "never" eating out
// skips the eat-out spend question, and any other eat-out frequency skips the
// groceries question.
func IsFactFilled(topic Topic, facts *Facts) bool {
	if facts.ResidenceType != nil && *facts.ResidenceType == ResidenceFamily {
		switch topic {
		case TopicWaterBill, TopicElectricBill, TopicWifiBill:
			return true
		}
	}

	if topic == TopicEatOutSpendWeekly &&
		facts.EatOutFrequency != nil && *facts.EatOutFrequency == EatOutNever {
		return true
	}
	if topic == TopicGroceriesSpendWeekly &&
		facts.EatOutFrequency != nil && *facts.EatOutFrequency != EatOutNever {
		return true
	}

	switch topic {
	case TopicJobTitle:
		return stringFilled(facts.JobTitle, 2)
	case TopicEmployerName:
		return stringFilled(facts.EmployerName, 2)
	case TopicCreditBelowReason:
		return stringFilled(facts.CreditBelowReason, 2)

	case TopicMechanicalFailurePlan:
		return stringFilled(facts.MechanicalFailurePlan, 1)
	case TopicPriorAutoFinancing:
		return stringFilled(facts.PriorAutoFinancing, 1)
	case TopicVehiclePriority:
		return stringFilled(facts.VehiclePriority, 1)
	case TopicBadDealDefinition:
		return stringFilled(facts.BadDealDefinition, 1)
	case TopicVehicleBenefit:
		return stringFilled(facts.VehicleBenefit, 1)

	case TopicCommuteMinutes:
		return facts.CommuteMinutes != nil && *facts.CommuteMinutes >= 0
	case TopicEmploymentMonths:
		return facts.EmploymentMonths != nil && *facts.EmploymentMonths >= 0
	case TopicResidenceMonths:
		return facts.ResidenceMonths != nil && *facts.ResidenceMonths >= 0

	case TopicPayFrequency:
		if facts.PayFrequency == nil {
			return false
		}
		f := *facts.PayFrequency
		return f == PayWeekly || f == PayBiweekly || f == PayMonthly

	case TopicIncomeAmount:
		return facts.IncomeAmount != nil
	case TopicRentAmount:
		return facts.RentAmount != nil
	case TopicCellPhoneBill:
		return facts.CellPhoneBill != nil
	case TopicSubscriptionsBill:
		return facts.SubscriptionsBill != nil
	case TopicWaterBill:
		return facts.WaterBill != nil
	case TopicElectricBill:
		return facts.ElectricBill != nil
	case TopicWifiBill:
		return facts.WifiBill != nil
	case TopicDownPayment:
		return facts.DownPayment != nil
	case TopicCreditImportance:
		return facts.CreditImportance != nil
	case TopicEatOutSpendWeekly:
		return facts.EatOutSpendWeekly != nil
	case TopicGroceriesSpendWeekly:
		return facts.GroceriesSpendWeekly != nil

	case TopicEatOutFrequency:
		if facts.EatOutFrequency == nil {
			return false
		}
		f := *facts.EatOutFrequency
		return f == EatOutNever || f == EatOutOneToTwo || f == EatOutThreeFive || f == EatOutSixOrMore

	case TopicResidenceType:
		if facts.ResidenceType == nil {
			return false
		}
		r := *facts.ResidenceType
		return r == ResidenceRent || r == ResidenceOwn || r == ResidenceFamily

	case TopicHasDriverLicense:
		return facts.HasDriverLicense != nil
	case TopicLicenseStateMatch:
		return facts.LicenseStateMatch != nil
	case TopicBornInState:
		return facts.BornInState != nil
	case TopicSpouseCosigner:
		return facts.SpouseCosigner != nil
	case TopicSupportSystem:
		return facts.SupportSystem != nil

	case TopicVehicleReferenceAvailable:
		return facts.VehicleReferenceAvailable != nil

	case TopicVehicleReferenceRelation:
		if facts.VehicleReferenceAvailable != nil && !*facts.VehicleReferenceAvailable {
			return true
		}
		return stringFilled(facts.VehicleReferenceRelation, 2)

	default:
		return false
	}
}

func stringFilled(v *string, minLen int) bool {
	return v != nil && len(strings.TrimSpace(*v)) >= minLen
}

// NextMissingTopic returns the first topic in flow order that still needs an
// answer, or "" when the interview is complete. Utility bills are skipped
// entirely when the applicant lives with family.
func NextMissingTopic(facts *Facts) Topic {
	family := facts.ResidenceType != nil && *facts.ResidenceType == ResidenceFamily
	for _, t := range flow {
		if family {
			switch t {
			case TopicWaterBill, TopicElectricBill, TopicWifiBill:
				continue
			}
		}
		if !IsFactFilled(t, facts) {
			return t
		}
	}
	return ""
}
