package interview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetta-app/vetta/internal/interview"
)

func userSaid(text string) []interview.Message {
	return []interview.Message{
		{Role: interview.RoleAssistant, Content: "…", Kind: interview.KindQ},
		{Role: interview.RoleUser, Content: text},
	}
}

func TestTurn_boot(t *testing.T) {
	t.Parallel()

	resp := interview.Turn(interview.TurnRequest{})
	assert.Equal(t, interview.ActionAsk, resp.Action)
	assert.Empty(t, resp.Ack)
	assert.Empty(t, resp.NextQuestion)
}

func TestTurn_firstAnswerAdvances(t *testing.T) {
	t.Parallel()

	req := interview.TurnRequest{
		Messages:  userSaid("warehouse associate"),
		LastTopic: interview.TopicJobTitle,
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionAsk, resp.Action)
	assert.Equal(t, "Got it.", resp.Ack)
	assert.Equal(t, interview.TopicEmployerName, resp.NextTopic)
	assert.Equal(t, interview.QuestionFor(interview.TopicEmployerName, &resp.Facts), resp.NextQuestion)
	require.NotNil(t, resp.Facts.JobTitle)
	assert.Equal(t, "warehouse associate", *resp.Facts.JobTitle)
	assert.True(t, resp.Facts.Warnings.Contains("job_low_wage_title_signal"))
}

func TestTurn_questionTextFallback(t *testing.T) {
	t.Parallel()

	// No explicit topic tag: the engine resolves it from the question text.
	req := interview.TurnRequest{
		Messages:          userSaid("I rent"),
		LastQuestionAsked: interview.QuestionFor(interview.TopicResidenceType, &interview.Facts{}),
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionAsk, resp.Action)
	require.NotNil(t, resp.Facts.ResidenceType)
	assert.Equal(t, interview.ResidenceRent, *resp.Facts.ResidenceType)
}

func TestTurn_confusionClarifies(t *testing.T) {
	t.Parallel()

	memory := interview.Memory{Facts: interview.Facts{JobTitle: strp("cashier")}}
	req := interview.TurnRequest{
		Messages:  userSaid("idk"),
		LastTopic: interview.TopicIncomeAmount,
		Memory:    memory,
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionClarify, resp.Action)
	assert.Empty(t, resp.Ack)
	assert.Equal(t, "Just an estimate of your take-home per paycheck.", resp.Explain)
	assert.Equal(t, interview.QuestionFor(interview.TopicIncomeAmount, &resp.Facts), resp.NextQuestion)
	assert.Equal(t, interview.TopicIncomeAmount, resp.NextTopic)

	// Facts are untouched on a clarify turn.
	assert.Equal(t, memory.Facts, resp.Facts)
}

func TestTurn_parseFailureClarifies(t *testing.T) {
	t.Parallel()

	req := interview.TurnRequest{
		Messages:  userSaid("whenever they feel like paying me"),
		LastTopic: interview.TopicPayFrequency,
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionClarify, resp.Action)
	assert.Equal(t, "Just pick one: weekly, bi-weekly, or monthly.", resp.Explain)
	assert.Nil(t, resp.Facts.PayFrequency)
}

func TestTurn_billAnswerNeverClarifies(t *testing.T) {
	t.Parallel()

	req := interview.TurnRequest{
		Messages:  userSaid("a lot"),
		LastTopic: interview.TopicWaterBill,
	}
	resp := interview.Turn(req)

	require.NotEqual(t, interview.ActionClarify, resp.Action)
	require.NotNil(t, resp.Facts.WaterBill)
	assert.InDelta(t, 0, *resp.Facts.WaterBill, 0.001)
	assert.True(t, resp.Facts.Warnings.Contains("bill_non_numeric_water_bill"))
}

func TestTurn_scenarioSplitsIntoTwoMessages(t *testing.T) {
	t.Parallel()

	facts := fullFacts()
	facts.VehicleBenefit = nil
	facts.MechanicalFailurePlan = nil

	req := interview.TurnRequest{
		Messages:  userSaid("A"),
		LastTopic: interview.TopicVehicleBenefit,
		Memory:    interview.Memory{Facts: facts},
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionAsk, resp.Action)
	assert.Equal(t, interview.TopicMechanicalFailurePlan, resp.NextTopic)
	assert.Equal(t, interview.ScenarioLeadIn, resp.Ack)
	assert.Contains(t, resp.NextQuestion, "Let’s say your car needs a repair")
}

func TestTurn_scenarioAnswerAdvancesToSupportSystem(t *testing.T) {
	t.Parallel()

	facts := fullFacts()
	facts.MechanicalFailurePlan = nil
	facts.SupportSystem = nil

	req := interview.TurnRequest{
		Messages:          userSaid("A"),
		LastQuestionAsked: interview.QuestionFor(interview.TopicMechanicalFailurePlan, &facts),
		Memory:            interview.Memory{Facts: facts},
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionAsk, resp.Action)
	require.NotNil(t, resp.Facts.MechanicalFailurePlan)
	assert.Equal(t, "A - Take responsibility to get the car fixed", *resp.Facts.MechanicalFailurePlan)
	assert.Equal(t, interview.TopicSupportSystem, resp.NextTopic)
	assert.Equal(t, interview.QuestionFor(interview.TopicSupportSystem, &resp.Facts), resp.NextQuestion)
}

func TestTurn_stopWhenComplete(t *testing.T) {
	t.Parallel()

	facts := fullFacts()
	facts.VehicleReferenceRelation = nil

	req := interview.TurnRequest{
		Messages:  userSaid("my sister"),
		LastTopic: interview.TopicVehicleReferenceRelation,
		Memory:    interview.Memory{Facts: facts},
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionStop, resp.Action)
	assert.Equal(t, "Got it.", resp.Ack)
	assert.NotEmpty(t, resp.NextQuestion)
	assert.Empty(t, resp.NextTopic)
}

func TestTurn_stopDoesNotAddWarnings(t *testing.T) {
	t.Parallel()

	facts := fullFacts()
	facts.DownPayment = floatp(100) // would warn on an ask turn
	facts.VehicleReferenceRelation = nil

	req := interview.TurnRequest{
		Messages:  userSaid("my sister"),
		LastTopic: interview.TopicVehicleReferenceRelation,
		Memory:    interview.Memory{Facts: facts},
	}
	resp := interview.Turn(req)

	require.Equal(t, interview.ActionStop, resp.Action)
	assert.False(t, resp.Facts.Warnings.Contains("low_down_payment"))
}

func TestTurn_memoryNotMutated(t *testing.T) {
	t.Parallel()

	memory := interview.Memory{Facts: interview.Facts{Warnings: interview.TagSet{"existing"}}}
	req := interview.TurnRequest{
		Messages:  userSaid("a lot"),
		LastTopic: interview.TopicWaterBill,
		Memory:    memory,
	}
	resp := interview.Turn(req)

	assert.Equal(t, interview.TagSet{"existing"}, memory.Facts.Warnings, "request memory mutated")
	assert.True(t, resp.Facts.Warnings.Contains("bill_non_numeric_water_bill"))
	assert.Nil(t, memory.Facts.WaterBill)
}

// TestTurn_fullInterview walks the whole flow with valid answers and checks
// it terminates after exactly the number of non-skipped topics.
func TestTurn_fullInterview(t *testing.T) {
	t.Parallel()

	answers := map[interview.Topic]string{
		interview.TopicJobTitle:         "mechanic",
		interview.TopicEmployerName:     "City Auto",
		interview.TopicCommuteMinutes:   "20 minutes",
		interview.TopicEmploymentMonths: "2 years",

		interview.TopicResidenceType:   "I rent",
		interview.TopicResidenceMonths: "3 years",

		interview.TopicHasDriverLicense:  "yes",
		interview.TopicLicenseStateMatch: "in-state",
		interview.TopicBornInState:       "yes",
		interview.TopicSpouseCosigner:    "no",

		interview.TopicPayFrequency: "every two weeks",
		interview.TopicIncomeAmount: "$1,400",

		interview.TopicRentAmount:        "900",
		interview.TopicCellPhoneBill:     "70",
		interview.TopicSubscriptionsBill: "30",
		interview.TopicWaterBill:         "40",
		interview.TopicElectricBill:      "110",
		interview.TopicWifiBill:          "60",

		interview.TopicEatOutFrequency:   "twice a week",
		interview.TopicEatOutSpendWeekly: "$40",
		// groceries skipped: they eat out

		interview.TopicDownPayment: "$1,500",

		interview.TopicCreditImportance:  "9",
		interview.TopicCreditBelowReason: "medical bills a few years back",

		interview.TopicPriorAutoFinancing: "A",
		interview.TopicVehiclePriority:    "B",
		interview.TopicBadDealDefinition:  "C",
		interview.TopicVehicleBenefit:     "D",

		interview.TopicMechanicalFailurePlan: "A",
		interview.TopicSupportSystem:         "yes",

		interview.TopicVehicleReferenceAvailable: "yes",
		interview.TopicVehicleReferenceRelation:  "my sister",
	}

	// Boot: first ask comes from the empty-message turn in the client, the
	// engine starts once the first question is on the table.
	facts := interview.Facts{}
	topic := interview.NextMissingTopic(&facts)
	require.Equal(t, interview.TopicJobTitle, topic)

	turns := 0
	for topic != "" {
		answer, ok := answers[topic]
		require.True(t, ok, "no scripted answer for %s", topic)

		resp := interview.Turn(interview.TurnRequest{
			Messages:  userSaid(answer),
			LastTopic: topic,
			Memory:    interview.Memory{Facts: facts},
		})
		require.NotEqual(t, interview.ActionClarify, resp.Action, "unexpected clarify on %s: %s", topic, resp.Explain)

		facts = resp.Facts
		topic = resp.NextTopic
		turns++
		require.LessOrEqual(t, turns, len(answers), "interview did not terminate")
	}

	// One answered topic per turn, groceries skipped.
	assert.Equal(t, len(answers), turns)
	assert.Equal(t, interview.Topic(""), interview.NextMissingTopic(&facts))
	assert.Nil(t, facts.GroceriesSpendWeekly)
}
