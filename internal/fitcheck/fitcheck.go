// Package fitcheck evaluates completed applicant facts against the dealer's
// preference thresholds. The rules are CEL expressions compiled once at
// startup; each matching rule contributes one advisory fit tag that the risk
// analysis sees alongside the interview warnings.
package fitcheck

import (
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/interview"
	"github.com/vetta-app/vetta/internal/models"
)

const costLimit = 1_000_000

// rule pairs a fit tag with the CEL expression that triggers it. Expressions
// see two dynamic variables: facts (the applicant's answers) and prefs (the
// dealer settings). Missing keys are guarded with `in` checks because facts
// only contains answered topics.
type rule struct {
	tag  string
	expr string
}

var rules = []rule{
	{
		tag:  "fit_low_down_payment",
		expr: `'down_payment' in facts && double(facts.down_payment) < double(prefs.min_down_payment)`,
	},
	{
		tag:  "fit_short_employment",
		expr: `'employment_months' in facts && int(facts.employment_months) < int(prefs.min_employment_months)`,
	},
	{
		tag:  "fit_short_residence",
		expr: `'residence_months' in facts && int(facts.residence_months) < int(prefs.min_residence_months)`,
	},
	{
		tag: "fit_no_valid_license",
		expr: `bool(prefs.require_valid_driver_license) &&
			'has_driver_license' in facts && facts.has_driver_license == false`,
	},
	{
		tag: "fit_license_out_of_state",
		expr: `bool(prefs.require_valid_driver_license) &&
			'license_state_match' in facts && facts.license_state_match == false`,
	},
	{
		tag: "fit_payment_to_income_high",
		expr: `'income_amount' in facts && 'pay_frequency' in facts && 'rent_amount' in facts &&
			double(facts.income_amount) > 0.0 &&
			double(facts.rent_amount) / (double(facts.income_amount) * checks_per_month(string(facts.pay_frequency))) > double(prefs.max_pti_ratio)`,
	},
}

// Checker holds the compiled rule programs.
type Checker struct {
	programs []compiledRule
	logger   *slog.Logger
}

type compiledRule struct {
	tag     string
	program cel.Program
}

// New compiles the rule set. Compilation failures are programmer errors and
// surface immediately at startup.
func New(logger *slog.Logger) (*Checker, error) {
	env, err := cel.NewEnv(
		cel.Variable("facts", cel.DynType),
		cel.Variable("prefs", cel.DynType),
		checksPerMonthFunc(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create CEL environment")
	}

	programs := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, issues := env.Compile(r.expr)
		if issues != nil && issues.Err() != nil {
			return nil, errors.Wrap(issues.Err(), "compile rule", slog.String("tag", r.tag))
		}
		program, err := env.Program(ast, cel.CostLimit(costLimit))
		if err != nil {
			return nil, errors.Wrap(err, "create rule program", slog.String("tag", r.tag))
		}
		programs = append(programs, compiledRule{tag: r.tag, program: program})
	}

	return &Checker{
		programs: programs,
		logger:   logger.With("source", "fitcheck"),
	}, nil
}

// checksPerMonthFunc converts a pay frequency to paychecks per month, so the
// PTI rule can compare a monthly obligation against monthly income.
func checksPerMonthFunc() cel.EnvOption {
	return cel.Function("checks_per_month",
		cel.Overload("checks_per_month_string", []*cel.Type{cel.StringType}, cel.DoubleType,
			cel.UnaryBinding(func(v ref.Val) ref.Val {
				s, _ := v.Value().(string)
				switch s {
				case interview.PayWeekly:
					return types.Double(4.0)
				case interview.PayBiweekly:
					return types.Double(2.0)
				default:
					return types.Double(1.0)
				}
			}),
		),
	)
}

// Evaluate runs every rule against the facts and dealer settings and returns
// the tags of the rules that matched, in rule order. A rule that errors at
// eval time (missing or oddly typed fact) is skipped, not fatal.
func (c *Checker) Evaluate(facts map[string]any, settings *models.DealerSettings) []string {
	prefs := map[string]any{
		"max_pti_ratio":                settings.MaxPTIRatio,
		"require_valid_driver_license": settings.RequireValidDriverLicense,
		"min_down_payment":             settings.MinDownPayment,
		"min_residence_months":         settings.MinResidenceMonths,
		"min_employment_months":        settings.MinEmploymentMonths,
	}
	input := map[string]any{
		"facts": facts,
		"prefs": prefs,
	}

	var tags []string
	for _, compiled := range c.programs {
		out, _, err := compiled.program.Eval(input)
		if err != nil {
			c.logger.Debug("fit rule skipped", slog.String("tag", compiled.tag), errors.SlogError(err))
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			tags = append(tags, compiled.tag)
		}
	}
	return tags
}
