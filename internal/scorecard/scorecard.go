// Package scorecard evaluates a metrics snapshot against the configured
// thresholds and derives a verdict. Every comparison is tri-state: a missing
// value or an unconfigured threshold yields unknown rather than fail.
package scorecard

import (
	"strconv"

	"invest-assistant/internal/rules"
	"invest-assistant/internal/types"
)

const (
	opLE = "<="
	opGE = ">="
)

// fmtRule renders a threshold as display text, empty when unconfigured.
func fmtRule(op string, th *float64) string {
	if th == nil {
		return ""
	}
	return op + " " + strconv.FormatFloat(*th, 'g', -1, 64)
}

// ratioPass compares value against threshold. Unknown (nil) when either side
// is missing.
func ratioPass(value *float64, op string, th *float64) *bool {
	if value == nil || th == nil {
		return nil
	}
	var ok bool
	switch op {
	case opLE:
		ok = *value <= *th
	case opGE:
		ok = *value >= *th
	}
	return &ok
}

func item(metric string, value *float64, op string, th *float64) types.ScoreItem {
	return types.ScoreItem{
		Metric: metric,
		Value:  value,
		Rule:   fmtRule(op, th),
		Passed: ratioPass(value, op, th),
	}
}

// Build evaluates one snapshot against one rule set. A nil rule set behaves
// like an empty one: every category passes vacuously.
func Build(m types.Metrics, rs *rules.RuleSet) types.Scorecard {
	if rs == nil {
		rs = &rules.RuleSet{}
	}

	sc := types.Scorecard{
		Valuation: []types.ScoreItem{
			item("P/E", m.PE, opLE, rules.Threshold(rs.Valuation, "pe_max")),
			item("EV/EBIT", m.EVEBIT, opLE, rules.Threshold(rs.Valuation, "ev_ebit_max")),
			item("EV/Sales", m.EVSales, opLE, rules.Threshold(rs.Valuation, "ev_sales_max")),
		},
		Quality: []types.ScoreItem{
			item("ROIC (%)", m.ROIC, opGE, rules.Threshold(rs.Quality, "roic_min")),
			item("EBIT margin (%)", m.EbitMargin, opGE, rules.Threshold(rs.Quality, "ebit_margin_min")),
			item("Gross margin (%)", m.GrossMargin, opGE, rules.Threshold(rs.Quality, "gross_margin_min")),
		},
		Growth: []types.ScoreItem{
			item("Revenue CAGR 5y (%)", m.RevenueCAGR5Y, opGE, rules.Threshold(rs.Growth, "revenue_cagr_5y_min")),
			item("EBIT CAGR 5y (%)", m.EbitCAGR5Y, opGE, rules.Threshold(rs.Growth, "ebit_cagr_5y_min")),
		},
		Health: []types.ScoreItem{
			item("Net debt / EBITDA", m.NetDebtEbitda, opLE, rules.Threshold(rs.Health, "net_debt_ebitda_max")),
			item("Interest coverage (x)", m.InterestCoverage, opGE, rules.Threshold(rs.Health, "interest_coverage_min")),
		},
		Dividend: []types.ScoreItem{
			item("Payout ratio (%)", m.PayoutRatio, opLE, rules.Threshold(rs.Dividend, "payout_max")),
			item("Dividend stability (yrs)", m.DividendStabilityYears, opGE, rules.Threshold(rs.Dividend, "dividend_stability_min_years")),
		},
		Signals: []types.ScoreItem{
			item("Rule of 40", m.RuleOf40, opGE, rules.Threshold(rs.Signals, "rule_of_40_min")),
		},
	}

	sc.OverallPass = groupPass(sc.Valuation) &&
		groupPass(sc.Quality) &&
		groupPass(sc.Growth) &&
		groupPass(sc.Health) &&
		groupPass(sc.Dividend) &&
		groupPass(sc.Signals)

	return sc
}

// groupPass aggregates one category. Only items with a configured rule count:
// none configured is a vacuous pass, otherwise at least one explicit pass is
// required and any explicit fail sinks the group. Unknowns carry no weight,
// so a category whose configured items are all unknown does not pass.
func groupPass(items []types.ScoreItem) bool {
	anyChecked, anyTrue, anyFalse := false, false, false
	for _, it := range items {
		if it.Rule == "" {
			continue
		}
		anyChecked = true
		if it.Passed != nil {
			if *it.Passed {
				anyTrue = true
			} else {
				anyFalse = true
			}
		}
	}
	if !anyChecked {
		return true
	}
	return anyTrue && !anyFalse
}

// explicitFail reports whether any rule-configured item in the category
// failed outright. Unknowns do not count.
func explicitFail(items []types.ScoreItem) bool {
	for _, it := range items {
		if it.Rule != "" && it.Passed != nil && !*it.Passed {
			return true
		}
	}
	return false
}

// ThesisAndVerdict maps a scorecard to a one-line thesis and a verdict label.
// HOLD is reserved for the watch-the-price case: quality and growth intact,
// valuation over the configured limits.
func ThesisAndVerdict(sc types.Scorecard) (string, string) {
	if sc.OverallPass {
		return "The company clears your core thresholds for valuation, quality and growth. " +
			"Given the configured parameters the case looks attractive.", types.VerdictBuy
	}
	if !explicitFail(sc.Quality) && !explicitFail(sc.Growth) && explicitFail(sc.Valuation) {
		return "Quality and growth look solid, but the valuation is above your limits. " +
			"Keep it on the watchlist and wait for a better price.", types.VerdictHold
	}
	return "The company does not meet enough of the configured criteria, or key data " +
		"needed for an assessment is missing.", types.VerdictAvoid
}
