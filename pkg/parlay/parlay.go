package parlay

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Combine multiplies valid legs' decimal odds into overall payout metrics.
// Each leg must carry a non-null decimal value (use LegParseResult.Valid).
// A combined price must represent genuine positive-profit odds, so an
// empty list or a product <= 1 fails the whole operation.
func Combine(stake decimal.Decimal, legs []models.ParsedLeg) (*models.ParlayMetrics, error) {
	if !stake.IsPositive() {
		return nil, fmt.Errorf("stake must be positive: %s", stake.String())
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("no valid legs to combine")
	}

	combined := one
	for _, leg := range legs {
		if leg.Decimal == nil {
			return nil, fmt.Errorf("leg %d has no decimal odds", leg.ID)
		}
		combined = combined.Mul(*leg.Decimal)
	}
	if combined.LessThanOrEqual(one) {
		return nil, fmt.Errorf("combined decimal not a positive-profit price: %s", combined.String())
	}

	potentialReturn := stake.Mul(combined)
	return &models.ParlayMetrics{
		Stake:           stake,
		CombinedDecimal: combined,
		ImpliedProb:     one.Div(combined),
		PotentialReturn: potentialReturn,
		Profit:          potentialReturn.Sub(stake),
	}, nil
}

// FairParlayProbability multiplies each leg's no-vig probability into the
// fair probability of the whole wager. Every leg must supply two-sided
// data; a single leg without it fails the whole computation.
func FairParlayProbability(legs []models.ParsedLeg) (decimal.Decimal, error) {
	if len(legs) == 0 {
		return decimal.Zero, fmt.Errorf("no legs for fair probability")
	}

	fair := one
	for _, leg := range legs {
		if !leg.HasOpponentOdds {
			return decimal.Zero, fmt.Errorf("leg %d has no opponent odds", leg.ID)
		}
		yourOdds, ok := ParseAmerican(leg.YourOdds)
		if !ok {
			return decimal.Zero, fmt.Errorf("leg %d has invalid odds", leg.ID)
		}
		oppOdds, ok := ParseAmerican(leg.OpponentOdds)
		if !ok {
			return decimal.Zero, fmt.Errorf("leg %d has invalid opponent odds", leg.ID)
		}
		analysis, err := AnalyzeMarket(yourOdds, oppOdds)
		if err != nil {
			return decimal.Zero, fmt.Errorf("leg %d: %w", leg.ID, err)
		}
		fair = fair.Mul(analysis.FairProb)
	}

	return fair, nil
}

// ExpectedValue computes the classical expectation of a wager priced at
// the book's number but occurring at the fair (true) rate. Profit is the
// profit from the quoted odds, not the fair ones.
func ExpectedValue(stake, profit, fairProb decimal.Decimal) (*models.EVAnalysis, error) {
	if !stake.IsPositive() {
		return nil, fmt.Errorf("stake must be positive: %s", stake.String())
	}
	if !fairProb.IsPositive() || fairProb.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("fair probability out of range: %s", fairProb.String())
	}

	ev := fairProb.Mul(profit).Sub(one.Sub(fairProb).Mul(stake))
	fairDecimal := one.Div(fairProb)

	return &models.EVAnalysis{
		FairProb:    fairProb,
		FairDecimal: fairDecimal,
		EV:          ev,
		// Return-on-stake percentage, comparable across stake sizes.
		EVPct: ev.Div(stake).Mul(hundred).InexactFloat64(),
	}, nil
}

// ParlayEdge mirrors the single-market house-edge formula over the full
// aggregate: 1 - actual/fair.
func ParlayEdge(actualCombined, fairCombined decimal.Decimal) (float64, error) {
	if fairCombined.LessThanOrEqual(one) {
		return 0, fmt.Errorf("invalid fair combined decimal: %s", fairCombined.String())
	}
	return 1 - actualCombined.Div(fairCombined).InexactFloat64(), nil
}

// PricingScale compares a book-quoted total decimal price against the
// independence-assumption baseline. A single-leg wager has no combination
// price to compare, so at least two valid legs are required.
func PricingScale(legs []models.ParsedLeg, quoted decimal.Decimal) (*models.PricingScaleResult, error) {
	if len(legs) < 2 {
		return nil, fmt.Errorf("pricing scale needs at least 2 legs, got %d", len(legs))
	}
	if quoted.LessThanOrEqual(one) {
		return nil, fmt.Errorf("quoted decimal must be > 1: %s", quoted.String())
	}

	independent := one
	for _, leg := range legs {
		if leg.Decimal == nil {
			return nil, fmt.Errorf("leg %d has no decimal odds", leg.ID)
		}
		independent = independent.Mul(*leg.Decimal)
	}

	return &models.PricingScaleResult{
		IndependentDecimal: independent,
		QuotedDecimal:      quoted,
		AdjustmentPct:      quoted.Div(independent).Sub(one).Mul(hundred).InexactFloat64(),
	}, nil
}
