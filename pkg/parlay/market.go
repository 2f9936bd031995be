package parlay

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// AnalyzeMarket derives the vig and fair price from both sides of a market.
// Either side failing the conversion guard fails the whole operation;
// partial results are never returned.
func AnalyzeMarket(yourOdds, oppOdds decimal.Decimal) (*models.MarketAnalysis, error) {
	pYou, ok := AmericanToImplied(yourOdds)
	if !ok {
		return nil, fmt.Errorf("invalid odds for your side: %s", yourOdds.String())
	}
	pOpp, ok := AmericanToImplied(oppOdds)
	if !ok {
		return nil, fmt.Errorf("invalid odds for opponent side: %s", oppOdds.String())
	}

	overround := pYou.Add(pOpp)
	if !overround.IsPositive() {
		return nil, fmt.Errorf("degenerate overround: %s", overround.String())
	}

	// Hold stays unclamped: promotional pricing can push it below zero.
	hold := overround.Sub(one)

	fairProb := pYou.Div(overround)
	if !fairProb.IsPositive() || fairProb.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("fair probability out of range: %s", fairProb.String())
	}

	fairDecimal := one.Div(fairProb)
	if fairDecimal.LessThanOrEqual(one) {
		return nil, fmt.Errorf("invalid fair decimal: %s", fairDecimal.String())
	}

	yourDecimal, ok := AmericanToDecimal(yourOdds)
	if !ok {
		return nil, fmt.Errorf("invalid odds for your side: %s", yourOdds.String())
	}

	return &models.MarketAnalysis{
		YourImplied:  pYou,
		OppImplied:   pOpp,
		Overround:    overround,
		Hold:         hold,
		FairProb:     fairProb,
		FairDecimal:  fairDecimal,
		HouseEdgePct: 1 - yourDecimal.Div(fairDecimal).InexactFloat64(),
	}, nil
}
