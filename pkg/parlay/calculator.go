package parlay

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Calculator evaluates wager requests with the pure odds functions
type Calculator struct {
	params models.CalculatorParams
	logger zerolog.Logger
}

// NewCalculator creates a new wager calculator
func NewCalculator(params models.CalculatorParams, logger zerolog.Logger) *Calculator {
	return &Calculator{
		params: params,
		logger: logger.With().Str("component", "calculator").Logger(),
	}
}

// DefaultOdds returns the odds string assigned to a freshly added leg.
func (c *Calculator) DefaultOdds() string {
	return c.params.DefaultOdds
}

// MaxLegs returns the upper bound on legs per wager.
func (c *Calculator) MaxLegs() int {
	return c.params.MaxLegs
}

// Evaluate runs the full pipeline for one request: parse legs, combine the
// valid sublist, derive per-market and fair-probability figures, and attach
// the pricing-scale comparison when a book total is quoted.
//
// Invalid or mid-edit input is not an error: uncomputable sections come
// back nil and the caller branches on presence. Evaluate only errors on a
// structurally malformed request (no legs, or over the leg limit).
func (c *Calculator) Evaluate(req *models.EvaluationRequest) (*models.EvaluationResult, error) {
	if len(req.Legs) == 0 {
		return nil, fmt.Errorf("request %s has no legs", req.RequestID)
	}
	if c.params.MaxLegs > 0 && len(req.Legs) > c.params.MaxLegs {
		return nil, fmt.Errorf("request %s has %d legs, limit is %d", req.RequestID, len(req.Legs), c.params.MaxLegs)
	}

	parsed := ParseLegs(req.Legs)
	result := &models.EvaluationResult{
		RequestID:   req.RequestID,
		Legs:        parsed.Legs,
		AllValid:    parsed.AllValid,
		EvaluatedAt: time.Now().UTC(),
	}

	// Per-leg market analyses, keyed by leg id. Only successes are kept.
	for _, leg := range parsed.Valid {
		if !leg.HasOpponentOdds {
			continue
		}
		yourOdds, ok := ParseAmerican(leg.YourOdds)
		if !ok {
			continue
		}
		oppOdds, ok := ParseAmerican(leg.OpponentOdds)
		if !ok {
			continue
		}
		analysis, err := AnalyzeMarket(yourOdds, oppOdds)
		if err != nil {
			c.logger.Debug().
				Err(err).
				Int("leg_id", leg.ID).
				Msg("market analysis unavailable")
			continue
		}
		if result.Markets == nil {
			result.Markets = make(map[int]*models.MarketAnalysis)
		}
		result.Markets[leg.ID] = analysis
	}

	// Pricing scale depends only on the valid legs and the quoted total;
	// it stays available while the stake is still blank mid-edit.
	if req.BookTotalOdds != "" {
		if quotedOdds, ok := ParseAmerican(req.BookTotalOdds); ok {
			if quoted, ok := AmericanToDecimal(quotedOdds); ok {
				if scale, err := PricingScale(parsed.Valid, quoted); err == nil {
					result.PricingScale = scale
				}
			}
		}
	}

	stake, stakeErr := decimal.NewFromString(req.Stake)
	if stakeErr != nil || !stake.IsPositive() {
		// No payout or EV sections without a usable stake.
		return result, nil
	}

	metrics, err := Combine(stake, parsed.Valid)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("request_id", req.RequestID).
			Msg("parlay metrics unavailable")
		return result, nil
	}
	result.Parlay = metrics

	if fairProb, err := FairParlayProbability(parsed.Valid); err == nil {
		if ev, err := ExpectedValue(stake, metrics.Profit, fairProb); err == nil {
			if edge, err := ParlayEdge(metrics.CombinedDecimal, ev.FairDecimal); err == nil {
				ev.BookEdgePct = edge
			}
			result.EV = ev
		}
	}

	return result, nil
}

// BatchEvaluate evaluates a batch of requests, skipping malformed ones.
func (c *Calculator) BatchEvaluate(reqs []*models.EvaluationRequest) ([]*models.EvaluationResult, error) {
	results := make([]*models.EvaluationResult, 0, len(reqs))

	for _, req := range reqs {
		res, err := c.Evaluate(req)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("request_id", req.RequestID).
				Msg("failed to evaluate request")
			continue
		}
		results = append(results, res)
	}

	c.logger.Info().
		Int("input_count", len(reqs)).
		Int("output_count", len(results)).
		Msg("batch evaluation complete")

	return results, nil
}
