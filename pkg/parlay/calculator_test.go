package parlay

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

func newTestCalculator(maxLegs int) *Calculator {
	params := models.CalculatorParams{DefaultOdds: "-110", MaxLegs: maxLegs}
	return NewCalculator(params, zerolog.Nop())
}

// TestEvaluate_FullPipeline tests a complete two-sided request where every
// output section is computable.
func TestEvaluate_FullPipeline(t *testing.T) {
	calc := newTestCalculator(20)
	req := &models.EvaluationRequest{
		RequestID: "req-1",
		Stake:     "10",
		Legs: []models.Leg{
			{ID: 1, Label: "Leg one", YourOdds: "-110", HasOpponentOdds: true, OpponentOdds: "-110"},
			{ID: 2, Label: "Leg two", YourOdds: "-110", HasOpponentOdds: true, OpponentOdds: "-110"},
		},
		BookTotalOdds: "+260",
	}

	result, err := calc.Evaluate(req)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "req-1", result.RequestID)
	assert.True(t, result.AllValid)
	assert.Len(t, result.Legs, 2)
	assert.False(t, result.EvaluatedAt.IsZero())

	require.NotNil(t, result.Parlay)
	assert.InDelta(t, 3.6446, result.Parlay.CombinedDecimal.InexactFloat64(), 0.001)
	assert.InDelta(t, 26.45, result.Parlay.Profit.InexactFloat64(), 0.01)

	require.Len(t, result.Markets, 2)
	for _, id := range []int{1, 2} {
		require.Contains(t, result.Markets, id)
		assert.InDelta(t, 0.5, result.Markets[id].FairProb.InexactFloat64(), 0.0001)
	}

	require.NotNil(t, result.EV)
	assert.InDelta(t, 0.25, result.EV.FairProb.InexactFloat64(), 0.0001)
	assert.InDelta(t, -8.884, result.EV.EVPct, 0.01)
	assert.InDelta(t, 0.0888, result.EV.BookEdgePct, 0.001)

	require.NotNil(t, result.PricingScale)
	assert.InDelta(t, 3.6, result.PricingScale.QuotedDecimal.InexactFloat64(), 0.0001)
	assert.InDelta(t, 3.6446, result.PricingScale.IndependentDecimal.InexactFloat64(), 0.001)
	// 3.6 / 3.6446 - 1
	assert.InDelta(t, -1.2245, result.PricingScale.AdjustmentPct, 0.01)
}

// TestEvaluate_InvalidLeg keeps the parsed list but drops the aggregate
// sections that need every leg.
func TestEvaluate_InvalidLeg(t *testing.T) {
	calc := newTestCalculator(20)
	req := &models.EvaluationRequest{
		RequestID: "req-2",
		Stake:     "10",
		Legs: []models.Leg{
			{ID: 1, YourOdds: "abc"},
			{ID: 2, YourOdds: "-110"},
		},
	}

	result, err := calc.Evaluate(req)

	require.NoError(t, err)
	assert.False(t, result.AllValid)
	assert.Len(t, result.Legs, 2)

	// The valid leg still combines on its own.
	require.NotNil(t, result.Parlay)
	assert.InDelta(t, 1.9091, result.Parlay.CombinedDecimal.InexactFloat64(), 0.001)
	assert.Nil(t, result.EV)
	assert.Nil(t, result.PricingScale)
}

// TestEvaluate_InvalidStake returns the legs and markets without payout
// figures.
func TestEvaluate_InvalidStake(t *testing.T) {
	calc := newTestCalculator(20)

	for _, stake := range []string{"", "0", "-5", "abc"} {
		t.Run(fmt.Sprintf("Stake %q", stake), func(t *testing.T) {
			req := &models.EvaluationRequest{
				RequestID: "req-3",
				Stake:     stake,
				Legs: []models.Leg{
					{ID: 1, YourOdds: "-110", HasOpponentOdds: true, OpponentOdds: "-110"},
				},
			}

			result, err := calc.Evaluate(req)

			require.NoError(t, err)
			assert.True(t, result.AllValid)
			assert.Len(t, result.Markets, 1)
			assert.Nil(t, result.Parlay)
			assert.Nil(t, result.EV)
			assert.Nil(t, result.PricingScale)
		})
	}
}

// TestEvaluate_PricingScaleWithoutStake keeps the book-pricing comparison
// available while the stake is still blank mid-edit.
func TestEvaluate_PricingScaleWithoutStake(t *testing.T) {
	calc := newTestCalculator(20)
	req := &models.EvaluationRequest{
		RequestID: "req-6",
		Stake:     "",
		Legs: []models.Leg{
			{ID: 1, YourOdds: "+100"},
			{ID: 2, YourOdds: "+100"},
		},
		BookTotalOdds: "+260",
	}

	result, err := calc.Evaluate(req)

	require.NoError(t, err)
	assert.Nil(t, result.Parlay)
	assert.Nil(t, result.EV)

	require.NotNil(t, result.PricingScale)
	assert.InDelta(t, 4.0, result.PricingScale.IndependentDecimal.InexactFloat64(), 0.0001)
	assert.InDelta(t, 3.6, result.PricingScale.QuotedDecimal.InexactFloat64(), 0.0001)
	assert.InDelta(t, -10.0, result.PricingScale.AdjustmentPct, 0.0001)
}

// TestEvaluate_OneSidedLegs skips market and EV analysis but still prices
// the parlay.
func TestEvaluate_OneSidedLegs(t *testing.T) {
	calc := newTestCalculator(20)
	req := &models.EvaluationRequest{
		RequestID: "req-4",
		Stake:     "25",
		Legs: []models.Leg{
			{ID: 1, YourOdds: "+150"},
			{ID: 2, YourOdds: "-200"},
		},
	}

	result, err := calc.Evaluate(req)

	require.NoError(t, err)
	assert.Empty(t, result.Markets)
	assert.Nil(t, result.EV)
	require.NotNil(t, result.Parlay)
	// 2.5 * 1.5 = 3.75
	assert.InDelta(t, 3.75, result.Parlay.CombinedDecimal.InexactFloat64(), 0.0001)
}

// TestEvaluate_BadBookTotal drops only the pricing-scale section
func TestEvaluate_BadBookTotal(t *testing.T) {
	calc := newTestCalculator(20)
	req := &models.EvaluationRequest{
		RequestID:     "req-5",
		Stake:         "10",
		Legs:          []models.Leg{{ID: 1, YourOdds: "+100"}, {ID: 2, YourOdds: "+100"}},
		BookTotalOdds: "nonsense",
	}

	result, err := calc.Evaluate(req)

	require.NoError(t, err)
	require.NotNil(t, result.Parlay)
	assert.Nil(t, result.PricingScale)
}

// TestEvaluate_MalformedRequests tests the structural error paths
func TestEvaluate_MalformedRequests(t *testing.T) {
	calc := newTestCalculator(2)

	tests := []struct {
		name string
		req  *models.EvaluationRequest
	}{
		{"No legs", &models.EvaluationRequest{RequestID: "r", Stake: "10"}},
		{"Over leg limit", &models.EvaluationRequest{
			RequestID: "r",
			Stake:     "10",
			Legs: []models.Leg{
				{ID: 1, YourOdds: "-110"},
				{ID: 2, YourOdds: "-110"},
				{ID: 3, YourOdds: "-110"},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Evaluate(tt.req)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}

// TestBatchEvaluate_SkipsMalformed drops failing requests and keeps going
func TestBatchEvaluate_SkipsMalformed(t *testing.T) {
	calc := newTestCalculator(20)
	reqs := []*models.EvaluationRequest{
		{RequestID: "good-1", Stake: "10", Legs: []models.Leg{{ID: 1, YourOdds: "-110"}}},
		{RequestID: "bad", Stake: "10"},
		{RequestID: "good-2", Stake: "5", Legs: []models.Leg{{ID: 1, YourOdds: "+200"}}},
	}

	results, err := calc.BatchEvaluate(reqs)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "good-1", results[0].RequestID)
	assert.Equal(t, "good-2", results[1].RequestID)
}

// TestBatchEvaluate_Empty returns an empty slice, not an error
func TestBatchEvaluate_Empty(t *testing.T) {
	calc := newTestCalculator(20)

	results, err := calc.BatchEvaluate(nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

// TestCalculatorAccessors exposes the configured parameters
func TestCalculatorAccessors(t *testing.T) {
	calc := newTestCalculator(12)

	assert.Equal(t, "-110", calc.DefaultOdds())
	assert.Equal(t, 12, calc.MaxLegs())
}
