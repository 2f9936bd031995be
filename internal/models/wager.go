package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Leg represents one selection in a wager as entered by the user.
// Odds fields are kept as raw strings because mid-edit input is the
// expected steady state; parsing happens on every evaluation.
type Leg struct {
	ID              int    `json:"id"`
	Label           string `json:"label,omitempty"`
	YourOdds        string `json:"your_odds"`
	HasOpponentOdds bool   `json:"has_opponent_odds"`
	OpponentOdds    string `json:"opponent_odds,omitempty"`
}

// ParsedLeg is a read-only view of a Leg after validation.
// Decimal and Implied are nil when the leg is invalid.
type ParsedLeg struct {
	Leg
	Decimal *decimal.Decimal `json:"decimal,omitempty"`
	Implied *decimal.Decimal `json:"implied,omitempty"`
	Valid   bool             `json:"valid"`
}

// LegParseResult holds the outcome of parsing an ordered list of legs.
// Legs preserves insertion order and includes invalid entries so callers
// can surface per-leg errors; Valid is the filtered sublist.
type LegParseResult struct {
	Legs     []ParsedLeg `json:"legs"`
	Valid    []ParsedLeg `json:"valid_legs"`
	AllValid bool        `json:"all_valid"`
}

// ParlayMetrics aggregates valid legs and a stake into payout figures.
type ParlayMetrics struct {
	Stake           decimal.Decimal `json:"stake"`
	CombinedDecimal decimal.Decimal `json:"combined_decimal"`
	ImpliedProb     decimal.Decimal `json:"implied_prob"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	Profit          decimal.Decimal `json:"profit"`
}

// MarketAnalysis is derived from both sides of a single market.
// Hold is passed through unclamped: promotional pricing can make it negative.
type MarketAnalysis struct {
	YourImplied  decimal.Decimal `json:"your_implied"`
	OppImplied   decimal.Decimal `json:"opp_implied"`
	Overround    decimal.Decimal `json:"overround"`
	Hold         decimal.Decimal `json:"hold"`
	FairProb     decimal.Decimal `json:"fair_prob"`
	FairDecimal  decimal.Decimal `json:"fair_decimal"`
	HouseEdgePct float64         `json:"house_edge_pct"`
}

// EVAnalysis is the expected-value estimate for the combined wager,
// priced at the book's number but occurring at the fair rate.
type EVAnalysis struct {
	FairProb     decimal.Decimal `json:"fair_prob"`
	FairDecimal  decimal.Decimal `json:"fair_decimal"`
	EV           decimal.Decimal `json:"ev"`
	EVPct        float64         `json:"ev_pct"`
	BookEdgePct  float64         `json:"book_edge_pct"`
}

// PricingScaleResult compares a book-quoted total price against the
// independence-assumption baseline.
type PricingScaleResult struct {
	IndependentDecimal decimal.Decimal `json:"independent_decimal"`
	QuotedDecimal      decimal.Decimal `json:"quoted_decimal"`
	AdjustmentPct      float64         `json:"adjustment_pct"`
}

// CalculatorParams holds parameters for wager evaluation
type CalculatorParams struct {
	DefaultOdds string // Odds assigned to a freshly added leg (e.g. "-110")
	MaxLegs     int    // Upper bound on legs per wager
}

// EvaluationRequest is one wager to evaluate, arriving over HTTP or Kafka.
type EvaluationRequest struct {
	RequestID     string `json:"request_id"`
	Stake         string `json:"stake"`
	Legs          []Leg  `json:"legs"`
	BookTotalOdds string `json:"book_total_odds,omitempty"`
}

// EvaluationResult bundles every derived figure for one request.
// Absent sections are nil; partial results are never surfaced.
type EvaluationResult struct {
	RequestID    string                  `json:"request_id"`
	Legs         []ParsedLeg             `json:"legs"`
	AllValid     bool                    `json:"all_valid"`
	Parlay       *ParlayMetrics          `json:"parlay,omitempty"`
	Markets      map[int]*MarketAnalysis `json:"markets,omitempty"`
	EV           *EVAnalysis             `json:"ev,omitempty"`
	PricingScale *PricingScaleResult     `json:"pricing_scale,omitempty"`
	EvaluatedAt  time.Time               `json:"evaluated_at"`
}

// Session holds the interactive state for one calculator session.
// The session store owns the leg id counter and the minimum-one-leg
// invariant; the core never sees this type.
type Session struct {
	ID              uuid.UUID       `json:"id"`
	Stake           decimal.Decimal `json:"stake"`
	Legs            []Leg           `json:"legs"`
	PreviewExcluded []int           `json:"preview_excluded,omitempty"`
	BookTotalOdds   string          `json:"book_total_odds,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// KafkaEvaluationMessage represents the Kafka message carrying a batch of
// evaluation requests from upstream wager builders.
type KafkaEvaluationMessage struct {
	Requests  []EvaluationRequest `json:"requests"`
	Timestamp time.Time           `json:"timestamp"`
	BatchID   string              `json:"batch_id"`
}
