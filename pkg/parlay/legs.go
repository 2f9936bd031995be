package parlay

import (
	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// ParseLegs validates and normalizes an ordered list of legs.
// Every leg is validated independently; the full list keeps insertion
// order (including invalid entries) so callers can show per-leg errors.
// AllValid is true only when every leg is valid and at least one exists.
func ParseLegs(legs []models.Leg) models.LegParseResult {
	parsed := make([]models.ParsedLeg, 0, len(legs))
	valid := make([]models.ParsedLeg, 0, len(legs))

	for _, leg := range legs {
		pl := models.ParsedLeg{Leg: leg}

		if odds, ok := ParseAmerican(leg.YourOdds); ok {
			dec, okDec := AmericanToDecimal(odds)
			imp, okImp := AmericanToImplied(odds)
			if okDec && okImp {
				pl.Decimal = &dec
				pl.Implied = &imp
				pl.Valid = true
			}
		}

		parsed = append(parsed, pl)
		if pl.Valid {
			valid = append(valid, pl)
		}
	}

	return models.LegParseResult{
		Legs:     parsed,
		Valid:    valid,
		AllValid: len(parsed) > 0 && len(valid) == len(parsed),
	}
}
