package indicators

import (
	"stock-advisor/internal/models"
)

// Levels holds the trailing-window support and resistance prices.
type Levels struct {
	Support    float64
	Resistance float64
}

// SupportResistance returns the lowest low and highest high over the trailing
// window of the given period.
func SupportResistance(bars []models.Bar, period int) (*Levels, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < period {
		return nil, ErrInsufficientData
	}

	window := bars[len(bars)-period:]
	lows := make([]float64, len(window))
	highs := make([]float64, len(window))
	for i, b := range window {
		lows[i] = b.Low
		highs[i] = b.High
	}

	return &Levels{
		Support:    round2(lowest(lows)),
		Resistance: round2(highest(highs)),
	}, nil
}
