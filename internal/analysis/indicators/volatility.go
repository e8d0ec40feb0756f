package indicators

import (
	"stock-advisor/internal/models"
)

// Band position labels reported by BollingerBands.
const (
	BandNearUpper  = "上轨附近"
	BandNearLower  = "下轨附近"
	BandNearMiddle = "中轨附近"
)

// BollResult holds the latest Bollinger band values and the current price's
// position relative to the bands.
type BollResult struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Current  float64
	Position string
}

// BollingerBands computes a moving-average envelope offset by a multiple of
// the rolling standard deviation. The position is near the upper band when
// the price exceeds 98% of the upper band, near the lower band below 102%
// of the lower band, and near the middle otherwise.
func BollingerBands(bars []models.Bar, period int, stdDevMul float64) (*BollResult, error) {
	if period <= 0 || stdDevMul < 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < period {
		return nil, ErrInsufficientData
	}

	closes := closePrices(bars)
	window := closes[len(closes)-period:]

	middle := mean(window)
	halfWidth := stdDev(window) * stdDevMul
	upper := middle + halfWidth
	lower := middle - halfWidth
	current := closes[len(closes)-1]

	position := BandNearMiddle
	switch {
	case current > upper*0.98:
		position = BandNearUpper
	case current < lower*1.02:
		position = BandNearLower
	}

	return &BollResult{
		Upper:    round2(upper),
		Middle:   round2(middle),
		Lower:    round2(lower),
		Current:  round2(current),
		Position: position,
	}, nil
}
