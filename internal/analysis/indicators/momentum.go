package indicators

import (
	"stock-advisor/internal/models"
)

// RSI computes the relative strength index over the given period and returns
// the latest value, always in [0, 100].
//
// Gains and losses come from consecutive close differences and are averaged
// with a simple rolling mean over the trailing period. When the mean loss is
// exactly zero the ratio is undefined; the value saturates to 100, treating
// an all-gain window as maximal strength.
func RSI(bars []models.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(bars) < period+1 {
		return 0, ErrInsufficientData
	}

	closes := closePrices(bars)
	gains := make([]float64, 0, period)
	losses := make([]float64, 0, period)

	// Only the trailing window contributes to the rolling mean.
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}

	meanGain := mean(gains)
	meanLoss := mean(losses)

	if meanLoss == 0 {
		return 100, nil
	}

	rs := meanGain / meanLoss
	rsi := 100 - 100/(1+rs)
	return round2(rsi), nil
}

// RSIZone labels an RSI value as overbought, oversold or normal.
func RSIZone(rsi float64) string {
	switch {
	case rsi > 70:
		return "超买区域，注意回调风险"
	case rsi < 30:
		return "超卖区域，可能存在反弹机会"
	default:
		return "正常区域"
	}
}
