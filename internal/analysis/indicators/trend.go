// Package indicators provides deterministic technical indicator calculations
// over a price series. All functions are pure and return ErrInsufficientData
// when the series is shorter than the indicator's minimum history.
package indicators

import (
	"fmt"

	"stock-advisor/internal/models"
)

// DefaultMAPeriods are the moving-average windows reported by default.
var DefaultMAPeriods = []int{5, 10, 20, 60}

// MovingAverages computes the simple moving average of the closing price for
// each requested period. Periods with insufficient history are omitted from
// the result rather than zero-filled.
func MovingAverages(bars []models.Bar, periods ...int) map[string]float64 {
	if len(periods) == 0 {
		periods = DefaultMAPeriods
	}

	result := make(map[string]float64)
	closes := closePrices(bars)

	for _, period := range periods {
		if period <= 0 || len(closes) < period {
			continue
		}
		ma := mean(closes[len(closes)-period:])
		result[fmt.Sprintf("MA%d", period)] = round2(ma)
	}

	return result
}

// CrossSignal labels the relationship between the MACD fast and slow lines
// on the current bar.
type CrossSignal string

const (
	SignalGoldenCross CrossSignal = "金叉"
	SignalDeadCross   CrossSignal = "死叉"
	SignalHold        CrossSignal = "持有"
)

// MACDResult holds the latest MACD oscillator values.
type MACDResult struct {
	DIF       float64
	DEA       float64
	Histogram float64
	Signal    CrossSignal
}

// MACD computes the moving-average-convergence-divergence oscillator.
// DIF is the fast-minus-slow EMA spread, DEA its EMA-smoothed signal line,
// and Histogram 2x their difference. The signal reports a golden cross when
// DIF crosses above DEA on the latest bar, a dead cross on the opposite
// crossing, and hold otherwise.
func MACD(bars []models.Bar, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < slow+signal {
		return nil, ErrInsufficientData
	}

	closes := closePrices(bars)
	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)

	dif := make([]float64, len(closes))
	for i := range closes {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea := ema(dif, signal)

	n := len(closes)
	cross := SignalHold
	switch {
	case dif[n-1] > dea[n-1] && dif[n-2] <= dea[n-2]:
		cross = SignalGoldenCross
	case dif[n-1] < dea[n-1] && dif[n-2] >= dea[n-2]:
		cross = SignalDeadCross
	}

	return &MACDResult{
		DIF:       round2(dif[n-1]),
		DEA:       round2(dea[n-1]),
		Histogram: round2((dif[n-1] - dea[n-1]) * 2),
		Signal:    cross,
	}, nil
}

// Trend labels returned by ClassifyTrend.
const (
	TrendInsufficient  = "数据不足"
	TrendStrongUp      = "强势上涨（多头排列）"
	TrendStrongDown    = "弱势下跌（空头排列）"
	TrendShortTermUp   = "短期强势上涨"
	TrendShortTermDown = "短期快速下跌"
	TrendSideways      = "震荡整理"
)

// ClassifyTrend classifies the current trend from the MA5/MA10/MA20 alignment
// and, failing a clean alignment, from the 5-day percent change.
func ClassifyTrend(bars []models.Bar) string {
	if len(bars) < 20 {
		return TrendInsufficient
	}

	ma := MovingAverages(bars, 5, 10, 20)
	price := bars[len(bars)-1].Close

	ma5, ok5 := ma["MA5"]
	ma10, ok10 := ma["MA10"]
	ma20, ok20 := ma["MA20"]
	if ok5 && ok10 && ok20 {
		if price > ma5 && ma5 > ma10 && ma10 > ma20 {
			return TrendStrongUp
		}
		if price < ma5 && ma5 < ma10 && ma10 < ma20 {
			return TrendStrongDown
		}
	}

	change5d, err := ChangePercent(bars, 5)
	if err == nil {
		if change5d > 5 {
			return TrendShortTermUp
		}
		if change5d < -5 {
			return TrendShortTermDown
		}
	}

	return TrendSideways
}

// ChangePercent computes the close-to-close percent change over the trailing
// window of the given number of bars.
func ChangePercent(bars []models.Bar, days int) (float64, error) {
	if days <= 1 {
		return 0, ErrInvalidPeriod
	}
	if len(bars) < days {
		return 0, ErrInsufficientData
	}

	window := bars[len(bars)-days:]
	first := window[0].Close
	last := window[len(window)-1].Close
	if first == 0 {
		return 0, ErrInsufficientData
	}

	return (last - first) / first * 100, nil
}
