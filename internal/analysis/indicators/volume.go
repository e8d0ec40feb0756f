package indicators

import (
	"stock-advisor/internal/models"
)

// VolumeRatio returns the latest bar's volume relative to the mean volume of
// the preceding 5 bars. A zero mean volume makes the ratio undefined and is
// reported as unavailable, the same as too little history.
func VolumeRatio(bars []models.Bar) (float64, error) {
	if len(bars) < 6 {
		return 0, ErrInsufficientData
	}

	current := float64(bars[len(bars)-1].Volume)

	var avg float64
	for _, b := range bars[len(bars)-6 : len(bars)-1] {
		avg += float64(b.Volume)
	}
	avg /= 5

	if avg == 0 {
		return 0, ErrInsufficientData
	}

	return round2(current / avg), nil
}
