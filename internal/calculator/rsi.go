package calculator

import (
	"fmt"

	"MarketSim/internal/model"
)

// NeutralRSI is reported when there are too few prices for an RSI, or when
// the series never moved.
const NeutralRSI = 50.0

// CalculateRSI computes Wilder's RSI over period. Fewer than period+1
// prices yield NeutralRSI.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: RSI period must be positive, got %d", model.ErrInvalidParameter, period)
	}
	if len(closes) <= period {
		return NeutralRSI, nil
	}

	gain, loss := wilderAverages(closes, period)
	switch {
	case gain == 0 && loss == 0:
		return NeutralRSI, nil
	case loss == 0:
		return 100, nil
	}
	return 100 - 100/(1+gain/loss), nil
}

// wilderAverages seeds the average gain and loss with a plain mean over the
// first period moves, then smooths the rest with weight 1/period.
func wilderAverages(closes []float64, period int) (gain, loss float64) {
	p := float64(period)
	for i := 1; i < len(closes); i++ {
		up, down := splitMove(closes[i] - closes[i-1])
		if i <= period {
			gain += up / p
			loss += down / p
			continue
		}
		gain += (up - gain) / p
		loss += (down - loss) / p
	}
	return gain, loss
}

func splitMove(change float64) (up, down float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}
