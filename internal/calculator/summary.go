package calculator

import (
	"MarketSim/internal/logger"
	"MarketSim/internal/model"
)

// RSIPeriod is the lookback used for the summary RSI.
const RSIPeriod = 14

// Summarize computes headline statistics for a derived series.
func Summarize(series model.DerivedSeries) *model.SeriesSummary {
	s := &model.SeriesSummary{RSI: NeutralRSI, Position: 0.5}
	if len(series) == 0 {
		return s
	}

	prices := series.Prices()
	s.FirstPrice = prices[0]
	s.LastPrice = prices[len(prices)-1]
	s.LastMA = series[len(series)-1].MovingAverage

	if h, l, err := PriceRange(prices); err != nil {
		logger.Warn("price range calculation failed: %v", err)
		s.High, s.Low = s.LastPrice, s.LastPrice
	} else {
		s.High, s.Low = h, l
	}
	if pos, err := RangePosition(s.LastPrice, s.High, s.Low); err != nil {
		logger.Warn("range position calculation failed: %v", err)
	} else {
		s.Position = pos
	}
	if rsi, err := CalculateRSI(prices, RSIPeriod); err != nil {
		logger.Warn("RSI calculation failed: %v, defaulting to %v", err, NeutralRSI)
	} else {
		s.RSI = rsi
	}
	if total, err := PercentChange(s.FirstPrice, s.LastPrice); err == nil {
		s.TotalReturn = total
	}

	s.MeanReturn, s.StdDevReturn, s.DefinedReturn = ReturnStats(series.DailyReturns())
	for _, r := range series {
		if r.MovingAverage.Valid {
			s.DefinedMA++
		}
	}
	return s
}
