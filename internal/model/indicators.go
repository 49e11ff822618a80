package model

// SeriesSummary holds headline statistics computed over a derived series.
type SeriesSummary struct {
	FirstPrice    float64
	LastPrice     float64
	LastMA        NullFloat
	High          float64
	Low           float64
	Position      float64 // 0.0 ~ 1.0 within [Low, High]
	RSI           float64
	MeanReturn    NullFloat
	StdDevReturn  NullFloat
	TotalReturn   float64
	DefinedMA     int
	DefinedReturn int
}
