package models

import "time"

// Observation is one cleaned historical price point: the purchase price per
// MMBtu recorded for a calendar date. Sequences handed to the analytics core
// must hold distinct, strictly increasing dates.
type Observation struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PricePoint is a dated price produced by the estimator, either an on-demand
// estimate or one step of a forward curve.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// SeasonalEntry is one row of the monthly adjustment table as served over HTTP.
type SeasonalEntry struct {
	Month      time.Month `json:"month"`
	Adjustment float64    `json:"adjustment"`
}
