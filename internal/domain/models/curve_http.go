package models

// Requests for the curve HTTP endpoints. Defined in domain for consistency and reuse.

type EstimateRequest struct {
	Date string `query:"date" json:"date" validate:"required"`
}

type ForecastRequest struct {
	Months int `query:"months" json:"months" default:"12" validate:"gte=1,lte=120"`
}

type TrendRequest struct {
	Points int `query:"points" json:"points" default:"48" validate:"gte=2,lte=2000"`
}
