package dto

import (
	"time"

	"deripulse/internal/domain/models"
)

// PriceResponse represents one price observation on the API surface.
//
// Fields match the API contract and may differ from internal domain models.
// This ensures loose coupling between the API surface and business logic.
type PriceResponse struct {
	ID        int64     `json:"id" example:"1"`
	Ticker    string    `json:"ticker" example:"btc_usd"`
	Price     float64   `json:"price" example:"50000.5"`
	Timestamp int64     `json:"timestamp" example:"1640995200123456"` // microseconds since epoch
	CreatedAt time.Time `json:"created_at"`
}

// PriceListResponse wraps a list of price observations.
type PriceListResponse struct {
	Items []PriceResponse `json:"items"`
}

// NewPriceResponse maps a domain record onto the API shape.
func NewPriceResponse(p models.CurrencyPrice) PriceResponse {
	return PriceResponse{
		ID:        p.ID,
		Ticker:    p.Ticker,
		Price:     p.Price,
		Timestamp: p.Timestamp,
		CreatedAt: p.CreatedAt,
	}
}

// NewPriceListResponse maps a slice of domain records onto the API shape.
// An empty input yields an empty (non-nil) Items list so clients always
// receive a JSON array.
func NewPriceListResponse(prices []models.CurrencyPrice) PriceListResponse {
	items := make([]PriceResponse, 0, len(prices))
	for _, p := range prices {
		items = append(items, NewPriceResponse(p))
	}
	return PriceListResponse{Items: items}
}
