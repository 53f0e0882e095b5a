package models

import "time"

// CurrencyPrice is a single index-price observation for one ticker.
//
// Rows are append-only: each polling cycle inserts a new row, even when the
// price did not move. Timestamp is the exchange-reported observation time in
// microseconds since the Unix epoch (Deribit's usIn field), distinct from
// CreatedAt, which is the ingestion time assigned by the database.
type CurrencyPrice struct {
	ID        int64     `json:"id" example:"1"`
	Ticker    string    `json:"ticker" example:"btc_usd"`
	Price     float64   `json:"price" example:"50000.5"`
	Timestamp int64     `json:"timestamp" example:"1640995200123456"`
	CreatedAt time.Time `json:"created_at"`
}
