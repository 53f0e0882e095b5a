package storage

import (
	"context"
	"database/sql"
	"fmt"

	"deripulse/internal/domain/models"
)

// PricesRepository defines the contract for all currency_prices DB operations.
//
// The table is append-only: there is one write operation and three
// parametrized reads. "No rows" is a valid empty result on every read path,
// never an error.
type PricesRepository interface {
	InsertPrice(ctx context.Context, rec models.CurrencyPrice) (models.CurrencyPrice, error)
	ListByTicker(ctx context.Context, ticker string) ([]models.CurrencyPrice, error)
	LatestByTicker(ctx context.Context, ticker string) (*models.CurrencyPrice, error)
	ListByRange(ctx context.Context, ticker string, startTS, endTS *int64) ([]models.CurrencyPrice, error)
}

type pricesRepository struct {
	db *sql.DB
}

func NewPricesRepository(db *sql.DB) PricesRepository {
	return &pricesRepository{db: db}
}

// InsertPrice appends one observation and returns the persisted row with its
// assigned id and created_at. Duplicate (ticker, timestamp) pairs are
// permitted: every successful polling cycle produces a new row.
func (r *pricesRepository) InsertPrice(ctx context.Context, rec models.CurrencyPrice) (models.CurrencyPrice, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO currency_prices (ticker, price, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, rec.Ticker, rec.Price, rec.Timestamp).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return models.CurrencyPrice{}, fmt.Errorf("insert price: %w", err)
	}
	return rec, nil
}

// ListByTicker returns every observation for the ticker, oldest first.
func (r *pricesRepository) ListByTicker(ctx context.Context, ticker string) ([]models.CurrencyPrice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, price, timestamp, created_at
		FROM currency_prices
		WHERE ticker = $1
		ORDER BY timestamp ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPrices(rows)
}

// LatestByTicker returns the observation with the maximum timestamp for the
// ticker, or (nil, nil) when the ticker has no rows.
func (r *pricesRepository) LatestByTicker(ctx context.Context, ticker string) (*models.CurrencyPrice, error) {
	var p models.CurrencyPrice
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker, price, timestamp, created_at
		FROM currency_prices
		WHERE ticker = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, ticker).Scan(&p.ID, &p.Ticker, &p.Price, &p.Timestamp, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest price: %w", err)
	}
	return &p, nil
}

// ListByRange returns observations for the ticker whose timestamp falls
// within the inclusive [startTS, endTS] range, oldest first. Nil bounds are
// open; an empty intersection yields an empty slice.
func (r *pricesRepository) ListByRange(ctx context.Context, ticker string, startTS, endTS *int64) ([]models.CurrencyPrice, error) {
	// $1 is always ticker. Subsequent placeholders depend on provided bounds.
	conditions := "ticker = $1"
	args := []interface{}{ticker}
	if startTS != nil {
		conditions += fmt.Sprintf(" AND timestamp >= $%d", len(args)+1)
		args = append(args, *startTS)
	}
	if endTS != nil {
		conditions += fmt.Sprintf(" AND timestamp <= $%d", len(args)+1)
		args = append(args, *endTS)
	}

	query := fmt.Sprintf(`
		SELECT id, ticker, price, timestamp, created_at
		FROM currency_prices
		WHERE %s
		ORDER BY timestamp ASC
	`, conditions)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prices by range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanPrices(rows)
}

func scanPrices(rows *sql.Rows) ([]models.CurrencyPrice, error) {
	out := make([]models.CurrencyPrice, 0)
	for rows.Next() {
		var p models.CurrencyPrice
		if err := rows.Scan(&p.ID, &p.Ticker, &p.Price, &p.Timestamp, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}
	return out, nil
}
