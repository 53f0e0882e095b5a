package service

import (
	"context"

	"deripulse/internal/domain/models"
	"deripulse/internal/logger"
	"deripulse/internal/storage"
)

// PriceService defines the read-side business logic between the HTTP
// handlers and the repository.
type PriceService interface {
	GetAllPrices(ctx context.Context, ticker string) ([]models.CurrencyPrice, error)
	GetLatestPrice(ctx context.Context, ticker string) (*models.CurrencyPrice, error)
	GetPricesByRange(ctx context.Context, ticker string, startTS, endTS *int64) ([]models.CurrencyPrice, error)
}

// LatestReader is the optional cache consulted before the repository on the
// latest path. A (nil, nil) return means a miss.
type LatestReader interface {
	GetLatest(ctx context.Context, ticker string) (*models.CurrencyPrice, error)
}

type priceService struct {
	repo  storage.PricesRepository
	cache LatestReader // may be nil
}

// NewPriceService builds the service. cache may be nil; the service then
// always reads from the repository.
func NewPriceService(repo storage.PricesRepository, cache LatestReader) PriceService {
	return &priceService{repo: repo, cache: cache}
}

func (s *priceService) GetAllPrices(ctx context.Context, ticker string) ([]models.CurrencyPrice, error) {
	return s.repo.ListByTicker(ctx, ticker)
}

// GetLatestPrice consults the cache first. Cache errors are logged and
// treated as misses; the repository remains the source of truth.
func (s *priceService) GetLatestPrice(ctx context.Context, ticker string) (*models.CurrencyPrice, error) {
	if s.cache != nil {
		hit, err := s.cache.GetLatest(ctx, ticker)
		if err != nil {
			log := logger.With("service")
			log.Warn().Str("ticker", ticker).Err(err).Msg("latest-price cache read failed")
		} else if hit != nil {
			return hit, nil
		}
	}
	return s.repo.LatestByTicker(ctx, ticker)
}

func (s *priceService) GetPricesByRange(ctx context.Context, ticker string, startTS, endTS *int64) ([]models.CurrencyPrice, error) {
	return s.repo.ListByRange(ctx, ticker, startTS, endTS)
}
