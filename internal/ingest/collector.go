package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"deripulse/internal/deribit"
	"deripulse/internal/domain/models"
	"deripulse/internal/logger"
	"deripulse/internal/storage"
)

// Fetcher is the outbound-client dependency of the collector.
type Fetcher interface {
	GetIndexPrice(ctx context.Context, ticker string) (*deribit.IndexPriceResponse, error)
}

// LatestCache is the optional write-through cache for latest prices.
type LatestCache interface {
	SetLatest(ctx context.Context, rec models.CurrencyPrice) error
}

// Collector runs polling cycles: fetch one quote, validate it, persist it.
//
// It holds no scheduling logic; CollectTicker is a plain callable that any
// external scheduler (a timer loop, a queue worker, cron) can invoke, and the
// scheduler owns retry policy for failed cycles.
type Collector struct {
	fetcher Fetcher
	repo    storage.PricesRepository
	cache   LatestCache // may be nil
	allowed map[string]struct{}
	tickers []string
}

// NewCollector wires a collector for the given ticker allow-list.
// cache may be nil to disable write-through caching.
func NewCollector(fetcher Fetcher, repo storage.PricesRepository, cache LatestCache, tickers []string) *Collector {
	allowed := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		allowed[t] = struct{}{}
	}
	return &Collector{
		fetcher: fetcher,
		repo:    repo,
		cache:   cache,
		allowed: allowed,
		tickers: tickers,
	}
}

// CollectTicker performs one fetch-validate-persist cycle for a single ticker.
//
// A cycle that fails at any stage inserts nothing: fetch and validation
// happen before the single insert, and the insert is one statement. Cache
// write-through after a successful insert is best effort; a cache failure is
// logged and never fails the cycle.
func (c *Collector) CollectTicker(ctx context.Context, ticker string) error {
	log := logger.With("collector")

	quote, err := c.fetcher.GetIndexPrice(ctx, ticker)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ticker, err)
	}

	rec, err := ValidateQuote(ticker, quote, c.allowed)
	if err != nil {
		return fmt.Errorf("validate %s: %w", ticker, err)
	}

	saved, err := c.repo.InsertPrice(ctx, rec)
	if err != nil {
		return fmt.Errorf("persist %s: %w", ticker, err)
	}

	if c.cache != nil {
		if err := c.cache.SetLatest(ctx, saved); err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("cache write-through failed")
		}
	}

	log.Info().Str("ticker", ticker).Float64("price", saved.Price).Int64("timestamp", saved.Timestamp).Msg("price saved")
	return nil
}

// CollectAll runs one cycle for every configured ticker concurrently.
//
// A failing ticker is logged and does not abort the others; cycles are
// independent. The first error is still returned so the caller's scheduler
// can decide on retry.
func (c *Collector) CollectAll(ctx context.Context) error {
	log := logger.With("collector")

	// Plain errgroup.Group: no shared cancellation, every ticker gets its
	// attempt even when a sibling fails.
	var g errgroup.Group
	for _, ticker := range c.tickers {
		t := ticker
		g.Go(func() error {
			if err := c.CollectTicker(ctx, t); err != nil {
				log.Error().Str("ticker", t).Err(err).Msg("cycle failed")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
