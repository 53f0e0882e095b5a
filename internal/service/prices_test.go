package service

import (
	"context"
	"errors"
	"testing"

	"deripulse/internal/domain/models"
)

type stubRepo struct {
	list   []models.CurrencyPrice
	latest *models.CurrencyPrice
	err    error

	latestCalls int
}

func (s *stubRepo) InsertPrice(_ context.Context, rec models.CurrencyPrice) (models.CurrencyPrice, error) {
	return rec, s.err
}
func (s *stubRepo) ListByTicker(_ context.Context, _ string) ([]models.CurrencyPrice, error) {
	return s.list, s.err
}
func (s *stubRepo) LatestByTicker(_ context.Context, _ string) (*models.CurrencyPrice, error) {
	s.latestCalls++
	return s.latest, s.err
}
func (s *stubRepo) ListByRange(_ context.Context, _ string, _, _ *int64) ([]models.CurrencyPrice, error) {
	return s.list, s.err
}

type stubCache struct {
	rec *models.CurrencyPrice
	err error
}

func (s *stubCache) GetLatest(_ context.Context, _ string) (*models.CurrencyPrice, error) {
	return s.rec, s.err
}

func TestGetAllPrices_Delegates(t *testing.T) {
	repo := &stubRepo{list: []models.CurrencyPrice{{Ticker: "btc_usd", Price: 1}}}
	svc := NewPriceService(repo, nil)
	out, err := svc.GetAllPrices(context.Background(), "btc_usd")
	if err != nil || len(out) != 1 {
		t.Fatalf("unexpected out=%+v err=%v", out, err)
	}
}

func TestGetLatestPrice_TableDriven(t *testing.T) {
	cached := &models.CurrencyPrice{Ticker: "btc_usd", Price: 2, Timestamp: 20}
	stored := &models.CurrencyPrice{Ticker: "btc_usd", Price: 1, Timestamp: 10}

	cases := []struct {
		name      string
		cache     *stubCache // nil means no cache configured
		repo      *stubRepo
		want      *models.CurrencyPrice
		wantErr   bool
		repoCalls int
	}{
		{name: "no cache", cache: nil, repo: &stubRepo{latest: stored}, want: stored, repoCalls: 1},
		{name: "cache hit", cache: &stubCache{rec: cached}, repo: &stubRepo{latest: stored}, want: cached, repoCalls: 0},
		{name: "cache miss", cache: &stubCache{}, repo: &stubRepo{latest: stored}, want: stored, repoCalls: 1},
		{name: "cache error falls back", cache: &stubCache{err: errors.New("down")}, repo: &stubRepo{latest: stored}, want: stored, repoCalls: 1},
		{name: "no rows anywhere", cache: &stubCache{}, repo: &stubRepo{}, want: nil, repoCalls: 1},
		{name: "storage error", cache: nil, repo: &stubRepo{err: errors.New("boom")}, wantErr: true, repoCalls: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var svc PriceService
			if tc.cache == nil {
				svc = NewPriceService(tc.repo, nil)
			} else {
				svc = NewPriceService(tc.repo, tc.cache)
			}

			out, err := svc.GetLatestPrice(context.Background(), "btc_usd")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tc.want {
				t.Fatalf("out=%+v want=%+v", out, tc.want)
			}
			if tc.repo.latestCalls != tc.repoCalls {
				t.Fatalf("repo calls=%d want %d", tc.repo.latestCalls, tc.repoCalls)
			}
		})
	}
}

func TestGetPricesByRange_Delegates(t *testing.T) {
	repo := &stubRepo{list: []models.CurrencyPrice{{Ticker: "btc_usd"}}}
	svc := NewPriceService(repo, nil)
	start := int64(1)
	end := int64(2)
	out, err := svc.GetPricesByRange(context.Background(), "btc_usd", &start, &end)
	if err != nil || len(out) != 1 {
		t.Fatalf("unexpected out=%+v err=%v", out, err)
	}
}
