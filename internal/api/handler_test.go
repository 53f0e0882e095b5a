package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"deripulse/internal/domain/dto"
	"deripulse/internal/domain/models"
)

type stubService struct {
	all     []models.CurrencyPrice
	latest  *models.CurrencyPrice
	ranged  []models.CurrencyPrice
	err     error
	startTS *int64
	endTS   *int64
}

func (s *stubService) GetAllPrices(_ context.Context, _ string) ([]models.CurrencyPrice, error) {
	return s.all, s.err
}

func (s *stubService) GetLatestPrice(_ context.Context, _ string) (*models.CurrencyPrice, error) {
	return s.latest, s.err
}

func (s *stubService) GetPricesByRange(_ context.Context, _ string, startTS, endTS *int64) ([]models.CurrencyPrice, error) {
	s.startTS = startTS
	s.endTS = endTS
	return s.ranged, s.err
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, []string{"btc_usd", "eth_usd"})
	r := gin.New()
	r.GET("/prices", h.GetAllPrices)
	r.GET("/prices/latest", h.GetLatestPrice)
	r.GET("/prices/filter", h.GetPricesByDate)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetAllPrices(t *testing.T) {
	sample := []models.CurrencyPrice{
		{ID: 1, Ticker: "btc_usd", Price: 50000.5, Timestamp: 1750000000000000},
		{ID: 2, Ticker: "btc_usd", Price: 50100.0, Timestamp: 1750000060000000},
	}

	cases := []struct {
		name       string
		path       string
		svc        *stubService
		wantStatus int
		wantItems  int
	}{
		{name: "missing ticker", path: "/prices", svc: &stubService{}, wantStatus: http.StatusBadRequest},
		{name: "unknown ticker", path: "/prices?ticker=doge_usd", svc: &stubService{}, wantStatus: http.StatusBadRequest},
		{name: "storage error", path: "/prices?ticker=btc_usd", svc: &stubService{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError},
		{name: "empty list", path: "/prices?ticker=eth_usd", svc: &stubService{all: []models.CurrencyPrice{}}, wantStatus: http.StatusOK, wantItems: 0},
		{name: "success", path: "/prices?ticker=btc_usd", svc: &stubService{all: sample}, wantStatus: http.StatusOK, wantItems: 2},
		{name: "uppercase normalized", path: "/prices?ticker=BTC_USD", svc: &stubService{all: sample}, wantStatus: http.StatusOK, wantItems: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(t, newTestRouter(tc.svc), tc.path)
			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var resp dto.PriceListResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Items == nil {
				t.Fatalf("items must not be null")
			}
			if len(resp.Items) != tc.wantItems {
				t.Fatalf("items %d, want %d", len(resp.Items), tc.wantItems)
			}
		})
	}
}

func TestGetLatestPrice(t *testing.T) {
	latest := &models.CurrencyPrice{ID: 7, Ticker: "btc_usd", Price: 50050, Timestamp: 1750000120000000}

	cases := []struct {
		name       string
		path       string
		svc        *stubService
		wantStatus int
	}{
		{name: "missing ticker", path: "/prices/latest", svc: &stubService{}, wantStatus: http.StatusBadRequest},
		{name: "unknown ticker", path: "/prices/latest?ticker=xrp_usd", svc: &stubService{}, wantStatus: http.StatusBadRequest},
		{name: "no prices yet", path: "/prices/latest?ticker=eth_usd", svc: &stubService{}, wantStatus: http.StatusNotFound},
		{name: "storage error", path: "/prices/latest?ticker=btc_usd", svc: &stubService{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError},
		{name: "success", path: "/prices/latest?ticker=btc_usd", svc: &stubService{latest: latest}, wantStatus: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(t, newTestRouter(tc.svc), tc.path)
			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			var resp dto.PriceResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Ticker != "btc_usd" || resp.Price != 50050 {
				t.Fatalf("unexpected body: %+v", resp)
			}
		})
	}
}

func TestGetPricesByDate(t *testing.T) {
	cases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "missing ticker", path: "/prices/filter", wantStatus: http.StatusBadRequest},
		{name: "bad start_date", path: "/prices/filter?ticker=btc_usd&start_date=06-01-2025", wantStatus: http.StatusBadRequest},
		{name: "bad end_date", path: "/prices/filter?ticker=btc_usd&end_date=not-a-date", wantStatus: http.StatusBadRequest},
		{name: "no bounds", path: "/prices/filter?ticker=btc_usd", wantStatus: http.StatusOK},
		{name: "both bounds", path: "/prices/filter?ticker=btc_usd&start_date=2025-06-01&end_date=2025-06-30", wantStatus: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{ranged: []models.CurrencyPrice{}}
			w := doGet(t, newTestRouter(svc), tc.path)
			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetPricesByDate_Bounds(t *testing.T) {
	svc := &stubService{ranged: []models.CurrencyPrice{}}
	w := doGet(t, newTestRouter(svc), "/prices/filter?ticker=btc_usd&start_date=2025-06-01&end_date=2025-06-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if svc.startTS == nil || svc.endTS == nil {
		t.Fatalf("expected both bounds to be set")
	}
	// 2025-06-01T00:00:00Z in microseconds.
	const dayStart = int64(1748736000000000)
	if *svc.startTS != dayStart {
		t.Fatalf("startTS %d, want %d", *svc.startTS, dayStart)
	}
	// End date expands to the last microsecond of the same day.
	wantEnd := dayStart + 24*60*60*1000000 - 1
	if *svc.endTS != wantEnd {
		t.Fatalf("endTS %d, want %d", *svc.endTS, wantEnd)
	}
}

func TestGetPricesByDate_OpenEnded(t *testing.T) {
	svc := &stubService{ranged: []models.CurrencyPrice{}}
	w := doGet(t, newTestRouter(svc), "/prices/filter?ticker=btc_usd&start_date=2025-06-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if svc.startTS == nil {
		t.Fatalf("expected startTS set")
	}
	if svc.endTS != nil {
		t.Fatalf("expected endTS nil, got %d", *svc.endTS)
	}
}
