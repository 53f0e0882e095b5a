package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"deripulse/internal/domain/dto"
	"deripulse/internal/service"
)

const dateLayout = "2006-01-02"

// Handler provides HTTP handlers for the price read endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters (ticker allow-list, dates)
//   - Interact with the service layer for data access
//   - Translate results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc     service.PriceService
	allowed map[string]struct{}
	tickers []string // preserves config order for error messages
}

// NewHandler constructs a Handler bound to the given service and ticker
// allow-list.
func NewHandler(svc service.PriceService, tickers []string) *Handler {
	allowed := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		allowed[t] = struct{}{}
	}
	return &Handler{svc: svc, allowed: allowed, tickers: tickers}
}

// ticker extracts and validates the required ticker query parameter.
// On failure it writes the 400 response and returns ok=false.
func (h *Handler) ticker(c *gin.Context) (string, bool) {
	ticker := strings.ToLower(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return "", false
	}
	if _, ok := h.allowed[ticker]; !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			"invalid ticker, allowed values: "+strings.Join(h.tickers, ", "), nil))
		return "", false
	}
	return ticker, true
}

// GetAllPrices handles GET /api/v1/prices requests.
//
// GetAllPrices godoc
// @Summary      List all prices for a ticker
// @Description  Returns every stored index-price observation for the ticker, oldest first
// @Tags         prices
// @Produce      json
// @Param        ticker  query     string  true  "Currency ticker" example(btc_usd)
// @Success      200     {object}  dto.PriceListResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse      "Bad Request"
// @Failure      500     {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/prices [get]
func (h *Handler) GetAllPrices(c *gin.Context) {
	ticker, ok := h.ticker(c)
	if !ok {
		return
	}

	prices, err := h.svc.GetAllPrices(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch prices", err))
		return
	}

	c.JSON(http.StatusOK, dto.NewPriceListResponse(prices))
}

// GetLatestPrice handles GET /api/v1/prices/latest requests.
//
// GetLatestPrice godoc
// @Summary      Latest price for a ticker
// @Description  Returns the observation with the most recent exchange timestamp
// @Tags         prices
// @Produce      json
// @Param        ticker  query     string  true  "Currency ticker" example(btc_usd)
// @Success      200     {object}  dto.PriceResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Not Found"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/prices/latest [get]
func (h *Handler) GetLatestPrice(c *gin.Context) {
	ticker, ok := h.ticker(c)
	if !ok {
		return
	}

	latest, err := h.svc.GetLatestPrice(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch latest price", err))
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no prices found for ticker '"+ticker+"'", nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewPriceResponse(*latest))
}

// GetPricesByDate handles GET /api/v1/prices/filter requests.
//
// The optional start_date/end_date parameters are calendar days (UTC); the
// end date is expanded to its last microsecond so the range is inclusive on
// both sides. An empty intersection is a 200 with an empty list.
//
// GetPricesByDate godoc
// @Summary      Prices for a ticker within a date range
// @Description  Returns observations whose exchange timestamp falls within the inclusive date range
// @Tags         prices
// @Produce      json
// @Param        ticker      query     string  true   "Currency ticker" example(btc_usd)
// @Param        start_date  query     string  false  "Start date in YYYY-MM-DD" example(2025-06-01)
// @Param        end_date    query     string  false  "End date in YYYY-MM-DD" example(2025-06-30)
// @Success      200         {object}  dto.PriceListResponse  "Success"
// @Failure      400         {object}  dto.ErrorResponse      "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/prices/filter [get]
func (h *Handler) GetPricesByDate(c *gin.Context) {
	ticker, ok := h.ticker(c)
	if !ok {
		return
	}

	var startTS, endTS *int64
	if s := c.Query("start_date"); s != "" {
		day, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid start_date format, expected YYYY-MM-DD", err))
			return
		}
		ts := day.UnixMicro()
		startTS = &ts
	}
	if s := c.Query("end_date"); s != "" {
		day, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid end_date format, expected YYYY-MM-DD", err))
			return
		}
		// Inclusive upper bound: last microsecond of the end day.
		ts := day.AddDate(0, 0, 1).Add(-time.Microsecond).UnixMicro()
		endTS = &ts
	}

	prices, err := h.svc.GetPricesByRange(c.Request.Context(), ticker, startTS, endTS)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch prices", err))
		return
	}

	c.JSON(http.StatusOK, dto.NewPriceListResponse(prices))
}
