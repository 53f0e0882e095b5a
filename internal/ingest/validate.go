package ingest

import (
	"fmt"
	"time"

	"deripulse/internal/deribit"
	"deripulse/internal/domain/models"
)

// clockSkewTolerance bounds how far in the future an exchange-reported
// timestamp may be before the quote is rejected.
const clockSkewTolerance = 5 * time.Minute

// nowFunc is an indirection for the current time; tests can override it.
var nowFunc = time.Now

// ValidationError reports which field of a fetched quote violated which
// constraint. Validation failures are terminal for a polling cycle: the
// exchange will keep returning the same bad payload, so retrying is useless.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quote: %s: %s", e.Field, e.Reason)
}

// ValidateQuote turns a raw Deribit response into a CurrencyPrice record,
// or fails with a *ValidationError naming the offending field.
//
// Rules:
//   - ticker must be in the allow-list;
//   - result.index_price must be positive;
//   - usIn must be present (> 0) and not in the future beyond a small
//     clock-skew tolerance.
//
// The function performs no I/O and no coercion beyond type mapping.
func ValidateQuote(ticker string, quote *deribit.IndexPriceResponse, allowed map[string]struct{}) (models.CurrencyPrice, error) {
	if _, ok := allowed[ticker]; !ok {
		return models.CurrencyPrice{}, &ValidationError{Field: "ticker", Reason: fmt.Sprintf("%q is not in the allow-list", ticker)}
	}
	if quote == nil {
		return models.CurrencyPrice{}, &ValidationError{Field: "payload", Reason: "missing response"}
	}
	if quote.Result.IndexPrice <= 0 {
		return models.CurrencyPrice{}, &ValidationError{Field: "price", Reason: fmt.Sprintf("must be positive, got %v", quote.Result.IndexPrice)}
	}
	if quote.UsIn <= 0 {
		return models.CurrencyPrice{}, &ValidationError{Field: "timestamp", Reason: "missing or zero usIn"}
	}
	if quote.UsIn > nowFunc().Add(clockSkewTolerance).UnixMicro() {
		return models.CurrencyPrice{}, &ValidationError{Field: "timestamp", Reason: "observation time is in the future"}
	}

	return models.CurrencyPrice{
		Ticker:    ticker,
		Price:     quote.Result.IndexPrice,
		Timestamp: quote.UsIn,
	}, nil
}
