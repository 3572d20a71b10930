package datafetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crypto_tracker_backend/config"
	"crypto_tracker_backend/models"
)

// Fetcher is one source adapter. Fetch returns one normalized record per
// observation date covered by the call (a backfill-capable source may return
// many) and never returns partially filled records: all fields are present or
// the call fails with a FetchError.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]models.IndicatorRecord, error)
}

// ErrorKind classifies adapter failures
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindSchema
	KindInsufficientHistory
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindSchema:
		return "schema error"
	case KindInsufficientHistory:
		return "insufficient history"
	default:
		return "fetch error"
	}
}

// FetchError wraps every failure mode of a source adapter: unreachable or
// rate-limited endpoints, unexpected response shapes, and series too short
// for a computed indicator.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func networkError(format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: KindNetwork, Err: fmt.Errorf(format, args...)}
}

func schemaError(format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: KindSchema, Err: fmt.Errorf(format, args...)}
}

func insufficientHistoryError(format string, args ...interface{}) *FetchError {
	return &FetchError{Kind: KindInsufficientHistory, Err: fmt.Errorf(format, args...)}
}

// BuildFetchers constructs the full adapter registry in refresh order.
// Selection is explicit per indicator name; endpoints and thresholds come
// from configuration so tests can point adapters at local servers.
func BuildFetchers(cfg *config.Config) []Fetcher {
	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	yahoo := NewYahooClient(cfg.YahooBaseURL, timeout)
	httpClient := &http.Client{Timeout: timeout}

	return []Fetcher{
		NewMag7BTCFetcher(yahoo),
		NewPiCycleFetcher(yahoo, cfg.PiCycleWarnThreshold),
		NewCoinbaseRankFetcher(httpClient, cfg.AppleRSSURL),
		NewCBBIFetcher(httpClient, cfg.CBBIURL),
		NewHalvingFetcher(),
	}
}
