package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"crypto_tracker_backend/models"
	"crypto_tracker_backend/services/datafetcher"
)

// StatusBroadcaster receives refresh health updates as they are written.
// Implemented by the realtime status service; nil disables broadcasting.
type StatusBroadcaster interface {
	BroadcastStatus(status models.IndicatorUpdate)
}

// RefreshService runs one full refresh cycle: every adapter is fetched in
// order, results are upserted, and the outcome lands in indicator_updates.
// One indicator's failure never aborts the cycle for the others.
type RefreshService struct {
	store        *DataStore
	fetchers     []datafetcher.Fetcher
	broadcaster  StatusBroadcaster
	fetchTimeout time.Duration

	// Guards against overlapping cycles when the calendar and interval
	// triggers fire close together. The upsert is idempotent either way;
	// skipping just avoids doubled outbound calls.
	running sync.Mutex
}

// NewRefreshService creates a refresh orchestrator
func NewRefreshService(store *DataStore, fetchers []datafetcher.Fetcher, broadcaster StatusBroadcaster, fetchTimeout time.Duration) *RefreshService {
	return &RefreshService{
		store:        store,
		fetchers:     fetchers,
		broadcaster:  broadcaster,
		fetchTimeout: fetchTimeout,
	}
}

// RunCycle fetches and stores every indicator sequentially. If a cycle is
// already in flight the call returns immediately.
func (s *RefreshService) RunCycle(ctx context.Context) {
	if !s.running.TryLock() {
		log.Println("Refresh cycle already in progress, skipping trigger")
		return
	}
	defer s.running.Unlock()

	log.Printf("Starting refresh cycle for %d indicators", len(s.fetchers))
	start := time.Now()

	for _, fetcher := range s.fetchers {
		s.refreshIndicator(ctx, fetcher)
	}

	log.Printf("Refresh cycle completed in %s", time.Since(start).Round(time.Millisecond))
}

// refreshIndicator runs the fetch/store sequence for one indicator. Adapter
// failures are contained here and surfaced only through the status row;
// storage failures are logged as process-level concerns.
func (s *RefreshService) refreshIndicator(ctx context.Context, fetcher datafetcher.Fetcher) {
	name := fetcher.Name()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	records, err := fetcher.Fetch(fetchCtx)
	cancel()

	if err != nil {
		log.Printf("Fetch failed for %s: %v", name, err)
		s.recordStatus(name, false, err)
		return
	}

	if err := s.store.Upsert(name, records); err != nil {
		// Stale data is preferable to corrupt data: the indicator rows
		// stay untouched and only the status row reflects the failure.
		s.logStorageError(err)
		s.recordStatus(name, false, err)
		return
	}

	log.Printf("Stored %d record(s) for %s", len(records), name)
	s.recordStatus(name, true, nil)
}

func (s *RefreshService) recordStatus(indicator string, success bool, cause error) {
	if err := s.store.RecordStatus(indicator, success, cause); err != nil {
		s.logStorageError(err)
		return
	}
	if s.broadcaster != nil {
		if status, err := s.store.GetStatus(indicator); err == nil {
			s.broadcaster.BroadcastStatus(*status)
		}
	}
}

func (s *RefreshService) logStorageError(err error) {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		log.Printf("STORAGE ERROR: persistence layer unhealthy: %v", storageErr)
		return
	}
	log.Printf("Storage failure: %v", err)
}
