package progress

import (
	"errors"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// ErrNotFound is returned when no record exists for a request ID. Pollers
// arriving before the worker has written its first record hit this; it means
// "pending", not failure.
var ErrNotFound = errors.New("progress record not found")

// Ensure implementation satisfies the interface
var _ Reporter = (*CacheReporter)(nil)

// Reporter is the keyed job-status store the pipeline writes to and the
// HTTP layer polls. Exactly one writer exists per key.
type Reporter interface {
	Start(requestID string)
	Update(requestID, stage string, percent int, message string)
	Complete(requestID string, result *types.Trip)
	Fail(requestID string, err error)
	Get(requestID string) (*types.ProgressRecord, error)
}

// CacheReporter keeps records in an in-process cache. Live records never
// expire; terminal records are rewritten with a TTL so finished jobs do not
// accumulate forever.
type CacheReporter struct {
	logger      *slog.Logger
	store       *cache.Cache
	terminalTTL time.Duration
}

func NewCacheReporter(terminalTTL time.Duration, logger *slog.Logger) *CacheReporter {
	if terminalTTL <= 0 {
		terminalTTL = 1 * time.Hour
	}
	return &CacheReporter{
		logger:      logger,
		store:       cache.New(cache.NoExpiration, 10*time.Minute),
		terminalTTL: terminalTTL,
	}
}

func (r *CacheReporter) Start(requestID string) {
	now := time.Now()
	record := &types.ProgressRecord{
		RequestID: requestID,
		Stage:     types.StageAccepted,
		Percent:   2,
		Message:   "Request accepted",
		StartedAt: now,
		UpdatedAt: now,
	}
	r.store.Set(requestID, record, cache.NoExpiration)
}

// Writes store a fresh copy of the record: pollers may still hold the
// previous pointer, so a stored record is never mutated after Set.

func (r *CacheReporter) Update(requestID, stage string, percent int, message string) {
	current, err := r.Get(requestID)
	if err != nil {
		r.logger.Warn("Progress update for unknown request", slog.String("request_id", requestID))
		return
	}
	record := *current
	record.Stage = stage
	record.Percent = percent
	record.Message = message
	record.UpdatedAt = time.Now()
	record.EstimatedSecondsRemaining = estimateRemaining(record.StartedAt, percent)
	r.store.Set(requestID, &record, cache.NoExpiration)
}

func (r *CacheReporter) Complete(requestID string, result *types.Trip) {
	current, err := r.Get(requestID)
	if err != nil {
		r.logger.Warn("Progress complete for unknown request", slog.String("request_id", requestID))
		return
	}
	record := *current
	record.Stage = types.StageComplete
	record.Percent = 100
	record.Message = "Trip generated"
	record.Result = result
	record.Error = ""
	record.EstimatedSecondsRemaining = nil
	record.UpdatedAt = time.Now()
	r.store.Set(requestID, &record, r.terminalTTL)
}

func (r *CacheReporter) Fail(requestID string, failure error) {
	current, err := r.Get(requestID)
	if err != nil {
		r.logger.Warn("Progress fail for unknown request", slog.String("request_id", requestID))
		return
	}
	record := *current
	record.Stage = types.StageComplete
	record.Percent = 100
	record.Message = "Trip generation failed"
	record.Error = failure.Error()
	record.Result = nil
	record.EstimatedSecondsRemaining = nil
	record.UpdatedAt = time.Now()
	r.store.Set(requestID, &record, r.terminalTTL)
}

func (r *CacheReporter) Get(requestID string) (*types.ProgressRecord, error) {
	value, found := r.store.Get(requestID)
	if !found {
		return nil, ErrNotFound
	}
	record, ok := value.(*types.ProgressRecord)
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// estimateRemaining is a naive linear extrapolation from elapsed time and
// current percent. Undefined at the extremes.
func estimateRemaining(startedAt time.Time, percent int) *int {
	if percent <= 0 || percent >= 100 {
		return nil
	}
	elapsed := time.Since(startedAt).Seconds()
	remaining := int(elapsed * float64(100-percent) / float64(percent))
	return &remaining
}
