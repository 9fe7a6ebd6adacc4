package progress

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func newTestReporter() *CacheReporter {
	return NewCacheReporter(time.Hour, slog.Default())
}

func TestGet_UnknownRequestIsNotFound(t *testing.T) {
	reporter := newTestReporter()

	_, err := reporter.Get("missing")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestStartAndUpdate(t *testing.T) {
	reporter := newTestReporter()
	reporter.Start("req-1")

	record, err := reporter.Get("req-1")
	require.NoError(t, err)
	assert.Equal(t, types.StageAccepted, record.Stage)
	assert.False(t, record.Terminal())

	reporter.Update("req-1", types.StagePlaces, 15, "Finding attractions in Paris")

	record, err = reporter.Get("req-1")
	require.NoError(t, err)
	assert.Equal(t, types.StagePlaces, record.Stage)
	assert.Equal(t, 15, record.Percent)
	assert.Equal(t, "Finding attractions in Paris", record.Message)
	require.NotNil(t, record.EstimatedSecondsRemaining)
	assert.GreaterOrEqual(t, *record.EstimatedSecondsRemaining, 0)
}

func TestComplete(t *testing.T) {
	reporter := newTestReporter()
	reporter.Start("req-2")

	trip := &types.Trip{Destination: "Paris", Country: "France"}
	reporter.Complete("req-2", trip)

	record, err := reporter.Get("req-2")
	require.NoError(t, err)
	assert.True(t, record.Terminal())
	assert.Equal(t, 100, record.Percent)
	assert.Equal(t, trip, record.Result)
	assert.Empty(t, record.Error)
	assert.Nil(t, record.EstimatedSecondsRemaining)
}

func TestFail(t *testing.T) {
	reporter := newTestReporter()
	reporter.Start("req-3")

	reporter.Fail("req-3", errors.New("could not produce tips"))

	record, err := reporter.Get("req-3")
	require.NoError(t, err)
	assert.True(t, record.Terminal())
	assert.Equal(t, "could not produce tips", record.Error)
	assert.Nil(t, record.Result)
}

func TestUpdateUnknownRequestIsIgnored(t *testing.T) {
	reporter := newTestReporter()

	// Must not panic or create a record out of thin air
	reporter.Update("ghost", types.StagePlaces, 10, "nope")
	reporter.Complete("ghost", &types.Trip{})
	reporter.Fail("ghost", errors.New("nope"))

	_, err := reporter.Get("ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTerminalRecordExpires(t *testing.T) {
	reporter := NewCacheReporter(20*time.Millisecond, slog.Default())
	reporter.Start("req-4")
	reporter.Complete("req-4", &types.Trip{Destination: "Rome"})

	_, err := reporter.Get("req-4")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := reporter.Get("req-4")
		return errors.Is(err, ErrNotFound)
	}, time.Second, 10*time.Millisecond, "terminal record should expire after its TTL")
}

func TestEstimateRemaining(t *testing.T) {
	started := time.Now().Add(-10 * time.Second)

	assert.Nil(t, estimateRemaining(started, 0))
	assert.Nil(t, estimateRemaining(started, 100))

	remaining := estimateRemaining(started, 50)
	require.NotNil(t, remaining)
	// Halfway after ten seconds extrapolates to roughly ten more
	assert.InDelta(t, 10, *remaining, 2)
}
