package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/progress"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MockPlacesClient is a mock implementation of places.Client
type MockPlacesClient struct {
	mock.Mock
}

func (m *MockPlacesClient) SearchCategory(ctx context.Context, cityName, categoryQuery string, maxResults int) ([]types.Place, error) {
	args := m.Called(ctx, cityName, categoryQuery, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlacesClient) PhotoURL(photoRef string, maxWidthPx int) string {
	args := m.Called(photoRef, maxWidthPx)
	return args.String(0)
}

// MockGenerator is a mock implementation of TextGenerator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateWithSystemPrompt(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, temperature)
	return args.String(0), args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Places.MaxResults = 20
	cfg.Places.PhotoMaxWidthPx = 600
	cfg.Pipeline.JobTimeout = 30 * time.Second
	cfg.Pipeline.ResolveDelay = time.Millisecond
	cfg.Pipeline.PromptPlaceCap = 50
	cfg.AI.Temperature = 0.5
	return cfg
}

func newTestService(placesClient *MockPlacesClient, generator *MockGenerator) (*ServiceImpl, *progress.CacheReporter) {
	logger := slog.Default()
	reporter := progress.NewCacheReporter(time.Hour, logger)
	return NewServiceImpl(placesClient, generator, reporter, testConfig(), logger), reporter
}

func waitForTerminal(t *testing.T, svc *ServiceImpl, requestID string) *types.ProgressRecord {
	t.Helper()
	require.Eventually(t, func() bool {
		record, err := svc.GetProgress(requestID)
		return err == nil && record.Terminal()
	}, 5*time.Second, 10*time.Millisecond, "job never reached a terminal stage")

	record, err := svc.GetProgress(requestID)
	require.NoError(t, err)
	return record
}

func parisPlace(id, name string, photos ...string) types.Place {
	return types.Place{
		ID:               id,
		Name:             name,
		FormattedAddress: name + " address, Paris",
		Rating:           4.5,
		Types:            []string{"point_of_interest"},
		PhotoReferences:  photos,
		Coordinates:      &types.Coordinates{Latitude: 48.85, Longitude: 2.35},
	}
}

func TestStartTripGeneration_FullPipeline(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	attractions := []types.Place{
		parisPlace("attr-001", "Eiffel Tower", "photo-a1"),
		parisPlace("attr-002", "Hidden Garden"), // no photo
		parisPlace("attr-003", "Louvre Museum", "photo-a3"),
	}
	restaurants := []types.Place{
		parisPlace("rest-001", "Le Petit Bistro", "photo-r1"),
		parisPlace("rest-002", "Chez Marie", "photo-r2"),
	}

	placesClient.On("SearchCategory", mock.Anything, "Paris", "attraction", 20).Return(attractions, nil)
	placesClient.On("SearchCategory", mock.Anything, "Paris", "restaurant", 20).Return(restaurants, nil)
	placesClient.On("PhotoURL", mock.AnythingOfType("string"), 600).Return("https://photos.example.com/some-photo")

	itinerary := `Tip 1: attr-001 | attraction | The iron lady of Paris, best visited right before sunset. | 2 hours | $$
Tip 2: attr-002 | attraction | A quiet garden hidden behind the boulevards, rarely crowded. | 1 hour | free
Tip 3: attr-003 | attraction | Home of the Mona Lisa and much more, plan at least half a day. | 4 hours | $$
Tip 4: rest-001 | restaurant | Honest bistro cooking with a daily changing blackboard menu. | 1.5 hours | $$
Tip 5: rest-002 | restaurant | Neighbourhood favourite for duck confit and natural wines. | 2 hours | $$$`

	// First generator call synthesizes the itinerary, second one the summary.
	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return(itinerary, nil).Once()
	generator.On("GenerateWithSystemPrompt", mock.Anything, "", mock.AnythingOfType("string"), float32(0.5)).
		Return("Paris is always a good idea.", nil).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{
		Destination: "Paris",
		Categories:  []string{"attraction", "restaurant"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, requestID)

	record := waitForTerminal(t, svc, requestID)

	require.Empty(t, record.Error)
	require.NotNil(t, record.Result)
	trip := record.Result

	assert.Equal(t, "Paris", trip.Destination)
	assert.Equal(t, "France", trip.Country)
	assert.Equal(t, "Paris is always a good idea.", trip.Summary)
	require.Len(t, trip.Tips, 5)

	// Order matches the synthesizer output, not a re-sort
	assert.Equal(t, "attr-001", trip.Tips[0].PlaceID)
	assert.Equal(t, "rest-002", trip.Tips[4].PlaceID)

	for _, tip := range trip.Tips {
		assert.NotEmpty(t, tip.ImageURL, "tip %q must carry an image URL", tip.PlaceID)
	}

	// The photo-less attraction resolves to a labeled placeholder
	assert.Contains(t, trip.Tips[1].ImageURL, placeholderEndpoint)
	assert.Contains(t, trip.Tips[1].ImageURL, "Hidden")
	// The others resolve to real photo URLs
	assert.NotContains(t, trip.Tips[0].ImageURL, placeholderEndpoint)

	placesClient.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestStartTripGeneration_NoPipesInModelOutputFailsJob(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	placesClient.On("SearchCategory", mock.Anything, "Paris", mock.AnythingOfType("string"), 20).
		Return([]types.Place{parisPlace("attr-001", "Eiffel Tower", "photo-a1")}, nil)
	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return("I had a lovely time thinking about Paris but produced no itinerary.", nil).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{Destination: "Paris"})
	require.NoError(t, err)

	record := waitForTerminal(t, svc, requestID)

	assert.Equal(t, types.StageComplete, record.Stage)
	assert.NotEmpty(t, record.Error)
	assert.Contains(t, record.Error, "could not produce tips")
	assert.Nil(t, record.Result)
}

func TestStartTripGeneration_SynthesisErrorFailsJob(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	placesClient.On("SearchCategory", mock.Anything, "Rome", mock.AnythingOfType("string"), 20).
		Return([]types.Place{parisPlace("attr-001", "Colosseum", "photo-c1")}, nil)
	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return("", errors.New("model unavailable")).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{Destination: "Rome"})
	require.NoError(t, err)

	record := waitForTerminal(t, svc, requestID)

	assert.NotEmpty(t, record.Error)
	assert.Contains(t, record.Error, "model unavailable")
	assert.Nil(t, record.Result)
}

// blockingGenerator hangs until its context is cancelled, standing in for an
// unresponsive model backend.
type blockingGenerator struct{}

func (blockingGenerator) GenerateWithSystemPrompt(ctx context.Context, _, _ string, _ float32) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestStartTripGeneration_SlowModelCallIsCutOff(t *testing.T) {
	placesClient := new(MockPlacesClient)
	placesClient.On("SearchCategory", mock.Anything, "Paris", mock.AnythingOfType("string"), 20).
		Return([]types.Place{parisPlace("attr-001", "Eiffel Tower", "photo-a1")}, nil)

	cfg := testConfig()
	cfg.AI.Timeout = 50 * time.Millisecond
	logger := slog.Default()
	reporter := progress.NewCacheReporter(time.Hour, logger)
	svc := NewServiceImpl(placesClient, blockingGenerator{}, reporter, cfg, logger)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{Destination: "Paris"})
	require.NoError(t, err)

	// The per-call timeout bounds the model call, so the job fails long
	// before its 30 second deadline.
	record := waitForTerminal(t, svc, requestID)

	assert.NotEmpty(t, record.Error)
	assert.Contains(t, record.Error, context.DeadlineExceeded.Error())
	assert.Nil(t, record.Result)
}

func TestStartTripGeneration_FailedCategoryDegradesToEmpty(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	placesClient.On("SearchCategory", mock.Anything, "Lisbon", "attraction", 20).
		Return(nil, errors.New("catalog timeout")).Once()
	placesClient.On("SearchCategory", mock.Anything, "Lisbon", "restaurant", 20).
		Return([]types.Place{parisPlace("rest-010", "Cervejaria Ramiro", "photo-x")}, nil).Once()
	placesClient.On("PhotoURL", mock.AnythingOfType("string"), 600).Return("https://photos.example.com/x")

	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return("Tip 1: rest-010 | restaurant | Legendary seafood counter, order the garlic prawns and tiger shrimp. | 2 hours | $$$", nil).Once()
	generator.On("GenerateWithSystemPrompt", mock.Anything, "", mock.AnythingOfType("string"), float32(0.5)).
		Return("Lisbon shines in the evening light.", nil).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{
		Destination: "Lisbon",
		Categories:  []string{"attraction", "restaurant"},
	})
	require.NoError(t, err)

	record := waitForTerminal(t, svc, requestID)

	require.Empty(t, record.Error)
	require.NotNil(t, record.Result)
	require.Len(t, record.Result.Tips, 1)
	assert.Equal(t, "Cervejaria Ramiro", record.Result.Tips[0].Title)
}

func TestStartTripGeneration_SummaryFailureIsNotFatal(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	placesClient.On("SearchCategory", mock.Anything, "Berlin", mock.AnythingOfType("string"), 20).
		Return([]types.Place{parisPlace("attr-042", "Museum Island", "photo-b1")}, nil)
	placesClient.On("PhotoURL", mock.AnythingOfType("string"), 600).Return("https://photos.example.com/b1")

	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return("Tip 1: attr-042 | attraction | Five world-class museums on one small island in the Spree. | 4 hours | $$", nil).Once()
	generator.On("GenerateWithSystemPrompt", mock.Anything, "", mock.AnythingOfType("string"), float32(0.5)).
		Return("", errors.New("quota exceeded")).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{Destination: "Berlin"})
	require.NoError(t, err)

	record := waitForTerminal(t, svc, requestID)

	require.Empty(t, record.Error)
	require.NotNil(t, record.Result)
	assert.Empty(t, record.Result.Summary)
	assert.Equal(t, "Germany", record.Result.Country)
}

func TestStartTripGeneration_EmptyDestinationRejected(t *testing.T) {
	svc, _ := newTestService(new(MockPlacesClient), new(MockGenerator))

	_, err := svc.StartTripGeneration(context.Background(), types.TripRequest{})

	require.Error(t, err)
}

func TestGetProgress_IdempotentAfterCompletion(t *testing.T) {
	placesClient := new(MockPlacesClient)
	generator := new(MockGenerator)

	placesClient.On("SearchCategory", mock.Anything, "Tokyo", mock.AnythingOfType("string"), 20).
		Return([]types.Place{parisPlace("attr-100", "Senso-ji", "photo-t1")}, nil)
	placesClient.On("PhotoURL", mock.AnythingOfType("string"), 600).Return("https://photos.example.com/t1")

	generator.On("GenerateWithSystemPrompt", mock.Anything, itinerarySystemPrompt, mock.AnythingOfType("string"), float32(0.5)).
		Return("Tip 1: attr-100 | attraction | Tokyo's oldest temple, arrive early before the crowds build. | 2 hours | free", nil).Once()
	generator.On("GenerateWithSystemPrompt", mock.Anything, "", mock.AnythingOfType("string"), float32(0.5)).
		Return("Tokyo never stops surprising.", nil).Once()

	svc, _ := newTestService(placesClient, generator)

	requestID, err := svc.StartTripGeneration(context.Background(), types.TripRequest{Destination: "Tokyo"})
	require.NoError(t, err)

	first := waitForTerminal(t, svc, requestID)
	second, err := svc.GetProgress(requestID)
	require.NoError(t, err)

	// Repeated polls of a completed request return the same terminal record;
	// nothing re-executes.
	assert.Equal(t, first, second)
	generator.AssertNumberOfCalls(t, "GenerateWithSystemPrompt", 2)
}

func TestGetProgress_UnknownRequestReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(new(MockPlacesClient), new(MockGenerator))

	_, err := svc.GetProgress("no-such-request")

	require.ErrorIs(t, err, progress.ErrNotFound)
}

func TestGenerateItineraryPrompt_CapsCatalog(t *testing.T) {
	catalog := make([]types.Place, 80)
	for i := range catalog {
		catalog[i] = parisPlace(fmt.Sprintf("place-%03d", i), fmt.Sprintf("Place %d", i), "photo")
	}

	prompt := generateItineraryPrompt("Paris", catalog, 3, "", 50)

	assert.Contains(t, prompt, "place-049")
	assert.NotContains(t, prompt, "place-050")
}
