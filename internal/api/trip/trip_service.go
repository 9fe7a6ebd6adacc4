package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/tracer"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/places"
	"github.com/FACorreiaa/go-trip-planner/internal/api/progress"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// defaultCategories are queried when the request does not name its own.
var defaultCategories = []string{"attractions", "restaurants", "activities"}

// TextGenerator is the text-generation collaborator. Single-shot, no
// streaming; satisfied by the generative AI client.
type TextGenerator interface {
	GenerateWithSystemPrompt(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the trip generation pipeline exposed to the HTTP layer.
type Service interface {
	// StartTripGeneration accepts a request, starts the pipeline in the
	// background and returns the request ID to poll with.
	StartTripGeneration(ctx context.Context, req types.TripRequest) (string, error)
	// GetProgress returns the current progress record for a request, or
	// progress.ErrNotFound when no record exists yet.
	GetProgress(requestID string) (*types.ProgressRecord, error)
}

// ServiceImpl orchestrates catalog search, synthesis, parsing, resolution and
// the summary stage, reporting progress at every boundary.
type ServiceImpl struct {
	logger       *slog.Logger
	placesClient places.Client
	generator    TextGenerator
	reporter     progress.Reporter
	resolver     *Resolver

	jobTimeout     time.Duration
	aiTimeout      time.Duration
	resolveDelay   time.Duration
	promptPlaceCap int
	maxResults     int
	temperature    float32
}

func NewServiceImpl(placesClient places.Client, generator TextGenerator, reporter progress.Reporter, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	jobTimeout := cfg.Pipeline.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	maxResults := cfg.Places.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	promptPlaceCap := cfg.Pipeline.PromptPlaceCap
	if promptPlaceCap <= 0 {
		promptPlaceCap = 50
	}
	aiTimeout := cfg.AI.Timeout
	if aiTimeout <= 0 {
		aiTimeout = 60 * time.Second
	}
	return &ServiceImpl{
		logger:         logger,
		placesClient:   placesClient,
		generator:      generator,
		reporter:       reporter,
		resolver:       NewResolver(placesClient, cfg.Places.PhotoMaxWidthPx, logger),
		jobTimeout:     jobTimeout,
		aiTimeout:      aiTimeout,
		resolveDelay:   cfg.Pipeline.ResolveDelay,
		promptPlaceCap: promptPlaceCap,
		maxResults:     maxResults,
		temperature:    float32(cfg.AI.Temperature),
	}
}

func (s *ServiceImpl) StartTripGeneration(ctx context.Context, req types.TripRequest) (string, error) {
	_, span := otel.Tracer("TripService").Start(ctx, "StartTripGeneration", trace.WithAttributes(
		attribute.String("destination", req.Destination),
	))
	defer span.End()

	if req.Destination == "" {
		err := fmt.Errorf("destination is required")
		span.RecordError(err)
		return "", err
	}

	requestID := uuid.New().String()
	s.reporter.Start(requestID)
	tracer.RecordTripRequest(ctx)

	// The pipeline is decoupled from the request/response cycle: it runs on
	// its own context with the job's soft deadline, so an abandoned poller
	// does not cancel it and a stuck upstream cannot hold it forever.
	go func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.run(jobCtx, requestID, req)
	}()

	span.SetAttributes(attribute.String("request.id", requestID))
	span.SetStatus(codes.Ok, "Trip generation started")
	return requestID, nil
}

func (s *ServiceImpl) GetProgress(requestID string) (*types.ProgressRecord, error) {
	return s.reporter.Get(requestID)
}

// run executes the pipeline stages strictly sequentially and writes the
// terminal record on completion or failure.
func (s *ServiceImpl) run(ctx context.Context, requestID string, req types.TripRequest) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "run", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("destination", req.Destination),
	))
	defer span.End()
	started := time.Now()

	snapshot, catalog := s.searchCatalog(ctx, requestID, req)

	s.reporter.Update(requestID, types.StageItinerary, 40, "Generating your itinerary")
	raw, err := s.synthesize(ctx, req, catalog)
	if err != nil {
		s.logger.ErrorContext(ctx, "Itinerary synthesis failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		s.reporter.Fail(requestID, fmt.Errorf("failed to generate itinerary: %w", err))
		return
	}

	s.reporter.Update(requestID, types.StageParsing, 55, "Reading the recommendations")
	tips, err := ParseTips(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "No tips could be parsed from model output",
			slog.Int("raw_len", len(raw)), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse produced zero tips")
		s.reporter.Fail(requestID, fmt.Errorf("could not produce tips — try again"))
		return
	}
	tracer.RecordTipsParsed(ctx, len(tips))
	span.SetAttributes(attribute.Int("tips.count", len(tips)))

	tripTips := s.resolveTips(ctx, requestID, tips, snapshot)

	s.reporter.Update(requestID, types.StageSummary, 95, "Wrapping up")
	summary := s.summarize(ctx, req.Destination)

	result := &types.Trip{
		Destination: req.Destination,
		Country:     LookupCountry(req.Destination),
		Tips:        tripTips,
		Summary:     summary,
	}
	s.reporter.Complete(requestID, result)
	tracer.RecordTripDuration(ctx, time.Since(started).Seconds())
	span.SetStatus(codes.Ok, "Trip generated")

	s.logger.InfoContext(ctx, "Trip generation completed",
		slog.String("request_id", requestID),
		slog.String("destination", req.Destination),
		slog.Int("tips", len(tripTips)),
		slog.Duration("took", time.Since(started)))
}

// searchCatalog runs the category searches sequentially and merges the
// results into the deduplicated snapshot. The returned slice holds the same
// places in first-appearance order so the prompt embeds a stable prefix. A
// failed category degrades to zero candidates; it never fails the job.
func (s *ServiceImpl) searchCatalog(ctx context.Context, requestID string, req types.TripRequest) (map[string]types.Place, []types.Place) {
	categories := req.Categories
	if len(categories) == 0 {
		categories = defaultCategories
	}

	batches := make([][]types.Place, 0, len(categories))
	for i, category := range categories {
		percent := 5 + (25*(i+1))/len(categories)
		s.reporter.Update(requestID, types.StagePlaces, percent, fmt.Sprintf("Finding %s in %s", category, req.Destination))

		results, err := s.placesClient.SearchCategory(ctx, req.Destination, category, s.maxResults)
		if err != nil {
			s.logger.WarnContext(ctx, "Category search failed, continuing without it",
				slog.String("category", category), slog.Any("error", err))
			tracer.RecordCatalogSearchError(ctx)
			continue
		}
		batches = append(batches, results)
	}

	snapshot := places.BuildSnapshot(batches...)

	var order []string
	seen := make(map[string]bool, len(snapshot))
	for _, batch := range batches {
		for _, place := range batch {
			if !seen[place.ID] {
				seen[place.ID] = true
				order = append(order, place.ID)
			}
		}
	}
	catalog := make([]types.Place, 0, len(order))
	for _, id := range order {
		catalog = append(catalog, snapshot[id])
	}

	s.logger.DebugContext(ctx, "Catalog snapshot built",
		slog.String("request_id", requestID), slog.Int("places", len(snapshot)))
	return snapshot, catalog
}

// synthesize asks the model for the itinerary under the per-call timeout, so
// a hung upstream surfaces as a failure instead of eating the job deadline.
func (s *ServiceImpl) synthesize(ctx context.Context, req types.TripRequest, catalog []types.Place) (string, error) {
	prompt := generateItineraryPrompt(req.Destination, catalog, req.Days, req.Preferences, s.promptPlaceCap)
	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	return s.generator.GenerateWithSystemPrompt(callCtx, itinerarySystemPrompt, prompt, s.temperature)
}

// resolveTips resolves entries one at a time in order, pacing the loop to
// respect upstream rate limits. Per-tip failures degrade to a placeholder.
func (s *ServiceImpl) resolveTips(ctx context.Context, requestID string, tips []types.Tip, snapshot map[string]types.Place) []types.TripTip {
	resolved := make([]types.TripTip, 0, len(tips))
	for i, tip := range tips {
		tripTip := s.resolver.Resolve(tip, snapshot)
		if strings.HasPrefix(tripTip.ImageURL, placeholderEndpoint) {
			tracer.RecordPlaceholderImage(ctx)
		}
		resolved = append(resolved, tripTip)

		percent := 60 + (30*(i+1))/len(tips)
		s.reporter.Update(requestID, types.StageResolving, percent, fmt.Sprintf("Resolving place %d of %d", i+1, len(tips)))

		if i < len(tips)-1 && s.resolveDelay > 0 {
			select {
			case <-ctx.Done():
				return resolved
			case <-time.After(s.resolveDelay):
			}
		}
	}
	return resolved
}

// summarize generates the destination summary. Cosmetic: failure degrades to
// an empty summary rather than failing the trip.
func (s *ServiceImpl) summarize(ctx context.Context, destination string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	summary, err := s.generator.GenerateWithSystemPrompt(callCtx, "", generateSummaryPrompt(destination), s.temperature)
	if err != nil {
		s.logger.WarnContext(ctx, "Summary generation failed, leaving summary empty",
			slog.String("destination", destination), slog.Any("error", err))
		return ""
	}
	return summary
}
