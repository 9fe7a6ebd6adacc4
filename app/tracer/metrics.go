package tracer

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

var (
	tripRequestsTotal      metric.Int64Counter
	tripDurationSeconds    metric.Float64Histogram
	catalogSearchErrors    metric.Int64Counter
	tipsParsedTotal        metric.Int64Counter
	placeholderImagesTotal metric.Int64Counter
)

// InitializeMetrics sets up the application's metrics. Call this during startup.
func InitializeMetrics(meter metric.Meter, logger *slog.Logger) {
	var err error

	tripRequestsTotal, err = meter.Int64Counter(
		"trip_requests_total",
		metric.WithDescription("Total number of trip generation requests"),
	)
	if err != nil {
		logger.Error("Failed to create trip_requests_total counter", slog.Any("error", err))
	}

	tripDurationSeconds, err = meter.Float64Histogram(
		"trip_generation_duration_seconds",
		metric.WithDescription("End-to-end duration of trip generation jobs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Error("Failed to create trip_generation_duration_seconds histogram", slog.Any("error", err))
	}

	catalogSearchErrors, err = meter.Int64Counter(
		"catalog_search_errors_total",
		metric.WithDescription("Total number of failed place catalog searches"),
	)
	if err != nil {
		logger.Error("Failed to create catalog_search_errors_total counter", slog.Any("error", err))
	}

	tipsParsedTotal, err = meter.Int64Counter(
		"tips_parsed_total",
		metric.WithDescription("Total number of tips accepted by the parser"),
	)
	if err != nil {
		logger.Error("Failed to create tips_parsed_total counter", slog.Any("error", err))
	}

	placeholderImagesTotal, err = meter.Int64Counter(
		"placeholder_images_total",
		metric.WithDescription("Total number of tips resolved with a placeholder image"),
	)
	if err != nil {
		logger.Error("Failed to create placeholder_images_total counter", slog.Any("error", err))
	}

	logger.Info("Application metrics initialized successfully.")
}

func RecordTripRequest(ctx context.Context) {
	if tripRequestsTotal != nil {
		tripRequestsTotal.Add(ctx, 1)
	}
}

func RecordTripDuration(ctx context.Context, seconds float64) {
	if tripDurationSeconds != nil {
		tripDurationSeconds.Record(ctx, seconds)
	}
}

func RecordCatalogSearchError(ctx context.Context) {
	if catalogSearchErrors != nil {
		catalogSearchErrors.Add(ctx, 1)
	}
}

func RecordTipsParsed(ctx context.Context, count int) {
	if tipsParsedTotal != nil {
		tipsParsedTotal.Add(ctx, int64(count))
	}
}

func RecordPlaceholderImage(ctx context.Context) {
	if placeholderImagesTotal != nil {
		placeholderImagesTotal.Add(ctx, 1)
	}
}
