package trip

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/api/progress"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateTrip(w http.ResponseWriter, r *http.Request)
	GetProgress(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tripService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tripService: tripService,
		logger:      logger,
	}
}

// GenerateTrip accepts a trip request, fires the background pipeline and
// returns the request ID to poll with.
func (h *HandlerImpl) GenerateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GenerateTrip")
	defer span.End()

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Invalid trip request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	requestID, err := h.tripService.StartTripGeneration(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to start trip generation", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	span.SetAttributes(attribute.String("request.id", requestID))
	span.SetStatus(codes.Ok, "Trip generation accepted")
	api.WriteJSONResponse(w, r, http.StatusAccepted, map[string]string{
		"request_id": requestID,
	})
}

// GetProgress returns the progress record for a request. A record that does
// not exist yet reads as pending: polling clients routinely arrive before the
// worker has written anything.
func (h *HandlerImpl) GetProgress(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("TripHandler").Start(r.Context(), "GetProgress")
	defer span.End()

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "request ID is required")
		return
	}

	record, err := h.tripService.GetProgress(requestID)
	if err != nil {
		if errors.Is(err, progress.ErrNotFound) {
			now := time.Now()
			api.WriteJSONResponse(w, r, http.StatusOK, &types.ProgressRecord{
				RequestID: requestID,
				Stage:     types.StageAccepted,
				Percent:   0,
				Message:   "Pending",
				StartedAt: now,
				UpdatedAt: now,
			})
			return
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to read progress")
		return
	}

	span.SetStatus(codes.Ok, "Progress returned")
	api.WriteJSONResponse(w, r, http.StatusOK, record)
}
