package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Ensure implementation satisfies the interface
var _ Client = (*ClientImpl)(nil)

// Client defines the place catalog contract consumed by the trip pipeline.
type Client interface {
	// SearchCategory queries the catalog for "<categoryQuery> in <cityName>".
	// Places without a photo are dropped; the pipeline needs a displayable
	// image for every entry. A failed category returns an error the caller
	// is expected to degrade to an empty result, not propagate.
	SearchCategory(ctx context.Context, cityName, categoryQuery string, maxResults int) ([]types.Place, error)
	// PhotoURL builds a photo media URL from a stored photo reference. Pure
	// URL construction; nothing is fetched until render time.
	PhotoURL(photoRef string, maxWidthPx int) string
}

// ClientImpl talks to the Places API (New) text search endpoint and falls
// back to the legacy Text Search endpoint when the primary call fails.
type ClientImpl struct {
	logger         *slog.Logger
	httpClient     *http.Client
	apiKey         string
	searchEndpoint string
	legacyEndpoint string
}

func NewClientImpl(cfg *config.Config, logger *slog.Logger) *ClientImpl {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY environment variable is not set, catalog searches will fail")
	}
	return &ClientImpl{
		logger:         logger,
		httpClient:     &http.Client{Timeout: cfg.Places.Timeout},
		apiKey:         apiKey,
		searchEndpoint: cfg.Places.SearchEndpoint,
		legacyEndpoint: cfg.Places.LegacySearchEndpoint,
	}
}

// searchTextResponse is the boundary DTO for the Places API (New) response.
// Only the fields named in the field mask are requested.
type searchTextResponse struct {
	Places []searchTextPlace `json:"places"`
}

type searchTextPlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Rating           float64  `json:"rating"`
	Types            []string `json:"types"`
	Photos           []struct {
		Name string `json:"name"`
	} `json:"photos"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// legacySearchResponse is the boundary DTO for the legacy Text Search endpoint.
type legacySearchResponse struct {
	Status  string              `json:"status"`
	Results []legacySearchPlace `json:"results"`
}

type legacySearchPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	Types            []string `json:"types"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c *ClientImpl) SearchCategory(ctx context.Context, cityName, categoryQuery string, maxResults int) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "SearchCategory", trace.WithAttributes(
		attribute.String("city", cityName),
		attribute.String("category", categoryQuery),
	))
	defer span.End()

	query := fmt.Sprintf("%s in %s", categoryQuery, cityName)

	places, err := c.searchText(ctx, query, maxResults)
	if err != nil {
		c.logger.WarnContext(ctx, "Primary text search failed, trying legacy endpoint",
			slog.String("query", query), slog.Any("error", err))
		places, err = c.legacySearch(ctx, query)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "both search endpoints failed")
			return nil, fmt.Errorf("catalog search failed for %q: %w", query, err)
		}
	}

	// Keep only entries with a photo; every resolved tip needs a real image
	filtered := make([]types.Place, 0, len(places))
	for _, p := range places {
		if p.ID == "" || p.Name == "" {
			continue
		}
		if len(p.PhotoReferences) == 0 {
			continue
		}
		filtered = append(filtered, p)
	}

	span.SetAttributes(attribute.Int("places.count", len(filtered)))
	span.SetStatus(codes.Ok, "Catalog search completed")
	return filtered, nil
}

func (c *ClientImpl) searchText(ctx context.Context, query string, maxResults int) ([]types.Place, error) {
	body, err := json.Marshal(map[string]interface{}{
		"textQuery": query,
		"pageSize":  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.id,places.displayName,places.formattedAddress,places.rating,places.types,places.photos,places.location")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("text search returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode text search response: %w", err)
	}

	places := make([]types.Place, 0, len(parsed.Places))
	for _, dto := range parsed.Places {
		place := types.Place{
			ID:               dto.ID,
			Name:             dto.DisplayName.Text,
			FormattedAddress: dto.FormattedAddress,
			Rating:           dto.Rating,
			Types:            dto.Types,
		}
		for _, photo := range dto.Photos {
			if photo.Name != "" {
				place.PhotoReferences = append(place.PhotoReferences, photo.Name)
			}
		}
		if dto.Location != nil {
			place.Coordinates = &types.Coordinates{
				Latitude:  dto.Location.Latitude,
				Longitude: dto.Location.Longitude,
			}
		}
		places = append(places, place)
	}
	return places, nil
}

func (c *ClientImpl) legacySearch(ctx context.Context, query string) ([]types.Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.legacyEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build legacy search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("legacy search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("legacy search returned status %d", resp.StatusCode)
	}

	var parsed legacySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode legacy search response: %w", err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("legacy search returned status %q", parsed.Status)
	}

	places := make([]types.Place, 0, len(parsed.Results))
	for _, dto := range parsed.Results {
		place := types.Place{
			ID:               dto.PlaceID,
			Name:             dto.Name,
			FormattedAddress: dto.FormattedAddress,
			Rating:           dto.Rating,
			Types:            dto.Types,
			Coordinates: &types.Coordinates{
				Latitude:  dto.Geometry.Location.Lat,
				Longitude: dto.Geometry.Location.Lng,
			},
		}
		for _, photo := range dto.Photos {
			if photo.PhotoReference != "" {
				place.PhotoReferences = append(place.PhotoReferences, photo.PhotoReference)
			}
		}
		places = append(places, place)
	}
	return places, nil
}

// PhotoURL builds the media URL for a stored photo reference. New-API
// references are full resource names ("places/.../photos/..."); anything else
// is treated as a legacy photo reference.
func (c *ClientImpl) PhotoURL(photoRef string, maxWidthPx int) string {
	if len(photoRef) > 7 && photoRef[:7] == "places/" {
		return fmt.Sprintf("https://places.googleapis.com/v1/%s/media?maxWidthPx=%d&key=%s", photoRef, maxWidthPx, c.apiKey)
	}
	return fmt.Sprintf("https://maps.googleapis.com/maps/api/place/photo?maxwidth=%d&photo_reference=%s&key=%s",
		maxWidthPx, url.QueryEscape(photoRef), c.apiKey)
}

// BuildSnapshot merges per-category search results into one catalog snapshot
// keyed by place ID. Later batches win on duplicate IDs.
func BuildSnapshot(batches ...[]types.Place) map[string]types.Place {
	snapshot := make(map[string]types.Place)
	for _, batch := range batches {
		for _, place := range batch {
			snapshot[place.ID] = place
		}
	}
	return snapshot
}
