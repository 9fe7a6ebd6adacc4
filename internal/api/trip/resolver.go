package trip

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const placeholderEndpoint = "https://placehold.co/600x400"

// PhotoURLBuilder builds a displayable photo URL from a stored photo
// reference. Pure URL construction; satisfied by the places client.
type PhotoURLBuilder interface {
	PhotoURL(photoRef string, maxWidthPx int) string
}

// Resolver maps parsed tips back onto the catalog snapshot and guarantees a
// non-empty image URL on every output entry.
type Resolver struct {
	logger     *slog.Logger
	photos     PhotoURLBuilder
	maxWidthPx int
}

func NewResolver(photos PhotoURLBuilder, maxWidthPx int, logger *slog.Logger) *Resolver {
	if maxWidthPx <= 0 {
		maxWidthPx = 600
	}
	return &Resolver{
		logger:     logger,
		photos:     photos,
		maxWidthPx: maxWidthPx,
	}
}

// Resolve enriches one tip with place metadata. Lookup is an exact ID match
// against the snapshot; unknown IDs and photo-less places fall back to a
// labeled placeholder image so the image contract holds. Resolution failures
// never fail the trip.
func (r *Resolver) Resolve(tip types.Tip, snapshot map[string]types.Place) types.TripTip {
	resolved := types.TripTip{
		Tip:   tip,
		Title: tip.PlaceID,
	}

	place, found := snapshot[tip.PlaceID]
	if !found {
		r.logger.Debug("Tip references unknown place, using placeholder",
			slog.String("place_id", tip.PlaceID))
		resolved.ImageURL = placeholderURL(tip.PlaceID)
		return resolved
	}

	resolved.Title = place.Name
	resolved.Location = place.FormattedAddress
	resolved.Coordinates = place.Coordinates

	if len(place.PhotoReferences) == 0 {
		resolved.ImageURL = placeholderURL(place.Name)
		return resolved
	}

	resolved.ImageURL = r.photos.PhotoURL(place.PhotoReferences[0], r.maxWidthPx)
	if resolved.ImageURL == "" {
		resolved.ImageURL = placeholderURL(place.Name)
	}
	return resolved
}

// placeholderURL builds a generated-image URL carrying the place name or ID
// as visible text.
func placeholderURL(text string) string {
	if text == "" {
		text = "No photo available"
	}
	return fmt.Sprintf("%s?text=%s", placeholderEndpoint, url.QueryEscape(text))
}
