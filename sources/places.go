package sources

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/leadsight/leadsight/log"
)

// PlacesSearch queries Google Places for businesses matching a text prompt
// and extracts their websites. Useful for building a prospect list for a
// whole niche ("hair salons in Leeds") in one run.
type PlacesSearch struct {
	query  string
	apiKey string
}

// NewPlacesSearch creates a PlacesSearch extractor.
func NewPlacesSearch(query, apiKey string) *PlacesSearch {
	return &PlacesSearch{query: query, apiKey: apiKey}
}

func (p *PlacesSearch) Extract(ctx context.Context) ([]string, error) {
	client, err := maps.NewClient(maps.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	var places []maps.PlacesSearchResult

	req := &maps.TextSearchRequest{Query: p.query}
	for {
		res, err := client.TextSearch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("text search for %q failed: %w", p.query, err)
		}
		places = append(places, res.Results...)

		if res.NextPageToken == "" {
			break
		}
		req.PageToken = res.NextPageToken

		// Places requires a delay before the next page token is usable.
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var urls []string
	for _, place := range places {
		// Website data is only present on the details endpoint.
		details, err := client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: place.PlaceID})
		if err != nil {
			log.Logger.Warn("place details failed",
				zap.String("place", place.Name), zap.Error(err))
			continue
		}
		if details.Website != "" {
			urls = append(urls, details.Website)
		}
	}

	log.Logger.Info("places search complete",
		zap.String("query", p.query), zap.Int("websites", len(urls)))
	return urls, nil
}
