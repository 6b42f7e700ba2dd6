package search

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

// PostalCodeLookup returns the postal codes registered for a city/state.
type PostalCodeLookup interface {
	PostalCodes(ctx context.Context, city, state string) ([]string, error)
}

// Searcher issues probe and paginated searches against the Yelp API.
type Searcher struct {
	client yelp.Client
	zips   PostalCodeLookup
	now    func() time.Time
}

// NewSearcher creates a Searcher. zips is only consulted for cities whose
// probed total exceeds yelp.MaxResults.
func NewSearcher(client yelp.Client, zips PostalCodeLookup) *Searcher {
	return &Searcher{
		client: client,
		zips:   zips,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Probe requests the first page for location/term and returns the total
// result count the API reports.
func (s *Searcher) Probe(ctx context.Context, location string, term Term) (int, error) {
	resp, err := s.client.Search(ctx, yelp.SearchParams{Location: location, Term: term.Label()})
	if err != nil {
		return 0, eris.Wrapf(err, "search: probe %q", location)
	}
	return resp.Total, nil
}

// ExpectedCount is Probe with failures reported as zero results. The
// failure is still logged so it can be told apart from an empty location.
func (s *Searcher) ExpectedCount(ctx context.Context, location string, term Term) int {
	total, err := s.Probe(ctx, location, term)
	if err != nil {
		fields := []zap.Field{zap.String("location", location), zap.Stringer("term", term), zap.Error(err)}
		var apiErr *yelp.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.Int("status", apiErr.StatusCode))
		}
		zap.L().Warn("probe failed, treating as zero results", fields...)
	}

	zap.L().Info("search should return results",
		zap.String("location", location),
		zap.Stringer("term", term),
		zap.Int("total", total),
	)
	return total
}

// CityLocations returns the locations to search for city. When the probed
// total exceeds yelp.MaxResults the city is split into one location per
// postal code, "City, ST 12345"; otherwise the city itself is returned.
// The probed total is returned alongside.
func (s *Searcher) CityLocations(ctx context.Context, city string, term Term) ([]string, int, error) {
	expected := s.ExpectedCount(ctx, city, term)
	if expected <= yelp.MaxResults {
		return []string{city}, expected, nil
	}

	parsed, err := ParseCity(city)
	if err != nil {
		return nil, expected, err
	}

	zap.L().Info("searching by postal code to get past the result cap",
		zap.String("city", city),
		zap.Int("total", expected),
	)

	codes, err := s.zips.PostalCodes(ctx, parsed.Name, parsed.State)
	if err != nil {
		return nil, expected, eris.Wrapf(err, "search: postal codes for %q", city)
	}
	if len(codes) == 0 {
		zap.L().Warn("no postal codes found for city, nothing to search", zap.String("city", city))
	}

	locations := make([]string, len(codes))
	for i, code := range codes {
		locations[i] = city + " " + code
	}
	return locations, expected, nil
}
