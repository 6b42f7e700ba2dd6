package search

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

// Page is one successful page of businesses and the URL that returned it.
type Page struct {
	URL        string
	Businesses []json.RawMessage
}

// ResultSet is everything retrieved for one location/term pair.
type ResultSet struct {
	Location  string
	Term      Term
	Pages     []Page
	Retrieved int
	Total     int
	Complete  bool
	LoadedAt  time.Time
}

// LocationSearch pages through every result for location/term, up to
// yelp.MaxResults. It stops early on an empty page or a failed request;
// what was retrieved so far is kept and Complete is false.
func (s *Searcher) LocationSearch(ctx context.Context, location string, term Term) *ResultSet {
	log := zap.L().With(zap.String("location", location), zap.Stringer("term", term))

	rs := &ResultSet{Location: location, Term: term}
	running := 0
	limit := yelp.MaxLimit
	total := running + limit

	for running+limit <= yelp.MaxResults && running+limit <= total && limit > 0 {
		if running == 0 {
			log.Info("getting first results", zap.Int("limit", limit))
		} else {
			log.Info("getting results",
				zap.Int("from", running),
				zap.Int("to", running+limit),
				zap.Int("total", total),
			)
		}

		resp, err := s.client.Search(ctx, yelp.SearchParams{
			Location: location,
			Term:     term.Label(),
			Limit:    limit,
			Offset:   running,
		})
		if err != nil {
			fields := []zap.Field{zap.Int("offset", running), zap.Error(err)}
			var apiErr *yelp.APIError
			if errors.As(err, &apiErr) {
				fields = append(fields, zap.Int("status", apiErr.StatusCode), zap.String("body", apiErr.Body))
			}
			log.Error("page request failed", fields...)
			break
		}

		total = resp.Total
		if len(resp.Businesses) == 0 {
			log.Warn("last request returned no results, moving on", zap.Int("offset", running))
			break
		}

		running += len(resp.Businesses)
		rs.Pages = append(rs.Pages, Page{URL: resp.URL, Businesses: resp.Businesses})
		log.Info("got results", zap.Int("retrieved", running), zap.Int("total", total))

		reachable := min(total, yelp.MaxResults)
		if running+yelp.MaxLimit <= reachable {
			limit = yelp.MaxLimit
		} else {
			limit = reachable - running
		}
	}

	rs.Retrieved = running
	rs.Total = total
	rs.Complete = running >= total
	rs.LoadedAt = s.now()

	if !rs.Complete {
		log.Warn("stopped before all results were retrieved",
			zap.Int("retrieved", running),
			zap.Bool("api_limit", running == yelp.MaxResults),
			zap.Int("unretrievable", total-running),
		)
	}
	return rs
}
