package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

var testLoadedAt = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// stubClient answers searches from a function and records every request.
type stubClient struct {
	calls   []yelp.SearchParams
	respond func(p yelp.SearchParams) (*yelp.SearchResponse, error)
}

func (c *stubClient) Search(_ context.Context, p yelp.SearchParams) (*yelp.SearchResponse, error) {
	c.calls = append(c.calls, p)
	return c.respond(p)
}

// pages returns the paged requests, skipping probes.
func (c *stubClient) pages() []yelp.SearchParams {
	var out []yelp.SearchParams
	for _, p := range c.calls {
		if p.Limit > 0 {
			out = append(out, p)
		}
	}
	return out
}

func business(i int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"id": "biz-%d",
		"name": "Business %d",
		"rating": 4.5,
		"is_closed": false,
		"categories": [ {"alias": "soulfood", "title": "Soul Food"} ],
		"coordinates": { "latitude": 41.59, "longitude": -87.34 },
		"location": { "city": "Gary", "state": "IN" }
	}`, i, i))
}

func searchURL(p yelp.SearchParams) string {
	return yelp.SearchURL("https://api.yelp.test/v3", p)
}

// pagedResponder serves total businesses for every location, honouring
// limit and offset. Probes get the total and no businesses.
func pagedResponder(total int) func(yelp.SearchParams) (*yelp.SearchResponse, error) {
	return func(p yelp.SearchParams) (*yelp.SearchResponse, error) {
		resp := &yelp.SearchResponse{Total: total, URL: searchURL(p)}
		for i := p.Offset; i < p.Offset+p.Limit && i < total; i++ {
			resp.Businesses = append(resp.Businesses, business(i))
		}
		return resp, nil
	}
}

func newTestSearcher(client yelp.Client, zips PostalCodeLookup) *Searcher {
	s := NewSearcher(client, zips)
	s.now = func() time.Time { return testLoadedAt }
	return s
}

// fakeZips is a fixed postal code directory keyed by "City|ST".
type fakeZips struct {
	codes map[string][]string
	err   error
}

func (z *fakeZips) PostalCodes(_ context.Context, city, state string) ([]string, error) {
	if z.err != nil {
		return nil, z.err
	}
	return z.codes[city+"|"+state], nil
}

// fakeStore keeps appended tables in memory.
type fakeStore struct {
	rows      map[string]int64
	appended  []*store.Table
	findErr   error
	appendErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]int64), appendErr: make(map[string]error)}
}

func storeKey(location, term string) string {
	return location + "|" + term
}

func (s *fakeStore) Find(_ context.Context, _ store.Destination, location, term string) (int64, error) {
	if s.findErr != nil {
		return 0, s.findErr
	}
	return s.rows[storeKey(location, term)], nil
}

func (s *fakeStore) Append(_ context.Context, _ store.Destination, t *store.Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	location, _ := t.Value(0, store.ColLocation).(string)
	term, _ := t.Value(0, store.ColTerm).(string)
	if err := s.appendErr[location]; err != nil {
		return 0, err
	}
	s.appended = append(s.appended, t)
	s.rows[storeKey(location, term)] += int64(t.Len())
	return int64(t.Len()), nil
}

func (s *fakeStore) Summary(context.Context, store.Destination) ([]store.LoadSummary, error) {
	return nil, eris.New("fake: summary not supported")
}

func (s *fakeStore) Migrate(context.Context, store.Destination) error { return nil }

func (s *fakeStore) Close() error { return nil }
