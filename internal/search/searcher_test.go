package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp/mocks"
)

func probeParams(location string, term Term) yelp.SearchParams {
	return yelp.SearchParams{Location: location, Term: term.Label()}
}

func TestProbe(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Search", mock.Anything, probeParams("Gary, IN", Phrase(BlackOwned))).
		Return(&yelp.SearchResponse{Total: 42}, nil).Once()

	s := newTestSearcher(client, &fakeZips{})
	total, err := s.Probe(context.Background(), "Gary, IN", Phrase(BlackOwned))
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestExpectedCount_ProbeFailureIsZero(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Search", mock.Anything, probeParams("Gary, IN", AllBusinesses)).
		Return(nil, &yelp.APIError{StatusCode: 500, Status: "500 Internal Server Error"}).Once()

	s := newTestSearcher(client, &fakeZips{})
	assert.Equal(t, 0, s.ExpectedCount(context.Background(), "Gary, IN", AllBusinesses))
}

func TestCityLocations(t *testing.T) {
	springfield := &fakeZips{codes: map[string][]string{
		"Springfield|IL": {"62701", "62702", "62703"},
	}}

	tests := []struct {
		name         string
		city         string
		zips         *fakeZips
		probeTotal   int
		probeErr     error
		want         []string
		wantExpected int
		wantErr      error
	}{
		{
			name:         "under the cap searches the city",
			city:         "Springfield, IL",
			zips:         springfield,
			probeTotal:   900,
			want:         []string{"Springfield, IL"},
			wantExpected: 900,
		},
		{
			name:         "exactly the cap searches the city",
			city:         "Springfield, IL",
			zips:         springfield,
			probeTotal:   1000,
			want:         []string{"Springfield, IL"},
			wantExpected: 1000,
		},
		{
			name:       "over the cap fans out by postal code",
			city:       "Springfield, IL",
			zips:       springfield,
			probeTotal: 1500,
			want: []string{
				"Springfield, IL 62701",
				"Springfield, IL 62702",
				"Springfield, IL 62703",
			},
			wantExpected: 1500,
		},
		{
			name:         "failed probe searches the city",
			city:         "Springfield, IL",
			zips:         springfield,
			probeErr:     &yelp.APIError{StatusCode: 500},
			want:         []string{"Springfield, IL"},
			wantExpected: 0,
		},
		{
			name:         "no postal codes yields nothing to search",
			city:         "Nowhere, IL",
			zips:         springfield,
			probeTotal:   1500,
			want:         []string{},
			wantExpected: 1500,
		},
		{
			name:       "malformed city over the cap",
			city:       "Springfield",
			zips:       springfield,
			probeTotal: 1500,
			wantErr:    ErrMalformedCity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient(t)
			var resp *yelp.SearchResponse
			if tt.probeErr == nil {
				resp = &yelp.SearchResponse{Total: tt.probeTotal}
			}
			client.On("Search", mock.Anything, probeParams(tt.city, Phrase(BlackOwned))).
				Return(resp, tt.probeErr).Once()

			s := newTestSearcher(client, tt.zips)
			got, expected, err := s.CityLocations(context.Background(), tt.city, Phrase(BlackOwned))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantExpected, expected)
		})
	}
}

func TestCityLocations_LookupError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Search", mock.Anything, probeParams("Gary, IN", AllBusinesses)).
		Return(&yelp.SearchResponse{Total: 5000}, nil).Once()

	s := newTestSearcher(client, &fakeZips{err: eris.New("directory unavailable")})
	_, _, err := s.CityLocations(context.Background(), "Gary, IN", AllBusinesses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory unavailable")
}
