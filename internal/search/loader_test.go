package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

// totalsResponder serves a fixed total per location; unknown locations
// have no results.
func totalsResponder(totals map[string]int) func(yelp.SearchParams) (*yelp.SearchResponse, error) {
	return func(p yelp.SearchParams) (*yelp.SearchResponse, error) {
		return pagedResponder(totals[p.Location])(p)
	}
}

func TestLoader_Run(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{
		"Gary, IN":  30,
		"Akron, OH": 75,
	})}
	st := newFakeStore()
	l := NewLoader(newTestSearcher(client, &fakeZips{}), st, store.DefaultDestination())

	summary, err := l.Run(context.Background(), []string{"Gary, IN", "Akron, OH"}, []Term{Phrase(BlackOwned)})
	require.NoError(t, err)

	assert.Equal(t, &RunSummary{Locations: 2, Loaded: 2, Rows: 105}, summary)
	require.Len(t, st.appended, 2)
	assert.Equal(t, "Gary, IN", st.appended[0].Value(0, store.ColLocation))
	assert.Equal(t, "True", st.appended[0].Value(0, store.ColIsComplete))
	assert.Equal(t, int64(75), st.rows[storeKey("Akron, OH", "Black owned")])
}

func TestLoader_Run_SkipsLoadedLocations(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{"Gary, IN": 30})}
	st := newFakeStore()
	st.rows[storeKey("Gary, IN", "")] = 12
	l := NewLoader(newTestSearcher(client, &fakeZips{}), st, store.DefaultDestination())

	summary, err := l.Run(context.Background(), []string{"Gary, IN"}, []Term{Phrase(BlackOwned), AllBusinesses})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Locations)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Loaded)
	require.Len(t, st.appended, 1)
	assert.Equal(t, "Black owned", st.appended[0].Value(0, store.ColTerm))

	// The skipped pair was probed but never paged.
	for _, p := range client.pages() {
		assert.Equal(t, "Black owned", p.Term)
	}
}

func TestLoader_Run_FindErrorMeansNotLoaded(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{"Gary, IN": 10})}
	st := newFakeStore()
	st.findErr = eris.New(`relation "yelp.business_search_results" does not exist`)
	l := NewLoader(newTestSearcher(client, &fakeZips{}), st, store.DefaultDestination())

	summary, err := l.Run(context.Background(), []string{"Gary, IN"}, []Term{AllBusinesses})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Loaded)
	assert.Equal(t, int64(10), summary.Rows)
}

func TestLoader_Run_AppendErrorContinues(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{"Gary, IN": 10, "Akron, OH": 20})}
	st := newFakeStore()
	st.appendErr["Gary, IN"] = eris.New("disk full")
	l := NewLoader(newTestSearcher(client, &fakeZips{}), st, store.DefaultDestination())

	summary, err := l.Run(context.Background(), []string{"Gary, IN", "Akron, OH"}, []Term{AllBusinesses})
	require.NoError(t, err)
	assert.Equal(t, &RunSummary{Locations: 2, Loaded: 1, Failed: 1, Rows: 20}, summary)
}

func TestLoader_Run_FansOutLargeCity(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{
		"Springfield, IL":       1500,
		"Springfield, IL 62701": 40,
		"Springfield, IL 62702": 0,
	})}
	zips := &fakeZips{codes: map[string][]string{"Springfield|IL": {"62701", "62702"}}}
	st := newFakeStore()
	l := NewLoader(newTestSearcher(client, zips), st, store.DefaultDestination())

	summary, err := l.Run(context.Background(), []string{"Springfield, IL"}, []Term{AllBusinesses})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Locations)
	assert.Equal(t, int64(40), summary.Rows)
	for _, p := range client.pages() {
		assert.NotEqual(t, "Springfield, IL", p.Location)
	}
	assert.Equal(t, int64(40), st.rows[storeKey("Springfield, IL 62701", "")])
	assert.Zero(t, st.rows[storeKey("Springfield, IL 62702", "")])
}

func TestLoader_Run_MalformedCityIsFatal(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{"Springfield": 5000})}
	l := NewLoader(newTestSearcher(client, &fakeZips{}), newFakeStore(), store.DefaultDestination())

	_, err := l.Run(context.Background(), []string{"Springfield"}, []Term{AllBusinesses})
	assert.ErrorIs(t, err, ErrMalformedCity)
}

func TestLoader_Run_Cancelled(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{"Gary, IN": 10})}
	st := newFakeStore()
	l := NewLoader(newTestSearcher(client, &fakeZips{}), st, store.DefaultDestination())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Run(ctx, []string{"Gary, IN"}, []Term{AllBusinesses})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.appended)
}

func TestLoader_Plan(t *testing.T) {
	client := &stubClient{respond: totalsResponder(map[string]int{
		"Gary, IN":        30,
		"Springfield, IL": 1500,
	})}
	zips := &fakeZips{codes: map[string][]string{"Springfield|IL": {"62701", "62702"}}}
	st := newFakeStore()
	st.rows[storeKey("Springfield, IL 62702", "Black owned")] = 7
	l := NewLoader(newTestSearcher(client, zips), st, store.DefaultDestination())

	entries, err := l.Plan(context.Background(), []string{"Gary, IN", "Springfield, IL"}, []Term{Phrase(BlackOwned)})
	require.NoError(t, err)

	assert.Equal(t, []PlanEntry{
		{City: "Gary, IN", Term: "Black owned", Location: "Gary, IN", Expected: 30},
		{City: "Springfield, IL", Term: "Black owned", Location: "Springfield, IL 62701"},
		{City: "Springfield, IL", Term: "Black owned", Location: "Springfield, IL 62702", Loaded: true},
	}, entries)
	assert.Empty(t, client.pages())
	assert.Empty(t, st.appended)
}
