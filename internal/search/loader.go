package search

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
)

// RunSummary counts what a Run did.
type RunSummary struct {
	Locations int   `json:"locations" yaml:"locations"`
	Skipped   int   `json:"skipped" yaml:"skipped"`
	Loaded    int   `json:"loaded" yaml:"loaded"`
	Failed    int   `json:"failed" yaml:"failed"`
	Rows      int64 `json:"rows" yaml:"rows"`
}

// PlanEntry is one location a Run would visit.
type PlanEntry struct {
	City     string `json:"city" yaml:"city"`
	Term     string `json:"term" yaml:"term"`
	Location string `json:"location" yaml:"location"`
	Expected int    `json:"expected" yaml:"expected"`
	Loaded   bool   `json:"loaded" yaml:"loaded"`
}

// Loader drives searches for a list of cities and appends the results to
// a store, skipping location/term pairs that were loaded before.
type Loader struct {
	searcher *Searcher
	store    store.Store
	dest     store.Destination
}

// NewLoader creates a Loader writing to dest.
func NewLoader(searcher *Searcher, st store.Store, dest store.Destination) *Loader {
	return &Loader{searcher: searcher, store: st, dest: dest}
}

// alreadyLoaded reports whether any rows exist for location/term. Lookup
// errors, typically a missing destination, count as not loaded.
func (l *Loader) alreadyLoaded(ctx context.Context, location string, term Term) bool {
	n, err := l.store.Find(ctx, l.dest, location, term.Label())
	if err != nil {
		zap.L().Debug("lookup failed, treating as not loaded",
			zap.String("location", location),
			zap.Stringer("term", term),
			zap.Error(err),
		)
		return false
	}
	return n > 0
}

// Run searches every city for every term. A malformed city name aborts the
// run; a failed append is logged and the run moves on.
func (l *Loader) Run(ctx context.Context, cities []string, terms []Term) (*RunSummary, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.Stringer("dest", l.dest))
	summary := &RunSummary{}

	for _, city := range cities {
		for _, term := range terms {
			log.Info("starting search", zap.String("city", city), zap.Stringer("term", term))

			locations, _, err := l.searcher.CityLocations(ctx, city, term)
			if err != nil {
				return summary, eris.Wrapf(err, "search: locations for %q", city)
			}

			for _, location := range locations {
				if err := ctx.Err(); err != nil {
					return summary, eris.Wrap(err, "search: run cancelled")
				}
				summary.Locations++

				if l.alreadyLoaded(ctx, location, term) {
					log.Info("already loaded, skipping", zap.String("location", location), zap.Stringer("term", term))
					summary.Skipped++
					continue
				}

				rs := l.searcher.LocationSearch(ctx, location, term)
				n, err := l.store.Append(ctx, l.dest, rs.Table())
				if err != nil {
					log.Error("append failed",
						zap.String("location", location),
						zap.Stringer("term", term),
						zap.Error(err),
					)
					summary.Failed++
					continue
				}

				log.Info("loaded location",
					zap.String("location", location),
					zap.Stringer("term", term),
					zap.Int64("rows", n),
					zap.Bool("complete", rs.Complete),
				)
				summary.Loaded++
				summary.Rows += n
			}
		}
	}

	log.Info("run complete",
		zap.Int("locations", summary.Locations),
		zap.Int("skipped", summary.Skipped),
		zap.Int("loaded", summary.Loaded),
		zap.Int("failed", summary.Failed),
		zap.Int64("rows", summary.Rows),
	)
	return summary, nil
}

// Plan resolves the locations Run would visit without fetching any
// pages. Each city is probed once per term; postal code locations carry
// no expected count of their own.
func (l *Loader) Plan(ctx context.Context, cities []string, terms []Term) ([]PlanEntry, error) {
	var entries []PlanEntry
	for _, city := range cities {
		for _, term := range terms {
			locations, expected, err := l.searcher.CityLocations(ctx, city, term)
			if err != nil {
				return nil, eris.Wrapf(err, "search: locations for %q", city)
			}
			for _, location := range locations {
				e := PlanEntry{
					City:     city,
					Term:     term.String(),
					Location: location,
					Loaded:   l.alreadyLoaded(ctx, location, term),
				}
				if location == city {
					e.Expected = expected
				}
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}
