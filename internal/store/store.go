// Package store persists flattened search results in an append-only tabular sink.
package store

import (
	"context"
)

// Destination names the table results are appended to.
type Destination struct {
	Schema string `yaml:"schema" mapstructure:"schema"`
	Table  string `yaml:"table" mapstructure:"table"`
}

// DefaultDestination is yelp.business_search_results.
func DefaultDestination() Destination {
	return Destination{Schema: "yelp", Table: "business_search_results"}
}

func (d Destination) String() string {
	return d.Schema + "." + d.Table
}

// LoadSummary describes what has been stored for one location/term pair.
type LoadSummary struct {
	Location   string `json:"location" yaml:"location"`
	Term       string `json:"term" yaml:"term"`
	Rows       int64  `json:"rows" yaml:"rows"`
	Complete   bool   `json:"complete" yaml:"complete"`
	LastLoaded string `json:"last_loaded" yaml:"last_loaded"`
}

// Store defines the persistence interface for search results.
type Store interface {
	// Find reports how many stored rows match location and term. Object
	// stores report matching objects. An error usually means the
	// destination does not exist yet.
	Find(ctx context.Context, dest Destination, location, term string) (int64, error)

	// Append writes every row of t to dest, creating the destination and
	// any missing columns first. Existing rows are never updated.
	Append(ctx context.Context, dest Destination, t *Table) (int64, error)

	// Summary aggregates stored rows per location/term.
	Summary(ctx context.Context, dest Destination) ([]LoadSummary, error)

	// Lifecycle
	Migrate(ctx context.Context, dest Destination) error
	Close() error
}
