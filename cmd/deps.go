package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/search"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/store"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/zipcode"
	"github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "yelp.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "s3":
		return store.NewS3(ctx, cfg.Store.S3.Bucket, cfg.Store.S3.Prefix, cfg.Store.S3.Region)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func destination() store.Destination {
	return store.Destination{Schema: cfg.Store.Schema, Table: cfg.Store.Table}
}

func initYelp() yelp.Client {
	return yelp.NewClient(cfg.API.Key,
		yelp.WithBaseURL(cfg.API.BaseURL),
		yelp.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second}),
		yelp.WithRateLimit(cfg.API.RequestsPerSecond),
	)
}

func initZipSource() *zipcode.Source {
	return &zipcode.Source{
		Path:    cfg.Zipcode.Path,
		URL:     cfg.Zipcode.URL,
		TempDir: cfg.Zipcode.TempDir,
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// loaderEnv holds the wired dependencies of the search and plan commands.
type loaderEnv struct {
	Store  store.Store
	Loader *search.Loader
}

func (e *loaderEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initLoader(ctx context.Context) (*loaderEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	searcher := search.NewSearcher(initYelp(), initZipSource())
	return &loaderEnv{
		Store:  st,
		Loader: search.NewLoader(searcher, st, destination()),
	}, nil
}
