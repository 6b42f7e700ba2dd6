package zipcode

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Source loads a Directory on first use, either from a local GeoNames file
// or by downloading the archive into TempDir.
type Source struct {
	Path    string
	URL     string
	TempDir string
	HTTP    *http.Client

	once sync.Once
	dir  *Directory
	err  error
}

// PostalCodes returns the postal codes for city/state, loading the
// directory if needed. A load failure is returned on every call.
func (s *Source) PostalCodes(ctx context.Context, city, state string) ([]string, error) {
	s.once.Do(func() {
		s.dir, s.err = s.load(ctx)
	})
	if s.err != nil {
		return nil, s.err
	}
	return s.dir.Lookup(city, state), nil
}

func (s *Source) load(ctx context.Context) (*Directory, error) {
	path := s.Path
	if path == "" {
		url := s.URL
		if url == "" {
			url = DefaultURL
		}
		p, err := Download(ctx, s.HTTP, url, s.TempDir)
		if err != nil {
			return nil, err
		}
		path = p
	}

	d, err := ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded postal code directory",
		zap.String("path", path),
		zap.Int("places", d.Places()),
	)
	return d, nil
}
