package zipcode

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultURL is the GeoNames US postal code archive.
const DefaultURL = "https://download.geonames.org/export/zip/US.zip"

// archiveEntry is the data file inside the GeoNames archive.
const archiveEntry = "US.txt"

// Download fetches the GeoNames archive at url into dir and extracts the
// data file. It returns the extracted file path. An already extracted file
// is reused.
func Download(ctx context.Context, hc *http.Client, url, dir string) (string, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	dataPath := filepath.Join(dir, archiveEntry)
	if _, err := os.Stat(dataPath); err == nil {
		return dataPath, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "zipcode: create dir")
	}

	zipPath := filepath.Join(dir, "postal_codes.zip")
	zap.L().Info("downloading postal code archive", zap.String("url", url))
	if err := downloadFile(ctx, hc, url, zipPath); err != nil {
		return "", err
	}
	defer os.Remove(zipPath) //nolint:errcheck

	if err := extractEntry(zipPath, archiveEntry, dataPath); err != nil {
		return "", err
	}
	return dataPath, nil
}

func downloadFile(ctx context.Context, hc *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "zipcode: create request")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrap(err, "zipcode: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("zipcode: unexpected status %d from %s", resp.StatusCode, url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "zipcode: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, resp.Body); err != nil {
		return eris.Wrap(err, "zipcode: write file")
	}
	return nil
}

// extractEntry copies the archive member named name to dest.
func extractEntry(zipPath, name, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "zipcode: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return eris.Wrap(err, "zipcode: open entry")
		}
		defer rc.Close() //nolint:errcheck

		tmp := dest + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return eris.Wrap(err, "zipcode: create file")
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close() //nolint:errcheck
			return eris.Wrap(err, "zipcode: extract entry")
		}
		if err := out.Close(); err != nil {
			return eris.Wrap(err, "zipcode: close file")
		}
		return eris.Wrap(os.Rename(tmp, dest), "zipcode: rename extracted file")
	}
	return eris.Errorf("zipcode: %q not found in archive", name)
}
