// Package zipcode looks up the postal codes registered for a US city.
//
// The directory is built from the GeoNames postal code dump
// (https://download.geonames.org/export/zip/), a tab-separated file with
// one row per postal code.
package zipcode

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// GeoNames column positions.
const (
	colCountry = 0
	colPostal  = 1
	colPlace   = 2
	colState   = 4
	minColumns = 5
)

// Directory maps (city, state) to postal codes. City names match
// case-insensitively; state codes are two-letter abbreviations.
type Directory struct {
	byPlace map[string]map[string]struct{}
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{byPlace: make(map[string]map[string]struct{})}
}

func placeKey(city, state string) string {
	return cases.Fold().String(strings.TrimSpace(city)) + "|" + strings.ToUpper(strings.TrimSpace(state))
}

// Add registers postal for city/state.
func (d *Directory) Add(city, state, postal string) {
	postal = strings.TrimSpace(postal)
	if postal == "" {
		return
	}
	key := placeKey(city, state)
	codes, ok := d.byPlace[key]
	if !ok {
		codes = make(map[string]struct{})
		d.byPlace[key] = codes
	}
	codes[postal] = struct{}{}
}

// Lookup returns the postal codes for city/state in ascending order.
func (d *Directory) Lookup(city, state string) []string {
	codes := d.byPlace[placeKey(city, state)]
	out := make([]string, 0, len(codes))
	for c := range codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Places returns the number of distinct city/state pairs.
func (d *Directory) Places() int {
	return len(d.byPlace)
}

// Read parses a GeoNames postal code file. Rows for countries other than
// US, and rows with too few columns, are skipped.
func Read(ctx context.Context, r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	d := NewDirectory()
	for line := 1; ; line++ {
		if line%10000 == 0 && ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "zipcode: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "zipcode: read line %d", line)
		}
		if len(record) < minColumns || record[colCountry] != "US" {
			continue
		}
		d.Add(record[colPlace], record[colState], record[colPostal])
	}
	return d, nil
}

// ReadFile parses the GeoNames file at path.
func ReadFile(ctx context.Context, path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "zipcode: open")
	}
	defer f.Close() //nolint:errcheck

	return Read(ctx, f)
}
