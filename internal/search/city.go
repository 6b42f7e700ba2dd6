package search

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedCity is returned for a city not written as "City, StateCode".
var ErrMalformedCity = eris.New(`search: city must look like "City, StateCode"`)

// City is a parsed "City, StateCode" string.
type City struct {
	Name  string
	State string
}

// ParseCity splits s on ", ". The state is the second segment.
func ParseCity(s string) (City, error) {
	parts := strings.Split(s, ", ")
	if len(parts) < 2 {
		return City{}, eris.Wrapf(ErrMalformedCity, "%q", s)
	}
	c := City{Name: strings.TrimSpace(parts[0]), State: strings.TrimSpace(parts[1])}
	if c.Name == "" || c.State == "" {
		return City{}, eris.Wrapf(ErrMalformedCity, "%q", s)
	}
	return c, nil
}

// SplitCities joins command-line values with spaces and splits the result
// on ";", so `--cities Gary, IN; Akron, OH` yields two cities whether or
// not the shell split the words.
func SplitCities(args []string) []string {
	var cities []string
	for _, c := range strings.Split(strings.Join(args, " "), ";") {
		c = strings.Join(strings.Fields(c), " ")
		if c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}
