package geocode

import (
	"context"

	"github.com/tidwall/gjson"
)

// Address is a provider result normalized to the fields the generator
// returns. Optional fields are nil when the provider did not supply them.
type Address struct {
	Address     string  `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Zipcode     *string `json:"zipcode"`
	Country     *string `json:"country"`
	FullAddress string  `json:"full_address"`
}

// Query is the caller's input to Resolve. Empty strings mean "not given".
type Query struct {
	CountryCode string
	City        string
	Zipcode     string
	State       string
}

// Searcher issues one free-text search scoped to a country and returns the
// raw result objects.
type Searcher interface {
	Search(ctx context.Context, text, countryCode string) ([]gjson.Result, error)
}

// CityNamer synthesizes a plausible city name for a country.
type CityNamer interface {
	City(countryCode string) (string, error)
}

// Rand is the subset of math/rand/v2 the resolver draws from.
type Rand interface {
	IntN(n int) int
}
