package geocode

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/metrics"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Cascade level names, also used as metric labels.
const (
	LevelSpecific   = "specific"
	LevelRandomCity = "random_city"
	LevelMajorCity  = "major_city"
	LevelBroad      = "broad"
	LevelExhausted  = "exhausted"
)

// randomCityAttempts bounds the random-city level.
const randomCityAttempts = 2

// Keywords are the point-of-interest terms that anchor every query.
var Keywords = []string{
	"hotel", "restaurant", "school", "cafe", "bakery", "pharmacy",
	"library", "post office", "park", "supermarket", "museum", "hospital",
}

//go:embed data/major_cities.yaml
var majorCitiesYAML []byte

// ParseMajorCities decodes a country code -> cities YAML document.
func ParseMajorCities(raw []byte) (map[string][]string, error) {
	var cities map[string][]string
	if err := yaml.Unmarshal(raw, &cities); err != nil {
		return nil, fmt.Errorf("geocode: decode major cities: %w", err)
	}
	out := make(map[string][]string, len(cities))
	for code, list := range cities {
		list = lo.Compact(lo.Map(list, func(city string, _ int) string { return strings.TrimSpace(city) }))
		if len(list) > 0 {
			out[strings.ToUpper(code)] = list
		}
	}
	return out, nil
}

// MustMajorCities returns the embedded major-city lists.
func MustMajorCities() map[string][]string {
	cities, err := ParseMajorCities(majorCitiesYAML)
	if err != nil {
		panic(err)
	}
	return cities
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type level struct {
	name string
	run  func(ctx context.Context, q Query) (*Address, bool)
}

// Resolver runs the fallback cascade against a Searcher.
type Resolver struct {
	searcher    Searcher
	cities      CityNamer
	majorCities map[string][]string
	rnd         Rand
	log         *logger.Logger
	metrics     *metrics.Collector
}

// NewResolver creates a resolver using the embedded major-city lists and
// the goroutine-safe math/rand/v2 source.
func NewResolver(searcher Searcher, cities CityNamer, log *logger.Logger) *Resolver {
	return &Resolver{
		searcher:    searcher,
		cities:      cities,
		majorCities: MustMajorCities(),
		rnd:         globalRand{},
		log:         log,
	}
}

// SetRand replaces the random source. The source must be safe for the
// resolver's concurrency; tests pass a seeded *rand.Rand.
func (r *Resolver) SetRand(rnd Rand) {
	r.rnd = rnd
}

// SetMajorCities replaces the curated major-city lists.
func (r *Resolver) SetMajorCities(cities map[string][]string) {
	r.majorCities = cities
}

// SetMetrics attaches a metrics collector.
func (r *Resolver) SetMetrics(m *metrics.Collector) {
	r.metrics = m
}

// Resolve walks the cascade and returns the first address found. It
// reports false only when every level came back empty.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Address, bool) {
	q.CountryCode = strings.ToUpper(strings.TrimSpace(q.CountryCode))

	for _, lvl := range r.levels() {
		if addr, ok := lvl.run(ctx, q); ok {
			r.metrics.ObserveResolution(lvl.name)
			return addr, true
		}
	}

	r.log.WithContext(ctx).Warn("geocode cascade exhausted",
		"country_code", q.CountryCode, "city", q.City, "zipcode", q.Zipcode, "state", q.State)
	r.metrics.ObserveResolution(LevelExhausted)
	return nil, false
}

func (r *Resolver) levels() []level {
	return []level{
		{name: LevelSpecific, run: r.specificLevel},
		{name: LevelRandomCity, run: r.randomCityLevel},
		{name: LevelMajorCity, run: r.majorCityLevel},
		{name: LevelBroad, run: r.broadLevel},
	}
}

// specificLevel uses the caller's own city/zipcode/state. Skipped when
// neither city nor zipcode was given.
func (r *Resolver) specificLevel(ctx context.Context, q Query) (*Address, bool) {
	if q.City == "" && q.Zipcode == "" {
		return nil, false
	}

	parts := []string{r.keyword()}
	if q.Zipcode != "" {
		parts = append(parts, "in "+q.Zipcode)
	}
	if q.City != "" {
		parts = append(parts, "in "+q.City)
	}
	if q.State != "" {
		parts = append(parts, q.State)
	}

	return r.query(ctx, LevelSpecific, strings.Join(parts, " "), q.CountryCode)
}

// randomCityLevel ignores the caller's inputs and tries generated city
// names for the country. Generator failures are logged and skipped.
func (r *Resolver) randomCityLevel(ctx context.Context, q Query) (*Address, bool) {
	if r.cities == nil {
		return nil, false
	}

	for attempt := 1; attempt <= randomCityAttempts; attempt++ {
		city, err := r.safeCity(q.CountryCode)
		if err != nil {
			r.log.WithContext(ctx).Warn("random city generation failed",
				"country_code", q.CountryCode, "attempt", attempt, "error", err)
			continue
		}
		if addr, ok := r.query(ctx, LevelRandomCity, r.keyword()+" in "+city, q.CountryCode); ok {
			return addr, true
		}
	}
	return nil, false
}

func (r *Resolver) majorCityLevel(ctx context.Context, q Query) (*Address, bool) {
	cities := r.majorCities[q.CountryCode]
	if len(cities) == 0 {
		return nil, false
	}
	city := cities[r.rnd.IntN(len(cities))]
	return r.query(ctx, LevelMajorCity, r.keyword()+" in "+city, q.CountryCode)
}

// broadLevel relies on the country filter alone.
func (r *Resolver) broadLevel(ctx context.Context, q Query) (*Address, bool) {
	return r.query(ctx, LevelBroad, r.keyword()+" in", q.CountryCode)
}

// query runs one search and picks a random address-bearing result.
// Provider failures count as "no result".
func (r *Resolver) query(ctx context.Context, lvl, text, countryCode string) (*Address, bool) {
	log := r.log.WithContext(ctx)
	start := time.Now()

	results, err := r.searcher.Search(ctx, text, countryCode)
	took := time.Since(start)
	if err != nil {
		log.Warn("geocode query failed", "level", lvl, "query", text, "country_code", countryCode, "error", err)
		r.metrics.ObserveGeocodeQuery(lvl, "error", took)
		return nil, false
	}

	valid := lo.Filter(results, func(res gjson.Result, _ int) bool { return HasAddress(res) })
	if len(valid) == 0 {
		log.GeocodeQuery(lvl, text, countryCode, "empty", len(results))
		r.metrics.ObserveGeocodeQuery(lvl, "empty", took)
		return nil, false
	}

	log.GeocodeQuery(lvl, text, countryCode, "hit", len(valid))
	r.metrics.ObserveGeocodeQuery(lvl, "hit", took)

	addr := ParseResult(valid[r.rnd.IntN(len(valid))])
	return &addr, true
}

func (r *Resolver) keyword() string {
	return Keywords[r.rnd.IntN(len(Keywords))]
}

func (r *Resolver) safeCity(countryCode string) (city string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("city generator panicked: %v", rec)
		}
	}()

	city, err = r.cities.City(countryCode)
	if err == nil && strings.TrimSpace(city) == "" {
		err = fmt.Errorf("city generator returned an empty name")
	}
	return strings.TrimSpace(city), err
}
