// Package persona synthesizes a plausible person for a country: a
// locale-appropriate name and a phone number that fits the country's
// numbering plan. It also supplies random city names to the geocode
// cascade.
package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/metrics"
	"realaddress_backend/platform/phone"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed data/names.yaml
var namesYAML []byte

//go:embed data/cities.yaml
var citiesYAML []byte

// ErrEmptyPool is returned when a data set contains a locale with no entries.
var ErrEmptyPool = errors.New("persona: empty pool")

// Persona is a synthetic person. Nothing is persisted.
type Persona struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LocaleSource maps an ISO country code to a locale tag.
type LocaleSource interface {
	LocaleFor(code string) string
}

// NamePool holds given and family names for one language.
type NamePool struct {
	FamilyFirst bool     `yaml:"family_first"`
	Separator   *string  `yaml:"separator"`
	Family      []string `yaml:"family"`
	Given       []string `yaml:"given"`
}

// Data is the swappable name and city data set.
type Data struct {
	Names  map[string]NamePool
	Cities map[string][]string
}

// Generator builds personas. It is safe for concurrent use when its Rand is.
type Generator struct {
	locales LocaleSource
	data    Data
	faker   *gofakeit.Faker
	rnd     phone.Rand
	log     *logger.Logger
	metrics *metrics.Collector
}

// LoadData decodes the embedded name and city pools.
func LoadData() (Data, error) {
	return ParseData(namesYAML, citiesYAML)
}

// ParseData decodes name and city pools from YAML documents.
func ParseData(namesRaw, citiesRaw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(namesRaw, &data.Names); err != nil {
		return Data{}, fmt.Errorf("persona: decode names: %w", err)
	}
	if err := yaml.Unmarshal(citiesRaw, &data.Cities); err != nil {
		return Data{}, fmt.Errorf("persona: decode cities: %w", err)
	}

	for lang, pool := range data.Names {
		if len(pool.Family) == 0 || len(pool.Given) == 0 {
			return Data{}, fmt.Errorf("%w: names for %q", ErrEmptyPool, lang)
		}
	}
	for locale, cities := range data.Cities {
		cities = lo.Compact(lo.Map(cities, func(c string, _ int) string { return strings.TrimSpace(c) }))
		if len(cities) == 0 {
			return Data{}, fmt.Errorf("%w: cities for %q", ErrEmptyPool, locale)
		}
		data.Cities[locale] = cities
	}
	return data, nil
}

// New creates a generator over the embedded data set.
func New(locales LocaleSource, log *logger.Logger, m *metrics.Collector) (*Generator, error) {
	data, err := LoadData()
	if err != nil {
		return nil, err
	}
	return NewWithData(locales, data, log, m), nil
}

// NewWithData creates a generator over a custom data set.
func NewWithData(locales LocaleSource, data Data, log *logger.Logger, m *metrics.Collector) *Generator {
	return &Generator{
		locales: locales,
		data:    data,
		faker:   gofakeit.New(0),
		rnd:     phone.DefaultRand,
		log:     log,
		metrics: m,
	}
}

// SetRand replaces the source used for pool picks and phone digits.
func (g *Generator) SetRand(rnd phone.Rand) {
	g.rnd = rnd
}

// SetFaker replaces the fallback fake-data generator.
func (g *Generator) SetFaker(f *gofakeit.Faker) {
	g.faker = f
}

// Generate returns a fresh persona for countryCode.
func (g *Generator) Generate(countryCode string) Persona {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	return Persona{
		Name:  g.Name(countryCode),
		Phone: g.Phone(countryCode),
	}
}

// Name returns a name drawn from the pool of the country's locale
// language, or an English name when the language has no pool.
func (g *Generator) Name(countryCode string) string {
	pool, ok := g.data.Names[languageOf(g.locales.LocaleFor(countryCode))]
	if !ok {
		return g.faker.Name()
	}

	family := g.pick(pool.Family)
	given := g.pick(pool.Given)
	sep := " "
	if pool.Separator != nil {
		sep = *pool.Separator
	}
	if pool.FamilyFirst {
		return family + sep + given
	}
	return given + sep + family
}

// Phone returns a number randomized from the region's example number. When
// the numbering plan has nothing usable it falls back to a generic number,
// prefixed with the calling code when one is known.
func (g *Generator) Phone(countryCode string) string {
	number, err := phone.Randomize(countryCode, g.rnd)
	if err == nil {
		return number
	}

	g.log.Debug("phone synthesis fell back", "country_code", countryCode, "error", err)
	g.metrics.ObservePhoneFallback(countryCode)

	if cc := phone.CallingCode(countryCode); cc > 0 {
		number := fmt.Sprintf("+%d %s", cc, g.faker.Numerify("### ### ####"))
		if phone.IsPossible(number, countryCode) {
			return number
		}
	}
	return g.faker.Phone()
}

// City returns a random city name for the country's locale.
func (g *Generator) City(countryCode string) (string, error) {
	locale := g.locales.LocaleFor(strings.ToUpper(strings.TrimSpace(countryCode)))
	if cities, ok := g.data.Cities[locale]; ok {
		return g.pick(cities), nil
	}
	city := strings.TrimSpace(g.faker.City())
	if city == "" {
		return "", fmt.Errorf("persona: no city for locale %q", locale)
	}
	return city, nil
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rnd.IntN(len(pool))]
}

// languageOf returns the base language subtag of a locale tag, "" when the
// tag does not parse.
func languageOf(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
