// Package countries resolves free-text country names to ISO 3166-1 alpha-2
// codes and picks the persona locale for a territory.
//
// The table is built once at startup from CLDR territory names (English and
// Chinese) shipped with golang.org/x/text, identity entries for every code,
// and a curated alias list. It is immutable afterwards and safe for
// concurrent use.
package countries

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used for territories without persona data.
const DefaultLocale = "en-US"

//go:embed data/countries.yaml
var embeddedData []byte

// Data is the curated, swappable part of the table.
type Data struct {
	Aliases map[string]string `yaml:"aliases"`
	Locales []string          `yaml:"locales"`
}

// Table maps country names to codes and codes to locale tags.
type Table struct {
	names   map[string]string
	codes   []string
	locales map[string]string
}

// nameSources are the display languages whose territory names are indexed,
// in application order.
var nameSources = []language.Tag{language.English, language.Chinese}

// Load builds the table from the embedded data set.
func Load() (*Table, error) {
	data, err := ParseData(embeddedData)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// ParseData decodes a YAML data set.
func ParseData(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("countries: decode data: %w", err)
	}
	return data, nil
}

// New builds a table from data. Territory names go in first, then identity
// entries for every known code, then aliases, so aliases win on collision.
func New(data Data) (*Table, error) {
	t := &Table{
		names:   make(map[string]string),
		locales: make(map[string]string),
	}

	regions := territories()
	for _, src := range nameSources {
		namer := display.Regions(src)
		for _, region := range regions {
			name := namer.Name(region)
			if name == "" {
				continue
			}
			t.names[foldKey(name)] = region.String()
		}
	}

	t.codes = lo.Uniq(lo.Values(t.names))
	sort.Strings(t.codes)
	for _, code := range t.codes {
		t.names[foldKey(code)] = code
	}

	for alias, code := range data.Aliases {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 2 {
			return nil, fmt.Errorf("countries: alias %q maps to invalid code %q", alias, code)
		}
		t.names[foldKey(alias)] = code
	}

	byRegion, err := groupLocales(data.Locales)
	if err != nil {
		return nil, err
	}
	for region, tags := range byRegion {
		t.locales[region] = pickLocale(tags)
	}

	return t, nil
}

// Normalize returns the ISO code for text. Matching is exact after trimming
// and Unicode case folding.
func (t *Table) Normalize(text string) (string, bool) {
	key := foldKey(text)
	if key == "" {
		return "", false
	}
	code, ok := t.names[key]
	return code, ok
}

// LocaleFor returns the persona locale tag for an ISO code, DefaultLocale
// when the territory has none.
func (t *Table) LocaleFor(code string) string {
	if tag, ok := t.locales[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return tag
	}
	return DefaultLocale
}

// Codes returns every ISO code discovered in the territory tables, sorted.
func (t *Table) Codes() []string {
	return append([]string(nil), t.codes...)
}

// Len reports the number of name keys.
func (t *Table) Len() int {
	return len(t.names)
}

// reservedRegions are exceptionally reserved ISO 3166 codes that CLDR
// still names as countries (Ascension, Clipperton, the EU, ...).
var reservedRegions = map[string]bool{
	"AC": true, "CP": true, "CQ": true, "DG": true, "EA": true, "EU": true,
	"EZ": true, "FX": true, "IC": true, "SU": true, "TA": true, "UK": true,
	"UN": true,
}

// NoDialPlan lists ISO 3166-1 territories without a numbering plan of their
// own. Every other indexed territory has a phonenumbers region.
var NoDialPlan = map[string]bool{
	"AQ": true, "BV": true, "GS": true, "HM": true, "PN": true, "TF": true,
	"UM": true,
}

// territories enumerates the current ISO 3166-1 alpha-2 countries known to
// CLDR. Deprecated codes (FX, ZR, TP, DY, ...) canonicalize to their
// successor and are skipped, as are private-use and reserved codes.
func territories() []language.Region {
	regions := make([]language.Region, 0, 260)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || region.String() != code {
				continue
			}
			if region.Canonicalize() != region || reservedRegions[code] {
				continue
			}
			if !region.IsCountry() || region.IsPrivateUse() {
				continue
			}
			if phonenumbers.GetCountryCodeForRegion(code) == 0 && !NoDialPlan[code] {
				continue
			}
			regions = append(regions, region)
		}
	}
	return regions
}

func groupLocales(raw []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, s := range raw {
		tag, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("countries: locale %q: %w", s, err)
		}
		region, conf := tag.Region()
		if conf != language.Exact {
			return nil, fmt.Errorf("countries: locale %q has no explicit region", s)
		}
		out[region.String()] = append(out[region.String()], s)
	}
	return out, nil
}

// pickLocale prefers the first English tag in lexicographic order, otherwise
// the lexicographically first tag.
func pickLocale(tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	if tag, ok := lo.Find(sorted, func(tag string) bool {
		return strings.HasPrefix(tag, "en-")
	}); ok {
		return tag
	}
	return sorted[0]
}

func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
