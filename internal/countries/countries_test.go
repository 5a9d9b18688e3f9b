package countries

import (
	"testing"

	"github.com/nyaruka/phonenumbers"
)

func loadTable(t *testing.T) *Table {
	t.Helper()
	table, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return table
}

func TestNormalize(t *testing.T) {
	table := loadTable(t)

	cases := map[string]string{
		"美国":               "US",
		"United States":    "US",
		"USA":              "US",
		"America":          "US",
		"China":            "CN",
		"中国":               "CN",
		"CN":               "CN",
		"cn":               "CN",
		"Germany":          "DE",
		"Deutschland":      "DE",
		"France":           "FR",
		"法国":               "FR",
		"JAPAN":            "JP",
		"日本":               "JP",
		"UK":               "GB",
		"  england  ":      "GB",
		"Great Britain":    "GB",
		"South Korea":      "KR",
		"North Korea":      "KP",
		"russia":           "RU",
		"GB":               "GB",
		"United Kingdom":   "GB",
		"英国":               "GB",
		"CD":               "CD",
		"Congo - Kinshasa": "CD",
		"TL":               "TL",
		"Timor-Leste":      "TL",
		"BJ":               "BJ",
		"Benin":            "BJ",
		"MM":               "MM",
	}

	for input, want := range cases {
		got, ok := table.Normalize(input)
		if !ok {
			t.Fatalf("Normalize(%q): expected %s, got miss", input, want)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNormalizeMisses(t *testing.T) {
	table := loadTable(t)

	for _, input := range []string{"UnknownLand", "", "   ", "Unit", "United"} {
		if code, ok := table.Normalize(input); ok {
			t.Fatalf("Normalize(%q) should miss, got %s", input, code)
		}
	}
}

func TestNormalizeRoundTripsCodes(t *testing.T) {
	table := loadTable(t)

	codes := table.Codes()
	if len(codes) < 200 {
		t.Fatalf("expected the CLDR territory list, got %d codes", len(codes))
	}
	for _, code := range codes {
		got, ok := table.Normalize(code)
		if !ok || got != code {
			t.Fatalf("Normalize(%q) = %q, %v; want identity", code, got, ok)
		}
		again, ok := table.Normalize(got)
		if !ok || again != got {
			t.Fatalf("Normalize should be idempotent for %q", code)
		}
	}
}

func TestCodesExcludeRetiredAndReservedRegions(t *testing.T) {
	table := loadTable(t)

	codes := make(map[string]bool)
	for _, code := range table.Codes() {
		codes[code] = true
	}
	for _, retired := range []string{"FX", "UK", "ZR", "TP", "DY", "BU", "EZ", "UN", "EU", "AC", "TA", "SU", "YU", "CS"} {
		if codes[retired] {
			t.Fatalf("Codes() should not contain %s", retired)
		}
	}
	for _, current := range []string{"FR", "GB", "CD", "TL", "BJ", "MM", "AQ"} {
		if !codes[current] {
			t.Fatalf("Codes() should contain %s", current)
		}
	}
}

func TestCodesHaveDialPlans(t *testing.T) {
	table := loadTable(t)

	for _, code := range table.Codes() {
		if phonenumbers.GetCountryCodeForRegion(code) == 0 && !NoDialPlan[code] {
			t.Fatalf("%s has no phonenumbers region and is not listed in NoDialPlan", code)
		}
	}
}

func TestAliasesOverrideTerritoryNames(t *testing.T) {
	table, err := New(Data{Aliases: map[string]string{"france": "de"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, _ := table.Normalize("France"); got != "DE" {
		t.Fatalf("alias should win on collision, got %s", got)
	}
}

func TestNewRejectsBadData(t *testing.T) {
	if _, err := New(Data{Aliases: map[string]string{"nowhere": "XYZ"}}); err == nil {
		t.Fatal("expected error for three-letter alias target")
	}
	if _, err := New(Data{Locales: []string{"en"}}); err == nil {
		t.Fatal("expected error for locale without region")
	}
}

func TestLocaleFor(t *testing.T) {
	table := loadTable(t)

	cases := map[string]string{
		"US": "en-US",
		"us": "en-US",
		"GB": "en-GB",
		"CN": "zh-CN",
		"JP": "ja-JP",
		"DE": "de-DE",
		"CH": "de-CH",
		"HK": "en-HK",
		"IN": "en-IN",
		"CA": "en-CA",
		"BE": "fr-BE",
		"ZW": DefaultLocale,
		"AQ": DefaultLocale,
		"":   DefaultLocale,
	}

	for code, want := range cases {
		if got := table.LocaleFor(code); got != want {
			t.Fatalf("LocaleFor(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestLocaleForIsTotalAndDeterministic(t *testing.T) {
	table := loadTable(t)

	for _, code := range table.Codes() {
		first := table.LocaleFor(code)
		if first == "" {
			t.Fatalf("LocaleFor(%q) returned empty tag", code)
		}
		if second := table.LocaleFor(code); second != first {
			t.Fatalf("LocaleFor(%q) not deterministic: %s vs %s", code, first, second)
		}
	}
}

func TestPickLocale(t *testing.T) {
	if got := pickLocale([]string{"zh-HK", "en-HK"}); got != "en-HK" {
		t.Fatalf("expected English tag, got %s", got)
	}
	if got := pickLocale([]string{"it-CH", "fr-CH", "de-CH"}); got != "de-CH" {
		t.Fatalf("expected lexicographically first tag, got %s", got)
	}
}
