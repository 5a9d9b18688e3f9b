// Package phone provides numbering-plan aware phone number synthesis.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Randomization policy. The prefix keeps area-code plausibility, the suffix
// provides per-call variation; both were tuned by eye, not derived.
const (
	KeepPrefixDigits = 2
	MinRandomDigits  = 4
	MaxRandomDigits  = 6
)

// ErrNoExample is returned when the numbering plan has no example number
// for a region (sparse or unsupported territories such as AQ).
var ErrNoExample = errors.New("phone: no example number for region")

// Rand is the subset of math/rand/v2 used for digit generation.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the goroutine-safe math/rand/v2 top-level source.
var DefaultRand Rand = globalRand{}

// Randomize derives a fresh number for region from the numbering plan's
// example number: the country calling code and the first KeepPrefixDigits
// digits of the national number are kept, the remaining suffix (at most
// MaxRandomDigits) is replaced with random digits. The result is formatted
// in international form.
func Randomize(region string, rnd Rand) (string, error) {
	if rnd == nil {
		rnd = DefaultRand
	}
	region = strings.ToUpper(strings.TrimSpace(region))

	example := exampleNumber(region)
	if example == nil {
		return "", ErrNoExample
	}

	nsn := phonenumbers.GetNationalSignificantNumber(example)
	count := RandomDigitCount(len(nsn))
	if count == 0 {
		return "", fmt.Errorf("phone: national number %q too short to randomize", nsn)
	}

	var b strings.Builder
	b.Grow(len(nsn))
	b.WriteString(nsn[:len(nsn)-count])
	for i := 0; i < count; i++ {
		b.WriteByte(byte('0' + rnd.IntN(10)))
	}

	raw := fmt.Sprintf("+%d%s", example.GetCountryCode(), b.String())
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("phone: reparse %s: %w", raw, err)
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return "", fmt.Errorf("phone: %s is not a possible number for %s", raw, region)
	}

	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL), nil
}

// RandomDigitCount returns how many trailing digits of a national number of
// length n are randomized: capped at MaxRandomDigits, and when fewer than
// MinRandomDigits fit after the kept prefix, whatever fits.
func RandomDigitCount(n int) int {
	available := n - KeepPrefixDigits
	if available <= 0 {
		return 0
	}
	if available < MinRandomDigits {
		return available
	}
	return min(available, MaxRandomDigits)
}

// CallingCode returns the international calling code for region, or 0.
func CallingCode(region string) int {
	return phonenumbers.GetCountryCodeForRegion(strings.ToUpper(strings.TrimSpace(region)))
}

// IsPossible reports whether number parses as a structurally possible
// number in region's numbering plan.
func IsPossible(number, region string) bool {
	parsed, err := phonenumbers.Parse(number, strings.ToUpper(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(parsed)
}

func exampleNumber(region string) *phonenumbers.PhoneNumber {
	if number := phonenumbers.GetExampleNumberForType(region, phonenumbers.MOBILE); number != nil {
		return number
	}
	return phonenumbers.GetExampleNumber(region)
}
