package geocode

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// UnknownStreet is the street line used when a result has no street,
// amenity, shop or name.
const UnknownStreet = "Unknown Street"

// HasAddress reports whether a raw result carries a non-empty address object.
func HasAddress(result gjson.Result) bool {
	addr := result.Get("address")
	return addr.IsObject() && len(addr.Map()) > 0
}

// ParseResult maps a raw Nominatim jsonv2 result to an Address.
func ParseResult(result gjson.Result) Address {
	addr := result.Get("address")
	field := func(name string) string {
		return strings.TrimSpace(addr.Get(name).String())
	}

	street := lo.CoalesceOrEmpty(field("road"), field("pedestrian"), field("footway"), field("street"))

	var line string
	switch {
	case street != "" && field("house_number") != "":
		line = field("house_number") + " " + street
	case street != "":
		line = street
	default:
		line = lo.CoalesceOrEmpty(
			field("amenity"),
			field("shop"),
			strings.TrimSpace(result.Get("name").String()),
			UnknownStreet,
		)
	}

	return Address{
		Address:     line,
		City:        optional(lo.CoalesceOrEmpty(field("city"), field("town"), field("village"), field("county"), field("municipality"))),
		State:       optional(lo.CoalesceOrEmpty(field("state"), field("province"), field("region"))),
		Zipcode:     optional(field("postcode")),
		Country:     optional(field("country")),
		FullAddress: strings.TrimSpace(result.Get("display_name").String()),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
