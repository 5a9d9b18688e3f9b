package service

import (
	"context"
	"strings"

	"realaddress_backend/internal/addresses/transport"
	"realaddress_backend/internal/geocode"
	"realaddress_backend/internal/persona"
	"realaddress_backend/platform/apperr"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/sanitize"

	"github.com/samber/lo"
)

// MsgNoAddress is returned to callers when every cascade level came back empty.
const MsgNoAddress = "unable to fetch real address from network at this time"

// CountryNormalizer maps free-text country input to an ISO code.
type CountryNormalizer interface {
	Normalize(text string) (string, bool)
}

// AddressResolver finds a real address for a query.
type AddressResolver interface {
	Resolve(ctx context.Context, q geocode.Query) (*geocode.Address, bool)
}

// PersonaGenerator synthesizes a name and phone for a country.
type PersonaGenerator interface {
	Generate(countryCode string) persona.Persona
}

// Service assembles a generated identity from a real address and a persona.
type Service struct {
	countries      CountryNormalizer
	resolver       AddressResolver
	personas       PersonaGenerator
	defaultCountry string
	log            *logger.Logger
}

// New creates a new address generation service.
func New(countries CountryNormalizer, resolver AddressResolver, personas PersonaGenerator, defaultCountry string, log *logger.Logger) *Service {
	return &Service{
		countries:      countries,
		resolver:       resolver,
		personas:       personas,
		defaultCountry: strings.ToUpper(defaultCountry),
		log:            log,
	}
}

// Generate resolves an address for the request and pairs it with a persona
// for the same country. Unrecognized countries fall back to the default
// country. Returns an Unavailable error when no address could be found.
func (s *Service) Generate(ctx context.Context, req transport.GenerateRequest) (transport.GenerateResponse, error) {
	log := s.log.WithContext(ctx)

	code := s.CountryCode(ctx, req.Country)
	query := geocode.Query{
		CountryCode: code,
		City:        sanitize.Text(req.City),
		Zipcode:     sanitize.Text(req.Zipcode),
		State:       sanitize.Text(req.State),
	}

	addr, ok := s.resolver.Resolve(ctx, query)
	if !ok {
		return transport.GenerateResponse{}, apperr.Unavailable(MsgNoAddress).WithOp("addresses.Generate")
	}

	p := s.personas.Generate(code)
	log.Info("address generated", "country_code", code, "has_zipcode", addr.Zipcode != nil)

	return transport.GenerateResponse{
		Name:        p.Name,
		Phone:       p.Phone,
		Address:     addr.Address,
		CityState:   CityState(addr.City, addr.State),
		Zipcode:     addr.Zipcode,
		Country:     lo.FromPtrOr(addr.Country, code),
		FullAddress: addr.FullAddress,
	}, nil
}

// CountryCode normalizes free-text country input, falling back to the
// default country with a warning.
func (s *Service) CountryCode(ctx context.Context, country string) string {
	if code, ok := s.countries.Normalize(sanitize.Text(country)); ok {
		return code
	}
	s.log.WithContext(ctx).Warn("unrecognized country, using default",
		"country", country, "default", s.defaultCountry)
	return s.defaultCountry
}

// CityState joins city and state as "city, state", dropping the separator
// when either side is missing.
func CityState(city, state *string) string {
	joined := lo.FromPtr(city) + ", " + lo.FromPtr(state)
	return strings.Trim(joined, ", ")
}
