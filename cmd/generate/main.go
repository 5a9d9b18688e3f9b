// Command generate prints one generated identity as JSON, using the same
// pipeline as the HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"realaddress_backend/internal/addresses/service"
	"realaddress_backend/internal/addresses/transport"
	"realaddress_backend/internal/countries"
	"realaddress_backend/internal/geocode"
	"realaddress_backend/internal/persona"
	"realaddress_backend/platform/apperr"
	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/validator"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "generate",
		Usage: "generate a synthetic person paired with a real address",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "country",
				Aliases:  []string{"c"},
				Usage:    "country name or ISO code",
				Required: true,
			},
			&cli.StringFlag{Name: "state", Usage: "state or region"},
			&cli.StringFlag{Name: "city", Usage: "city"},
			&cli.StringFlag{Name: "zipcode", Aliases: []string{"zip"}, Usage: "postal code"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log cascade progress to stderr"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Discard()
	if c.Bool("verbose") {
		log = logger.NewWithWriter(cfg.Env, os.Stderr)
	}

	table, err := countries.Load()
	if err != nil {
		return err
	}
	personas, err := persona.New(table, log, nil)
	if err != nil {
		return err
	}
	resolver := geocode.NewResolver(geocode.NewClient(cfg, log, nil), personas, log)
	svc := service.New(table, resolver, personas, cfg.GetDefaultCountry(), log)

	req := transport.GenerateRequest{
		Country: c.String("country"),
		State:   c.String("state"),
		City:    c.String("city"),
		Zipcode: c.String("zipcode"),
	}
	if err := validator.New().Struct(req); err != nil {
		verr := apperr.Validation("invalid input").WithDetails(validator.FieldErrors(err))
		return cli.Exit(fmt.Sprintf("%s: %v", verr.Error(), verr.Details), exitCode(verr))
	}

	resp, err := svc.Generate(c.Context, req)
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// exitCode maps error kinds to process exit codes.
func exitCode(err error) int {
	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindBadRequest:
		return 2
	case apperr.KindUnavailable:
		return 3
	default:
		return 1
	}
}
