package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/couchcryptid/hko-weather-e2e/internal/adapter/hko"
	"github.com/couchcryptid/hko-weather-e2e/internal/config"
	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
	"github.com/couchcryptid/hko-weather-e2e/internal/observability"
)

var boundFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "min",
		Usage: "Lowest acceptable minimum humidity (percent)",
	},
	&cli.IntFlag{
		Name:  "max",
		Usage: "Highest acceptable maximum humidity (percent)",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "hkoweather",
		Usage:   "Query the Hong Kong Observatory open-data API and check forecast humidity",
		Version: Version,
		Description: `hkoweather fetches HKO weather data with retries and checks the
relative humidity range forecast for a given day.

Examples:
  hkoweather forecast --offset 2
  hkoweather humidity --offset 2 --min 40
  hkoweather validate "60 - 85%"
  hkoweather compare "60-85%" "60 - 85"
  hkoweather monitor`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML file overlaying the API settings",
				EnvVars: []string{"API_CONFIG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("config") {
				return os.Setenv("API_CONFIG_FILE", c.String("config"))
			}
			return nil
		},
		Commands: []*cli.Command{
			forecastCommand,
			currentCommand,
			warningCommand,
			humidityCommand,
			validateCommand,
			compareCommand,
			monitorCommand,
		},
	}
}

var forecastCommand = &cli.Command{
	Name:  "forecast",
	Usage: "Print the 9-day forecast, or the entry for one day",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "date",
			Usage: "Forecast date as YYYYMMDD",
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Days from today",
		},
	},
	Action: func(c *cli.Context) error {
		env, err := setup(c)
		if err != nil {
			return err
		}
		defer env.client.Close()

		fp := env.client.FetchNineDayForecast(c.Context)
		if fp == nil {
			return errors.New("9-day forecast unavailable")
		}

		var date time.Time
		switch {
		case c.IsSet("date"):
			if date, err = domain.ParseDateKey(c.String("date"), time.Local); err != nil {
				return err
			}
		case c.IsSet("offset"):
			date = domain.DayOffset(c.Int("offset"))
		default:
			return printJSON(c.App.Writer, fp)
		}

		entry, ok := env.client.ExtractForecastForDate(c.Context, date, fp)
		if !ok {
			return fmt.Errorf("no forecast for %s", domain.DateKey(date))
		}
		return printJSON(c.App.Writer, entry)
	},
}

var currentCommand = &cli.Command{
	Name:  "current",
	Usage: "Print the current weather report",
	Action: func(c *cli.Context) error {
		env, err := setup(c)
		if err != nil {
			return err
		}
		defer env.client.Close()

		p := env.client.FetchCurrentWeather(c.Context)
		if p == nil {
			return errors.New("current weather unavailable")
		}
		return printJSON(c.App.Writer, p)
	},
}

var warningCommand = &cli.Command{
	Name:  "warning",
	Usage: "Print the weather warning summary",
	Action: func(c *cli.Context) error {
		env, err := setup(c)
		if err != nil {
			return err
		}
		defer env.client.Close()

		p := env.client.FetchWeatherWarning(c.Context)
		if p == nil {
			return errors.New("weather warning unavailable")
		}
		return printJSON(c.App.Writer, p)
	},
}

var humidityCommand = &cli.Command{
	Name:  "humidity",
	Usage: "Print and validate the humidity range forecast for a day",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Days from today",
			Value: domain.DayAfterTomorrowOffset,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print a full humidity report as JSON",
		},
	}, boundFlags...),
	Action: func(c *cli.Context) error {
		env, err := setup(c)
		if err != nil {
			return err
		}
		defer env.client.Close()

		offset := c.Int("offset")
		b := bounds(c, env.cfg)

		fp := env.client.FetchNineDayForecast(c.Context)
		if fp == nil {
			return errors.New("9-day forecast unavailable")
		}

		if c.Bool("json") {
			report := domain.BuildHumidityReport(fp, offset, b)
			if err := printJSON(c.App.Writer, report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("humidity check %s for %s", report.Result(), report.Date)
			}
			return nil
		}

		key := domain.DateKey(domain.DayOffset(offset))
		text, ok := env.client.ExtractHumidityForOffset(c.Context, offset, fp)
		if !ok {
			return fmt.Errorf("no humidity forecast for %s", key)
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", key, text)

		if !domain.ValidateHumidityRange(text, b, env.logger) {
			return fmt.Errorf("humidity %q for %s failed validation", text, key)
		}
		return nil
	},
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Parse and validate humidity text such as \"60 - 85%\"",
	ArgsUsage: "TEXT",
	Flags:     boundFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("validate takes exactly one TEXT argument")
		}
		text := c.Args().First()

		r, err := domain.CheckHumidityRange(text, flagBounds(c))
		if err != nil {
			return fmt.Errorf("invalid humidity %q: %w", text, err)
		}
		fmt.Fprintln(c.App.Writer, r)
		return nil
	},
}

var compareCommand = &cli.Command{
	Name:      "compare",
	Usage:     "Check that humidity text from the app matches the API value",
	ArgsUsage: "UI_TEXT API_TEXT",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("compare takes UI_TEXT and API_TEXT arguments")
		}
		ui, api := c.Args().Get(0), c.Args().Get(1)

		if !domain.HumidityMatches(ui, api) {
			return fmt.Errorf("humidity mismatch: ui %q, api %q", ui, api)
		}
		r, _ := domain.ParseHumidityRange(api)
		fmt.Fprintf(c.App.Writer, "match: %s\n", r)
		return nil
	},
}

// cmdEnv holds what the one-shot API commands share.
type cmdEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	client *hko.Client
}

func setup(c *cli.Context) (*cmdEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLoggerWithWriter(c.App.ErrWriter, cfg)
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	return &cmdEnv{
		cfg:    cfg,
		logger: logger,
		client: hko.NewClient(cfg, logger, metrics),
	}, nil
}

// bounds prefers --min/--max and falls back to the configured expectations.
func bounds(c *cli.Context, cfg *config.Config) domain.Bounds {
	b := flagBounds(c)
	if b.Min == nil {
		b.Min = cfg.HumidityExpectedMin
	}
	if b.Max == nil {
		b.Max = cfg.HumidityExpectedMax
	}
	return b
}

func flagBounds(c *cli.Context) domain.Bounds {
	var b domain.Bounds
	if c.IsSet("min") {
		b.Min = domain.IntPtr(c.Int("min"))
	}
	if c.IsSet("max") {
		b.Max = domain.IntPtr(c.Int("max"))
	}
	return b
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
