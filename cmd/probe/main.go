// Command probe drives a running SVES-DAQ backend's prediction API.
//
// Usage:
//
//	probe predict --model brakeFade --feature brakeTemperature=320 --feature fadeSlope=-0.04
//	probe verify --count 2000 --workers 16
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/internal/probe"
	"github.com/sves-daq/backend/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "probe",
		Usage: "Exercise and verify the SVES-DAQ prediction API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   probe.DefaultBaseURL,
				Usage:   "Base URL of the backend",
				EnvVars: []string{"SVES_PROBE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: probe.DefaultTimeout,
				Usage: "HTTP request timeout",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
				return err
			}
			return logger.SetLevelString(c.String("log-level"))
		},
		Commands: []*cli.Command{
			predictCommand(),
			verifyCommand(),
		},
	}
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Send one prediction request and print the reply",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Value:   prediction.DefaultModelName,
				Usage:   "Model type",
			},
			&cli.StringSliceFlag{
				Name:    "feature",
				Aliases: []string{"f"},
				Usage:   "Feature as key=value, repeatable",
			},
			&cli.StringFlag{
				Name:  "test-id",
				Usage: "Persist the prediction against this test",
			},
		},
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	features, err := parseFeatures(c.StringSlice("feature"))
	if err != nil {
		return err
	}
	client := probe.NewClient(c.String("url"), c.Duration("timeout"))
	resp, err := client.Predict(c.Context, probe.PredictRequest{
		TestData:  features,
		ModelType: c.String("model"),
		TestID:    c.String("test-id"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("print response: %w", err)
	}
	req := probe.PredictRequest{ModelType: c.String("model")}
	for _, v := range probe.Verify(req, resp) {
		fmt.Fprintf(c.App.ErrWriter, "violation %s\n", v)
	}
	return nil
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Submit random feature bags for every model and check each reply",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   probe.DefaultCount,
				Usage:   "Number of requests",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: runtime.NumCPU() * 2,
				Usage: "Concurrent requests",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Generator seed (default: current time)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log each failed request",
			},
		},
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := c.Uint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	stats, err := probe.Run(ctx, probe.Config{
		BaseURL: c.String("url"),
		Count:   c.Int("count"),
		Workers: c.Int("workers"),
		Timeout: c.Duration("timeout"),
		Verbose: c.Bool("verbose"),
	}, probe.NewGenerator(seed))
	probe.PrintSummary(c.App.Writer, stats)
	return err
}

// parseFeatures reads key=value pairs into a feature bag.
func parseFeatures(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("feature %q: want key=value", p)
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", p, err)
		}
		out[k] = n
	}
	return out, nil
}

