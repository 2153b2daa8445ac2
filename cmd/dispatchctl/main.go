// Command dispatchctl triggers scheduling and assignment runs on a running
// dispatch server and prints a summary of the outcome.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const usage = `usage: dispatchctl [-api URL] [-limit N] run|assign|schedule

  run       schedule pending jobs, then assign installers
  assign    assign installers to scheduled jobs
  schedule  create schedules for jobs with a start date
`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	apiURL := flag.String("api", envOr("DISPATCH_API_URL", "http://localhost:8080"), "dispatch server base URL")
	limit := flag.Int("limit", 10, "maximum jobs per run")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	client := newAPIClient(*apiURL, *timeout)
	if err := run(client, flag.Arg(0), *limit); err != nil {
		logger.Error().Err(err).Str("command", flag.Arg(0)).Msg("dispatch run failed")
		os.Exit(1)
	}
}

func run(client *apiClient, command string, limit int) error {
	switch command {
	case "run":
		report, err := client.scheduleAndAssign(limit)
		if err != nil {
			return err
		}
		printCombined(os.Stdout, report)
	case "assign":
		report, err := client.assign(limit)
		if err != nil {
			return err
		}
		printBatch(os.Stdout, report)
	case "schedule":
		report, err := client.schedule(limit)
		if err != nil {
			return err
		}
		printSchedule(os.Stdout, report)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
