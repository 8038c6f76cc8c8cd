package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"
)

type healthcheckCmd struct {
	timeout time.Duration
}

func (*healthcheckCmd) Name() string     { return "healthcheck" }
func (*healthcheckCmd) Synopsis() string { return "probe /healthz on the local server" }
func (*healthcheckCmd) Usage() string {
	return `healthcheck [-timeout 2s]

  Sends GET http://localhost:$PORT/healthz and exits 0 on 200, 1 otherwise.
  PORT is resolved like serve does, including ./.env.
`
}

func (c *healthcheckCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.timeout, "timeout", 2*time.Second, "request timeout")
}

func (c *healthcheckCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	url, err := healthURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := probe(ctx, url, c.timeout); err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// healthURL returns the local /healthz URL for the configured port.
func healthURL(dotEnv ...string) (string, error) {
	cfg, err := loadConfig(dotEnv...)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://localhost:%d/healthz", cfg.Port), nil
}

func probe(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
