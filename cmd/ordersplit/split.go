package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/efreitasn/ordersplit/internal/handler"
	"github.com/efreitasn/ordersplit/internal/service"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

type splitCmd struct {
	file string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "split one order offline and print it as JSON" }
func (*splitCmd) Usage() string {
	return `split [-f request.yaml]

  Reads a split request (YAML or JSON, same fields as POST /api/orders/split)
  from -f or standard input, and prints the resulting order.

Usage Examples:
$ ordersplit split -f order.yaml
$ echo '{"modelPortfolio":[{"symbol":"AAPL","weight":1}],"totalAmount":500,"orderType":"BUY"}' | ordersplit split
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "-", "request file, - for standard input")
}

func (c *splitCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	orderSvc, err := newOrderService(cfg, newLogger(os.Stderr, cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	in := io.Reader(os.Stdin)
	if c.file != "-" {
		f, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		in = f
	}

	if err := runSplit(orderSvc, in, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runSplit decodes one request from r, splits it, and writes the order JSON
// to w. YAML is a superset of JSON, so both formats decode here.
func runSplit(orderSvc *service.OrderService, r io.Reader, w io.Writer) error {
	var body handler.SplitOrderBody
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	req, err := body.ToRequest()
	if err != nil {
		return err
	}

	order, err := orderSvc.SplitOrder(req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(handler.BuildOrderResponse(order))
}
