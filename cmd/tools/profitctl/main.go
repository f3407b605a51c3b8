package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/profitpro/internal/app"
	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/profit"
)

const usage = `usage: profitctl <command> [flags]

commands:
  calc     compute and record a calculation
  history  list recorded calculations, newest first
  replay   re-derive a recorded calculation by id and record it again
  clear    delete every recorded calculation (requires -yes)
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialise: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = deps.Close() }()

	if err := run(ctx, os.Args[1:], os.Stdout, deps.Profit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, svc *profit.Service) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "calc":
		return runCalc(ctx, args[1:], out, svc)
	case "history":
		return runHistory(out, svc)
	case "replay":
		return runReplay(ctx, args[1:], out, svc)
	case "clear":
		return runClear(ctx, args[1:], out, svc)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runCalc(ctx context.Context, args []string, out io.Writer, svc *profit.Service) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(out)
	var in calculator.Inputs
	fs.Float64Var(&in.CostPrice, "cost", 0, "unit cost price")
	fs.Float64Var(&in.SellingPrice, "sell", 0, "unit selling price")
	fs.IntVar(&in.Quantity, "qty", 1, "quantity")
	fs.Float64Var(&in.VATPercent, "vat", 0, "VAT/tax percent")
	fs.Float64Var(&in.DiscountPercent, "discount", 0, "discount percent")
	fs.Float64Var(&in.Shipping, "shipping", 0, "shipping and fees")
	fs.StringVar(&in.CurrencyCode, "currency", "", "currency code (defaults to DEFAULT_CURRENCY)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	calc, err := svc.Calculate(ctx, in)
	var validation *calculator.ValidationError
	if errors.As(err, &validation) {
		return validation
	}
	if warning, ok := profit.PersistWarning(err); ok {
		fmt.Fprintf(out, "warning: %s (%v)\n", warning, err)
	} else if err != nil {
		return err
	}
	printCalculation(out, calc)
	return nil
}

func runHistory(out io.Writer, svc *profit.Service) error {
	rows := history.Rows(svc.History.Entries())
	if len(rows) == 0 {
		fmt.Fprintln(out, "No calculations yet.")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintln(out, row.String())
	}
	return nil
}

func runReplay(ctx context.Context, args []string, out io.Writer, svc *profit.Service) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(out)
	id := fs.Int64("id", 0, "id of the calculation to replay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	calc, err := svc.Replay(ctx, *id)
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("no calculation with id %d", *id)
	}
	if warning, ok := profit.PersistWarning(err); ok {
		fmt.Fprintf(out, "warning: %s (%v)\n", warning, err)
	} else if err != nil {
		return err
	}
	printCalculation(out, calc)
	return nil
}

func runClear(ctx context.Context, args []string, out io.Writer, svc *profit.Service) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(out)
	yes := fs.Bool("yes", false, "confirm deleting all history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to clear history without -yes")
	}
	removed := svc.History.Len()
	if err := svc.History.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "cleared %d calculations\n", removed)
	return nil
}

func printCalculation(out io.Writer, calc calculator.Calculation) {
	d := calculator.Summarize(calc)
	status := "PROFIT"
	if !d.Positive {
		status = "LOSS"
	}
	lines := []string{
		fmt.Sprintf("id                    %d", calc.ID),
		"total cost            " + d.TotalCost,
		"total revenue         " + d.TotalRevenue,
		"price after discount  " + d.PriceAfterDiscount,
		"final price           " + d.FinalPrice,
		"total profit          " + d.TotalProfit + " (" + status + ")",
		"profit margin         " + d.ProfitMargin,
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
