package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dvloznov/seller-analytics/internal/app"
	"github.com/dvloznov/seller-analytics/internal/config"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/jobs"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/dvloznov/seller-analytics/internal/reports"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "top-seller":
		runTopSeller(log)
	case "low-performers":
		runLowPerformers(log)
	case "best-period":
		runBestPeriod(log)
	case "summary":
		runSummary(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Seller Analytics CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  top-seller      Show the top seller of a period (DAY, MONTH, QUARTER, YEAR)")
	fmt.Println("  low-performers  List sellers whose total is below a threshold")
	fmt.Println("  best-period     Find a seller's most productive time window")
	fmt.Println("  summary         Show store-wide sales statistics")
	fmt.Println("  export          Write a report as JSON to GCS or a local directory")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nEvery command accepts -store memory -seed FILE for local data.")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// command holds what every subcommand shares: flags, config and dependencies.
type command struct {
	fs     *flag.FlagSet
	cfg    config.Config
	finish func() error
	asJSON *bool
}

func newCommand(name string) *command {
	c := &command{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	c.finish = c.cfg.Register(c.fs, os.Getenv)
	c.asJSON = c.fs.Bool("json", false, "print the result as JSON")
	return c
}

// open parses the command line and builds dependencies.
func (c *command) open(log zerolog.Logger) (context.Context, *app.App, func()) {
	_ = c.fs.Parse(os.Args[2:])
	if err := c.finish(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	c.cfg.LogFormat = logger.FormatConsole
	if err := c.cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log = log.Level(logger.ParseLevel(c.cfg.LogLevel))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	ctx = logger.WithContext(ctx, log)

	deps, err := app.New(ctx, &c.cfg)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to initialize dependencies")
	}
	return ctx, deps, func() {
		_ = deps.Close()
		cancel()
	}
}

func (c *command) printJSON(v any) bool {
	if !*c.asJSON {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
	return true
}

func runTopSeller(log zerolog.Logger) {
	c := newCommand("top-seller")
	period := c.fs.String("period", "MONTH", "period: DAY, MONTH, QUARTER or YEAR")
	ctx, deps, done := c.open(log)
	defer done()

	top, err := deps.Service.TopSeller(ctx, *period)
	if err != nil {
		log.Fatal().Err(err).Msg("Top seller query failed")
	}
	if c.printJSON(top) {
		return
	}
	if top == nil {
		fmt.Printf("No sales in the current %s.\n", *period)
		return
	}
	fmt.Printf("Top seller (%s): #%d %s with %s\n", top.Period, top.SellerID, top.SellerName, top.Total.StringFixed(2))
}

func runLowPerformers(log zerolog.Logger) {
	c := newCommand("low-performers")
	period := c.fs.String("period", "MONTH", "period: DAY, MONTH, QUARTER or YEAR")
	minStr := c.fs.String("min-amount", "", "threshold; sellers strictly below it are listed")
	ctx, deps, done := c.open(log)
	defer done()

	minAmount, err := decimal.NewFromString(*minStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --min-amount must be a number")
	}

	sellers, err := deps.Service.SellersBelowForPeriod(ctx, *period, minAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("Low performers query failed")
	}
	if c.printJSON(sellers) {
		return
	}

	fmt.Printf("\n=== Sellers below %s (%s) ===\n", minAmount.StringFixed(2), *period)
	if len(sellers) == 0 {
		fmt.Println("none")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Seller ID", "Name", "Total"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, s := range sellers {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(s.SellerID, 10),
			s.SellerName,
			s.Total.StringFixed(2),
		})
	}
	table.Render()
}

func runBestPeriod(log zerolog.Logger) {
	c := newCommand("best-period")
	sellerStr := c.fs.String("seller-id", "", "seller ID")
	ctx, deps, done := c.open(log)
	defer done()

	sellerID, err := strconv.ParseInt(*sellerStr, 10, 64)
	if err != nil || sellerID <= 0 {
		log.Fatal().Msg("Error: --seller-id must be a positive integer")
	}

	best, err := deps.Service.BestPeriod(ctx, sellerID)
	if err != nil {
		log.Fatal().Err(err).Msg("Best period query failed")
	}
	if c.printJSON(best) {
		return
	}

	fmt.Println("\n=== Best Period ===")
	fmt.Printf("Seller:       %d\n", sellerID)
	fmt.Printf("Start:        %s\n", best.WindowStart.Format(time.RFC3339))
	fmt.Printf("End:          %s\n", best.WindowEnd.Format(time.RFC3339))
	fmt.Printf("Transactions: %d\n", best.TransactionCount)
	fmt.Printf("Total:        %s\n", best.TotalAmount.StringFixed(2))
}

func runSummary(log zerolog.Logger) {
	c := newCommand("summary")
	ctx, deps, done := c.open(log)
	defer done()

	summary, err := deps.Service.Summary(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Summary query failed")
	}
	if c.printJSON(summary) {
		return
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Sellers:      %d\n", summary.SellerCount)
	fmt.Printf("Transactions: %d\n", summary.TransactionCount)
	fmt.Printf("Total sales:  %s\n", summary.TotalSales.StringFixed(2))
	fmt.Printf("Average:      %s\n", summary.AverageAmount.StringFixed(2))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Payment kind", "Sales"})
	for _, kind := range domain.PaymentKinds {
		table.Append([]string{string(kind), summary.SalesByPayment[kind].StringFixed(2)})
	}
	table.Render()
}

func runExport(log zerolog.Logger) {
	c := newCommand("export")
	kind := c.fs.String("kind", string(jobs.ReportSummary), "report: top_seller, low_performers, best_period or summary")
	period := c.fs.String("period", "", "period for top_seller and low_performers")
	minStr := c.fs.String("min-amount", "0", "threshold for low_performers")
	sellerID := c.fs.Int64("seller-id", 0, "seller for best_period")
	ctx, deps, done := c.open(log)
	defer done()

	minAmount, err := decimal.NewFromString(*minStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: --min-amount must be a number")
	}

	job := &jobs.ReportJob{
		JobID:     uuid.New().String(),
		Kind:      jobs.ReportKind(*kind),
		Period:    *period,
		MinAmount: minAmount,
		SellerID:  *sellerID,
		CreatedAt: time.Now().UTC(),
	}

	log.Info().Str("job_id", job.JobID).Str("kind", *kind).Msg("Exporting report")

	if err := reports.NewRunner(deps.Service, deps.Writer, nil).Handle(ctx, job); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Report written to %s\n", job.ObjectURI)
}
