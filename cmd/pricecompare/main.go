// pricecompare compares products by price per kilogram or litre.
//
// Usage:
//
//	pricecompare compare --unit weight 10,50/2 8/4
//	pricecompare compare --unit volume --small 6/500 11/1000
//	pricecompare serve --addr :8080
//	pricecompare migrate up
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/internal/config"
	"pricecompare-bot/internal/httpapi"
	"pricecompare-bot/internal/storage"
	"pricecompare-bot/pkg/api"
	"pricecompare-bot/pkg/logger"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pricecompare",
		Usage:   "Find the cheapest product by price per kg or L",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "currency",
				Value:   "R$",
				Usage:   "Currency symbol shown with prices",
				EnvVars: []string{"CURRENCY_SYMBOL"},
			},
		},

		Commands: []*cli.Command{
			compareCommand(),
			serveCommand(),
			migrateCommand(),
		},
	}
}

// =============================================================================
// COMPARE COMMAND
// =============================================================================

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare offers given as price/amount pairs",
		ArgsUsage: "PRICE/AMOUNT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "unit",
				Aliases: []string{"u"},
				Value:   "weight",
				Usage:   "Unit kind (weight, volume)",
			},
			&cli.BoolFlag{
				Name:    "small",
				Aliases: []string{"s"},
				Usage:   "Amounts are in g or ml",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Evaluate on a running API server instead of locally",
				EnvVars: []string{"PRICECOMPARE_SERVER"},
			},
		},
		Action: runCompare,
	}
}

func runCompare(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one PRICE/AMOUNT argument is required")
	}

	req, err := buildRequest(c.Args().Slice(), c.String("unit"), c.Bool("small"))
	if err != nil {
		return err
	}

	var resp *httpapi.CompareResponse
	if server := c.String("server"); server != "" {
		zapLogger, err := logger.New(c.String("log-level"))
		if err != nil {
			return err
		}
		defer zapLogger.Sync()

		resp, err = api.NewClient(server, zapLogger).Compare(c.Context, req)
		if err != nil {
			return fmt.Errorf("remote compare: %w", err)
		}
	} else {
		sheet, err := req.Sheet()
		if err != nil {
			return err
		}
		local := httpapi.NewCompareResponse(compare.Evaluate(sheet))
		resp = &local
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "table":
		return printTable(c.App.Writer, resp, c.String("currency"))
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

// buildRequest turns "price/amount" arguments into a compare request.
func buildRequest(args []string, unit string, small bool) (httpapi.CompareRequest, error) {
	req := httpapi.CompareRequest{Unit: unit, Scale: compare.ScaleLarge.String()}
	if small {
		req.Scale = compare.ScaleSmall.String()
	}

	for _, arg := range args {
		price, amount, ok := strings.Cut(arg, "/")
		if !ok {
			return httpapi.CompareRequest{}, fmt.Errorf("argument %q is not PRICE/AMOUNT", arg)
		}
		req.Rows = append(req.Rows, compare.Row{
			Price:  strings.TrimSpace(price),
			Amount: strings.TrimSpace(amount),
		})
	}
	return req, nil
}

func printTable(w io.Writer, resp *httpapi.CompareResponse, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "#\tAMOUNT (%s)\tPRICE (%s)\t%s/%s\t\n", resp.AmountUnit, currency, currency, resp.PriceUnit)
	for _, r := range resp.Rows {
		mark := ""
		if r.Cheapest {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.Index+1, r.Amount, r.Price, compare.FormatPrice(r.UnitPrice), mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !resp.HasCheapest {
		_, err := fmt.Fprintln(w, "\nNo complete rows to compare.")
		return err
	}
	_, err := fmt.Fprintf(w, "\nCheapest: %s %s/%s\n", currency, compare.FormatPrice(resp.Cheapest), resp.PriceUnit)
	return err
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the comparison HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "Listen address",
				EnvVars: []string{"HTTP_ADDR"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	zapLogger, err := logger.New(c.String("log-level"))
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(c.String("currency"), zapLogger)

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// =============================================================================
// MIGRATE COMMAND
// =============================================================================

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the statistics database schema (reads DB_* variables)",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					return runMigrate(c, storage.RunMigrations)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(c *cli.Context) error {
					return runMigrate(c, storage.RollbackMigration)
				},
			},
		},
	}
}

type migrateFunc func(ctx context.Context, db *sql.DB, logger *zap.Logger) error

func runMigrate(c *cli.Context, migrate migrateFunc) error {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	zapLogger, err := logger.New(c.String("log-level"))
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Connect(ctx, dbCfg, zapLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrate(ctx, db.DB, zapLogger)
}
