package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"kasa/internal/analytics"
	"kasa/internal/cli"
	applog "kasa/internal/log"
	"kasa/internal/services"
)

func main() {
	rangeToken := flag.String("range", "all", "time range: all, thisMonth, lastMonth, last3Months, last6Months, thisYear")
	department := flag.String("department", "all", "department filter (exact match, case-sensitive)")
	dbPath := flag.String("db", "", "SQLite database path (default: SQLITE_DB_PATH)")
	showTransactions := flag.Bool("transactions", false, "list individual transactions")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	path := cfg.SQLiteDBPath
	if *dbPath != "" {
		path = *dbPath
	}

	repo := cli.InitSQLite(logger, path)
	defer func() { _ = repo.Close() }()

	stats := services.NewStatsService(repo, repo)

	ctx := context.Background()
	overview, err := stats.Overview(ctx, analytics.RangeToken(*rangeToken), *department, time.Now())
	if err != nil {
		logger.Error("Failed to compute report", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Range: %s  Department: %s  Transactions: %d\n\n",
		overview.Range, overview.Department, len(overview.Transactions))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENCY\tINCOME\tEXPENSE\tNET")
	for _, b := range overview.Buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.Currency, b.Income.String(), b.Expense.String(), b.Income.Sub(b.Expense).String())
	}
	if err := w.Flush(); err != nil {
		logger.Error("Failed to render report", "error", err)
		os.Exit(1)
	}

	if *showTransactions && len(overview.Transactions) > 0 {
		fmt.Println()
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tCURRENCY\tDEPARTMENT\tDESCRIPTION")
		for _, tx := range overview.Transactions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tx.Date.Format("2006-01-02"), tx.Type, tx.Amount.String(), tx.Currency, tx.DepartmentName, tx.Description)
		}
		if err := tw.Flush(); err != nil {
			logger.Error("Failed to render transactions", "error", err)
			os.Exit(1)
		}
	}
}
