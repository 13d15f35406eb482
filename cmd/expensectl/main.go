// Command expensectl records expenses and prints reports from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"expenses/internal/cli"
	"expenses/internal/core"
	applog "expenses/internal/log"
)

type ledger interface {
	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, selected ...int64) error
	List(ctx context.Context) ([]core.Expense, error)
	Categories(ctx context.Context) ([]string, error)
}

type reports interface {
	MonthlyTotal(ctx context.Context, yearMonth string) (float64, error)
	MonthlySummary(ctx context.Context, referenceDate string) (core.MonthlySummary, error)
	Analysis(ctx context.Context) (core.Analysis, error)
}

const usage = `usage: expensectl <command> [flags]

commands:
  add         -amount N -category C [-date YYYY-MM-DD] [-description D]
  list
  delete      ID [ID...]
  month       [-month YYYY-MM | -date YYYY-MM-DD]
  analysis
  categories
`

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	// Keep stdout for command output.
	logCfg := applog.DefaultConfig()
	logCfg.Output = os.Stderr
	logCfg.Component = applog.ComponentCLI
	if lvl, err := applog.ParseLevel(cfg.LogLevel); err == nil {
		logCfg.Level = lvl
	}
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	be, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	code := 0
	if err := run(ctx, os.Args[1:], os.Stdout, be.Ledger, be.Reports, time.Now); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		code = 1
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			code = 2
		}
	}
	if err := be.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", "error", err)
	}
	os.Exit(code)
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, args []string, out io.Writer, l ledger, r reports, now func() time.Time) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return runAdd(ctx, rest, out, l, now)
	case "list":
		return runList(ctx, out, l)
	case "delete":
		return runDelete(ctx, rest, out, l)
	case "month":
		return runMonth(ctx, rest, out, r, now)
	case "analysis":
		return runAnalysis(ctx, out, r)
	case "categories":
		cats, err := l.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintln(out, c)
		}
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runAdd(ctx context.Context, args []string, out io.Writer, l ledger, now func() time.Time) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	date := fs.String("date", core.FormatDate(now()), "expense date (YYYY-MM-DD)")
	amount := fs.String("amount", "", "amount spent")
	category := fs.String("category", "", "category label")
	description := fs.String("description", "", "optional note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := l.Create(ctx, core.ExpenseInput{
		Date:        *date,
		Amount:      *amount,
		Category:    *category,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved expense %d\n", e.ID)
	return nil
}

func runList(ctx context.Context, out io.Writer, l ledger) error {
	items, err := l.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "no expenses recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, e := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, core.FormatAmount(e.Amount), e.Category, e.Description)
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, args []string, out io.Writer, l ledger) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: invalid expense id %q", errUsage, a)
		}
		ids = append(ids, id)
	}

	if err := l.Delete(ctx, ids...); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d expense(s)\n", len(ids))
	return nil
}

func runMonth(ctx context.Context, args []string, out io.Writer, r reports, now func() time.Time) error {
	fs := flag.NewFlagSet("month", flag.ContinueOnError)
	fs.SetOutput(out)
	month := fs.String("month", "", "month (YYYY-MM)")
	date := fs.String("date", "", "any date in the month (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var summary core.MonthlySummary
	switch {
	case *month != "":
		total, err := r.MonthlyTotal(ctx, *month)
		if err != nil {
			return err
		}
		summary = core.MonthlySummary{Month: *month, Total: total}
	default:
		ref := *date
		if ref == "" {
			ref = core.FormatDate(now())
		}
		var err error
		if summary, err = r.MonthlySummary(ctx, ref); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%s\t%s\n", summary.Month, core.FormatAmount(summary.Total))
	return nil
}

func runAnalysis(ctx context.Context, out io.Writer, r reports) error {
	a, err := r.Analysis(ctx)
	if err != nil {
		return err
	}
	if a.Empty() {
		fmt.Fprintln(out, "no data available")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tTOTAL")
	for _, c := range a.ByCategory {
		fmt.Fprintf(tw, "%s\t%s\n", c.Category, core.FormatAmount(c.Total))
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "MONTH\tTOTAL")
	for _, m := range a.ByMonth {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, core.FormatAmount(m.Total))
	}
	return tw.Flush()
}

// describe turns service errors into messages for the terminal.
func describe(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "invalid input:"
		for _, f := range verr.Fields {
			msg += "\n  " + f.Field + ": " + f.Message
		}
		return msg
	case core.IsStorageUnavailable(err):
		return "storage unavailable, try again later: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}
