package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/query"
	"kharcha/internal/seed"
	"kharcha/internal/services"
)

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "add", "--amount N --category NAME [--date YYYY-MM-DD] [--note TEXT]")
	amount := fs.String("amount", "", "amount, dot or comma decimals")
	category := fs.String("category", "", "category")
	date := fs.String("date", "", "day of the expense (default today)")
	note := fs.String("note", "", "free text note")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *date == "" {
		*date = e.svc.Today().String()
	}

	d, err := parseDraft(*amount, *category, *date, *note)
	if err != nil {
		return err
	}
	exp, err := e.svc.AddExpense(ctx, d)
	if err != nil {
		return err
	}
	return e.printMessage(services.MessageExpenseAdded, exp)
}

func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "edit", "ID [--amount N] [--category NAME] [--date YYYY-MM-DD] [--note TEXT]")
	amount := fs.String("amount", "", "new amount")
	category := fs.String("category", "", "new category")
	date := fs.String("date", "", "new day")
	note := fs.String("note", "", "new note")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("edit takes exactly one expense id")
	}
	id := fs.Arg(0)

	old, err := e.svc.Expense(id)
	if err != nil {
		return err
	}
	if !fs.Changed("amount") {
		*amount = old.Amount.String()
	}
	if !fs.Changed("category") {
		*category = old.Category
	}
	if !fs.Changed("date") {
		*date = old.Date.String()
	}
	if !fs.Changed("note") {
		*note = old.Note
	}

	d, err := parseDraft(*amount, *category, *date, *note)
	if err != nil {
		return err
	}
	exp, err := e.svc.EditExpense(ctx, id, d)
	if err != nil {
		return err
	}
	return e.printMessage(services.MessageExpenseUpdated, exp)
}

func runDelete(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "delete", "ID [--yes]")
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("delete takes exactly one expense id")
	}
	id := fs.Arg(0)
	if _, err := e.svc.Expense(id); err != nil {
		return err
	}

	confirmed := *yes || e.confirm(services.MessageConfirmDelete)
	if !confirmed {
		fmt.Fprintln(e.stdout, "Cancelled.")
		return nil
	}
	if err := e.svc.DeleteExpense(ctx, id, true); err != nil {
		return err
	}
	return e.printMessage("Expense deleted.", nil)
}

func runClear(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "clear", "[--yes]")
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes && !e.confirm("Delete all expenses?") {
		fmt.Fprintln(e.stdout, "Cancelled.")
		return nil
	}
	if err := e.svc.ClearLedger(ctx); err != nil {
		return err
	}
	return e.printMessage("All expenses cleared.", nil)
}

func runList(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "list", "[--category NAME] [--month YYYY-MM] [--search TEXT] [--page N] [--page-size N]")
	category := fs.String("category", "", "exact category")
	month := fs.String("month", "", "month of the expense date")
	search := fs.StringP("search", "q", "", "text in note or category")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("page-size", 0, "rows per page (default PAGE_SIZE)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	c := query.Criteria{Category: strings.TrimSpace(*category), Search: strings.TrimSpace(*search)}
	if *month != "" {
		ym, err := core.ParseYearMonth(*month)
		if err != nil {
			return err
		}
		c.MonthPrefix = ym.String()
	}

	view := e.svc.Table(c, *page, *size)
	if e.json {
		return e.printJSON(view)
	}
	printTable(e.stdout, view)
	return nil
}

func runDashboard(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "dashboard", "[--month YYYY-MM]")
	month := fs.String("month", "", "month (default current)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ym, err := parseMonth(*month)
	if err != nil {
		return err
	}

	view := e.svc.Dashboard(ym)
	if e.json {
		return e.printJSON(view)
	}
	printDashboard(e.stdout, view)
	return nil
}

func runHistory(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "history", "[--month YYYY-MM]")
	month := fs.String("month", "", "month for the category split (default current)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ym, err := parseMonth(*month)
	if err != nil {
		return err
	}

	view := e.svc.History(ym)
	if e.json {
		return e.printJSON(view)
	}
	printHistory(e.stdout, view)
	return nil
}

func runBudget(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "budget", "[AMOUNT]")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		m, err := core.ParseMoney(fs.Arg(0))
		if err != nil {
			return core.ErrInvalidBudget
		}
		if err := e.svc.SetBudget(ctx, m); err != nil {
			return err
		}
	default:
		return usageError("budget takes at most one amount")
	}

	b := e.svc.Budget()
	if e.json {
		return e.printJSON(map[string]core.Money{"budget": b})
	}
	fmt.Fprintf(e.stdout, "Monthly budget: %s\n", rupees(b))
	return nil
}

func runTheme(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "theme", "[light|dark|toggle]")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	switch {
	case fs.NArg() > 1:
		return usageError("theme takes at most one value")
	case fs.NArg() == 1 && fs.Arg(0) == "toggle":
		if _, err := e.svc.ToggleTheme(ctx); err != nil {
			return err
		}
	case fs.NArg() == 1:
		if err := e.svc.SetTheme(ctx, core.Theme(fs.Arg(0))); err != nil {
			return err
		}
	}

	t := e.svc.Theme()
	if e.json {
		return e.printJSON(map[string]core.Theme{"theme": t})
	}
	fmt.Fprintf(e.stdout, "Theme: %s\n", t)
	return nil
}

func runExport(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "export", "[--format json|csv] [--output FILE]")
	format := fs.StringP("format", "f", "json", "json or csv")
	output := fs.StringP("output", "o", "", "file to write (default stdout)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var export func(io.Writer) error
	switch *format {
	case "json":
		export = e.svc.ExportJSON
	case "csv":
		export = e.svc.ExportCSV
	default:
		return usageError("unknown export format %q", *format)
	}

	if *output == "" {
		return export(e.stdout)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func runImport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "import", "[--format json|csv] [--replace] FILE")
	format := fs.StringP("format", "f", "", "json or csv (default from the file extension)")
	replace := fs.Bool("replace", false, "json only: empty the ledger first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("import takes exactly one file, - for stdin")
	}
	path := fs.Arg(0)
	if *format == "" {
		*format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var r io.Reader = e.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var (
		res services.ImportResult
		err error
	)
	switch *format {
	case "json":
		res, err = e.svc.ImportJSON(ctx, r, *replace)
	case "csv":
		if *replace {
			return usageError("--replace only applies to json imports")
		}
		res, err = e.svc.ImportCSV(ctx, r)
	default:
		return usageError("unknown import format %q", *format)
	}
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Imported %d expenses.", res.Added)
	if res.Skipped > 0 {
		msg = fmt.Sprintf("Imported %d expenses, skipped %d rows.", res.Added, res.Skipped)
	}
	return e.printMessage(msg, res)
}

func runSeed(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "seed", "[--count N] [--months N] [--seed N]")
	count := fs.IntP("count", "n", 30, "expenses to generate")
	months := fs.Int("months", 3, "months back from today to spread them over")
	seedValue := fs.Int64("seed", 0, "random seed (0 picks one)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *count < 1 {
		return usageError("--count must be at least 1")
	}

	drafts := seed.Drafts(seed.Options{Count: *count, Months: *months, Seed: *seedValue, Now: e.svc.Today().Time})
	for _, d := range drafts {
		if _, err := e.svc.AddExpense(ctx, d); err != nil {
			return err
		}
	}
	return e.printMessage(fmt.Sprintf("Added %d demo expenses.", len(drafts)), nil)
}

func parseDraft(amount, category, date, note string) (core.Draft, error) {
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.Draft{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{Amount: m, Category: category, Date: d, Note: note}, nil
}

func parseMonth(s string) (core.YearMonth, error) {
	if strings.TrimSpace(s) == "" {
		return core.YearMonth{}, nil
	}
	return core.ParseYearMonth(s)
}

// confirm asks question on stdout and reads a y/yes answer from stdin.
func (e *env) confirm(question string) bool {
	fmt.Fprintf(e.stdout, "%s [y/N] ", question)
	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(e.stdout)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
