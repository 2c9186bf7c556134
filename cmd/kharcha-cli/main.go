// Command kharcha-cli drives the expense ledger from the terminal. It reads
// the same environment as the server and works on the same store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"kharcha/internal/cli"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

const usageText = `Usage: kharcha-cli [--json] <command> [flags] [args]

Commands:
  add        record an expense
  edit       replace an expense; omitted flags keep their values
  delete     remove an expense (asks for confirmation unless --yes)
  clear      remove every expense (asks for confirmation unless --yes)
  list       filter and page through expenses
  dashboard  monthly KPIs and budget status
  history    month totals and a month's category split
  budget     show or set the monthly budget
  theme      show or set the theme (light, dark, toggle)
  export     write the ledger as json or csv
  import     read a json or csv export
  seed       add generated demo expenses
`

// errUsage marks bad invocations; they exit with status 2. errReported is a
// usage error pflag has already printed.
var (
	errUsage    = errors.New("usage")
	errReported = fmt.Errorf("%w: reported", errUsage)
)

type env struct {
	svc    *services.LedgerService
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	json   bool
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"add":       runAdd,
	"edit":      runEdit,
	"delete":    runDelete,
	"clear":     runClear,
	"list":      runList,
	"dashboard": runDashboard,
	"history":   runHistory,
	"budget":    runBudget,
	"theme":     runTheme,
	"export":    runExport,
	"import":    runImport,
	"seed":      runSeed,
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("kharcha-cli", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q; one of: %s\n", name, strings.Join(commandNames(), ", "))
		return 2
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg, stderr, log.ComponentCLI)

	app, err := cli.OpenApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, services.UserMessage(err))
		logger.Error("Failed to initialize application", log.FieldError, err.Error())
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close application", log.FieldError, err.Error())
		}
	}()

	e := &env{svc: app.Service, stdin: stdin, stdout: stdout, stderr: stderr, json: *asJSON}
	if err := cmd(ctx, e, rest); err != nil {
		switch {
		case errors.Is(err, pflag.ErrHelp):
			return 0
		case errors.Is(err, errReported):
			return 2
		case errors.Is(err, errUsage):
			fmt.Fprintln(stderr, err)
			return 2
		}
		fmt.Fprintln(stderr, services.UserMessage(err))
		logger.Debug("Command failed", log.FieldOperation, name, log.FieldError, err.Error())
		return 1
	}
	return 0
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newFlagSet(e *env, name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: kharcha-cli %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args; pflag prints its own errors.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return errReported
	}
	return nil
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
