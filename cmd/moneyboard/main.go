// Command moneyboard is the terminal client of the moneyboard API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"moneyboard/internal/cli"
	"moneyboard/internal/gateway"
	"moneyboard/internal/i18n"
	"moneyboard/internal/log"
)

const usage = `usage: moneyboard <command> [flags]

commands:
  dashboard [-year Y] [-month M]         month summary
  trend                                  monthly totals
  list <expenses|income> [-from D] [-to D]
  add <expenses|income> -amount A -description D -category C [-date D]
  delete <expenses|income> [-yes] ID
  categories [list]
  categories add -name N [-color #RRGGBB]
  categories delete ID
`

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cli.SetupLogger(cfg, log.ComponentCLI)

	client, err := gateway.New(cfg.APIURL, gateway.WithTimeout(cfg.HTTPTimeout), gateway.WithLogger(logger))
	if err != nil {
		cli.Fatal(logger, "Invalid API URL", err)
	}
	formatter, err := i18n.NewFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		cli.Fatal(logger, "Invalid locale settings", err)
	}

	a := &app{
		client: client,
		tr:     i18n.NewTranslator(cfg.Locale),
		fmt:    formatter,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		logger: logger,
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()
	os.Exit(a.run(ctx, os.Args[1:]))
}

type app struct {
	client *gateway.Client
	tr     *i18n.Translator
	fmt    *i18n.Formatter
	in     *bufio.Reader
	out    io.Writer
	logger *log.Logger
}

// run dispatches args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q", args[0])
		if s := suggest(args[0], commandNames()); s != "" {
			fmt.Fprintf(a.out, ", did you mean %q?", s)
		}
		fmt.Fprintf(a.out, "\n\n%s", usage)
		return 2
	}
	if err := cmd(ctx, a, args[1:]); err != nil {
		a.logger.Debug("Command failed", "command", args[0], log.FieldError, err)
		fmt.Fprintln(a.out, renderError(err))
		return 1
	}
	return 0
}
