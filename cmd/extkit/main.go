package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/extkit/internal/config"
	"codeberg.org/mutker/extkit/internal/datefmt"
	"codeberg.org/mutker/extkit/internal/density"
	"codeberg.org/mutker/extkit/internal/errors"
	"codeberg.org/mutker/extkit/internal/format"
	"codeberg.org/mutker/extkit/internal/logger"
	"codeberg.org/mutker/extkit/internal/strutil"
)

const usage = `usage: extkit [flags] <command> [args]

Flags must precede the command; everything after it is an argument.

commands:
  time <ms>                     format a millisecond timestamp as [H:]MM:SS
  count <n>                     abbreviate a count, e.g. 1250 -> 1.3K
  dp <px>                       convert pixels to density-independent pixels
  px <dp>                       convert density-independent pixels to pixels
  classify <text>               report digit, alphabetic and alphanumeric checks
  date parse <text> [pattern]   parse a date with a SimpleDateFormat pattern
  date format <time> [pattern]  format "now", RFC 3339 or unix millis
  watch                         drive a lifecycle-aware collector from stdin
`

type app struct {
	cfg     config.Provider
	log     logger.Logger
	density *density.ConfigProvider
	in      io.Reader
	out     io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}
	logger.InitWithWriter(os.Stderr, level, logger.IsService())
	logger.Debug().Msg("Config loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := newApp(cfg, logger.Default(), os.Stdin, os.Stdout)
	if err := a.run(ctx, cfg.Args()); err != nil {
		var e errors.Error
		if errors.As(err, &e) {
			logger.ErrorWithCode(e).Msg("Command failed")
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(cfg config.Provider, log logger.Logger, in io.Reader, out io.Writer) *app {
	datefmt.SetDefaultLocale(cfg.GetLocale())
	datefmt.SetDefaultLocation(cfg.GetLocation())

	return &app{
		cfg:     cfg,
		log:     log,
		density: density.NewConfigProvider(cfg.Viper(), log.With("density")),
		in:      in,
		out:     out,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	errFactory := errors.New()

	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errFactory.WithMessage(errors.ErrInvalidArgument, "missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "time":
		return a.withInt(rest, func(n int64) string { return format.Millis(n) })
	case "count":
		return a.withInt(rest, func(n int64) string { return format.ThousandsLocale(n, a.cfg.GetLocale()) })
	case "dp":
		return a.withInt(rest, func(n int64) string {
			return strconv.Itoa(density.NewConverter(a.density).DP(int(n)))
		})
	case "px":
		return a.withInt(rest, func(n int64) string {
			return strconv.Itoa(density.NewConverter(a.density).Px(int(n)))
		})
	case "classify":
		return a.classify(rest)
	case "date":
		return a.date(rest)
	case "watch":
		return a.watch(ctx)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return errFactory.WithData(errors.ErrInvalidArgument, cmd)
	}
}

func (a *app) withInt(args []string, f func(int64) string) error {
	errFactory := errors.New()

	if len(args) != 1 {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "expected one integer argument")
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	fmt.Fprintln(a.out, f(n))
	return nil
}

func (a *app) classify(args []string) error {
	if len(args) != 1 {
		return errors.New().WithMessage(errors.ErrInvalidArgument, "expected one text argument")
	}
	s := args[0]

	fmt.Fprintf(a.out, "digits=%t alphabetic=%t alphanumeric=%t\n",
		strutil.IsDigitOnly(s),
		strutil.IsAlphabeticOnly(s),
		strutil.IsAlphanumericOnly(s),
	)
	return nil
}

func (a *app) date(args []string) error {
	errFactory := errors.New()

	if len(args) < 2 || len(args) > 3 {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "usage: date parse|format <value> [pattern]")
	}

	pattern := a.cfg.GetDatePattern()
	if len(args) == 3 {
		pattern = args[2]
	}

	switch args[0] {
	case "parse":
		t, ok := datefmt.ToDate(args[1], pattern)
		if !ok {
			return errFactory.WithData(errors.ErrInvalidArgument, args[1])
		}
		fmt.Fprintln(a.out, t.Format(time.RFC3339))
	case "format":
		t, err := parseTime(args[1])
		if err != nil {
			return errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
		s := datefmt.ToString(t, pattern)
		if s == "" {
			return errFactory.WithData(errors.ErrInvalidArgument, pattern)
		}
		fmt.Fprintln(a.out, s)
	default:
		return errFactory.WithData(errors.ErrInvalidArgument, "date "+args[0])
	}

	return nil
}

// parseTime accepts "now", RFC 3339 or unix milliseconds.
func parseTime(s string) (time.Time, error) {
	if strings.EqualFold(s, "now") {
		return time.Now(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Parse(time.RFC3339, s)
}
