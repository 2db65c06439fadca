package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/fileget/internal/config"
	"github.com/danmuck/fileget/internal/download"
	"github.com/danmuck/fileget/internal/fault"
	"github.com/danmuck/fileget/internal/logging"
	"github.com/danmuck/fileget/internal/observability"
	"github.com/danmuck/fileget/internal/resolver"
	"github.com/danmuck/fileget/internal/store"
	"github.com/danmuck/fileget/internal/surl"
	"github.com/danmuck/fileget/internal/transfer"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const usage = "usage: fileget -n <ip:port> -f <fsp://host/path> [-c fileget.toml] [-o dir] [-summary]"

func main() {
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stderr.Fd()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	nameServer string
	locator    string
	configPath string
	outputDir  string
	summary    bool
}

func parseArgs(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fileget", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.nameServer, "n", "", "name server address <ip:port>")
	fs.StringVar(&opts.locator, "f", "", "file locator fsp://<host>/<path>, path may be *")
	fs.StringVar(&opts.configPath, "c", "", "config file (TOML)")
	fs.StringVar(&opts.outputDir, "o", "", "output directory (overrides output_dir)")
	fs.BoolVar(&opts.summary, "summary", false, "print a table of fetched files")

	if err := fs.Parse(args); err != nil {
		return options{}, fault.E(fault.KindArgument, "arguments", err)
	}
	if fs.NArg() > 0 {
		return options{}, fault.Errorf(fault.KindArgument, "arguments", "unexpected argument %q", fs.Arg(0))
	}
	if strings.TrimSpace(opts.nameServer) == "" || strings.TrimSpace(opts.locator) == "" {
		return options{}, fault.Errorf(fault.KindArgument, "arguments", "both -n and -f are required")
	}
	return opts, nil
}

// run executes one invocation and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	opts, err := parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(stdout, usage)
		return 0
	}
	if err != nil {
		red.Fprintf(stderr, "fileget: %v\n", err)
		fmt.Fprintln(stderr, usage)
		return fault.ExitCode(err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		err = fault.E(fault.KindArgument, "config", err)
		red.Fprintf(stderr, "fileget: %v\n", err)
		return fault.ExitCode(err)
	}
	logging.ConfigureRuntime(cfg.LogLevel)
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	report, err := execute(ctx, opts, cfg)
	for _, o := range report.Failed() {
		if err != nil && errors.Is(o.Err, err) {
			continue
		}
		yellow.Fprintf(stderr, "fileget: %s: %s\n", o.Name, describe(o.Err))
	}
	if opts.summary || cfg.Summary {
		if werr := renderSummary(stdout, report); werr != nil {
			log.Warn().Err(werr).Msg("summary render failed")
		}
	}
	if cfg.MetricsFile != "" {
		if werr := observability.WriteMetrics(cfg.MetricsFile); werr != nil {
			log.Warn().Err(werr).Msg("metrics not written")
		}
	}

	if err != nil {
		red.Fprintf(stderr, "fileget: %s\n", describe(err))
		code := fault.ExitCode(err)
		log.Debug().Err(err).Str("kind", fault.KindOf(err).String()).Int("exit", code).Msg("run failed")
		return code
	}
	return 0
}

func execute(ctx context.Context, opts options, cfg config.Config) (download.Report, error) {
	nameServer, err := surl.ParseNameServer(opts.nameServer)
	if err != nil {
		return download.Report{}, err
	}
	loc, err := surl.Parse(opts.locator)
	if err != nil {
		return download.Report{}, err
	}
	s, err := download.NewSession(nameServer, loc.Host, loc.Path, cfg.OutputDir)
	if err != nil {
		return download.Report{}, err
	}

	log.Debug().
		Str("name_server", nameServer.String()).
		Str("locator", loc.String()).
		Str("output_dir", cfg.OutputDir).
		Dur("timeout", cfg.Session.Timeout).
		Msg("starting")

	o := download.New(resolver.New(cfg.Session), transfer.NewClient(cfg.Session), store.FileWriter{})
	return o.Run(ctx, s)
}

// describe prefers the server's own message for server-reported failures.
func describe(err error) string {
	var se *transfer.ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
