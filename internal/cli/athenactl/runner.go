// Package athenactl implements the command-line surface: flag parsing,
// subcommand dispatch, and rendering. All remote work happens in the
// engine packages; this layer only wires them together.
package athenactl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/athenactl/athenactl/internal/athena"
	"github.com/athenactl/athenactl/internal/config"
	"github.com/athenactl/athenactl/internal/observability"
	"github.com/athenactl/athenactl/internal/results"
)

// Downloader is the slice of the result fetcher the CLI needs.
type Downloader interface {
	Download(ctx context.Context, addr results.Address, destDir string) (string, error)
}

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Lookup supplies environment configuration. Defaults to the real
	// process environment.
	Lookup config.LookupFunc
	// NewClient builds the query service client. Defaults to the AWS
	// SDK client; tests substitute a fake.
	NewClient func(ctx context.Context, cfg config.Config) (athena.Client, error)
	// NewDownloader builds the result object fetcher.
	NewDownloader func(cfg config.Config) (Downloader, error)
}

type app struct {
	cfg    config.Config
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	quiet  bool
	format string

	newClient     func(ctx context.Context, cfg config.Config) (athena.Client, error)
	newDownloader func(cfg config.Config) (Downloader, error)
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	lookup := defaults.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	fs := flag.NewFlagSet("athenactl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { writeUsage(stderr) }

	profile := fs.String("profile", "", "AWS profile name")
	region := fs.String("region", "", "AWS region")
	database := fs.String("database", "", "database name")
	workgroup := fs.String("workgroup", "", "workgroup name")
	catalogName := fs.String("catalog", "", "data catalog name")
	outputLocation := fs.String("output-location", "", "S3 location for query results")
	format := fs.String("output", "table", "output format: table or json")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	metricsDump := fs.Bool("metrics", false, "log collected metrics at end of run")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}
	if *format != "table" && *format != "json" {
		_, _ = fmt.Fprintf(stderr, "unsupported output format %q: use 'table' or 'json'\n", *format)
		return 2
	}

	cfg, err := config.Load(lookup)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}
	applyFlag(*profile, &cfg.AWS.Profile)
	applyFlag(*region, &cfg.AWS.Region)
	applyFlag(*database, &cfg.AWS.Database)
	applyFlag(*workgroup, &cfg.AWS.Workgroup)
	applyFlag(*catalogName, &cfg.AWS.Catalog)
	applyFlag(*outputLocation, &cfg.AWS.OutputLocation)

	a := &app{
		cfg:           cfg,
		stdout:        stdout,
		stderr:        stderr,
		logger:        observability.NewLogger(cfg, stderr),
		quiet:         *quiet,
		format:        *format,
		newClient:     defaults.NewClient,
		newDownloader: defaults.NewDownloader,
	}
	if a.newClient == nil {
		a.newClient = func(ctx context.Context, cfg config.Config) (athena.Client, error) {
			return athena.NewClient(ctx, athena.ClientConfig{Region: cfg.AWS.Region, Profile: cfg.AWS.Profile})
		}
	}
	if a.newDownloader == nil {
		a.newDownloader = func(cfg config.Config) (Downloader, error) {
			return results.New(results.Config{
				Endpoint: cfg.Download.Endpoint,
				Region:   cfg.AWS.Region,
				Profile:  cfg.AWS.Profile,
				UseSSL:   cfg.Download.UseSSL,
			})
		}
	}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]

	var run func(context.Context, []string) error
	switch command {
	case "query":
		run = a.runQuery
	case "databases":
		run = a.runDatabases
	case "tables":
		run = a.runTables
	case "describe":
		run = a.runDescribe
	case "workgroups":
		run = a.runWorkgroups
	case "history":
		run = a.runHistory
	case "inspect":
		run = a.runInspect
	case "download", "dl":
		run = a.runDownload
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	code := 0
	if err := run(ctx, rest); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		code = 1
	}
	if *metricsDump {
		observability.DumpMetrics(a.logger)
	}
	return code
}

// errUsage marks flag parse failures; the flag set already printed the
// message.
var errUsage = errors.New("usage error")

func (a *app) engine(client athena.Client) *athena.Engine {
	return &athena.Engine{
		Client:       client,
		PollInterval: a.cfg.Query.PollInterval,
		PageSize:     int32(a.cfg.Query.PageSize),
		WaitDeadline: a.cfg.Query.WaitDeadline,
		Progress:     a.progress(),
	}
}

func (a *app) progress() athena.Progress {
	if a.quiet {
		return nil
	}
	return func(line string) {
		_, _ = fmt.Fprintln(a.stderr, line)
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func applyFlag(value string, dst *string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: athenactl [flags] <command> [command flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  query <sql>          execute a query and print the result")
	_, _ = fmt.Fprintln(w, "  databases            list databases in the catalog")
	_, _ = fmt.Fprintln(w, "  tables               list tables in a database")
	_, _ = fmt.Fprintln(w, "  describe <table>     show table structure (db.table or -db)")
	_, _ = fmt.Fprintln(w, "  workgroups           list workgroups")
	_, _ = fmt.Fprintln(w, "  history              show recent query executions")
	_, _ = fmt.Fprintln(w, "  inspect <query-id>   show details of one execution")
	_, _ = fmt.Fprintln(w, "  download <query-id>  download the result object of an execution")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "flags:")
	_, _ = fmt.Fprintln(w, "  -profile, -region, -database, -workgroup, -catalog,")
	_, _ = fmt.Fprintln(w, "  -output-location, -output table|json, -quiet, -metrics")
}
