package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shirodl/src/config"
	"shirodl/src/downloader"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitTasksFailed  = 3
)

type options struct {
	input       string
	destination string
	headers     string
	proxies     string
	reportPath  string
	timeout     time.Duration
	parallel    int
	retries     int
	noHash      bool
	onlyBinary  bool
	autoRename  bool
	noEnvProxy  bool
	verbose     bool
	configPaths []string
	set         map[string]bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "generate":
			return runGenerate(args[1:], stdout, stderr)
		case "-version", "--version":
			fmt.Fprintf(stdout, "shirodl version %s (commit: %s, built: %s)\n", version, commit, date)

			return ExitSuccess
		}
	}

	opts, err := parseFlags(args, stderr)
	if err != nil {
		return ExitInvalidArgs
	}

	logger := newLogger(stderr, opts.verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)

		return ExitGeneralError
	}

	err = applyFlags(cfg, opts)
	if err == nil {
		err = config.Validate(cfg)
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return ExitInvalidArgs
	}

	tasks, source, err := collectTasks(cfg, opts, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading tasks from %s: %v\n", source, err)

		return ExitGeneralError
	}

	builder, err := newBuilder(cfg, tasks, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return ExitGeneralError
	}

	fmt.Fprintf(stdout, "shirodl %s: %d tasks from %s\n", version, builder.Len(), source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "\nInterrupted, cancelling downloads...")
			cancel()
		case <-ctx.Done():
		}
	}()

	mirror, err := NewMirror(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error setting up mirror: %v\n", err)

		return ExitGeneralError
	}

	renderer := newRenderer(builder.Len(), stdout, stderr)

	var saved []string

	failures, err := builder.Build().Run(ctx, func(report downloader.Report) {
		renderer.Report(report)

		if report.Err == nil && report.SavedAs != "" {
			saved = append(saved, report.SavedAs)
		}
	})

	renderer.Wait()

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return ExitGeneralError
	}

	if mirror != nil {
		uploaded := mirror.PutAll(ctx, saved)
		fmt.Fprintf(stdout, "Mirrored %d/%d files\n", uploaded, len(saved))
	}

	ignorable, unignorable := summarize(failures)

	fmt.Fprintln(stdout, "Download Complete!")

	if len(failures) > 0 {
		fmt.Fprintf(stdout, "%d Failed, %d Ignorable, %d Unignorable.\n", len(failures), ignorable, unignorable)
	}

	if opts.reportPath != "" {
		report := buildReport(uuid.NewString(), builder.Len(), failures, time.Now())

		err = writeReport(opts.reportPath, report)
		if err != nil {
			fmt.Fprintf(stderr, "Error writing report: %v\n", err)

			return ExitGeneralError
		}

		fmt.Fprintf(stdout, "Failure report written to %s\n", opts.reportPath)
	}

	if unignorable > 0 {
		return ExitTasksFailed
	}

	return ExitSuccess
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("shirodl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options

	fs.StringVar(&opts.input, "i", "", "Task list file (one URL per line, or JSON); default stdin")
	fs.StringVar(&opts.destination, "d", "", "Destination folder (default current directory)")
	fs.StringVar(&opts.headers, "H", "", "Request headers as name=value,name2=value2")
	fs.StringVar(&opts.proxies, "proxy", "", "Proxy rules as scope=url,... (scope: http, https, all)")
	fs.StringVar(&opts.reportPath, "report", "", "Write a YAML failure report to this file")
	fs.DurationVar(&opts.timeout, "t", 0, "Per-request timeout, e.g. 30s")
	fs.IntVar(&opts.parallel, "j", 0, "Number of concurrent downloads (default 8)")
	fs.IntVar(&opts.retries, "retries", 0, "Retry count (accepted, not used)")
	fs.BoolVar(&opts.noHash, "no-hash", false, "Skip existing files instead of verifying them by hash")
	fs.BoolVar(&opts.onlyBinary, "only-binary", false, "Skip HTML and JavaScript responses")
	fs.BoolVar(&opts.autoRename, "auto-rename", false, "Add an extension from the content type to extension-less files")
	fs.BoolVar(&opts.noEnvProxy, "no-env-proxy", false, "Ignore proxy settings from the environment")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: shirodl [options] [config.yaml ...]
       shirodl generate <list> [-o output.yaml]
       shirodl -version

Options:
`)
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	if err != nil {
		return options{}, err
	}

	opts.configPaths = fs.Args()
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})

	if opts.set["j"] && opts.parallel <= 0 {
		fmt.Fprintln(stderr, "Error: -j must be positive")

		return options{}, errors.New("invalid -j")
	}

	return opts, nil
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	return logger
}

func loadConfig(opts options) (*config.Config, error) {
	if len(opts.configPaths) > 0 {
		return config.LoadMultiple(opts.configPaths)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	return cfg, nil
}

// applyFlags lets explicitly set flags override the loaded config.
func applyFlags(cfg *config.Config, opts options) error {
	settings := &cfg.Settings

	if opts.set["d"] {
		settings.Destination = opts.destination
	}

	if opts.set["t"] {
		settings.Timeout = opts.timeout
	}

	if opts.set["j"] {
		settings.Parallel = opts.parallel
	}

	if opts.set["retries"] {
		settings.Retries = opts.retries
	}

	if opts.noHash {
		hashCheck := false
		settings.HashCheck = &hashCheck
	}

	settings.OnlyBinary = settings.OnlyBinary || opts.onlyBinary
	settings.AutoRename = settings.AutoRename || opts.autoRename
	settings.NoDefaultProxy = settings.NoDefaultProxy || opts.noEnvProxy

	if opts.headers != "" {
		headers, err := config.ParseHeaders(opts.headers)
		if err != nil {
			return err
		}

		settings.Headers = append(settings.Headers, headers...)
	}

	if opts.proxies != "" {
		proxies, err := config.ParseProxies(opts.proxies)
		if err != nil {
			return err
		}

		// Flag rules are consulted before rules from config files.
		settings.Proxies = append(proxies, settings.Proxies...)
	}

	return nil
}

// collectTasks returns the config tasks plus the tasks of the -i list, or
// of stdin when neither provides any.
func collectTasks(cfg *config.Config, opts options, stdin io.Reader) ([]config.TaskEntry, string, error) {
	tasks := append([]config.TaskEntry(nil), cfg.Tasks...)

	switch {
	case opts.input != "":
		listed, err := readTaskFile(opts.input)
		if err != nil {
			return nil, opts.input, err
		}

		return append(tasks, listed...), opts.input, nil
	case len(tasks) > 0:
		return tasks, "config", nil
	default:
		listed, err := readTaskList(stdin)

		return listed, "stdin", err
	}
}
