package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/config"
	"github.com/RecoveryAshes/domaincrawl/internal/core"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const urlPrompt = "Enter the domain (e.g., https://example.com/): "

// cliOptions command line values
type cliOptions struct {
	// global
	configFile string
	verbose    bool
	logLevel   string
	headers    []string

	// crawl
	targetURL       string
	urlFile         string
	maxLinks        int
	delay           time.Duration
	timeout         time.Duration
	scope           string
	outputDir       string
	store           string
	progress        bool
	batchDelay      time.Duration
	continueOnError bool

	// loaded in PersistentPreRunE
	cfg *core.Config

	stdin  io.Reader
	stdout io.Writer
	isTTY  func() bool
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "domaincrawl",
		Short: "Breadth-first crawler that stays on one host",
		Long: `domaincrawl - breadth-first, single-host web crawler

Starting from a root URL it fetches pages one at a time in discovery
order, keeps to the root's host and stops after --max-links pages or
when no unseen links remain. Every page is stored under
<output>/<host>/ together with a manifest of what was fetched.

Examples:
  domaincrawl -u https://example.com/ -n 25
  domaincrawl -u https://example.com/ --scope subdomain --store sqlite
  domaincrawl -f roots.txt --batch-delay 10s
  domaincrawl -u https://example.com/ -H "Authorization: Bearer token"

Version: ` + Version + `
Built: ` + BuildTime,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return opts.run(ctx, cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: search ./configs, ., $XDG_CONFIG_HOME/domaincrawl, ~/.domaincrawl)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "extra request header 'Name: Value', repeatable")

	rootCmd.Flags().StringVarP(&opts.targetURL, "url", "u", "", "root URL to crawl")
	rootCmd.Flags().StringVarP(&opts.urlFile, "url-file", "f", "", "file with one root URL per line")
	rootCmd.Flags().IntVarP(&opts.maxLinks, "max-links", "n", 10, "pages to store before stopping")
	rootCmd.Flags().DurationVar(&opts.delay, "delay", time.Second, "pause after every processed URL")
	rootCmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-request timeout")
	rootCmd.Flags().StringVar(&opts.scope, "scope", "contains", "host filter (contains|exact|subdomain|site)")
	rootCmd.Flags().StringVarP(&opts.outputDir, "output", "o", "output", "output directory")
	rootCmd.Flags().StringVar(&opts.store, "store", "file", "result store (file|sqlite)")
	rootCmd.Flags().BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	rootCmd.Flags().DurationVar(&opts.batchDelay, "batch-delay", 0, "pause between roots in --url-file mode")
	rootCmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", true, "keep going after a root fails")

	rootCmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return rootCmd
}

// setup loads config and starts logging
func (o *cliOptions) setup(cmd *cobra.Command) error {
	// subcommands only see the persistent flags; crawl flags stay unbound there
	cfg, err := core.LoadConfig(o.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.cfg = cfg

	logConfig := cfg.LogConfig()
	if o.verbose {
		logConfig.Level = "debug"
	}
	if err := utils.InitLogger(logConfig); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if cfg.File != "" {
		utils.Debugf("config loaded from %s", cfg.File)
	}
	return nil
}

func (o *cliOptions) run(ctx context.Context, cmd *cobra.Command) error {
	if o.targetURL == "" && o.urlFile == "" {
		if !o.isTTY() {
			return cmd.Help()
		}
		answer, err := promptURL(o.stdin, o.stdout)
		if err != nil {
			return err
		}
		o.targetURL = answer
	}

	if err := ValidateFlags(o.targetURL, o.urlFile, o.cfg); err != nil {
		return err
	}

	headerManager, err := core.NewHeaderManager(o.cfg.HTTP.Headers, o.headers)
	if err != nil {
		return fmt.Errorf("parse headers: %w", err)
	}
	if _, err := headerManager.GetHeaders(); err != nil {
		return fmt.Errorf("invalid headers: %w", err)
	}

	crawlOpts := []core.Option{
		core.WithConnectivity(o.cfg.Connectivity),
		core.WithOutput(o.cfg.StoreKind(), o.cfg.StoreOptions()),
		core.WithHeaderProvider(headerManager),
		core.WithSummaryReport(o.cfg.Output.SummaryReport),
	}

	if o.urlFile != "" {
		urls, err := utils.ReadURLsFromFile(o.urlFile)
		if err != nil {
			return fmt.Errorf("read URL file: %w", err)
		}

		batch := core.NewBatchCrawler(o.cfg.Crawl, o.cfg.Batch.Delay, o.cfg.Batch.ContinueOnError, crawlOpts...)
		summary := batch.CrawlBatch(ctx, urls)

		fmt.Fprintf(o.stdout, "\n%d of %d roots crawled, %d pages stored\n",
			summary.SuccessCount, summary.TotalURLs, summary.TotalPages)
		if summary.FailCount > 0 {
			return fmt.Errorf("%d of %d roots failed", summary.FailCount, summary.TotalURLs)
		}
		return nil
	}

	if o.progress {
		crawlOpts = append(crawlOpts, core.WithProgress(utils.NewProgressBar(o.cfg.Crawl.MaxLinks, "crawling", os.Stderr)))
	}

	crawler, err := core.NewCrawler(o.targetURL, o.cfg.Crawl, crawlOpts...)
	if err != nil {
		return fmt.Errorf("create crawler: %w", err)
	}

	report, err := crawler.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Fprintln(o.stdout, "\n==================================================")
	fmt.Fprintf(o.stdout, "pages stored:    %d of %d\n", report.PagesCrawled(), report.MaxLinks)
	fmt.Fprintf(o.stdout, "links seen:      %d\n", report.Stats.LinkCount)
	fmt.Fprintf(o.stdout, "duplicate links: %d (%.2f%%)\n", report.Stats.LinkDuplicateCount, report.Stats.DuplicatePercentage())
	fmt.Fprintf(o.stdout, "fetch errors:    %d\n", report.Stats.ErrorCount)
	fmt.Fprintf(o.stdout, "left in queue:   %d\n", report.PendingCount)
	fmt.Fprintf(o.stdout, "elapsed:         %.2fs\n", report.Duration)
	if report.Interrupted {
		fmt.Fprintln(o.stdout, "status:          interrupted, partial results saved")
	}
	fmt.Fprintln(o.stdout, "==================================================")
	return nil
}

// promptURL asks for the root URL on out and reads one line from in
func promptURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, urlPrompt)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read URL: %w", err)
		}
		return "", fmt.Errorf("no URL entered")
	}

	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return "", fmt.Errorf("no URL entered")
	}
	return answer, nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// logging and config are not needed here
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "domaincrawl %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", BuildTime)
		},
	}
}

func newConfigCmd(opts *cliOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration template",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			written, err := config.WriteTemplate(path, force)
			if err != nil {
				return err
			}
			if !written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (use --force to overwrite)\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and check every value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}

			headerManager, err := core.NewHeaderManager(opts.cfg.HTTP.Headers, opts.headers)
			if err != nil {
				return fmt.Errorf("parse headers: %w", err)
			}
			if err := headerManager.Validate(); err != nil {
				return fmt.Errorf("headers invalid: %w", err)
			}

			out := cmd.OutOrStdout()
			source := opts.cfg.File
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(out, "config OK: %s\n", source)
			fmt.Fprintf(out, "  max_links=%d delay=%s timeout=%s scope=%s store=%s\n",
				opts.cfg.Crawl.MaxLinks, opts.cfg.Crawl.PolitenessDelay, opts.cfg.Crawl.RequestTimeout,
				opts.cfg.Crawl.ScopePolicy, opts.cfg.StoreKind())

			redactor := utils.NewHeaderRedactor()
			fmt.Fprintf(out, "  headers: %s\n", redactor.RedactToString(headerManager.GetMergedHeaders()))
			return nil
		},
	}

	configCmd.AddCommand(initCmd, validateCmd)
	return configCmd
}

func main() {
	opts := &cliOptions{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		isTTY:  stdinIsTerminal,
	}

	if err := newRootCmd(opts).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
