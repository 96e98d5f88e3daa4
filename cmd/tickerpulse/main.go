// tickerpulse compares stock price moves with news and forum sentiment.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerpulse/api"
	"github.com/seenimoa/tickerpulse/internal/batch"
	"github.com/seenimoa/tickerpulse/internal/config"
	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/metrics"
	"github.com/seenimoa/tickerpulse/internal/pipeline"
	"github.com/seenimoa/tickerpulse/internal/report"
	"github.com/seenimoa/tickerpulse/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerpulse",
	Short: "tickerpulse: stock price vs. news and Reddit sentiment",
	Long: `tickerpulse fetches daily closes, recent headlines and Reddit posts for a
ticker, scores every text with a sentiment lexicon, and reports how daily
sentiment lines up with next-day price changes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal outside development.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		metrics.Init()
		api.Version = version
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tickerpulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Analyze price vs. sentiment for one ticker",
	Long: `Fetch prices, headlines and Reddit posts for a ticker and print a summary.

Examples:
  tickerpulse analyze AAPL
  tickerpulse analyze TSLA --days 14 --top 5
  tickerpulse analyze MSFT --json
  tickerpulse analyze NVDA --html nvda.html --xlsx nvda.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		top, _ := cmd.Flags().GetInt("top")
		asJSON, _ := cmd.Flags().GetBool("json")
		htmlPath, _ := cmd.Flags().GetString("html")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		save, _ := cmd.Flags().GetBool("save")

		if top > 0 {
			cfg.Analysis.TopN = top
		}
		if days == 0 {
			days = cfg.Analysis.DefaultDays
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if cfg.Analysis.RequestTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, cfg.Analysis.RequestTimeout)
			defer tcancel()
		}

		a, err := newApp(ctx, cfg, logger.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.service.Analyze(ctx, args[0], days)
		if err != nil {
			if errors.Is(err, datasource.ErrTickerNotFound) || errors.Is(err, pipeline.ErrInvalidTicker) {
				return errors.New(pipeline.NotFoundMessage)
			}
			return err
		}

		if save {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			sum, err := store.SaveReport(ctx, rep)
			if err != nil {
				return fmt.Errorf("save report: %w", err)
			}
			logger.Get().Infow("report saved", "ticker", rep.Ticker, "rows", sum.Total())
		}

		if htmlPath != "" {
			html, err := report.GenerateHTML(rep, report.DefaultReportConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", htmlPath, err)
			}
			fmt.Fprintf(os.Stderr, "Dashboard written to %s\n", htmlPath)
		}
		if xlsxPath != "" {
			if err := report.WriteXLSX(rep, xlsxPath); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Workbook written to %s\n", xlsxPath)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		text, err := report.GenerateText(rep, report.DefaultReportConfig())
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("days", 0, "lookback window in calendar days (default from config)")
	analyzeCmd.Flags().Int("top", 0, "number of headlines and posts to list (default from config)")
	analyzeCmd.Flags().Bool("json", false, "print the full report as JSON")
	analyzeCmd.Flags().String("html", "", "write the dashboard to this HTML file")
	analyzeCmd.Flags().String("xlsx", "", "write the report to this Excel workbook")
	analyzeCmd.Flags().Bool("save", false, "persist the report to the database")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		withScheduler, _ := cmd.Flags().GetBool("schedule")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log := logger.Get()
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		deps := api.Deps{Config: cfg, Analyzer: a.service, Logger: log}
		if a.redis != nil {
			deps.Cache = a.redis
		}
		if a.memCache != nil {
			go a.memCache.RunCleanup(ctx, cfg.Cache.TTL)
		}

		store, err := a.openStore(ctx)
		if err != nil {
			log.Warnw("storage unavailable, history and batch routes disabled", "error", err)
		} else {
			deps.Store = store
		}

		var runner *batch.Runner
		if store != nil {
			runner, err = a.newRunner()
			if err != nil {
				log.Warnw("batch universe unavailable, scrape route disabled", "error", err)
			} else {
				deps.Runner = runner
			}
		}

		var sched *batch.Scheduler
		if runner != nil && withScheduler {
			sched = batch.NewScheduler(runner, log)
			deps.Schedule = sched
		}

		srv := api.NewServer(deps)
		if runner != nil {
			runner.OnProgress(srv.BatchProgress)
		}
		if sched != nil {
			if err := sched.Start(ctx, cfg.Batch.Schedule); err != nil {
				return err
			}
			defer sched.Stop()
		}

		fmt.Printf("🌐 tickerpulse API listening on %s\n", cfg.API.Addr())
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Bool("schedule", false, "also run the daily batch on the configured cron schedule")
}

// --- Scrape Command (batch ingestion) ---

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Analyze and store one rotation group of the ticker universe",
	Long: `Run the batch ingester. The universe is split into rotation groups and
each day processes group (day ordinal mod groups). Failed tickers are
logged and skipped.

Without --once the command stays up and runs on the configured cron schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")
		group, _ := cmd.Flags().GetInt("group")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log := logger.Get()
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.openStore(ctx); err != nil {
			return err
		}
		runner, err := a.newRunner()
		if err != nil {
			return err
		}
		runner.OnProgress(func(p batch.Progress) {
			if p.Status == "failed" {
				fmt.Printf("  [%d/%d] %-6s ✗ %s\n", p.Index, p.Total, p.Ticker, p.Error)
			} else if p.Status == "ok" {
				fmt.Printf("  [%d/%d] %-6s ✓ %d rows\n", p.Index, p.Total, p.Ticker, p.Rows)
			}
		})

		if once {
			if group < 0 {
				group = runner.TodaysGroup()
			}
			sum, err := runner.RunGroup(ctx, group, uuid.NewString())
			if sum != nil {
				printSummary(sum)
			}
			return err
		}

		sched := batch.NewScheduler(runner, log)
		if err := sched.Start(ctx, cfg.Batch.Schedule); err != nil {
			return err
		}
		fmt.Printf("⏰ Batch scheduled (%s). Press Ctrl+C to stop.\n", cfg.Batch.Schedule)
		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Bool("once", false, "run a single group now and exit")
	scrapeCmd.Flags().Int("group", -1, "rotation group to run with --once (default: today's group)")
}

func printSummary(sum *batch.RunSummary) {
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  Run %s · group %d\n", sum.RunID, sum.Group)
	fmt.Printf("  Tickers: %d  OK: %d  Failed: %d  Rows: %d\n", sum.Tickers, sum.OK, len(sum.Failed), sum.Rows)
	if len(sum.Failed) > 0 {
		fmt.Printf("  Failed:  %s\n", strings.Join(sum.Failed, ", "))
	}
	fmt.Printf("  Took:    %s\n", report.FormatDuration(sum.FinishedAt.Sub(sum.StartedAt)))
	fmt.Println("═══════════════════════════════════════")
}

// --- InitDB Command ---

var initDBCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := &app{cfg: cfg, log: logger.Get()}
		defer a.Close()

		if _, err := a.openStore(ctx); err != nil {
			return err
		}
		fmt.Printf("✅ Tables ready (%s)\n", cfg.Storage.Driver)
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  tickerpulse — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):    %s\n", time.Now().UTC().Format(time.RFC1123))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Headlines:     %s\n", headlineProviderName(cfg))
		fmt.Printf("    Cache:         %s (ttl %s)\n", cfg.Cache.Backend, cfg.Cache.TTL)
		fmt.Printf("    Storage:       %s\n", cfg.Storage.Driver)
		fmt.Printf("    Batch:         %d groups, %d days, %s\n", cfg.Batch.Groups, cfg.Batch.Days, cfg.Batch.Schedule)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		a := &app{cfg: cfg, log: logger.Nop()}
		defer a.Close()
		if store, err := a.openStore(cmd.Context()); err != nil {
			fmt.Printf("\n  Database:      ❌ %v\n", err)
		} else if counts, err := store.Counts(cmd.Context()); err == nil {
			fmt.Println("\n  Database rows:")
			for _, table := range []string{"stock_prices", "headlines", "reddit_posts", "sentiment"} {
				fmt.Printf("    %-14s %d\n", table+":", counts[table])
			}
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
