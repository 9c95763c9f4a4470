// Command prospector runs the two HVAC supplier pipelines: "discover" turns
// the brand catalog into candidate supplier domains, "extract" turns a list
// of supplier websites into structured contact records. Both commands
// checkpoint progress to disk and resume automatically after interruption.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hvacintel/prospector/internal/blockpage"
	"github.com/hvacintel/prospector/internal/catalog"
	"github.com/hvacintel/prospector/internal/config"
	"github.com/hvacintel/prospector/internal/discover"
	"github.com/hvacintel/prospector/internal/extract"
	"github.com/hvacintel/prospector/internal/fingerprint"
	"github.com/hvacintel/prospector/internal/metrics"
	"github.com/hvacintel/prospector/internal/pipeline"
	"github.com/hvacintel/prospector/internal/report"
	"github.com/hvacintel/prospector/internal/scraper"
	"github.com/hvacintel/prospector/internal/serp"
	"github.com/hvacintel/prospector/internal/storage"
	"github.com/hvacintel/prospector/internal/storage/csvbackend"
	"github.com/hvacintel/prospector/internal/storage/jsonbackend"
	"github.com/hvacintel/prospector/internal/storage/postgres"
	"github.com/hvacintel/prospector/internal/storage/sqlite"
	"github.com/hvacintel/prospector/internal/storage/xlsxbackend"
	"github.com/hvacintel/prospector/internal/supplier"
	"github.com/hvacintel/prospector/pkg/proxy"
	"github.com/hvacintel/prospector/pkg/ratelimit"
	"github.com/hvacintel/prospector/pkg/useragent"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var cfgPath string

	root := &cobra.Command{
		Use:           "prospector",
		Short:         "HVAC supplier discovery and site extraction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is not an error.
			_ = godotenv.Load()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.LogLevel)
			a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	root.AddCommand(newDiscoverCmd(a), newExtractCmd(a))
	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newDiscoverCmd(a *app) *cobra.Command {
	var brandsFile, output string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Search the web for candidate supplier domains per brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer a.startMetrics()()

			brands := catalog.Brands
			if brandsFile != "" {
				var err error
				brands, err = pipeline.ReadColumn(brandsFile, "Brand")
				if err != nil {
					return err
				}
			}

			store, err := a.newStore(ctx, "candidates", output, supplier.CandidateColumns)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := discover.NewRunner(discover.Config{
				QueryPatterns:   catalog.QueryPatterns,
				QueriesPerBrand: a.cfg.Search.QueriesPerBrand,
				ResultsPerQuery: a.cfg.Search.ResultsPerQuery,
				MaxPerBrand:     a.cfg.Search.MaxPerBrand,
				Denylist:        catalog.Denylist,
				CheckLiveness:   a.cfg.Search.CheckLiveness,
				ZIPSeeds:        catalog.ZIPSeeds,
				ZIPVariants:     a.cfg.Search.ZIPVariants,
				Rand:            a.rng,
			}, a.newProvider(), a.queryThrottle(), discover.NewLiveness(a.cfg.Search.DNSServer), a.logger)

			d := pipeline.NewDiscovery(runner, store, a.queryThrottle(), a.logger)
			if err := d.Run(ctx, brands); err != nil {
				if interrupted(err) {
					a.logger.Warn("discovery interrupted, progress saved", "output", output)
					return nil
				}
				return err
			}
			if err := d.Finalize(ctx); err != nil {
				return err
			}
			a.logger.Info("discovery complete", "output", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&brandsFile, "brands", "", "CSV/XLSX file with a Brand column (default: built-in catalog)")
	cmd.Flags().StringVar(&output, "output", "hvac_candidates.csv", "candidate output path (csv/json backends)")
	return cmd
}

func newExtractCmd(a *app) *cobra.Command {
	var input, column, reportPath string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract supplier records from a list of websites",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer a.startMetrics()()

			urls, err := pipeline.ReadColumn(input, column)
			if err != nil {
				return err
			}

			extractor, err := a.newExtractor()
			if err != nil {
				return err
			}

			checkpoint, err := csvbackend.New(a.cfg.Storage.CheckpointPath, supplier.RecordColumns)
			if err != nil {
				return err
			}
			defer checkpoint.Close()

			ex := pipeline.NewExtraction(extractor, checkpoint, a.siteThrottle(), a.logger)
			if err := ex.Run(ctx, urls); err != nil {
				if interrupted(err) {
					a.logger.Warn("extraction interrupted, progress saved",
						"checkpoint", a.cfg.Storage.CheckpointPath)
					return nil
				}
				return err
			}

			primary, err := a.newStore(ctx, "suppliers", a.cfg.Storage.OutputPath, supplier.RecordColumns)
			if err != nil {
				return err
			}
			defer primary.Close()

			var extras []storage.Backend
			if a.cfg.Storage.XLSXPath != "" {
				if xlsx, err := xlsxbackend.New(a.cfg.Storage.XLSXPath, "Suppliers", supplier.RecordColumns); err != nil {
					a.logger.Warn("xlsx output unavailable", "err", err)
				} else {
					extras = append(extras, xlsx)
					defer xlsx.Close()
				}
			}

			n, complete, err := ex.Export(ctx, primary, extras...)
			if err != nil {
				return err
			}
			a.logger.Info("extraction complete", "records", n, "output", a.cfg.Storage.OutputPath)

			if err := a.writeReport(ctx, ex, reportPath); err != nil {
				a.logger.Warn("report failed", "err", err)
			}

			// The checkpoint has served its purpose only once every output
			// holds the records; a failed secondary (a locked workbook, say)
			// keeps it around so the export can be rerun.
			if !complete {
				a.logger.Warn("an output failed, keeping checkpoint",
					"checkpoint", a.cfg.Storage.CheckpointPath)
				return nil
			}
			if err := os.Remove(a.cfg.Storage.CheckpointPath); err != nil && !os.IsNotExist(err) {
				a.logger.Warn("could not remove checkpoint", "err", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "CSV/XLSX file with the website list (required)")
	cmd.Flags().StringVar(&column, "column", "Website", "input column holding the URLs")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON session report to this path")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) newProvider() serp.Provider {
	if a.cfg.Search.Backend == "searchapi" {
		return serp.NewSearchAPI(a.cfg.Search.APIEndpoint, a.cfg.Search.APIKey, a.logger)
	}
	return serp.NewDuckDuckGo(serp.WithDDGLogger(a.logger))
}

// newFetcher builds the supplier-site fetcher. Site fetches always identify
// themselves with the fixed agent; only the SERP backends rotate browser
// agents.
func (a *app) newFetcher() (*scraper.Fetcher, error) {
	var pool *proxy.Pool
	if a.cfg.Fetch.ProxyFile != "" {
		pool = proxy.NewPool(proxy.Config{})
		if err := pool.LoadFile(a.cfg.Fetch.ProxyFile); err != nil {
			return nil, err
		}
	}

	return scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      a.cfg.Fetch.Timeout,
		MaxRedirects: a.cfg.Fetch.MaxRedirects,
		UseCookieJar: a.cfg.Fetch.UseCookieJar,
		ProxyPool:    pool,
		UAPool:       useragent.NewPool(nil),
		Fingerprint:  fingerprint.Profile(a.cfg.Fetch.Fingerprint),
		Detectors:    blockpage.DefaultDetectors(),
	})
}

func (a *app) newExtractor() (*extract.Extractor, error) {
	fetcher, err := a.newFetcher()
	if err != nil {
		return nil, err
	}

	return extract.New(extract.Config{
		Brands:            catalog.Brands,
		EquipmentKeywords: catalog.EquipmentKeywords,
		PartsKeywords:     catalog.PartsKeywords,
		SubpageHints:      catalog.SubpageHints,
		SubpageLimit:      a.cfg.Extract.SubpageLimit,
		PhoneRegion:       a.cfg.Extract.PhoneRegion,
		RespectRobots:     a.cfg.Extract.RespectRobots,
		UseSitemaps:       a.cfg.Extract.UseSitemaps,
		UserAgent:         useragent.Identifying,
	}, fetcher, a.logger), nil
}

// newStore builds the configured storage backend. path applies to the file
// backends; table names the sqlite/postgres destination.
func (a *app) newStore(ctx context.Context, table, path string, columns []string) (storage.Backend, error) {
	switch a.cfg.Storage.Backend {
	case "csv":
		return csvbackend.New(path, columns)
	case "json":
		return jsonbackend.New(jsonPath(path), columns)
	case "sqlite":
		return sqlite.New(a.cfg.Storage.SQLiteDSN, table, columns)
	case "postgres":
		return postgres.New(ctx, a.cfg.Storage.PostgresDSN, table, columns)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

func jsonPath(path string) string {
	if strings.HasSuffix(path, ".csv") {
		return strings.TrimSuffix(path, ".csv") + ".ndjson"
	}
	return path
}

func (a *app) queryThrottle() *ratelimit.Throttle {
	return ratelimit.NewThrottle(a.cfg.Delay.QueryMin, a.cfg.Delay.QueryMax, a.rng)
}

func (a *app) siteThrottle() *ratelimit.Throttle {
	return ratelimit.NewThrottle(a.cfg.Delay.SiteMin, a.cfg.Delay.SiteMax, a.rng)
}

// startMetrics starts the /metrics server when enabled and returns the
// matching shutdown func.
func (a *app) startMetrics() func() {
	if !a.cfg.Metrics.Enabled {
		return func() {}
	}
	srv := metrics.Start(a.cfg.Metrics.Port)
	a.logger.Info("metrics server listening", "port", a.cfg.Metrics.Port)
	return func() {
		if err := srv.Stop(context.Background()); err != nil {
			a.logger.Warn("metrics server shutdown", "err", err)
		}
	}
}

func (a *app) writeReport(ctx context.Context, ex *pipeline.Extraction, path string) error {
	summary, err := ex.Summary(ctx)
	if err != nil {
		return err
	}
	if err := report.WriteText(os.Stdout, summary); err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteJSON(f, summary)
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
