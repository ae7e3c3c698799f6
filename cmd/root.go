package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/formaudit-cli/internal/config"
	"github.com/sells-group/formaudit-cli/internal/extract"
	"github.com/sells-group/formaudit-cli/internal/registry"
	"github.com/sells-group/formaudit-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "formaudit",
	Short: "Marketing-form audit pipeline",
	Long:  "Crawls site pages for embedded marketing-form iframes, reconciles them against URL-mapping and CRM tables, and reports the missing and enriched forms.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore opens the run-history database configured in cfg.
func initStore() (store.Store, error) {
	return store.NewSQLite(cfg.Store.Path)
}

// newExtractor builds the page extractor from config.
func newExtractor() *extract.Extractor {
	return extract.NewExtractor(extract.Options{
		UserAgent:    cfg.Extract.UserAgent,
		Timeout:      time.Duration(cfg.Extract.TimeoutSecs) * time.Second,
		IframePrefix: cfg.Extract.IframePrefix,
		RatePerHost:  rate.Limit(cfg.Extract.RatePerHost),
	})
}

// newBatch builds a batch crawler with a stderr progress indicator.
func newBatch(extractor *extract.Extractor) *extract.Batch {
	return extract.NewBatch(extractor, extract.BatchOptions{
		Workers:   cfg.Extract.Workers,
		ChunkSize: cfg.Extract.ChunkSize,
		Progress:  stderrProgress,
	})
}

// stderrProgress writes a one-line progress indicator to stderr.
func stderrProgress(done, total int) {
	fmt.Fprintf(os.Stderr, "\rcrawling %d/%d pages", done, total)
	if done == total {
		fmt.Fprintln(os.Stderr)
	}
}

// loadTemplates loads the template dictionary configured in cfg.
func loadTemplates() (*registry.TemplateMap, error) {
	return registry.LoadTemplates(cfg.Extract.TemplateMap)
}
