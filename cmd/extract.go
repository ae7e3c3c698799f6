package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/extract"
	"github.com/sells-group/formaudit-cli/internal/model"
)

var (
	extractSitemap  string
	extractURLsFile string
	extractOut      string
	extractTest     bool
	extractNoSave   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [url...]",
	Short: "Crawl pages and extract marketing-form iframes",
	Long:  "Crawls the given URLs (or every page of a sitemap) and records each embedded marketing-form iframe. The run is saved to history and printed as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		extractor := newExtractor()

		urls, err := gatherURLs(ctx, args, extractor)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return eris.New("no input urls; pass urls, --sitemap or --urls-file")
		}

		testMode := extractTest || cfg.Extract.TestMode
		if testMode {
			urls = extract.Sample(urls, cfg.Extract.TestSize)
			zap.L().Info("test mode: sampled urls", zap.Int("urls", len(urls)))
		}

		batch := newBatch(extractor)

		started := time.Now().UTC()
		records, aborted, err := batch.Extract(ctx, urls)
		if err != nil {
			return eris.Wrap(err, "extract batch")
		}

		run := model.Run{
			StartedAt: started,
			InputURLs: urls,
			Params: model.RunParams{
				Workers:   cfg.Extract.Workers,
				TimeoutS:  cfg.Extract.TimeoutSecs,
				ChunkSize: cfg.Extract.ChunkSize,
				TestMode:  testMode,
				TestSize:  cfg.Extract.TestSize,
			},
			Records:    records,
			DurationMS: time.Since(started).Milliseconds(),
			Aborted:    aborted,
		}

		if !extractNoSave {
			st, err := initStore()
			if err != nil {
				return eris.Wrap(err, "init store")
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			id, err := st.SaveRun(ctx, run)
			if err != nil {
				return eris.Wrap(err, "save run")
			}
			run.ID = id
		}

		zap.L().Info("extraction complete",
			zap.String("run_id", run.ID),
			zap.Int("urls", len(urls)),
			zap.Int("records", len(records)),
			zap.Bool("aborted", aborted),
		)

		out := os.Stdout
		if extractOut != "" {
			f, err := os.Create(extractOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// gatherURLs assembles the crawl set from the positional args, the URL-list
// file and the sitemap, in that order.
func gatherURLs(ctx context.Context, args []string, extractor *extract.Extractor) ([]string, error) {
	urls := append([]string(nil), args...)

	if extractURLsFile != "" {
		fromFile, err := readURLLines(extractURLsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if extractSitemap != "" {
		fromSitemap, err := extractor.FetchSitemapURLs(ctx, extractSitemap)
		if err != nil {
			return nil, eris.Wrap(err, "fetch sitemap")
		}
		zap.L().Info("sitemap fetched",
			zap.String("sitemap", extractSitemap),
			zap.Int("urls", len(fromSitemap)),
		)
		urls = append(urls, fromSitemap...)
	}

	return urls, nil
}

// readURLLines reads one URL per line, skipping blanks and # comments.
func readURLLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open urls file")
	}
	defer f.Close() //nolint:errcheck

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, eris.Wrap(sc.Err(), "read urls file")
}

func init() {
	extractCmd.Flags().StringVar(&extractSitemap, "sitemap", "", "sitemap.xml URL to crawl")
	extractCmd.Flags().StringVar(&extractURLsFile, "urls-file", "", "file with one URL per line")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "write the run JSON to a file instead of stdout")
	extractCmd.Flags().BoolVar(&extractTest, "test", false, "crawl a random sample instead of the full set")
	extractCmd.Flags().BoolVar(&extractNoSave, "no-save", false, "skip saving the run to history")
	rootCmd.AddCommand(extractCmd)
}
