// Package extract is the record producer: it crawls pages with a bounded
// worker pool and yields the iframe form records the reconciliation engine
// consumes. It also handles sitemap fetching and discovery.
package extract

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/reconcile"
)

// DefaultIframePrefix selects the marketing-platform iframes the audit is
// interested in.
const DefaultIframePrefix = "https://ovh.slgnt.eu/optiext/"

// maxPageBytes caps how much of a page body is read when hunting for iframes.
const maxPageBytes = 1 << 20

// Options configures the iframe extractor.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	IframePrefix string
	// RatePerHost throttles requests per host; zero disables throttling.
	RatePerHost rate.Limit
}

// Extractor fetches pages and extracts marketing-form iframe records.
// Safe for concurrent use.
type Extractor struct {
	client   *http.Client
	opts     Options
	limiters *hostLimiters
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if opts.IframePrefix == "" {
		opts.IframePrefix = DefaultIframePrefix
	}
	return &Extractor{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: newHostLimiters(opts.RatePerHost),
	}
}

// ExtractFromURL fetches one page and returns its iframe form records.
// Unreachable pages and non-200 responses yield no records and no error: a
// page without forms and a page that failed to load are the same to the
// reconciliation layer, which only reasons about observed records.
func (e *Extractor) ExtractFromURL(ctx context.Context, pageURL string) []model.ExtractedRecord {
	if err := e.limiters.wait(ctx, pageURL); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		zap.L().Debug("extract: bad url", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		zap.L().Debug("extract: fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		zap.L().Debug("extract: parse failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	var records []model.ExtractedRecord
	for _, src := range e.iframeSources(doc) {
		formID, crmCode := reconcile.ExtractIDAndCode(src)
		records = append(records, model.ExtractedRecord{
			SourceURL: pageURL,
			IframeURL: src,
			FormID:    formID,
			CRMCode:   crmCode,
		})
	}
	return records
}

// iframeSources collects iframe src values with the configured prefix,
// scoped to the page's main content region when one exists.
func (e *Extractor) iframeSources(doc *html.Node) []string {
	root := findElement(doc, atom.Main)
	if root == nil {
		root = doc
	}

	var sources []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Iframe {
			if src := attrValue(n, "src"); len(src) >= len(e.opts.IframePrefix) && src[:len(e.opts.IframePrefix)] == e.opts.IframePrefix {
				sources = append(sources, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sources
}

// findElement returns the first element with the given atom, depth-first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hostLimiters hands out one rate limiter per host.
type hostLimiters struct {
	perHost rate.Limit
	mu      sync.Mutex
	m       map[string]*rate.Limiter
}

func newHostLimiters(perHost rate.Limit) *hostLimiters {
	return &hostLimiters{
		perHost: perHost,
		m:       make(map[string]*rate.Limiter),
	}
}

func (l *hostLimiters) wait(ctx context.Context, rawURL string) error {
	if l.perHost == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrap(err, "extract: parse url for rate limit")
	}

	l.mu.Lock()
	lim, ok := l.m[u.Host]
	if !ok {
		lim = rate.NewLimiter(l.perHost, int(l.perHost)+1)
		l.m[u.Host] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}
