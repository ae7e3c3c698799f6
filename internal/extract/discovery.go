package extract

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// standardSitemapPaths are probed when robots.txt declares no sitemap.
var standardSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemapindex.xml",
	"/sitemap.php",
	"/sitemap.txt",
}

// Sitemap describes one discovered sitemap.
type Sitemap struct {
	URL      string   `json:"url"`
	IsIndex  bool     `json:"is_index"`
	Depth    int      `json:"depth"`
	Children []string `json:"children,omitempty"`
}

// SitemapInfo summarizes a sitemap's contents.
type SitemapInfo struct {
	URL          string `json:"url"`
	URLCount     int    `json:"url_count"`
	LastModified string `json:"last_modified,omitempty"`
}

// DiscoverSitemaps finds the sitemaps of a site starting from any of its
// URLs: robots.txt Sitemap lines first, then the standard locations, then
// recursive expansion of sitemap indexes up to maxDepth.
func (e *Extractor) DiscoverSitemaps(ctx context.Context, siteURL string, maxDepth int) ([]Sitemap, error) {
	base, err := baseURL(siteURL)
	if err != nil {
		return nil, err
	}

	seeds := e.sitemapsFromRobots(ctx, base)
	seeds = append(seeds, e.standardSitemaps(ctx, base)...)
	seeds = dedupe(seeds)

	zap.L().Debug("extract: sitemap seeds", zap.String("site", base), zap.Int("seeds", len(seeds)))

	seen := make(map[string]bool)
	var found []Sitemap
	for _, seed := range seeds {
		e.expandSitemap(ctx, seed, 0, maxDepth, seen, &found)
	}
	return found, nil
}

// expandSitemap records one sitemap and recursively expands index children.
func (e *Extractor) expandSitemap(ctx context.Context, sitemapURL string, depth, maxDepth int, seen map[string]bool, found *[]Sitemap) {
	if seen[sitemapURL] || depth > maxDepth {
		return
	}
	seen[sitemapURL] = true

	entry := Sitemap{URL: sitemapURL, Depth: depth}

	body, err := e.fetchSitemap(ctx, sitemapURL)
	if err == nil {
		var index sitemapIndex
		if decodeErr := decodeXML(body, &index); decodeErr == nil && len(index.Sitemaps) > 0 {
			entry.IsIndex = true
			for _, child := range index.Sitemaps {
				if loc := strings.TrimSpace(child.Loc); loc != "" {
					entry.Children = append(entry.Children, loc)
				}
			}
		}
	}

	*found = append(*found, entry)

	if entry.IsIndex && depth < maxDepth {
		for _, child := range entry.Children {
			e.expandSitemap(ctx, child, depth+1, maxDepth, seen, found)
		}
	}
}

// SitemapInfo fetches URL count and the most recent lastmod of a sitemap.
func (e *Extractor) SitemapInfo(ctx context.Context, sitemapURL string) (SitemapInfo, error) {
	info := SitemapInfo{URL: sitemapURL}

	body, err := e.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return info, err
	}

	var urlSet sitemapURLSet
	if err := decodeXML(body, &urlSet); err != nil {
		return info, eris.Wrapf(err, "extract: parse sitemap %s", sitemapURL)
	}

	info.URLCount = len(urlSet.URLs)
	for _, entry := range urlSet.URLs {
		if lm := strings.TrimSpace(entry.LastMod); lm > info.LastModified {
			info.LastModified = lm
		}
	}
	return info, nil
}

// sitemapsFromRobots reads Sitemap: lines from robots.txt.
func (e *Extractor) sitemapsFromRobots(ctx context.Context, base string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	var sitemaps []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 8 || !strings.EqualFold(line[:8], "sitemap:") {
			continue
		}
		if u := strings.TrimSpace(line[8:]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	return sitemaps
}

// standardSitemaps probes the conventional sitemap locations with HEAD.
func (e *Extractor) standardSitemaps(ctx context.Context, base string) []string {
	var found []string
	for _, path := range standardSitemapPaths {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, base+path, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", e.opts.UserAgent)

		resp, err := e.client.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			found = append(found, base+path)
		}
	}
	return found
}

func baseURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "extract: parse site url")
	}
	return u.Scheme + "://" + u.Host, nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
