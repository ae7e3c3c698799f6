package extract

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// maxSitemapBytes caps sitemap downloads.
const maxSitemapBytes = 16 << 20

// sitemapURLSet is a sitemap.xml <urlset> document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

// sitemapIndex is a <sitemapindex> document referencing child sitemaps.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// FetchSitemapURLs downloads a sitemap and returns its page URLs. Sitemap
// index files yield no page URLs here; use Discovery to expand indexes.
func (e *Extractor) FetchSitemapURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	body, err := e.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var urlSet sitemapURLSet
	if err := decodeXML(body, &urlSet); err != nil {
		return nil, eris.Wrapf(err, "extract: parse sitemap %s", sitemapURL)
	}

	var urls []string
	for _, entry := range urlSet.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func (e *Extractor) fetchSitemap(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "extract: create sitemap request")
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: fetch sitemap %s", sitemapURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("extract: sitemap %s returned status %d", sitemapURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, eris.Wrap(err, "extract: read sitemap body")
	}
	return body, nil
}

// decodeXML unmarshals sitemap XML tolerating non-UTF-8 charset declarations.
func decodeXML(data []byte, v any) error {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec.Decode(v)
}
