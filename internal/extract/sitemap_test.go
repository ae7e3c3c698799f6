package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURLSet = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://ex.com/a</loc><lastmod>2026-01-10</lastmod></url>
  <url><loc> https://ex.com/b </loc><lastmod>2026-03-02</lastmod></url>
  <url><loc></loc></url>
</urlset>`

func TestFetchSitemapURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, testURLSet)
	}))
	t.Cleanup(srv.Close)

	urls, err := newTestExtractor().FetchSitemapURLs(context.Background(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://ex.com/a", "https://ex.com/b"}, urls)
}

func TestFetchSitemapURLs_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestExtractor().FetchSitemapURLs(context.Background(), srv.URL+"/sitemap.xml")
	assert.Error(t, err)
}

func TestFetchSitemapURLs_BadXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not xml")
	}))
	t.Cleanup(srv.Close)

	_, err := newTestExtractor().FetchSitemapURLs(context.Background(), srv.URL+"/sitemap.xml")
	assert.Error(t, err)
}

func TestFetchSitemapURLs_DeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="ISO-8859-1"?>
<urlset><url><loc>https://ex.com/caf%C3%A9</loc></url></urlset>`)
	}))
	t.Cleanup(srv.Close)

	urls, err := newTestExtractor().FetchSitemapURLs(context.Background(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}

func TestSitemapInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testURLSet)
	}))
	t.Cleanup(srv.Close)

	info, err := newTestExtractor().SitemapInfo(context.Background(), srv.URL+"/sitemap.xml")
	require.NoError(t, err)

	assert.Equal(t, 3, info.URLCount)
	assert.Equal(t, "2026-03-02", info.LastModified)
}
