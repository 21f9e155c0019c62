package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Test</title></head><body>
<p>Hello <b>World</b></p>
<a href="/a">Link A</a>
<a href="/b">Link B</a>
<table>
<tr><th>Name</th><th>Age</th></tr>
<tr><td>Alice</td><td>30</td></tr>
</table>
</body></html>`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeText(t *testing.T) {
	srv := testServer(t)
	s := New(0)
	res, err := s.Scrape(context.Background(), srv.URL, ModeText)
	require.NoError(t, err)
	require.Contains(t, res.Text, "Hello")
	require.Contains(t, res.Text, "World")
}

func TestScrapeLinks(t *testing.T) {
	srv := testServer(t)
	s := New(0)
	res, err := s.Scrape(context.Background(), srv.URL, ModeLinks)
	require.NoError(t, err)
	require.Len(t, res.Links, 2)
	require.Equal(t, "/a", res.Links[0].Href)
	require.Equal(t, "Link A", res.Links[0].Text)
}

func TestScrapeTables(t *testing.T) {
	srv := testServer(t)
	s := New(0)
	res, err := s.Scrape(context.Background(), srv.URL, ModeTables)
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	require.Equal(t, []string{"Name", "Age"}, res.Tables[0].Rows[0])
	require.Equal(t, []string{"Alice", "30"}, res.Tables[0].Rows[1])
}

func TestScrapeHTML(t *testing.T) {
	srv := testServer(t)
	s := New(0)
	res, err := s.Scrape(context.Background(), srv.URL, ModeHTML)
	require.NoError(t, err)
	require.Contains(t, res.HTML, "<html>")
}

func TestScrapeNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(0)
	_, err := s.Scrape(context.Background(), srv.URL, ModeText)
	require.Error(t, err)
}
