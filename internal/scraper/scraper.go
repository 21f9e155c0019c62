// Package scraper implements the URL Scraper: fetch a page and extract
// text, links, tables, or raw HTML via an HTML tokenizer.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"warden/internal/logging"
)

// Mode selects what Scrape extracts from the fetched document.
type Mode string

const (
	ModeText   Mode = "text"
	ModeLinks  Mode = "links"
	ModeTables Mode = "tables"
	ModeHTML   Mode = "html"
)

// maxBodyBytes caps how much of the response body is read.
const maxBodyBytes = 2 << 20 // 2MB

// maxHTMLBytes bounds the raw markup returned by ModeHTML.
const maxHTMLBytes = 100 * 1024

// fetchTimeout bounds the HTTP round trip.
const fetchTimeout = 15 * time.Second

// Link is one anchor extracted in ModeLinks.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Table is one <table> extracted in ModeTables, as a grid of cell strings.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Result is the mode-dependent extraction output.
type Result struct {
	URL    string   `json:"url"`
	Mode   Mode     `json:"mode"`
	Text   string   `json:"text,omitempty"`
	Links  []Link   `json:"links,omitempty"`
	Tables []Table  `json:"tables,omitempty"`
	HTML   string   `json:"html,omitempty"`
}

// Scraper fetches and parses URLs via an injected HTTP client, so tests can
// swap in an httptest server without touching DNS or the network.
type Scraper struct {
	client *http.Client
}

// New builds a Scraper with the given timeout (fetchTimeout if zero).
func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = fetchTimeout
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Scrape fetches url and extracts content per mode.
func (s *Scraper) Scrape(ctx context.Context, url string, mode Mode) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "warden-scraper/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	logging.Get(logging.CategoryScraper).Info("scraped %s (%d bytes, mode=%s)", url, len(body), mode)

	result := &Result{URL: url, Mode: mode}
	switch mode {
	case ModeText:
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		result.Text = collapseWhitespace(extractText(doc))
	case ModeLinks:
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		result.Links = extractLinks(doc)
	case ModeTables:
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		result.Tables = extractTables(doc)
	case ModeHTML:
		raw := string(body)
		if len(raw) > maxHTMLBytes {
			raw = raw[:maxHTMLBytes] + "...(truncated)"
		}
		result.HTML = raw
	default:
		return nil, fmt.Errorf("unsupported mode: %q", mode)
	}

	return result, nil
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractLinks(n *html.Node) []Link {
	var links []Link
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			var href string
			for _, attr := range node.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
			if href != "" {
				links = append(links, Link{Href: href, Text: collapseWhitespace(extractText(node))})
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

func extractTables(n *html.Node) []Table {
	var tables []Table
	var walkTable func(*html.Node) Table
	walkTable = func(table *html.Node) Table {
		var rows [][]string
		var walkRow func(*html.Node)
		walkRow = func(node *html.Node) {
			if node.Type == html.ElementNode && node.Data == "tr" {
				var cells []string
				for c := node.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						cells = append(cells, collapseWhitespace(extractText(c)))
					}
				}
				rows = append(rows, cells)
				return
			}
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				walkRow(c)
			}
		}
		walkRow(table)
		return Table{Rows: rows}
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "table" {
			tables = append(tables, walkTable(node))
			return // tables do not nest in the extraction grid
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tables
}
