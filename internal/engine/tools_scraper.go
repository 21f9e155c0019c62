package engine

import (
	"context"

	"warden/internal/scraper"
	"warden/internal/tools"
)

func registerScraperTools(reg *tools.Registry, d Deps) error {
	if d.Scraper == nil {
		return nil
	}
	return reg.Register(&tools.Tool{
		Name:        "scrape_url",
		Description: "Fetch a URL and extract its text, links, tables, or raw HTML.",
		Category:    tools.CategoryScraper,
		Schema: tools.Schema{
			Required: []string{"url"},
			Properties: map[string]tools.Property{
				"url":  {Type: "string"},
				"mode": {Type: "string", Enum: []any{"text", "links", "tables", "html"}, Default: "text"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) ([]tools.ContentItem, error) {
			mode := scraper.Mode(paramString(args, "mode", string(scraper.ModeText)))
			result, err := d.Scraper.Scrape(ctx, paramString(args, "url", ""), mode)
			if err != nil {
				return nil, err
			}
			return jsonItem(result)
		},
	})
}
