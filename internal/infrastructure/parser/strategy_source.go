package parser

import (
	"fmt"
	"log/slog"

	"SecurityNewsScanner/internal/config"
	"SecurityNewsScanner/internal/scanner"
)

// NewFromSite resolves the configured layout and applies per-site selector overrides.
func NewFromSite(reg *scanner.Registry, site config.SiteConfig, log *slog.Logger) (*HTMLParser, error) {
	if reg == nil {
		return nil, fmt.Errorf("layout registry is not configured")
	}

	layout, err := reg.Resolve(site.Layout)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	layout = layout.Override(scanner.Layout{
		LinkSelector:  site.Selectors.Links,
		NextSelector:  site.Selectors.Next,
		TitleSelector: site.Selectors.Title,
		DateSelector:  site.Selectors.Date,
		BodySelector:  site.Selectors.Body,
	})
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	if log != nil {
		log.Debug("resolved site layout", "site", site.Name, "layout", layout.Name)
	}
	return NewHTMLParser(layout), nil
}
