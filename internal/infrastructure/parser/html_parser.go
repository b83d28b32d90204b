package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/scanner"
)

// HTMLParser extracts links and article fields with goquery selectors.
type HTMLParser struct {
	layout scanner.Layout
}

var _ ports.PageParser = (*HTMLParser)(nil)

// NewHTMLParser binds a parser to one site layout.
func NewHTMLParser(layout scanner.Layout) *HTMLParser {
	return &HTMLParser{layout: layout}
}

// Links returns article hrefs in document order, resolved against base.
func (p *HTMLParser) Links(page, base string) ([]string, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(p.layout.LinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if resolved := resolve(base, href); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// NextPage locates the pagination link; ok is false on the last page.
func (p *HTMLParser) NextPage(page, base string) (string, bool, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return "", false, err
	}

	href, ok := doc.Find(p.layout.NextSelector).First().Attr("href")
	if !ok {
		return "", false, nil
	}
	next := resolve(base, href)
	return next, next != "", nil
}

// Article reads title, date and body. Missing regions yield empty fields.
func (p *HTMLParser) Article(page string) (domain.ParsedArticle, error) {
	doc, err := parseDocument(page)
	if err != nil {
		return domain.ParsedArticle{}, err
	}

	paragraphs := doc.Find(p.layout.BodySelector).Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})

	return domain.ParsedArticle{
		Title: strings.TrimSpace(doc.Find(p.layout.TitleSelector).First().Text()),
		Date:  strings.TrimSpace(doc.Find(p.layout.DateSelector).First().Text()),
		Body:  strings.TrimSpace(strings.Join(paragraphs, " ")),
	}, nil
}

func parseDocument(page string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return ref.String()
	}
	return baseURL.ResolveReference(ref).String()
}
