package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SecurityNewsScanner/internal/config"
	"SecurityNewsScanner/internal/scanner"
)

const listingHTML = `
<html><body>
<ul id="bc-home-news-main-wrap">
  <li><h4><a href="/news/security/first-story/">First</a></h4></li>
  <li><h4><a href="https://www.example.com/news/security/second-story/">Second</a></h4></li>
  <li><h4><a>no href</a></h4></li>
  <li><h4><a href="/news/security/third-story/">Third</a></h4></li>
</ul>
<ul class="sidebar"><li><h4><a href="/not-an-article/">Sidebar</a></h4></li></ul>
<a aria-label="Next Page" href="/news/security/page/2/">Next</a>
</body></html>`

const articleHTML = `
<html><body>
<h1> Hackers exploit zero-day in VPN appliances </h1>
<ul><li class="cz-news-date">October 14, 2026</li></ul>
<div class="articleBody">
  <p>Attackers are exploiting a zero-day.</p>
  <p>Patch now.</p>
</div>
</body></html>`

func TestLinksKeepOrderAndResolve(t *testing.T) {
	t.Parallel()

	p := NewHTMLParser(scanner.Bleeping)
	links, err := p.Links(listingHTML, "https://www.example.com/news/security/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.example.com/news/security/first-story/",
		"https://www.example.com/news/security/second-story/",
		"https://www.example.com/news/security/third-story/",
	}, links)
}

func TestLinksEmptyPage(t *testing.T) {
	t.Parallel()

	links, err := NewHTMLParser(scanner.Bleeping).Links("<html></html>", "https://www.example.com/")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestNextPage(t *testing.T) {
	t.Parallel()

	p := NewHTMLParser(scanner.Bleeping)

	next, ok, err := p.NextPage(listingHTML, "https://www.example.com/news/security/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://www.example.com/news/security/page/2/", next)

	_, ok, err = p.NextPage("<html><a href='/x'>Next</a></html>", "https://www.example.com/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArticleFields(t *testing.T) {
	t.Parallel()

	parsed, err := NewHTMLParser(scanner.Bleeping).Article(articleHTML)
	require.NoError(t, err)

	assert.Equal(t, "Hackers exploit zero-day in VPN appliances", parsed.Title)
	assert.Equal(t, "October 14, 2026", parsed.Date)
	assert.Equal(t, "Attackers are exploiting a zero-day. Patch now.", parsed.Body)
}

func TestArticleMissingRegions(t *testing.T) {
	t.Parallel()

	parsed, err := NewHTMLParser(scanner.Bleeping).Article("<html><body><p>stray</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, parsed.Title)
	assert.Empty(t, parsed.Date)
	assert.Empty(t, parsed.Body)
}

func TestNewFromSiteAppliesOverrides(t *testing.T) {
	t.Parallel()

	p, err := NewFromSite(scanner.NewRegistry(), config.SiteConfig{
		Name:      "custom",
		Layout:    "bleepingcomputer",
		Selectors: config.SelectorConfig{Title: "h2"},
	}, nil)
	require.NoError(t, err)

	parsed, err := p.Article(`<h1>ignored</h1><h2>Picked</h2>`)
	require.NoError(t, err)
	assert.Equal(t, "Picked", parsed.Title)
}

func TestNewFromSiteUnknownLayout(t *testing.T) {
	t.Parallel()

	_, err := NewFromSite(scanner.NewRegistry(), config.SiteConfig{Name: "x", Layout: "nope"}, nil)
	assert.ErrorContains(t, err, "site x")

	_, err = NewFromSite(nil, config.SiteConfig{}, nil)
	assert.Error(t, err)
}
