package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SecurityNewsScanner/internal/dedup"
	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/infrastructure/parser"
	"SecurityNewsScanner/internal/scanner"
)

const startURL = "https://news.example.org/news/security/"

func newTestCrawler(t *testing.T, pages map[string]string, store *fakeStore, maxPages int) (*Crawler, *fakeFetcher, *dedup.TitleSet) {
	t.Helper()

	fetcher := newFakeFetcher(pages)
	titles := dedup.NewTitleSet()
	e := newTestExtractor(t, nil, &stubSummarizer{})
	e.fetcher = fetcher

	runner, err := NewBatchRunner(BatchDeps{
		Extractor: e,
		Submitter: NewPersister(store, titles, nil),
		Titles:    titles,
		Size:      2,
	})
	require.NoError(t, err)

	c, err := NewCrawler(CrawlOptions{StartURL: startURL, MaxPages: maxPages}, CrawlerDeps{
		Fetcher: fetcher,
		Parser:  parser.NewHTMLParser(scanner.Bleeping),
		Store:   store,
		Titles:  titles,
		Batch:   runner,
	})
	require.NoError(t, err)
	return c, fetcher, titles
}

func TestRunSingleListingScenario(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		startURL: listingPage("", "/a", "/b", "/c"),
		"https://news.example.org/a": articlePage("Ransomware hits hospital", "Oct 1", "A ransomware crew encrypted records."),
		"https://news.example.org/b": articlePage("Phishing wave", "Oct 2", "A phishing kit targets banks."),
		"https://news.example.org/c": articlePage("", "Oct 3", "Malware with no headline."),
	}
	store := &fakeStore{}
	c, fetcher, titles := newTestCrawler(t, pages, store, 5)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 3, report.Links)
	assert.Len(t, report.Persisted, 2)
	assert.Equal(t, 1, report.Skipped[domain.SkipMissingFields])
	assert.False(t, report.Aborted)
	assert.Equal(t, 2, titles.Len())
	assert.ElementsMatch(t, []string{"Ransomware hits hospital", "Phishing wave"}, store.titles())
	assert.True(t, fetcher.opened)
	assert.True(t, fetcher.closed)
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		startURL: listingPage("", "/a", "/b"),
		"https://news.example.org/a": articlePage("Story A", "Oct 1", "ddos flood"),
		"https://news.example.org/b": articlePage("Story B", "Oct 2", "new trojan"),
	}
	store := &fakeStore{}

	first, _, _ := newTestCrawler(t, pages, store, 1)
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	second, _, _ := newTestCrawler(t, pages, store, 1)
	report, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, store.titles(), 2)
	assert.Empty(t, report.Persisted)
	assert.Equal(t, 2, report.Skipped[domain.SkipAlreadySeen])
}

func TestRunStopsAtMaxPages(t *testing.T) {
	t.Parallel()

	pages := map[string]string{}
	for i := 1; i <= 5; i++ {
		url := startURL
		if i > 1 {
			url = fmt.Sprintf("%spage/%d/", startURL, i)
		}
		pages[url] = listingPage(fmt.Sprintf("/news/security/page/%d/", i+1))
	}

	c, fetcher, _ := newTestCrawler(t, pages, &fakeStore{}, 2)
	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Positive(t, fetcher.hitCount(startURL+"page/2/"))
	assert.Zero(t, fetcher.hitCount(startURL+"page/3/"))
}

func TestRunFollowsChainUntilNoNextLink(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		startURL:            listingPage("/news/security/page/2/"),
		startURL + "page/2/": listingPage(""),
	}

	c, _, _ := newTestCrawler(t, pages, &fakeStore{}, 10)
	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.False(t, report.Aborted)
}

func TestRunAbortsOnListingFailure(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		startURL: listingPage("/news/security/page/2/", "/a"),
		"https://news.example.org/a": articlePage("Kept before abort", "Oct 1", "worm outbreak"),
	}
	store := &fakeStore{}
	c, fetcher, _ := newTestCrawler(t, pages, store, 3)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Aborted)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, []string{"Kept before abort"}, store.titles())
	assert.True(t, fetcher.closed)
}

func TestRunContinuesWhenSeedFails(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		startURL: listingPage("", "/a"),
		"https://news.example.org/a": articlePage("Fresh", "Oct 1", "exploit released"),
	}
	store := &fakeStore{listErr: errors.New("store offline")}
	c, _, titles := newTestCrawler(t, pages, store, 1)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Persisted, 1)
	assert.Equal(t, 1, titles.Len())
}

func TestRunEmptyListingIsNotAnError(t *testing.T) {
	t.Parallel()

	c, fetcher, _ := newTestCrawler(t, map[string]string{startURL: listingPage("")}, &fakeStore{}, 1)

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Zero(t, report.Links)
	assert.Equal(t, 2, fetcher.hitCount(startURL), "listing is re-read to find the next link")
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, fetcher, _ := newTestCrawler(t, map[string]string{}, &fakeStore{}, 1)
	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, fetcher.closed)
}

func TestNewCrawlerValidates(t *testing.T) {
	t.Parallel()

	_, err := NewCrawler(CrawlOptions{}, CrawlerDeps{})
	assert.Error(t, err)

	_, err = NewCrawler(CrawlOptions{StartURL: startURL, MaxPages: 0}, CrawlerDeps{})
	assert.Error(t, err)

	_, err = NewCrawler(CrawlOptions{StartURL: startURL, MaxPages: 1}, CrawlerDeps{})
	assert.Error(t, err)
}

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildDigest(nil))

	report := domain.NewReport()
	report.Pages = 2
	report.Add(domain.Kept("u", domain.Article{Title: "T", Category: domain.CategoryDDoS, Date: "Oct 1", Summary: "S"}))
	report.Add(domain.Skipped("v", domain.SkipUnclassified))
	report.Add(domain.Skipped("w", domain.SkipAlreadySeen))

	digest := BuildDigest(report)
	assert.Contains(t, digest, "<b>1 new security articles</b> (2 pages scanned)")
	assert.Contains(t, digest, "- T\n<i>ddos</i> · Oct 1\nS")
	assert.Contains(t, digest, "Skipped: already_seen=1 unclassified=1")
}

func TestBuildDigestEscapesScrapedText(t *testing.T) {
	t.Parallel()

	report := domain.NewReport()
	report.Add(domain.Kept("u", domain.Article{
		Title:    "evil_payload.exe *drops* <script> on bad[.]com",
		Category: domain.CategoryPhishing,
		Date:     "Oct 1",
		Summary:  "Victims run update_installer.exe & lose data",
	}))

	digest := BuildDigest(report)
	assert.Contains(t, digest, "- evil_payload.exe *drops* &lt;script&gt; on bad[.]com\n")
	assert.Contains(t, digest, "update_installer.exe &amp; lose data")
	assert.NotContains(t, digest, "<script>")
	for _, line := range strings.Split(digest, "\n") {
		assert.Equal(t, strings.Count(line, "<i>"), strings.Count(line, "</i>"), line)
		assert.Equal(t, strings.Count(line, "<b>"), strings.Count(line, "</b>"), line)
	}
}
