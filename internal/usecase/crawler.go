package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/retry"
)

// CrawlOptions are the run parameters supplied at invocation.
type CrawlOptions struct {
	StartURL       string
	MaxPages       int
	InterPageDelay time.Duration
}

// CrawlerDeps wires the pagination driver.
type CrawlerDeps struct {
	Fetcher ports.FetchSession
	Parser  ports.PageParser
	Store   ports.ArticleStore
	Titles  ports.TitleRepository
	Batch   *BatchRunner
	Logger  *slog.Logger
}

// Crawler walks listing pages and hands their links to the batch runner.
type Crawler struct {
	opts    CrawlOptions
	fetcher ports.FetchSession
	parser  ports.PageParser
	store   ports.ArticleStore
	titles  ports.TitleRepository
	batch   *BatchRunner
	logger  *slog.Logger
}

type cursor struct {
	url  string
	page int
}

// NewCrawler validates options and dependencies.
func NewCrawler(opts CrawlOptions, deps CrawlerDeps) (*Crawler, error) {
	if opts.StartURL == "" {
		return nil, errors.New("crawler: start url is required")
	}
	if opts.MaxPages < 1 {
		return nil, errors.New("crawler: max pages must be positive")
	}
	if deps.Fetcher == nil || deps.Parser == nil || deps.Store == nil || deps.Titles == nil || deps.Batch == nil {
		return nil, errors.New("crawler: fetcher, parser, store, titles and batch are required")
	}
	return &Crawler{
		opts:    opts,
		fetcher: deps.Fetcher,
		parser:  deps.Parser,
		store:   deps.Store,
		titles:  deps.Titles,
		batch:   deps.Batch,
		logger:  loggerOrDiscard(deps.Logger),
	}, nil
}

// Run crawls from StartURL until no next page exists or MaxPages is reached.
// Listing fetch failures end pagination without an error; the returned
// error is non-nil only when ctx is cancelled or the fetcher cannot open.
func (c *Crawler) Run(ctx context.Context) (*domain.Report, error) {
	report := domain.NewReport()

	if err := c.fetcher.Open(); err != nil {
		return report, err
	}
	defer func() {
		if err := c.fetcher.Close(); err != nil {
			c.logger.Warn("close fetcher", "error", err)
		}
	}()

	c.seed(ctx)

	cur := cursor{url: c.opts.StartURL, page: 1}
	for {
		c.logger.Info("processing page", "page", cur.page, "url", cur.url)

		listing, err := c.fetcher.Fetch(ctx, cur.url)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			c.logger.Error("cannot fetch listing page, stopping", "url", cur.url, "error", err)
			report.Aborted = true
			break
		}
		report.Pages++

		if err := c.processListing(ctx, listing, cur.url, report); err != nil {
			return report, err
		}

		next, ok, err := c.findNext(ctx, cur.url)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			c.logger.Error("cannot re-fetch listing page, stopping", "url", cur.url, "error", err)
			report.Aborted = true
			break
		}
		if !ok {
			c.logger.Info("no next page link", "page", cur.page)
			break
		}

		cur.page++
		if cur.page > c.opts.MaxPages {
			c.logger.Info("page limit reached", "max_pages", c.opts.MaxPages)
			break
		}
		cur.url = next

		if err := retry.Sleep(ctx, c.opts.InterPageDelay); err != nil {
			return report, err
		}
	}

	c.logger.Info("scraping completed",
		"pages", report.Pages,
		"links", report.Links,
		"persisted", len(report.Persisted),
		"aborted", report.Aborted)
	return report, nil
}

func (c *Crawler) seed(ctx context.Context) {
	titles, err := c.store.ListTitles(ctx)
	if err != nil {
		c.logger.Error("error fetching initial titles, continuing with empty set", "error", err)
		return
	}
	c.titles.Seed(titles)
	c.logger.Info("seeded processed titles", "count", c.titles.Len())
}

func (c *Crawler) processListing(ctx context.Context, listing, pageURL string, report *domain.Report) error {
	links, err := c.parser.Links(listing, pageURL)
	if err != nil {
		c.logger.Error("cannot parse listing page", "url", pageURL, "error", err)
		return nil
	}
	report.Links += len(links)
	if len(links) == 0 {
		c.logger.Warn("listing page has no article links", "url", pageURL)
		return nil
	}

	outcomes, err := c.batch.RunBatch(ctx, links)
	for _, o := range outcomes {
		report.Add(o)
	}
	return err
}

// findNext re-reads the listing page so the pagination link reflects the page as it is now.
func (c *Crawler) findNext(ctx context.Context, pageURL string) (string, bool, error) {
	listing, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", false, err
	}
	next, ok, err := c.parser.NextPage(listing, pageURL)
	if err != nil {
		c.logger.Error("cannot parse pagination", "url", pageURL, "error", err)
		return "", false, nil
	}
	return next, ok, nil
}
