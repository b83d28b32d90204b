package ports

import (
	"context"
	"time"

	"SecurityNewsScanner/internal/domain"
)

// Fetcher retrieves the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchSession is a Fetcher whose shared connection resource is scoped to a run.
type FetchSession interface {
	Fetcher
	Open() error
	Close() error
}

// ArticleStore is the remote source of truth for ingested articles.
type ArticleStore interface {
	ListTitles(ctx context.Context) ([]string, error)
	Create(ctx context.Context, article domain.Article) error
}

// TitleView is a read-only view of known titles.
type TitleView interface {
	Contains(title string) bool
}

// TitleRepository tracks titles already present in the store.
// Snapshot returns a view frozen at call time; Record never affects earlier snapshots.
type TitleRepository interface {
	TitleView
	Seed(titles []string)
	Record(title string)
	Snapshot() TitleView
	Len() int
}

// Classifier maps article text to an attack category.
type Classifier interface {
	Classify(text string) (domain.Category, bool)
}

// Summarizer condenses text into a summary bounded by minLen and maxLen.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// PageParser reads listing and article markup using a site layout.
type PageParser interface {
	Links(page, base string) ([]string, error)
	NextPage(page, base string) (string, bool, error)
	Article(page string) (domain.ParsedArticle, error)
}
