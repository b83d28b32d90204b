package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/retry"
)

// ArticleExtractor turns one link into an outcome.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, url string, seen ports.TitleView) domain.Outcome
}

// ArticleSubmitter persists one extracted article.
type ArticleSubmitter interface {
	Submit(ctx context.Context, article domain.Article) domain.Outcome
}

// BatchDeps wires the batch runner.
type BatchDeps struct {
	Extractor ArticleExtractor
	Submitter ArticleSubmitter
	Titles    ports.TitleRepository
	Size      int
	Delay     time.Duration
	Logger    *slog.Logger
}

// BatchRunner processes links in fixed-size groups with bounded concurrency.
type BatchRunner struct {
	extractor ArticleExtractor
	submitter ArticleSubmitter
	titles    ports.TitleRepository
	size      int
	delay     time.Duration
	logger    *slog.Logger
}

// NewBatchRunner validates the group size.
func NewBatchRunner(deps BatchDeps) (*BatchRunner, error) {
	if deps.Size < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", deps.Size)
	}
	if deps.Extractor == nil || deps.Submitter == nil || deps.Titles == nil {
		return nil, fmt.Errorf("batch runner requires extractor, submitter and titles")
	}
	return &BatchRunner{
		extractor: deps.Extractor,
		submitter: deps.Submitter,
		titles:    deps.Titles,
		size:      deps.Size,
		delay:     deps.Delay,
		logger:    loggerOrDiscard(deps.Logger),
	}, nil
}

// RunBatch returns one final outcome per link, in link order. Within a group
// at most Size extractions are in flight; submissions then run sequentially,
// and the runner pauses for Delay after every group. The only error is
// context cancellation, returned with the outcomes gathered so far.
func (b *BatchRunner) RunBatch(ctx context.Context, links []string) ([]domain.Outcome, error) {
	outcomes := make([]domain.Outcome, 0, len(links))

	for start := 0; start < len(links); start += b.size {
		end := min(start+b.size, len(links))
		group := links[start:end]

		results := b.extractGroup(ctx, group)
		for _, result := range results {
			if result.IsKept() {
				result = b.submitter.Submit(ctx, result.Article)
			}
			outcomes = append(outcomes, result)
		}

		b.logger.Debug("batch group done", "from", start, "to", end, "known_titles", b.titles.Len())

		if err := retry.Sleep(ctx, b.delay); err != nil {
			return outcomes, err
		}
	}

	return outcomes, nil
}

func (b *BatchRunner) extractGroup(ctx context.Context, group []string) []domain.Outcome {
	seen := b.titles.Snapshot()
	results := make([]domain.Outcome, len(group))

	var g errgroup.Group
	g.SetLimit(b.size)
	for i, link := range group {
		g.Go(func() error {
			results[i] = b.extractor.ExtractArticle(ctx, link, seen)
			return nil
		})
	}
	g.Wait()

	return results
}
