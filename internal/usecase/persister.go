package usecase

import (
	"context"
	"log/slog"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
)

// Persister submits articles to the store and records confirmed titles.
type Persister struct {
	store  ports.ArticleStore
	titles ports.TitleRepository
	logger *slog.Logger
}

// NewPersister wires the store with the shared title repository.
func NewPersister(store ports.ArticleStore, titles ports.TitleRepository, logger *slog.Logger) *Persister {
	return &Persister{store: store, titles: titles, logger: loggerOrDiscard(logger)}
}

// Submit writes one article. The live title set is checked first because
// extractors in the same group only saw the snapshot taken at group start.
// A title is recorded only after the store acknowledged it.
func (p *Persister) Submit(ctx context.Context, article domain.Article) domain.Outcome {
	if p.titles.Contains(article.Title) {
		p.logger.Debug("skip submission", "title", article.Title, "reason", domain.SkipDuplicate)
		return domain.Skipped(article.URL, domain.SkipDuplicate)
	}

	if err := p.store.Create(ctx, article); err != nil {
		p.logger.Error("error saving article", "title", article.Title, "error", err)
		return domain.Skipped(article.URL, domain.SkipPersistFailed)
	}

	p.titles.Record(article.Title)
	p.logger.Info("article saved", "title", article.Title, "category", article.Category)
	return domain.Kept(article.URL, article)
}
