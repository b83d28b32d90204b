package usecase

import (
	"context"
	"log/slog"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/summarize"
)

// SummaryBounds limits summarizer input and output.
type SummaryBounds struct {
	MaxInput  int
	MinLength int
	MaxLength int
}

// ExtractorDeps wires the collaborators used to turn a URL into an article.
type ExtractorDeps struct {
	Fetcher    ports.Fetcher
	Parser     ports.PageParser
	Classifier ports.Classifier
	Summarizer ports.Summarizer
	Bounds     SummaryBounds
	Source     string
	Logger     *slog.Logger
}

// Extractor fetches one article page and produces a tagged outcome.
type Extractor struct {
	fetcher    ports.Fetcher
	parser     ports.PageParser
	classifier ports.Classifier
	summarizer ports.Summarizer
	bounds     SummaryBounds
	source     string
	logger     *slog.Logger
}

// NewExtractor constructs the extraction stage.
func NewExtractor(deps ExtractorDeps) *Extractor {
	return &Extractor{
		fetcher:    deps.Fetcher,
		parser:     deps.Parser,
		classifier: deps.Classifier,
		summarizer: deps.Summarizer,
		bounds:     deps.Bounds,
		source:     deps.Source,
		logger:     loggerOrDiscard(deps.Logger),
	}
}

// ExtractArticle never returns an error: every failure becomes a skip reason.
// The title check runs before summarization so known articles cost no model call.
func (e *Extractor) ExtractArticle(ctx context.Context, url string, seen ports.TitleView) domain.Outcome {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn("skip article", "url", url, "reason", domain.SkipFetchFailed, "error", err)
		return domain.Skipped(url, domain.SkipFetchFailed)
	}

	parsed, err := e.parser.Article(page)
	if err != nil {
		e.logger.Error("error processing article", "url", url, "error", err)
		return domain.Skipped(url, domain.SkipMissingFields)
	}

	if parsed.Title != "" && seen != nil && seen.Contains(parsed.Title) {
		e.logger.Debug("skip article", "url", url, "reason", domain.SkipAlreadySeen)
		return domain.Skipped(url, domain.SkipAlreadySeen)
	}

	if parsed.Title == "" || parsed.Date == "" || parsed.Body == "" {
		e.logger.Debug("skip article", "url", url, "reason", domain.SkipMissingFields)
		return domain.Skipped(url, domain.SkipMissingFields)
	}

	category, ok := e.classifier.Classify(parsed.Body)
	if !ok {
		e.logger.Debug("skip article", "url", url, "reason", domain.SkipUnclassified)
		return domain.Skipped(url, domain.SkipUnclassified)
	}

	input := summarize.Truncate(parsed.Body, e.bounds.MaxInput)
	summary, err := e.summarizer.Summarize(ctx, input, e.bounds.MinLength, e.bounds.MaxLength)
	if err != nil {
		e.logger.Error("summarize failed", "url", url, "error", err)
		return domain.Skipped(url, domain.SkipSummarizeFailed)
	}

	return domain.Kept(url, domain.Article{
		Title:    parsed.Title,
		Date:     parsed.Date,
		Category: category,
		Summary:  summary,
		Source:   e.source,
		URL:      url,
	})
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
