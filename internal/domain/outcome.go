package domain

// SkipReason explains why a link did not produce a stored article.
type SkipReason string

const (
	SkipFetchFailed     SkipReason = "fetch_failed"
	SkipAlreadySeen     SkipReason = "already_seen"
	SkipMissingFields   SkipReason = "missing_fields"
	SkipUnclassified    SkipReason = "unclassified"
	SkipSummarizeFailed SkipReason = "summarize_failed"
	SkipDuplicate       SkipReason = "duplicate"
	SkipPersistFailed   SkipReason = "persist_failed"
)

// Outcome is either a kept article or a skip with its reason.
type Outcome struct {
	URL     string
	Article Article
	Reason  SkipReason
}

// Kept wraps a successfully produced article.
func Kept(url string, article Article) Outcome {
	return Outcome{URL: url, Article: article}
}

// Skipped records that url was dropped for reason.
func Skipped(url string, reason SkipReason) Outcome {
	return Outcome{URL: url, Reason: reason}
}

// IsKept reports whether the outcome carries an article.
func (o Outcome) IsKept() bool {
	return o.Reason == ""
}

// Report aggregates the result of one crawl run.
type Report struct {
	Pages     int
	Links     int
	Persisted []Article
	Skipped   map[SkipReason]int
	// Aborted is set when a listing page could not be fetched.
	Aborted bool
}

// NewReport returns an empty report ready for counting.
func NewReport() *Report {
	return &Report{Skipped: map[SkipReason]int{}}
}

// Add folds a single outcome into the report.
func (r *Report) Add(o Outcome) {
	if o.IsKept() {
		r.Persisted = append(r.Persisted, o.Article)
		return
	}
	r.Skipped[o.Reason]++
}
