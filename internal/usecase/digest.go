package usecase

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"SecurityNewsScanner/internal/domain"
)

// BuildDigest renders an HTML digest of the articles persisted in a run.
// Scraped text is escaped and every tag opens and closes on the same line.
func BuildDigest(report *domain.Report) string {
	if report == nil || len(report.Persisted) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d new security articles</b> (%d pages scanned)\n\n", len(report.Persisted), report.Pages)
	for _, article := range report.Persisted {
		fmt.Fprintf(&b, "- %s\n<i>%s</i> · %s\n%s\n\n",
			html.EscapeString(article.Title),
			html.EscapeString(string(article.Category)),
			html.EscapeString(article.Date),
			html.EscapeString(article.Summary))
	}

	if len(report.Skipped) > 0 {
		reasons := make([]string, 0, len(report.Skipped))
		for reason := range report.Skipped {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		b.WriteString("Skipped:")
		for _, reason := range reasons {
			fmt.Fprintf(&b, " %s=%d", reason, report.Skipped[domain.SkipReason(reason)])
		}
		b.WriteString("\n")
	}

	return b.String()
}
