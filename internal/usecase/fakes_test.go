package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/retry"
)

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	hits   map[string]int
	opened bool
	closed bool
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, hits: map[string]int{}}
}

func (f *fakeFetcher) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
	return nil
}

func (f *fakeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[url]++
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetch %s: %w", url, retry.ErrExhausted)
	}
	return page, nil
}

func (f *fakeFetcher) hitCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[url]
}

type fakeStore struct {
	mu      sync.Mutex
	records []domain.Article
	listErr error
	reject  map[string]bool
}

func (s *fakeStore) ListTitles(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	titles := make([]string, 0, len(s.records))
	for _, r := range s.records {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (s *fakeStore) Create(_ context.Context, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject[article.Title] {
		return errors.New("store said no")
	}
	s.records = append(s.records, article)
	return nil
}

func (s *fakeStore) titles() []string {
	titles, _ := s.ListTitles(context.Background())
	return titles
}

type stubSummarizer struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (s *stubSummarizer) Summarize(_ context.Context, text string, minLen, maxLen int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, text)
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("summary[%d-%d]: %s", minLen, maxLen, strings.Fields(text)[0]), nil
}

func (s *stubSummarizer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

func articlePage(title, date, body string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if title != "" {
		b.WriteString("<h1>" + title + "</h1>")
	}
	if date != "" {
		b.WriteString(`<ul><li class="cz-news-date">` + date + "</li></ul>")
	}
	b.WriteString(`<div class="articleBody">`)
	if body != "" {
		b.WriteString("<p>" + body + "</p>")
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func listingPage(next string, links ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul id="bc-home-news-main-wrap">`)
	for _, link := range links {
		b.WriteString(`<li><h4><a href="` + link + `">story</a></h4></li>`)
	}
	b.WriteString("</ul>")
	if next != "" {
		b.WriteString(`<a aria-label="Next Page" href="` + next + `">Next</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}
