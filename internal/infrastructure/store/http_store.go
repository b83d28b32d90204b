package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"SecurityNewsScanner/internal/domain"
	"SecurityNewsScanner/internal/ports"
	"SecurityNewsScanner/internal/retry"
)

var (
	// ErrUnexpectedStatus is returned when a read answers with anything but 200.
	ErrUnexpectedStatus = errors.New("store returned unexpected status")
	// ErrRejected is returned when a write is not acknowledged with 201.
	ErrRejected = errors.New("store rejected article")
)

// HTTPStore reads and writes article records through the dashboard data API.
type HTTPStore struct {
	url    string
	http   *http.Client
	policy retry.Policy
}

var _ ports.ArticleStore = (*HTTPStore)(nil)

// NewHTTPStore wires the API URL. policy applies to reads only; writes are never retried.
func NewHTTPStore(url string, httpClient *http.Client, policy retry.Policy) *HTTPStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPStore{url: url, http: httpClient, policy: policy}
}

// ListTitles downloads every stored record and returns its titles.
func (s *HTTPStore) ListTitles(ctx context.Context) ([]string, error) {
	var records []domain.Record
	err := s.policy.Do(ctx, func(int) error {
		records = nil
		return s.list(ctx, &records)
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	titles := make([]string, 0, len(records))
	for _, record := range records {
		titles = append(titles, record.Title)
	}
	return titles, nil
}

func (s *HTTPStore) list(ctx context.Context, out *[]domain.Record) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode articles: %w", err)
	}
	return nil
}

// Create posts one record; only 201 Created counts as success.
func (s *HTTPStore) Create(ctx context.Context, article domain.Article) error {
	body, err := json.Marshal(article.Record())
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}
	return nil
}
