package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *Notifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewNotifier("token123", "-100")
	n.baseURL = srv.URL
	n.client = srv.Client()
	return n
}

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText, gotMode string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, n.PublishDigest(context.Background(), "<b>2 new security articles</b>"))
	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, "-100", gotChat)
	assert.Equal(t, "<b>2 new security articles</b>", gotText)
	assert.Equal(t, "HTML", gotMode)
}

func TestPublishDigestClipsLongMessages(t *testing.T) {
	t.Parallel()

	var gotText string
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
	})

	require.NoError(t, n.PublishDigest(context.Background(), strings.Repeat("я", 5000)))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(gotText))
}

func TestClipCutsAtLineBreak(t *testing.T) {
	t.Parallel()

	line := "- <i>ransomware</i> " + strings.Repeat("x", 80) + "\n"
	digest := strings.Repeat(line, 100)

	clipped := clip(digest, maxMessageRunes)
	assert.LessOrEqual(t, utf8.RuneCountInString(clipped), maxMessageRunes)
	for _, l := range strings.Split(clipped, "\n") {
		assert.Equal(t, strings.Count(l, "<i>"), strings.Count(l, "</i>"), l)
	}
	assert.True(t, strings.HasSuffix(clipped, strings.TrimSuffix(line, "\n")))
}

func TestPublishDigestReportsAPIError(t *testing.T) {
	t.Parallel()

	n := newTestNotifier(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	})

	err := n.PublishDigest(context.Background(), "digest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestPublishDigestSkipsEmptyDigest(t *testing.T) {
	t.Parallel()

	called := false
	n := newTestNotifier(t, func(http.ResponseWriter, *http.Request) { called = true })

	require.NoError(t, n.PublishDigest(context.Background(), "  "))
	assert.False(t, called)
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "chat")
	assert.False(t, n.Enabled())
	assert.ErrorIs(t, n.PublishDigest(context.Background(), "x"), ErrMisconfigured)
}
