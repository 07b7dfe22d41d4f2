package feeds

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rsscat/rsscat/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Coast News</title>
    <link>http://example.com/</link>
    <description>news</description>
    <item>
      <title>Flood</title>
      <link>http://example.com/flood</link>
      <description>a massive flood hit the coast</description>
    </item>
    <item>
      <title>No Summary</title>
      <link>http://example.com/empty</link>
    </item>
    <item>
      <title>No Link</title>
      <description>local bakery makes everyone happy</description>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Wire</title>
  <id>urn:wire</id>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Quake</title>
    <id>urn:wire:1</id>
    <link href="http://example.com/quake"/>
    <updated>2024-01-01T00:00:00Z</updated>
    <content type="text">earthquake in the hills</content>
  </entry>
</feed>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssDoc))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomDoc))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestReadFeed_RSS(t *testing.T) {
	srv := newFeedServer(t)
	var logs bytes.Buffer
	r := NewReader(srv.Client(), WithClock(fixedClock), WithLogger(logger.New(&logs, "info", "text")))

	items, title, err := r.ReadFeed(context.Background(), srv.URL+"/rss")
	require.NoError(t, err)
	assert.Equal(t, "Coast News", title)
	require.Len(t, items, 3)

	assert.Equal(t, "Flood", items[0].Title)
	assert.Equal(t, "a massive flood hit the coast", items[0].Content)
	assert.Equal(t, "http://example.com/flood", items[0].Link)
	assert.Equal(t, fixedClock(), items[0].Published)
	assert.Equal(t, srv.URL+"/rss", items[0].FeedURL)

	assert.Equal(t, "", items[1].Content)
	assert.Contains(t, logs.String(), "No content found for article")
	assert.Contains(t, logs.String(), "No Summary")

	assert.Equal(t, "", items[2].Link)
	assert.Equal(t, "local bakery makes everyone happy", items[2].Content)
}

func TestReadFeed_AtomFallsBackToContent(t *testing.T) {
	srv := newFeedServer(t)
	r := NewReader(srv.Client(), WithClock(fixedClock))

	items, title, err := r.ReadFeed(context.Background(), srv.URL+"/atom")
	require.NoError(t, err)
	assert.Equal(t, "Atom Wire", title)
	require.Len(t, items, 1)
	assert.Equal(t, "Quake", items[0].Title)
	assert.Equal(t, "earthquake in the hills", items[0].Content)
	assert.Equal(t, "http://example.com/quake", items[0].Link)
}

func TestRead_SkipsFailingFeed(t *testing.T) {
	srv := newFeedServer(t)
	r := NewReader(srv.Client(), WithClock(fixedClock), WithLogger(logger.New(&bytes.Buffer{}, "info", "text")))

	var results []FeedResult
	urls := []string{srv.URL + "/rss", srv.URL + "/broken", srv.URL + "/atom"}
	items, err := r.Read(context.Background(), urls, func(res FeedResult) {
		results = append(results, res)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/broken")
	require.Len(t, items, 4)
	assert.Equal(t, "Flood", items[0].Title)
	assert.Equal(t, "Quake", items[3].Title)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 3, results[0].Items)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, results[2].Items)
}

func TestRead_AllSucceed(t *testing.T) {
	srv := newFeedServer(t)
	r := NewReader(srv.Client(), WithClock(fixedClock), WithLogger(logger.New(&bytes.Buffer{}, "info", "text")))

	items, err := r.Read(context.Background(), []string{srv.URL + "/atom"}, nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRead_CancelledContext(t *testing.T) {
	srv := newFeedServer(t)
	r := NewReader(srv.Client(), WithLogger(logger.New(&bytes.Buffer{}, "info", "text")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := r.Read(ctx, []string{srv.URL + "/rss"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, items)
}
