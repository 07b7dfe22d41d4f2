// Package feeds fetches configured RSS/Atom feeds and flattens their entries.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RawArticle is one feed entry before it reaches the store.
type RawArticle struct {
	Title     string
	Content   string
	Published time.Time
	Link      string
	FeedURL   string
}

// FeedResult describes the outcome of reading one feed.
type FeedResult struct {
	URL   string
	Title string
	Items int
	Err   error
}

type Reader struct {
	parser *gofeed.Parser
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Reader)

// WithClock replaces the wall clock used to stamp articles.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// NewReader returns a Reader fetching through client. A nil client gets a 20s timeout.
func NewReader(client *http.Client, opts ...Option) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	fp := gofeed.NewParser()
	fp.Client = client

	r := &Reader{
		parser: fp,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fetches every URL in order. A feed that fails is logged and skipped; the
// returned error joins all per-feed failures and is nil only when every feed succeeded.
// onResult, when non-nil, is called once per URL.
func (r *Reader) Read(ctx context.Context, urls []string, onResult func(FeedResult)) ([]RawArticle, error) {
	var (
		articles []RawArticle
		errs     []error
	)

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		items, title, err := r.ReadFeed(ctx, u)
		if onResult != nil {
			onResult(FeedResult{URL: u, Title: title, Items: len(items), Err: err})
		}
		if err != nil {
			r.log.Error("Error parsing feed", "url", u, "error", err)
			errs = append(errs, fmt.Errorf("feed %s: %w", u, err))
			continue
		}
		r.log.Info("Successfully parsed feed", "url", u, "title", title, "items", len(items))
		articles = append(articles, items...)
	}

	r.log.Info("Feed collection summary", "articles", len(articles), "failed", len(errs), "total", len(urls))
	return articles, errors.Join(errs...)
}

// ReadFeed fetches and parses a single feed URL.
func (r *Reader) ReadFeed(ctx context.Context, feedURL string) ([]RawArticle, string, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, "", err
	}

	articles := make([]RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		article := RawArticle{
			Title:     item.Title,
			Content:   entryContent(item),
			Published: r.now(),
			Link:      strings.TrimSpace(item.Link),
			FeedURL:   feedURL,
		}
		if article.Content == "" {
			r.log.Warn("No content found for article", "title", article.Title, "feed", feedURL)
		}
		articles = append(articles, article)
	}
	return articles, feed.Title, nil
}

// entryContent prefers the summary and falls back to the full content element.
func entryContent(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}
