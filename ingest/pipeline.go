// Package ingest wires feed reading, storage and classification dispatch together.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsscat/rsscat/feeds"
	"github.com/rsscat/rsscat/metrics"
	"github.com/rsscat/rsscat/models"
	"github.com/rsscat/rsscat/store"
)

// Dispatcher hands an article to the categorizer and returns a task ID.
type Dispatcher interface {
	Enqueue(ctx context.Context, a models.Article) (string, error)
}

// Report summarises one ingestion run.
type Report struct {
	Read       int
	Inserted   int
	Dispatched int
	FeedErrors error
	Err        error
}

type Pipeline struct {
	reader     *feeds.Reader
	store      *store.Store
	dispatcher Dispatcher
	urls       []string
	log        *slog.Logger
}

func NewPipeline(r *feeds.Reader, st *store.Store, d Dispatcher, urls []string, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{reader: r, store: st, dispatcher: d, urls: urls, log: log}
}

// Run reads every feed, stores new articles and dispatches each unclassified one.
// Failures are caught here and logged once; the Report carries them for callers.
func (p *Pipeline) Run(ctx context.Context) Report {
	start := time.Now()
	defer func() { metrics.IngestionDuration.Observe(time.Since(start).Seconds()) }()

	report, err := p.run(ctx)
	if err != nil {
		report.Err = err
		p.log.Error("Error occurred during ingestion", "error", err)
		return report
	}

	p.log.Info("Ingestion finished",
		"read", report.Read,
		"inserted", report.Inserted,
		"dispatched", report.Dispatched,
		"feed_errors", report.FeedErrors != nil,
		"duration", time.Since(start))
	return report
}

func (p *Pipeline) run(ctx context.Context) (Report, error) {
	var report Report

	raw, feedErr := p.reader.Read(ctx, p.urls, func(res feeds.FeedResult) {
		metrics.RecordFeedFetch(res.Err == nil)
		if err := p.store.MarkFeedFetched(ctx, res.URL, res.Items, res.Err); err != nil {
			p.log.Warn("Failed to record feed fetch", "url", res.URL, "error", err)
		}
	})
	report.Read = len(raw)
	report.FeedErrors = feedErr
	if len(raw) == 0 && feedErr != nil {
		return report, fmt.Errorf("read feeds: %w", feedErr)
	}

	articles := make([]models.Article, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, models.Article{
			Title:     r.Title,
			Content:   r.Content,
			Published: r.Published,
			Link:      r.Link,
		})
	}

	rows, inserted, err := p.store.Store(ctx, articles)
	if err != nil {
		return report, fmt.Errorf("store articles: %w", err)
	}
	report.Inserted = inserted
	metrics.ArticlesInsertedTotal.Add(float64(inserted))

	var errs []error
	for _, row := range rows {
		if row.Classified() {
			continue
		}
		if _, err := p.dispatcher.Enqueue(ctx, row); err != nil {
			errs = append(errs, err)
			continue
		}
		report.Dispatched++
	}
	if len(errs) > 0 {
		return report, fmt.Errorf("dispatch articles: %w", errors.Join(errs...))
	}
	return report, nil
}

// Loop runs the pipeline every interval until ctx is cancelled. It does not run
// immediately; callers run the first pass themselves.
func (p *Pipeline) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Run(ctx)
		}
	}
}

// EnsureFeeds mirrors the configured feeds into the database.
func (p *Pipeline) EnsureFeeds(ctx context.Context, feedList []models.RSSFeed) error {
	return p.store.EnsureFeeds(ctx, feedList)
}
