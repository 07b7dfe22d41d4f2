package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rsscat/rsscat/metrics"
	"github.com/rsscat/rsscat/models"
	"github.com/rsscat/rsscat/store"
)

// results gives every dispatcher the same view of task outcomes.
type results struct {
	store *store.Store
}

// Result returns the current state of a submitted task.
func (r results) Result(ctx context.Context, taskID string) (*models.ClassificationTask, error) {
	return r.store.GetTask(ctx, taskID)
}

// Wait polls the task every interval until it is completed or failed, or ctx ends.
func (r results) Wait(ctx context.Context, taskID string, interval time.Duration) (*models.ClassificationTask, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *models.ClassificationTask
	for {
		task, err := r.store.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil && last != nil {
				return last, ctx.Err()
			}
			return nil, err
		}
		if task.Done() {
			return task, nil
		}
		last = task
		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Dispatcher submits articles to the Redis stream consumed by Worker.
type Dispatcher struct {
	results
	rdb    *redis.Client
	stream string
	log    *slog.Logger
}

func NewDispatcher(rdb *redis.Client, st *store.Store, stream string, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{results: results{store: st}, rdb: rdb, stream: stream, log: log}
}

// Enqueue records a pending task for the article and appends it to the stream.
func (d *Dispatcher) Enqueue(ctx context.Context, a models.Article) (string, error) {
	task := newTask(uuid.NewString(), a)

	if err := d.store.CreateTask(ctx, &models.ClassificationTask{
		TaskID:       task.ID,
		ArticleID:    a.ID,
		ArticleTitle: a.Title,
		Status:       models.TaskPending,
	}); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	if err := d.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: task.values(),
	}).Err(); err != nil {
		if uerr := d.store.UpdateTask(ctx, task.ID, models.TaskFailed, "", "enqueue: "+err.Error()); uerr != nil {
			d.log.Error("Failed to record enqueue failure", "task_id", task.ID, "error", uerr)
		}
		return "", fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}

	metrics.TasksEnqueuedTotal.Inc()
	return task.ID, nil
}

// Inline classifies in the caller's goroutine; used when no queue is configured.
type Inline struct {
	results
	handler *Handler
}

func NewInline(st *store.Store, h *Handler) *Inline {
	return &Inline{results: results{store: st}, handler: h}
}

// Enqueue runs the task to completion before returning. A classification failure is
// recorded on the task row, not returned.
func (i *Inline) Enqueue(ctx context.Context, a models.Article) (string, error) {
	task := newTask(uuid.NewString(), a)

	if err := i.store.CreateTask(ctx, &models.ClassificationTask{
		TaskID:       task.ID,
		ArticleID:    a.ID,
		ArticleTitle: a.Title,
		Status:       models.TaskPending,
	}); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	metrics.TasksEnqueuedTotal.Inc()
	_ = i.handler.Handle(ctx, task)
	return task.ID, nil
}
