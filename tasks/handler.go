package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rsscat/rsscat/categorizer"
	"github.com/rsscat/rsscat/metrics"
	"github.com/rsscat/rsscat/models"
	"github.com/rsscat/rsscat/store"
)

// Handler classifies one article and writes the label back to its existing row.
type Handler struct {
	store       *store.Store
	categorizer *categorizer.Categorizer
	log         *slog.Logger
}

func NewHandler(st *store.Store, c *categorizer.Categorizer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: st, categorizer: c, log: log}
}

// Handle runs the task to a terminal status. The returned error is also recorded on the
// task row; callers only use it for logging.
func (h *Handler) Handle(ctx context.Context, task Task) error {
	if err := h.store.UpdateTask(ctx, task.ID, models.TaskProcessing, "", ""); err != nil {
		h.log.Warn("Failed to mark task processing", "task_id", task.ID, "error", err)
	}

	category := h.categorizer.Classify(task.Content)

	if err := h.apply(ctx, task, category); err != nil {
		h.finish(ctx, task, models.TaskFailed, "", err.Error())
		metrics.RecordTask(models.TaskFailed, "")
		return err
	}

	h.finish(ctx, task, models.TaskCompleted, category, "")
	metrics.RecordTask(models.TaskCompleted, category)
	return nil
}

func (h *Handler) apply(ctx context.Context, task Task, category string) error {
	articleID := task.ArticleID
	if articleID == 0 {
		a, err := h.store.FindByTitle(ctx, task.Title)
		if err != nil {
			return fmt.Errorf("find article %q: %w", task.Title, err)
		}
		articleID = a.ID
	}

	changed, err := h.store.SetCategory(ctx, articleID, category)
	if err != nil {
		return fmt.Errorf("set category for article %d: %w", articleID, err)
	}
	if !changed {
		h.log.Debug("Article already classified", "article_id", articleID, "task_id", task.ID)
	}
	return nil
}

func (h *Handler) finish(ctx context.Context, task Task, status, category, errMsg string) {
	if err := h.store.UpdateTask(ctx, task.ID, status, category, errMsg); err != nil {
		h.log.Error("Failed to record task result", "task_id", task.ID, "status", status, "error", err)
		return
	}
	h.log.Info("Classification task finished", "task_id", task.ID, "title", task.Title, "status", status, "category", category)
}
