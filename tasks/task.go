// Package tasks hands articles to classification workers and tracks each unit of work.
package tasks

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rsscat/rsscat/models"
)

var errMalformedTask = errors.New("malformed task message")

// Task is the payload carried on the stream for one article.
type Task struct {
	ID        string
	ArticleID uint
	Title     string
	Content   string
}

func newTask(id string, a models.Article) Task {
	return Task{ID: id, ArticleID: a.ID, Title: a.Title, Content: a.Content}
}

func (t Task) values() map[string]interface{} {
	return map[string]interface{}{
		"task_id":    t.ID,
		"article_id": strconv.FormatUint(uint64(t.ArticleID), 10),
		"title":      t.Title,
		"content":    t.Content,
	}
}

func taskFromValues(values map[string]interface{}) (Task, error) {
	str := func(key string) string {
		v, _ := values[key].(string)
		return v
	}

	t := Task{
		ID:      str("task_id"),
		Title:   str("title"),
		Content: str("content"),
	}
	if t.ID == "" {
		return Task{}, fmt.Errorf("%w: missing task_id", errMalformedTask)
	}
	if raw := str("article_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Task{}, fmt.Errorf("%w: article_id %q", errMalformedTask, raw)
		}
		t.ArticleID = uint(id)
	}
	return t, nil
}
