package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rsscat/rsscat/config"
	"github.com/rsscat/rsscat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := config.OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func article(title, content string) models.Article {
	return models.Article{
		Title:     title,
		Content:   content,
		Published: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Link:      "http://example.com/" + title,
	}
}

func TestStore_InsertsUnclassified(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows, inserted, err := s.Store(ctx, []models.Article{
		article("flood", "a massive flood hit the coast"),
		article("empty", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	require.Len(t, rows, 2)
	assert.NotZero(t, rows[0].ID)

	all, err := s.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "flood", all[0].Title)
	assert.Equal(t, "a massive flood hit the coast", all[0].Content)
	assert.Equal(t, "", all[0].Category)
	assert.Equal(t, "", all[1].Content)
}

func TestStore_DedupByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []models.Article{article("one", "x"), article("two", "y")}
	_, inserted, err := s.Store(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	rows, inserted, err := s.Store(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Len(t, rows, 2)

	all, err := s.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_DuplicateTitlesInBatch(t *testing.T) {
	s := newTestStore(t)

	rows, inserted, err := s.Store(context.Background(), []models.Article{
		article("same", "from feed a"),
		article("same", "from feed b"),
		article("other", "from feed a"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	require.Len(t, rows, 2)
	assert.Equal(t, "from feed a", rows[0].Content)
}

func TestStore_SameContentDifferentTitles(t *testing.T) {
	s := newTestStore(t)

	_, inserted, err := s.Store(context.Background(), []models.Article{
		article("a", "identical"),
		article("b", "identical"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestStore_IgnoresIncomingCategory(t *testing.T) {
	s := newTestStore(t)
	a := article("labelled", "riot")
	a.Category = "Others"

	rows, _, err := s.Store(context.Background(), []models.Article{a})
	require.NoError(t, err)
	assert.False(t, rows[0].Classified())
}

func TestSetCategory_OnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows, _, err := s.Store(ctx, []models.Article{article("quake", "earthquake")})
	require.NoError(t, err)
	id := rows[0].ID

	changed, err := s.SetCategory(ctx, id, "Natural Disasters")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SetCategory(ctx, id, "Others")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.FindByTitle(ctx, "quake")
	require.NoError(t, err)
	assert.Equal(t, "Natural Disasters", got.Category)

	all, err := s.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetCategory_MissingArticle(t *testing.T) {
	s := newTestStore(t)
	changed, err := s.SetCategory(context.Background(), 999, "Others")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, changed)
}

func TestStore_TitleMatchIsExact(t *testing.T) {
	s := newTestStore(t)

	_, inserted, err := s.Store(context.Background(), []models.Article{
		article("Title", "x"),
		article(" Title ", "y"),
		article("title", "z"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
}

func TestFindByTitle_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.FindByTitle(context.Background(), "nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestQueryAll_Empty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFeeds_EnsureAndMark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	feeds := []models.RSSFeed{
		{Name: "A", URL: "http://a.example/rss"},
		{Name: "B", URL: "http://b.example/rss"},
	}
	require.NoError(t, s.EnsureFeeds(ctx, feeds))
	require.NoError(t, s.EnsureFeeds(ctx, feeds))

	require.NoError(t, s.MarkFeedFetched(ctx, "http://a.example/rss", 3, nil))
	require.NoError(t, s.MarkFeedFetched(ctx, "http://b.example/rss", 0, errors.New("timeout")))

	got, err := s.ListFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Active)
	assert.Equal(t, 3, got[0].LastItems)
	assert.Empty(t, got[0].LastError)
	assert.NotNil(t, got[0].LastFetched)
	assert.Equal(t, "timeout", got[1].LastError)
}

func TestTasks_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.ClassificationTask{TaskID: "t-1", ArticleID: 1, ArticleTitle: "quake"}
	require.NoError(t, s.CreateTask(ctx, task))

	got, err := s.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, got.Status)
	assert.False(t, got.Done())

	require.NoError(t, s.UpdateTask(ctx, "t-1", models.TaskCompleted, "Natural Disasters", ""))
	got, err = s.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.True(t, got.Done())
	assert.Equal(t, "Natural Disasters", got.Category)
	assert.NotNil(t, got.CompletedAt)

	_, err = s.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, s.UpdateTask(ctx, "missing", models.TaskFailed, "", "x"), ErrTaskNotFound)
}
