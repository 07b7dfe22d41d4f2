// Package store persists articles, feed bookkeeping and classification tasks.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rsscat/rsscat/models"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("classification task not found")

// Store wraps an explicitly opened database handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Store inserts every article whose title is not stored yet, leaving its category unset,
// and commits once for the whole batch. It returns the row behind each distinct title in
// the batch, whether it was just inserted or already present, plus the number inserted.
func (s *Store) Store(ctx context.Context, articles []models.Article) ([]models.Article, int, error) {
	var (
		rows     []models.Article
		inserted int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[string]bool, len(articles))
		for _, a := range articles {
			if seen[a.Title] {
				continue
			}
			seen[a.Title] = true

			var existing models.Article
			err := tx.Where("title = ?", a.Title).First(&existing).Error
			if err == nil {
				rows = append(rows, existing)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("look up %q: %w", a.Title, err)
			}

			row := models.Article{
				Title:     a.Title,
				Content:   a.Content,
				Published: a.Published,
				Link:      a.Link,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert %q: %w", a.Title, err)
			}
			rows = append(rows, row)
			inserted++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, inserted, nil
}

// QueryAll returns every stored article in insertion order.
func (s *Store) QueryAll(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).Order("id").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// FindByTitle returns gorm.ErrRecordNotFound when no article has that exact title.
func (s *Store) FindByTitle(ctx context.Context, title string) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).Where("title = ?", title).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// SetCategory labels an article that has no category yet. It reports false when the
// article was already labelled, so a category is written at most once, and returns
// gorm.ErrRecordNotFound when no article has that ID.
func (s *Store) SetCategory(ctx context.Context, id uint, category string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ? AND (category = '' OR category IS NULL)", id).
		Update("category", category)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var existing models.Article
	if err := s.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&existing).Error; err != nil {
		return false, err
	}
	return false, nil
}

// EnsureFeeds creates or reactivates a row per configured feed.
func (s *Store) EnsureFeeds(ctx context.Context, feeds []models.RSSFeed) error {
	for _, f := range feeds {
		feed := models.RSSFeed{
			Name: f.Name,
			URL:  f.URL,
		}
		if err := s.db.WithContext(ctx).
			Where("url = ?", f.URL).
			Assign(models.RSSFeed{Name: f.Name, Active: true}).
			FirstOrCreate(&feed).Error; err != nil {
			return fmt.Errorf("ensure feed %s: %w", f.URL, err)
		}
	}
	return nil
}

// MarkFeedFetched records the outcome of the latest fetch of url.
func (s *Store) MarkFeedFetched(ctx context.Context, url string, items int, fetchErr error) error {
	now := time.Now()
	lastError := ""
	if fetchErr != nil {
		lastError = fetchErr.Error()
	}
	return s.db.WithContext(ctx).Model(&models.RSSFeed{}).
		Where("url = ?", url).
		Updates(map[string]any{
			"last_fetched": &now,
			"last_error":   lastError,
			"last_items":   items,
		}).Error
}

func (s *Store) ListFeeds(ctx context.Context) ([]models.RSSFeed, error) {
	var feeds []models.RSSFeed
	if err := s.db.WithContext(ctx).Order("id").Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}
