package models

import (
	"time"

	"gorm.io/gorm"
)

// Article is a feed entry. Category stays empty until the categorizer has run.
type Article struct {
	gorm.Model
	Title     string
	Content   string
	Published time.Time
	Link      string
	Category  string
}

// Classified reports whether the categorizer has already labelled the article.
func (a Article) Classified() bool {
	return a.Category != ""
}
