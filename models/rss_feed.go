package models

import (
	"time"

	"gorm.io/gorm"
)

// RSSFeed mirrors one configured feed URL and the outcome of its last fetch.
type RSSFeed struct {
	gorm.Model
	Name        string
	URL         string `gorm:"uniqueIndex"`
	Active      bool   `gorm:"default:true"`
	LastFetched *time.Time
	LastError   string
	LastItems   int
}
