package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewsItem is an announcement managed by admins. Items flagged for the home
// page are served on the public news feed.
type NewsItem struct {
	ID                 string         `json:"id" gorm:"primaryKey;size:255"`
	Title              string         `json:"title" gorm:"not null;size:300"`
	Content            string         `json:"content" gorm:"not null;type:text"`
	Tags               datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	HomePageVisibility bool           `json:"home_page_visibility" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NewsItem) TableName() string {
	return "latest_news"
}

func (n *NewsItem) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
