package share

import "time"

// Link is a shareable reference to one detection result. The token is the
// only public handle; the numeric IDs never leave the API.
type Link struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       int64      `gorm:"column:user_id;index" json:"user_id"`
	ResultID     int64      `gorm:"column:result_id" json:"result_id"`
	Token        string     `gorm:"column:token;uniqueIndex" json:"token"`
	Views        int64      `gorm:"column:views" json:"views"`
	LastViewedAt *time.Time `gorm:"column:last_viewed_at" json:"last_viewed_at"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Link) TableName() string { return "share_links" }
