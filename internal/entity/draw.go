package entity

import (
	"time"
)

type DrawQuota struct {
	UserID             string `gorm:"primarykey"`
	FreeSpinsUsedToday int    `gorm:"not null;default:0"`
	LastResetDate      string `gorm:"size:10"`
	UpdatedAt          time.Time
}

func (DrawQuota) TableName() string {
	return "draw_quotas"
}

// InventoryItem keeps a copy of the prize so that an item stays usable after
// the catalog changes.
type InventoryItem struct {
	UserID     string `gorm:"primarykey"`
	PrizeKind  string `gorm:"primarykey;size:32"`
	PrizeID    string `gorm:"primarykey;size:64"`
	PrizeName  string
	Value      int64
	Count      int
	ObtainedAt time.Time
}

type DrawRecord struct {
	ID        string `gorm:"primarykey"`
	UserID    string `gorm:"index:idx_draw_records_user_id_created_at"`
	PrizeID   string
	PrizeName string
	Value     int64
	Kind      string
	Source    string
	Cost      int64
	CreatedAt time.Time `gorm:"index:idx_draw_records_user_id_created_at"`
}
