package entity

import (
	"time"

	"github.com/questx-lab/luckydraw/pkg/enum"
)

type PointReason string

var (
	PointReasonAd    = enum.New(PointReason("ad"))
	PointReasonTask  = enum.New(PointReason("task"))
	PointReasonGame  = enum.New(PointReason("game"))
	PointReasonAdmin = enum.New(PointReason("admin"))
	PointReasonDraw  = enum.New(PointReason("draw"))
)

// PointTransaction is one line of the points ledger. Amount is negative for
// debits.
type PointTransaction struct {
	ID        string `gorm:"primarykey"`
	UserID    string `gorm:"index"`
	Amount    int64
	Reason    PointReason
	RefID     string
	CreatedAt time.Time
}
