package entity

import (
	"database/sql"
)

type User struct {
	Base
	Name            string
	Points          int64        `gorm:"not null;default:0"`
	MembershipLevel string       `gorm:"not null;default:guest"`
	IsVIPActive     bool         `gorm:"not null;default:false"`
	VIPExpiresAt    sql.NullTime `gorm:"index"`
}
