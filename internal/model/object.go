package model

import "time"

type Prize struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Value       int64   `json:"value"`
	Probability float64 `json:"probability,omitempty"`
}

type DrawRecord struct {
	ID        string    `json:"id"`
	PrizeID   string    `json:"prize_id"`
	PrizeName string    `json:"prize_name"`
	Value     int64     `json:"value"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Cost      int64     `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

type InventoryItem struct {
	Prize      Prize     `json:"prize"`
	Count      int       `json:"count"`
	ObtainedAt time.Time `json:"obtained_at"`
}

type Quota struct {
	DailySpins         int    `json:"daily_spins"`
	FreeSpinsUsedToday int    `json:"free_spins_used_today"`
	RemainingFreeSpins int    `json:"remaining_free_spins"`
	LastResetDate      string `json:"last_reset_date"`
}

type User struct {
	ID              string     `json:"id"`
	Points          int64      `json:"points"`
	MembershipLevel string     `json:"membership_level"`
	EffectiveLevel  string     `json:"effective_level"`
	IsVIPActive     bool       `json:"is_vip_active"`
	VIPExpiresAt    *time.Time `json:"vip_expires_at,omitempty"`
}
