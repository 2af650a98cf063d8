package model

import "time"

type DrawRequest struct{}

type DrawResponse struct {
	Prize              Prize      `json:"prize"`
	Record             DrawRecord `json:"record"`
	PointsCredited     int64      `json:"points_credited"`
	StoredInInventory  bool       `json:"stored_in_inventory"`
	RemainingFreeSpins int        `json:"remaining_free_spins"`
	PointsBalance      int64      `json:"points_balance"`
}

type GetQuotaRequest struct{}

type GetQuotaResponse struct {
	Quota      Quota `json:"quota"`
	User       User  `json:"user"`
	PointsCost int64 `json:"points_cost"`
}

type GetInventoryRequest struct{}

type GetInventoryResponse struct {
	Items []InventoryItem `json:"items"`
}

type ConsumeItemRequest struct {
	PrizeKind string `json:"prize_kind"`
	PrizeID   string `json:"prize_id"`
}

type ConsumeItemResponse struct {
	VIPExpiresAt       *time.Time `json:"vip_expires_at,omitempty"`
	FreeSpinsRestored  int        `json:"free_spins_restored"`
	RemainingFreeSpins int        `json:"remaining_free_spins"`
}

type GetDrawHistoryRequest struct {
	Limit int `json:"limit" form:"limit"`
}

type GetDrawHistoryResponse struct {
	Records []DrawRecord `json:"records"`
}

type GetPrizesRequest struct{}

type GetPrizesResponse struct {
	Prizes     []Prize `json:"prizes"`
	PointsCost int64   `json:"points_cost"`
}
