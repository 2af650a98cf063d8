package model

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}

type CreditPointsRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
	RefID  string `json:"ref_id"`
}

type CreditPointsResponse struct {
	PointsBalance int64 `json:"points_balance"`
}

type UpdateMembershipRequest struct {
	UserID string `json:"user_id"`
	Level  string `json:"level"`
}

type UpdateMembershipResponse struct{}

type GetPointTransactionsRequest struct {
	Offset int `json:"offset" form:"offset"`
	Limit  int `json:"limit" form:"limit"`
}

type PointTransaction struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	RefID     string `json:"ref_id"`
	CreatedAt string `json:"created_at"`
}

type GetPointTransactionsResponse struct {
	Transactions []PointTransaction `json:"transactions"`
}
