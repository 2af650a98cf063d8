package domain

import (
	"database/sql"
	"time"

	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func convertPrize(p draw.Prize, probability float64) model.Prize {
	return model.Prize{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        string(p.Kind),
		Value:       p.Value,
		Probability: probability,
	}
}

func convertDrawRecord(r draw.DrawRecord) model.DrawRecord {
	return model.DrawRecord{
		ID:        r.ID,
		PrizeID:   r.PrizeID,
		PrizeName: r.PrizeName,
		Value:     r.Value,
		Kind:      string(r.Kind),
		Source:    string(r.Source),
		Cost:      r.Cost,
		CreatedAt: r.CreatedAt,
	}
}

func convertInventoryEntry(e draw.InventoryEntry) model.InventoryItem {
	return model.InventoryItem{
		Prize:      convertPrize(e.Prize, 0),
		Count:      e.Count,
		ObtainedAt: e.ObtainedAt,
	}
}

func convertRewardState(u *draw.UserRewardState, effective draw.MembershipLevel) model.User {
	return model.User{
		ID:              u.UserID,
		Points:          u.PointsBalance,
		MembershipLevel: u.MembershipLevel.String(),
		EffectiveLevel:  effective.String(),
		IsVIPActive:     u.IsVIPActive,
		VIPExpiresAt:    u.VIPExpiresAt,
	}
}

func convertPointTransaction(tx entity.PointTransaction) model.PointTransaction {
	return model.PointTransaction{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Reason:    string(tx.Reason),
		RefID:     tx.RefID,
		CreatedAt: tx.CreatedAt.Format(defaultTimeLayout),
	}
}

func toRewardState(user *entity.User) (*draw.UserRewardState, error) {
	level, err := draw.ParseMembershipLevel(user.MembershipLevel)
	if err != nil {
		return nil, err
	}

	state := &draw.UserRewardState{
		UserID:          user.ID,
		PointsBalance:   user.Points,
		MembershipLevel: level,
		IsVIPActive:     user.IsVIPActive,
	}

	if user.VIPExpiresAt.Valid {
		expiresAt := user.VIPExpiresAt.Time
		state.VIPExpiresAt = &expiresAt
	}

	return state, nil
}

func fromRewardState(state *draw.UserRewardState) *entity.User {
	user := &entity.User{
		Base:            entity.Base{ID: state.UserID},
		Points:          state.PointsBalance,
		MembershipLevel: state.MembershipLevel.String(),
		IsVIPActive:     state.IsVIPActive,
	}

	if state.VIPExpiresAt != nil {
		user.VIPExpiresAt = sql.NullTime{Valid: true, Time: *state.VIPExpiresAt}
	}

	return user
}

func toDrawQuota(q *entity.DrawQuota) *draw.DrawQuota {
	return &draw.DrawQuota{
		FreeSpinsUsedToday: q.FreeSpinsUsedToday,
		LastResetDate:      q.LastResetDate,
	}
}

func fromDrawQuota(userID string, q *draw.DrawQuota) *entity.DrawQuota {
	return &entity.DrawQuota{
		UserID:             userID,
		FreeSpinsUsedToday: q.FreeSpinsUsedToday,
		LastResetDate:      q.LastResetDate,
	}
}

func toInventoryEntry(item entity.InventoryItem) draw.InventoryEntry {
	return draw.InventoryEntry{
		Prize: draw.Prize{
			ID:    item.PrizeID,
			Name:  item.PrizeName,
			Kind:  draw.PrizeKind(item.PrizeKind),
			Value: item.Value,
		},
		Count:      item.Count,
		ObtainedAt: item.ObtainedAt,
	}
}

func fromInventoryEntry(userID string, e draw.InventoryEntry) entity.InventoryItem {
	return entity.InventoryItem{
		UserID:     userID,
		PrizeKind:  string(e.Prize.Kind),
		PrizeID:    e.Prize.ID,
		PrizeName:  e.Prize.Name,
		Value:      e.Prize.Value,
		Count:      e.Count,
		ObtainedAt: e.ObtainedAt,
	}
}

func toDrawRecord(r entity.DrawRecord) draw.DrawRecord {
	return draw.DrawRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		PrizeID:   r.PrizeID,
		PrizeName: r.PrizeName,
		Value:     r.Value,
		Kind:      draw.PrizeKind(r.Kind),
		Source:    draw.DrawSource(r.Source),
		Cost:      r.Cost,
		CreatedAt: r.CreatedAt,
	}
}

func fromDrawRecord(r draw.DrawRecord) *entity.DrawRecord {
	return &entity.DrawRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		PrizeID:   r.PrizeID,
		PrizeName: r.PrizeName,
		Value:     r.Value,
		Kind:      string(r.Kind),
		Source:    string(r.Source),
		Cost:      r.Cost,
		CreatedAt: r.CreatedAt,
	}
}
