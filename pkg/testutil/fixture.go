package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/repository"
)

var (
	// User1 is a guest without points.
	User1 = &entity.User{
		Base:            entity.Base{ID: "user1"},
		Name:            "user1",
		MembershipLevel: "guest",
	}

	// User2 is a silver member with enough points for a few paid draws.
	User2 = &entity.User{
		Base:            entity.Base{ID: "user2"},
		Name:            "user2",
		Points:          200,
		MembershipLevel: "silver",
	}

	// User3 is a guest whose VIP trial expired.
	User3 = &entity.User{
		Base:            entity.Base{ID: "user3"},
		Name:            "user3",
		MembershipLevel: "guest",
		IsVIPActive:     true,
		VIPExpiresAt:    sql.NullTime{Valid: true, Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	Users = []*entity.User{User1, User2, User3}
)

// CreateFixtureDb inserts the fixture users into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		user := *u
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}
