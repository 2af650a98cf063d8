package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/entity"
	"github.com/questx-lab/luckydraw/internal/repository"
	"gorm.io/gorm"
)

var errInsufficientStoredPoints = errors.New("stored balance does not cover the debit")

// sessionStore moves draw sessions between the database and the engine. A
// missing row always means the state of a user who never played.
type sessionStore struct {
	userRepo       repository.UserRepository
	quotaRepo      repository.DrawQuotaRepository
	inventoryRepo  repository.InventoryRepository
	drawRecordRepo repository.DrawRecordRepository
	historyLimit   int
}

func newSessionStore(
	userRepo repository.UserRepository,
	quotaRepo repository.DrawQuotaRepository,
	inventoryRepo repository.InventoryRepository,
	drawRecordRepo repository.DrawRecordRepository,
	historyLimit int,
) *sessionStore {
	return &sessionStore{
		userRepo:       userRepo,
		quotaRepo:      quotaRepo,
		inventoryRepo:  inventoryRepo,
		drawRecordRepo: drawRecordRepo,
		historyLimit:   historyLimit,
	}
}

// loadUser returns the reward state of the user. With forUpdate, the user row
// is locked and created when missing, so it must run inside a transaction.
func (s *sessionStore) loadUser(ctx context.Context, userID string, forUpdate bool) (*draw.UserRewardState, error) {
	var user *entity.User
	var err error
	if forUpdate {
		user, err = s.userRepo.GetByIDForUpdate(ctx, userID)
	} else {
		user, err = s.userRepo.GetByID(ctx, userID)
	}

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user = &entity.User{
			Base:            entity.Base{ID: userID},
			MembershipLevel: draw.MembershipGuest.String(),
		}

		if forUpdate {
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	return toRewardState(user)
}

func (s *sessionStore) load(ctx context.Context, userID string, forUpdate bool) (*draw.Session, error) {
	user, err := s.loadUser(ctx, userID, forUpdate)
	if err != nil {
		return nil, err
	}

	session := draw.NewSession(user)

	quota, err := s.quotaRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		session.Quota = toDrawQuota(quota)
	}

	items, err := s.inventoryRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]draw.InventoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, toInventoryEntry(item))
	}
	session.Inventory = draw.NewInventory(entries...)

	records, err := s.drawRecordRepo.GetRecentByUserID(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	history := make([]draw.DrawRecord, 0, len(records))
	for _, r := range records {
		history = append(history, toDrawRecord(r))
	}
	session.History = draw.NewHistory(s.historyLimit, history...)

	return session, nil
}

// save writes the VIP state, quota and inventory of the session. The balance
// is moved with savePoints and history records are written one by one with
// saveRecord.
func (s *sessionStore) save(ctx context.Context, session *draw.Session) error {
	userID := session.User.UserID
	if err := s.userRepo.UpdateVIPState(ctx, fromRewardState(session.User)); err != nil {
		return err
	}

	if err := s.quotaRepo.Upsert(ctx, fromDrawQuota(userID, session.Quota)); err != nil {
		return err
	}

	entries := session.Inventory.Entries()
	items := make([]entity.InventoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, fromInventoryEntry(userID, e))
	}

	return s.inventoryRepo.ReplaceByUserID(ctx, userID, items)
}

// savePoints debits then credits the stored balance of the user. The debit is
// conditional, a balance that no longer covers it fails with
// errInsufficientStoredPoints.
func (s *sessionStore) savePoints(ctx context.Context, userID string, debit, credit int64) error {
	if debit > 0 {
		if err := s.userRepo.DecreasePoints(ctx, userID, debit); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInsufficientStoredPoints
			}
			return err
		}
	}

	if credit > 0 {
		if err := s.userRepo.IncreasePoints(ctx, userID, credit); err != nil {
			return err
		}
	}

	return nil
}

func (s *sessionStore) saveRecord(ctx context.Context, record draw.DrawRecord) error {
	return s.drawRecordRepo.Create(ctx, fromDrawRecord(record), s.historyLimit)
}
