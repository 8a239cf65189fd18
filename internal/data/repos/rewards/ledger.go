package rewards

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type RewardLedgerRepo interface {
	// GetOrCreate returns the ledger, inserting a zero ledger first when missing.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.RewardLedger, error)
	AddPoints(dbc dbctx.Context, userID uuid.UUID, points int) error
	SetStreak(dbc dbctx.Context, userID uuid.UUID, streak int, lastChallengeDate time.Time) error
}

type rewardLedgerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardLedgerRepo(db *gorm.DB, baseLog *logger.Logger) RewardLedgerRepo {
	return &rewardLedgerRepo{db: db, log: baseLog.With("repo", "RewardLedgerRepo")}
}

func (r *rewardLedgerRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.RewardLedger, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	seed := &types.RewardLedger{UserID: userID}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(seed).Error; err != nil {
		return nil, err
	}
	var out types.RewardLedger
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *rewardLedgerRepo) AddPoints(dbc dbctx.Context, userID uuid.UUID, points int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.RewardLedger{}).
		Where("user_id = ?", userID).
		Update("points", gorm.Expr("points + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rewardLedgerRepo) SetStreak(dbc dbctx.Context, userID uuid.UUID, streak int, lastChallengeDate time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.RewardLedger{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"challenge_streak":    streak,
			"last_challenge_date": lastChallengeDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
