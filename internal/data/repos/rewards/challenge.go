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

type DailyChallengeRepo interface {
	// GetByUser returns (nil, nil) when the user has no challenge row.
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.DailyChallenge, error)
	// Upsert replaces the user's challenge row.
	Upsert(dbc dbctx.Context, ch *types.DailyChallenge) error
	UpdateProgress(dbc dbctx.Context, userID uuid.UUID, progress int, completed bool, completedAt *time.Time) error
	// AddProgress atomically adds delta when the row matches catalogID and is not completed.
	AddProgress(dbc dbctx.Context, userID uuid.UUID, catalogID string, delta int) (bool, error)
}

type dailyChallengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyChallengeRepo(db *gorm.DB, baseLog *logger.Logger) DailyChallengeRepo {
	return &dailyChallengeRepo{db: db, log: baseLog.With("repo", "DailyChallengeRepo")}
}

func (r *dailyChallengeRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.DailyChallenge, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DailyChallenge
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dailyChallengeRepo) Upsert(dbc dbctx.Context, ch *types.DailyChallenge) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(ch).Error
}

func (r *dailyChallengeRepo) UpdateProgress(dbc dbctx.Context, userID uuid.UUID, progress int, completed bool, completedAt *time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.DailyChallenge{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"progress":     progress,
			"completed":    completed,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dailyChallengeRepo) AddProgress(dbc dbctx.Context, userID uuid.UUID, catalogID string, delta int) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.DailyChallenge{}).
		Where("user_id = ? AND catalog_id = ? AND completed = ?", userID, catalogID, false).
		Update("progress", gorm.Expr("progress + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
