package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type FollowRepo interface {
	// Create inserts the edge; a duplicate edge surfaces as a unique violation.
	Create(dbc dbctx.Context, f *types.Follow) error
	Delete(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error)
	Exists(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowingIDs(dbc dbctx.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	ListFollowerIDs(dbc dbctx.Context, followingID uuid.UUID) ([]uuid.UUID, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return &followRepo{db: db, log: baseLog.With("repo", "FollowRepo")}
}

func (r *followRepo) Create(dbc dbctx.Context, f *types.Follow) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(f).Error
}

func (r *followRepo) Delete(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&types.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepo) Exists(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *followRepo) ListFollowingIDs(dbc dbctx.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("follower_id = ?", followerID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *followRepo) ListFollowerIDs(dbc dbctx.Context, followingID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Follow{}).
		Where("following_id = ?", followingID).
		Order("created_at DESC").
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type BlockRepo interface {
	// Create is idempotent; created reports whether a new row was written.
	Create(dbc dbctx.Context, b *types.Block) (created bool, err error)
	Delete(dbc dbctx.Context, userID, blockedUserID uuid.UUID) (bool, error)
	Exists(dbc dbctx.Context, userID, blockedUserID uuid.UUID) (bool, error)
	ListBlockedIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type blockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return &blockRepo{db: db, log: baseLog.With("repo", "BlockRepo")}
}

func (r *blockRepo) Create(dbc dbctx.Context, b *types.Block) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "blocked_user_id"}},
			DoNothing: true,
		}).
		Create(b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *blockRepo) Delete(dbc dbctx.Context, userID, blockedUserID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&types.Block{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *blockRepo) Exists(dbc dbctx.Context, userID, blockedUserID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Block{}).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *blockRepo) ListBlockedIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Block{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
