package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type ActivityLikeRepo interface {
	Insert(dbc dbctx.Context, like *types.ActivityLike) (bool, error)
	Delete(dbc dbctx.Context, userID, activityID uuid.UUID) (bool, error)
	ListUserIDs(dbc dbctx.Context, activityID uuid.UUID) ([]uuid.UUID, error)
}

type activityLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLikeRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLikeRepo {
	return &activityLikeRepo{db: db, log: baseLog.With("repo", "ActivityLikeRepo")}
}

func (r *activityLikeRepo) Insert(dbc dbctx.Context, like *types.ActivityLike) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *activityLikeRepo) Delete(dbc dbctx.Context, userID, activityID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Delete(&types.ActivityLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *activityLikeRepo) ListUserIDs(dbc dbctx.Context, activityID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ActivityLike{}).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type ActivityCommentRepo interface {
	Create(dbc dbctx.Context, c *types.ActivityComment) error
	ListByActivity(dbc dbctx.Context, activityID uuid.UUID) ([]*types.ActivityComment, error)
}

type activityCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityCommentRepo(db *gorm.DB, baseLog *logger.Logger) ActivityCommentRepo {
	return &activityCommentRepo{db: db, log: baseLog.With("repo", "ActivityCommentRepo")}
}

func (r *activityCommentRepo) Create(dbc dbctx.Context, c *types.ActivityComment) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(c).Error
}

func (r *activityCommentRepo) ListByActivity(dbc dbctx.Context, activityID uuid.UUID) ([]*types.ActivityComment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ActivityComment
	if err := transaction.WithContext(dbc.Ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
