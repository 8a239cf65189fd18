package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type ForumPostRepo interface {
	Create(dbc dbctx.Context, p *types.ForumPost) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ForumPost, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ForumPost, error)
	// List returns posts newest first, optionally restricted to one author.
	List(dbc dbctx.Context, authorID *uuid.UUID, limit int) ([]*types.ForumPost, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	IncrementComments(dbc dbctx.Context, id uuid.UUID, delta int) error
	IncrementLikes(dbc dbctx.Context, id uuid.UUID, delta int) error
}

type forumPostRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewForumPostRepo(db *gorm.DB, baseLog *logger.Logger) ForumPostRepo {
	return &forumPostRepo{db: db, log: baseLog.With("repo", "ForumPostRepo")}
}

func (r *forumPostRepo) Create(dbc dbctx.Context, p *types.ForumPost) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(p).Error
}

func (r *forumPostRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ForumPost, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ForumPost
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *forumPostRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ForumPost, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ForumPost
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *forumPostRepo) List(dbc dbctx.Context, authorID *uuid.UUID, limit int) ([]*types.ForumPost, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ForumPost
	q := transaction.WithContext(dbc.Ctx).Model(&types.ForumPost{})
	if authorID != nil {
		q = q.Where("user_id = ?", *authorID)
	}
	q = q.Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *forumPostRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.ForumPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *forumPostRepo) IncrementComments(dbc dbctx.Context, id uuid.UUID, delta int) error {
	return r.increment(dbc, id, "comments", delta)
}

func (r *forumPostRepo) IncrementLikes(dbc dbctx.Context, id uuid.UUID, delta int) error {
	return r.increment(dbc, id, "likes", delta)
}

// increment clamps counters at zero.
func (r *forumPostRepo) increment(dbc dbctx.Context, id uuid.UUID, column string, delta int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.ForumPost{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where(column+" >= ?", -delta)
	}
	res := q.Update(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ForumCommentRepo interface {
	Create(dbc dbctx.Context, c *types.ForumComment) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ForumComment, error)
	ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*types.ForumComment, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error
}

type forumCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewForumCommentRepo(db *gorm.DB, baseLog *logger.Logger) ForumCommentRepo {
	return &forumCommentRepo{db: db, log: baseLog.With("repo", "ForumCommentRepo")}
}

func (r *forumCommentRepo) Create(dbc dbctx.Context, c *types.ForumComment) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(c).Error
}

func (r *forumCommentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ForumComment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ForumComment
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *forumCommentRepo) ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*types.ForumComment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ForumComment
	if err := transaction.WithContext(dbc.Ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *forumCommentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.ForumComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *forumCommentRepo) DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Where("post_id = ?", postID).Delete(&types.ForumComment{}).Error
}

type PostLikeRepo interface {
	Insert(dbc dbctx.Context, like *types.PostLike) (bool, error)
	Delete(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error)
	ListPostIDsByUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error
}

type postLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostLikeRepo(db *gorm.DB, baseLog *logger.Logger) PostLikeRepo {
	return &postLikeRepo{db: db, log: baseLog.With("repo", "PostLikeRepo")}
}

func (r *postLikeRepo) Insert(dbc dbctx.Context, like *types.PostLike) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postLikeRepo) Delete(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&types.PostLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postLikeRepo) ListPostIDsByUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.PostLike{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postLikeRepo) DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Where("post_id = ?", postID).Delete(&types.PostLike{}).Error
}
