package social

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type GroupRepo interface {
	Create(dbc dbctx.Context, g *types.Group) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Group, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Group, error)
	ListPublic(dbc dbctx.Context, limit int) ([]*types.Group, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	AddPracticeTime(dbc dbctx.Context, id uuid.UUID, minutes int, at time.Time) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) Create(dbc dbctx.Context, g *types.Group) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(g).Error
}

func (r *groupRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Group, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Group
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groupRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Group, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Group
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("last_active DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) ListPublic(dbc dbctx.Context, limit int) ([]*types.Group, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Group
	q := transaction.WithContext(dbc.Ctx).
		Where("is_public = ?", true).
		Order("last_active DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepo) AddPracticeTime(dbc dbctx.Context, id uuid.UUID, minutes int, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Group{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_practice_time": gorm.Expr("total_practice_time + ?", minutes),
			"last_active":         at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type GroupMemberRepo interface {
	// Add is idempotent; added reports whether the user was not already a member.
	Add(dbc dbctx.Context, m *types.GroupMember) (added bool, err error)
	Remove(dbc dbctx.Context, groupID, userID uuid.UUID) (bool, error)
	IsMember(dbc dbctx.Context, groupID, userID uuid.UUID) (bool, error)
	ListGroupIDsByUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListUserIDs(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error
}

type groupMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupMemberRepo(db *gorm.DB, baseLog *logger.Logger) GroupMemberRepo {
	return &groupMemberRepo{db: db, log: baseLog.With("repo", "GroupMemberRepo")}
}

func (r *groupMemberRepo) Add(dbc dbctx.Context, m *types.GroupMember) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *groupMemberRepo) Remove(dbc dbctx.Context, groupID, userID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&types.GroupMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *groupMemberRepo) IsMember(dbc dbctx.Context, groupID, userID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *groupMemberRepo) ListGroupIDsByUser(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *groupMemberRepo) ListUserIDs(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *groupMemberRepo) DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Where("group_id = ?", groupID).Delete(&types.GroupMember{}).Error
}

type GroupInviteRepo interface {
	Create(dbc dbctx.Context, inv *types.GroupInvite) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GroupInvite, error)
	PendingExists(dbc dbctx.Context, groupID uuid.UUID, email string) (bool, error)
	ListPendingByEmail(dbc dbctx.Context, email string) ([]*types.GroupInvite, error)
	// SetStatus moves a pending invite to status; it returns not-found when the invite is no longer pending.
	SetStatus(dbc dbctx.Context, id uuid.UUID, status types.InviteStatus, at time.Time) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error
}

type groupInviteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupInviteRepo(db *gorm.DB, baseLog *logger.Logger) GroupInviteRepo {
	return &groupInviteRepo{db: db, log: baseLog.With("repo", "GroupInviteRepo")}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *groupInviteRepo) Create(dbc dbctx.Context, inv *types.GroupInvite) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Email = normalizeEmail(inv.Email)
	if inv.Status == "" {
		inv.Status = types.InvitePending
	}
	return transaction.WithContext(dbc.Ctx).Create(inv).Error
}

func (r *groupInviteRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GroupInvite, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.GroupInvite
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groupInviteRepo) PendingExists(dbc dbctx.Context, groupID uuid.UUID, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupInvite{}).
		Where("group_id = ? AND email = ? AND status = ?", groupID, normalizeEmail(email), types.InvitePending).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *groupInviteRepo) ListPendingByEmail(dbc dbctx.Context, email string) ([]*types.GroupInvite, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GroupInvite
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ? AND status = ?", normalizeEmail(email), types.InvitePending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupInviteRepo) SetStatus(dbc dbctx.Context, id uuid.UUID, status types.InviteStatus, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupInvite{}).
		Where("id = ? AND status = ?", id, types.InvitePending).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupInviteRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.GroupInvite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupInviteRepo) DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Where("group_id = ?", groupID).Delete(&types.GroupInvite{}).Error
}
