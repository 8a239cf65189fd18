package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type GroupSessionRepo interface {
	Create(dbc dbctx.Context, s *types.GroupSession) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GroupSession, error)
	UpdateMemberTools(dbc dbctx.Context, id uuid.UUID, tools datatypes.JSON, at time.Time) error
	// End completes an active session; not-found when it is missing or already completed.
	End(dbc dbctx.Context, id uuid.UUID, endTime time.Time, duration int, toolsUsed datatypes.JSON) error
	DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error
}

type groupSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupSessionRepo(db *gorm.DB, baseLog *logger.Logger) GroupSessionRepo {
	return &groupSessionRepo{db: db, log: baseLog.With("repo", "GroupSessionRepo")}
}

func (r *groupSessionRepo) Create(dbc dbctx.Context, s *types.GroupSession) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if len(s.MemberTools) == 0 {
		s.MemberTools = datatypes.JSON([]byte("{}"))
	}
	if len(s.ToolsUsed) == 0 {
		s.ToolsUsed = datatypes.JSON([]byte("[]"))
	}
	return transaction.WithContext(dbc.Ctx).Create(s).Error
}

func (r *groupSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GroupSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.GroupSession
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groupSessionRepo) UpdateMemberTools(dbc dbctx.Context, id uuid.UUID, tools datatypes.JSON, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupSession{}).
		Where("id = ? AND status = ?", id, types.GroupSessionActive).
		Updates(map[string]any{"member_tools": tools, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupSessionRepo) End(dbc dbctx.Context, id uuid.UUID, endTime time.Time, duration int, toolsUsed datatypes.JSON) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GroupSession{}).
		Where("id = ? AND status = ?", id, types.GroupSessionActive).
		Updates(map[string]any{
			"status":     types.GroupSessionCompleted,
			"end_time":   endTime,
			"duration":   duration,
			"tools_used": toolsUsed,
			"updated_at": endTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupSessionRepo) DeleteByGroup(dbc dbctx.Context, groupID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Where("group_id = ?", groupID).Delete(&types.GroupSession{}).Error
}

type GroupSessionMessageRepo interface {
	Create(dbc dbctx.Context, m *types.GroupSessionMessage) error
	// ListBySession returns the newest messages first.
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*types.GroupSessionMessage, error)
}

type groupSessionMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupSessionMessageRepo(db *gorm.DB, baseLog *logger.Logger) GroupSessionMessageRepo {
	return &groupSessionMessageRepo{db: db, log: baseLog.With("repo", "GroupSessionMessageRepo")}
}

func (r *groupSessionMessageRepo) Create(dbc dbctx.Context, m *types.GroupSessionMessage) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(m).Error
}

func (r *groupSessionMessageRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*types.GroupSessionMessage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.GroupSessionMessage
	if err := transaction.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
