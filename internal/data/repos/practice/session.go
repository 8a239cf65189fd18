package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

// UserTotals is one row of the per-user duration aggregate.
type UserTotals struct {
	UserID    uuid.UUID
	TotalTime int
	Sessions  int
}

type PracticeSessionRepo interface {
	Create(dbc dbctx.Context, sessions []*types.PracticeSession) ([]*types.PracticeSession, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.PracticeSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PracticeSession, error)
	ListRecentByUsers(dbc dbctx.Context, userIDs []uuid.UUID, limit int) ([]*types.PracticeSession, error)
	// TotalsSince groups completed sessions with date >= since. A nil userIDs slice
	// means every user; an empty non-nil slice matches nobody.
	TotalsSince(dbc dbctx.Context, since time.Time, userIDs []uuid.UUID) ([]UserTotals, error)
	DistinctTools(dbc dbctx.Context, userID uuid.UUID) ([]string, error)
}

type practiceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) PracticeSessionRepo {
	return &practiceSessionRepo{
		db:  db,
		log: baseLog.With("repo", "PracticeSessionRepo"),
	}
}

func (r *practiceSessionRepo) Create(dbc dbctx.Context, sessions []*types.PracticeSession) ([]*types.PracticeSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return []*types.PracticeSession{}, nil
	}
	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *practiceSessionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.PracticeSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PracticeSession
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PracticeSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PracticeSession
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) ListRecentByUsers(dbc dbctx.Context, userIDs []uuid.UUID, limit int) ([]*types.PracticeSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PracticeSession
	if len(userIDs) == 0 {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Order("date DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) TotalsSince(dbc dbctx.Context, since time.Time, userIDs []uuid.UUID) ([]UserTotals, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []UserTotals{}
	if userIDs != nil && len(userIDs) == 0 {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.PracticeSession{}).
		Select("user_id, COALESCE(SUM(duration), 0) AS total_time, COUNT(*) AS sessions").
		Where("completed = ?", true).
		Where("date >= ?", since)
	if userIDs != nil {
		q = q.Where("user_id IN ?", userIDs)
	}
	if err := q.Group("user_id").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) DistinctTools(dbc dbctx.Context, userID uuid.UUID) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var tools []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.PracticeSession{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("tool_name ASC").
		Pluck("tool_name", &tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}
