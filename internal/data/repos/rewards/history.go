package rewards

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type ToolCount struct {
	Tool  string
	Count int
}

type ChallengeStats struct {
	TotalCompleted   int
	TotalPoints      int
	ChallengesByTool map[string]int
}

type ChallengeHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChallengeHistory) ([]*types.ChallengeHistory, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChallengeHistory, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Stats(dbc dbctx.Context, userID uuid.UUID) (ChallengeStats, error)
}

type challengeHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeHistoryRepo {
	return &challengeHistoryRepo{db: db, log: baseLog.With("repo", "ChallengeHistoryRepo")}
}

func (r *challengeHistoryRepo) Create(dbc dbctx.Context, rows []*types.ChallengeHistory) ([]*types.ChallengeHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ChallengeHistory{}, nil
	}
	for _, h := range rows {
		if h.ID == uuid.Nil {
			h.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *challengeHistoryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChallengeHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ChallengeHistory
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *challengeHistoryRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.ChallengeHistory{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *challengeHistoryRepo) Stats(dbc dbctx.Context, userID uuid.UUID) (ChallengeStats, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	stats := ChallengeStats{ChallengesByTool: map[string]int{}}
	var rows []struct {
		Tool   string
		Count  int
		Points int
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ChallengeHistory{}).
		Select("tool, COUNT(*) AS count, COALESCE(SUM(points), 0) AS points").
		Where("user_id = ?", userID).
		Group("tool").
		Scan(&rows).Error; err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.TotalCompleted += row.Count
		stats.TotalPoints += row.Points
		stats.ChallengesByTool[row.Tool] = row.Count
	}
	return stats, nil
}
