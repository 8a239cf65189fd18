package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type GoalRepo interface {
	Create(dbc dbctx.Context, goals []*types.Goal) ([]*types.Goal, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Goal, error)
	ListUserIDs(dbc dbctx.Context) ([]uuid.UUID, error)
	// SetProgress stores an absolute progress value and recomputes completed.
	SetProgress(dbc dbctx.Context, userID, id uuid.UUID, progress int) error
	// AddProgressForTool atomically adds minutes to every goal of userID for tool.
	AddProgressForTool(dbc dbctx.Context, userID uuid.UUID, tool string, minutes int) (int64, error)
	ResetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, startDate time.Time) (int64, error)
	ResetByFrequency(dbc dbctx.Context, userID uuid.UUID, freq types.GoalFrequency, startDate time.Time) (int64, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
}

type goalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return &goalRepo{
		db:  db,
		log: baseLog.With("repo", "GoalRepo"),
	}
}

func (r *goalRepo) Create(dbc dbctx.Context, goals []*types.Goal) ([]*types.Goal, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(goals) == 0 {
		return []*types.Goal{}, nil
	}
	for _, g := range goals {
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		g.Completed = types.IsGoalComplete(g.Progress, g.TargetMinutes)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var g types.Goal
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *goalRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Goal, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Goal
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *goalRepo) ListUserIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *goalRepo) SetProgress(dbc dbctx.Context, userID, id uuid.UUID, progress int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"progress":   progress,
			"completed":  gorm.Expr("(? >= target_minutes)", progress),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *goalRepo) AddProgressForTool(dbc dbctx.Context, userID uuid.UUID, tool string, minutes int) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Where("user_id = ? AND tool_name = ?", userID, tool).
		Updates(map[string]any{
			"progress":   gorm.Expr("progress + ?", minutes),
			"completed":  gorm.Expr("(progress + ? >= target_minutes)", minutes),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *goalRepo) ResetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, startDate time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(resetColumns(startDate))
	return res.RowsAffected, res.Error
}

func (r *goalRepo) ResetByFrequency(dbc dbctx.Context, userID uuid.UUID, freq types.GoalFrequency, startDate time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Where("user_id = ? AND frequency = ?", userID, freq).
		Updates(resetColumns(startDate))
	return res.RowsAffected, res.Error
}

func (r *goalRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func resetColumns(startDate time.Time) map[string]any {
	return map[string]any{
		"progress":   0,
		"completed":  false,
		"start_date": startDate,
		"updated_at": time.Now().UTC(),
	}
}
