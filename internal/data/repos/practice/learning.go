package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type PathProgressRepo interface {
	// GetOrCreate returns the progress row with its completed stages, inserting an
	// empty row first when missing.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID, at time.Time) (*types.PathProgress, error)
	SetCurrent(dbc dbctx.Context, userID uuid.UUID, pathID, stageID *string, at time.Time) error
	// AddCompletedStage reports false when the stage was already completed.
	AddCompletedStage(dbc dbctx.Context, userID uuid.UUID, pathID, stageID string, at time.Time) (bool, error)
	CompletedStages(dbc dbctx.Context, userID uuid.UUID) ([]string, error)
}

type pathProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathProgressRepo(db *gorm.DB, baseLog *logger.Logger) PathProgressRepo {
	return &pathProgressRepo{db: db, log: baseLog.With("repo", "PathProgressRepo")}
}

func (r *pathProgressRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID, at time.Time) (*types.PathProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	seed := &types.PathProgress{UserID: userID, CreatedAt: at, UpdatedAt: at}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(seed).Error; err != nil {
		return nil, err
	}
	var out types.PathProgress
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	stages, err := r.CompletedStages(dbctx.Context{Ctx: dbc.Ctx, Tx: transaction}, userID)
	if err != nil {
		return nil, err
	}
	out.CompletedStages = stages
	return &out, nil
}

func (r *pathProgressRepo) SetCurrent(dbc dbctx.Context, userID uuid.UUID, pathID, stageID *string, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.PathProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"current_path":  pathID,
			"current_stage": stageID,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pathProgressRepo) AddCompletedStage(dbc dbctx.Context, userID uuid.UUID, pathID, stageID string, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "stage_id"}},
			DoNothing: true,
		}).
		Create(&types.CompletedStage{UserID: userID, StageID: stageID, PathID: pathID, CompletedAt: at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pathProgressRepo) CompletedStages(dbc dbctx.Context, userID uuid.UUID) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []string{}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CompletedStage{}).
		Where("user_id = ?", userID).
		Order("completed_at ASC, stage_id ASC").
		Pluck("stage_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type AssessmentRepo interface {
	Create(dbc dbctx.Context, a *types.Assessment) error
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Assessment, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Assessment, error)
	// AppendAnswers replaces the answer list when the row is open and still holds
	// expectedCount answers. It reports false when either check fails.
	AppendAnswers(dbc dbctx.Context, userID, id uuid.UUID, expectedCount int, answers datatypes.JSON, newCount int) (bool, error)
	// Complete closes an open assessment. It reports false when the row is already closed.
	Complete(dbc dbctx.Context, userID, id uuid.UUID, score int, at time.Time) (bool, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, a *types.Assessment) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return transaction.WithContext(dbc.Ctx).Create(a).Error
}

func (r *assessmentRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Assessment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Assessment
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *assessmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Assessment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assessment
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentRepo) AppendAnswers(dbc dbctx.Context, userID, id uuid.UUID, expectedCount int, answers datatypes.JSON, newCount int) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Assessment{}).
		Where("id = ? AND user_id = ? AND completed = ? AND answer_count = ?", id, userID, false, expectedCount).
		Updates(map[string]any{
			"answers":      answers,
			"answer_count": newCount,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assessmentRepo) Complete(dbc dbctx.Context, userID, id uuid.UUID, score int, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Assessment{}).
		Where("id = ? AND user_id = ? AND completed = ?", id, userID, false).
		Updates(map[string]any{
			"completed": true,
			"score":     score,
			"ended_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
