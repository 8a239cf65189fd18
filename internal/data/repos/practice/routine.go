package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type RoutineRepo interface {
	Create(dbc dbctx.Context, routines []*types.Routine) ([]*types.Routine, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Routine, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Routine, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
	IncrementCompleted(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) error
}

type routineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoutineRepo(db *gorm.DB, baseLog *logger.Logger) RoutineRepo {
	return &routineRepo{db: db, log: baseLog.With("repo", "RoutineRepo")}
}

func (r *routineRepo) Create(dbc dbctx.Context, routines []*types.Routine) ([]*types.Routine, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(routines) == 0 {
		return []*types.Routine{}, nil
	}
	for _, rt := range routines {
		if rt.ID == uuid.Nil {
			rt.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&routines).Error; err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *routineRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Routine, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rt types.Routine
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *routineRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Routine, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Routine
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *routineRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.Routine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *routineRepo) IncrementCompleted(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Routine{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"times_completed": gorm.Expr("times_completed + ?", 1),
			"last_completed":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
