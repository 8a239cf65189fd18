package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type AddRoutineInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Steps       []types.RoutineStep `json:"steps"`
}

type RoutineService interface {
	AddRoutine(ctx context.Context, in AddRoutineInput) (*types.Routine, error)
	ListRoutines(ctx context.Context) ([]*types.Routine, error)
	DeleteRoutine(ctx context.Context, id uuid.UUID) error
	CompleteRoutine(ctx context.Context, id uuid.UUID) (*types.Routine, error)
}

type routineService struct {
	log      *logger.Logger
	clock    clock.Clock
	catalog  *catalog.Catalog
	routines repos.RoutineRepo
}

func NewRoutineService(log *logger.Logger, clk clock.Clock, cat *catalog.Catalog, routines repos.RoutineRepo) RoutineService {
	return &routineService{
		log:      log.With("service", "RoutineService"),
		clock:    clk,
		catalog:  cat,
		routines: routines,
	}
}

func (rs *routineService) AddRoutine(ctx context.Context, in AddRoutineInput) (*types.Routine, error) {
	const op = "RoutineService.AddRoutine"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation(op, "name is required")
	}
	if len(in.Steps) == 0 {
		return nil, validation(op, "at least one step is required")
	}
	steps := make([]types.RoutineStep, 0, len(in.Steps))
	total := 0
	for _, st := range in.Steps {
		st.ToolName = strings.TrimSpace(st.ToolName)
		if st.ToolName == "" {
			return nil, validation(op, "step tool_name is required")
		}
		if st.Minutes < 0 {
			return nil, validation(op, "step minutes must be >= 0")
		}
		// Steps without an explicit length take the tool's suggested length.
		if st.Minutes == 0 && rs.catalog != nil {
			if m, ok := rs.catalog.ToolMinutes(st.ToolName); ok {
				st.Minutes = m
			}
		}
		total += st.Minutes
		steps = append(steps, st)
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, storeErr(op, err)
	}
	now := rs.clock.Now().UTC()
	created, err := rs.routines.Create(dbctx.Context{Ctx: ctx}, []*types.Routine{{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		Steps:         datatypes.JSON(raw),
		TotalDuration: total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}})
	if err != nil {
		return nil, storeErr(op, err)
	}
	rs.log.Debug("routine added", "user_id", userID, "routine_id", created[0].ID, "steps", len(steps))
	return created[0], nil
}

func (rs *routineService) ListRoutines(ctx context.Context) ([]*types.Routine, error) {
	const op = "RoutineService.ListRoutines"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	rows, err := rs.routines.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (rs *routineService) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	const op = "RoutineService.DeleteRoutine"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	if err := rs.routines.Delete(dbctx.Context{Ctx: ctx}, userID, id); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (rs *routineService) CompleteRoutine(ctx context.Context, id uuid.UUID) (*types.Routine, error) {
	const op = "RoutineService.CompleteRoutine"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := rs.routines.IncrementCompleted(dbc, userID, id, rs.clock.Now().UTC()); err != nil {
		return nil, storeErr(op, err)
	}
	routine, err := rs.routines.GetByID(dbc, userID, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return routine, nil
}
