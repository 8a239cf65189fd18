package services

import (
	"context"
	"strings"

	"github.com/facebookgo/clock"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type LearningPathService interface {
	Paths() []catalog.Path
	// Progress returns the caller's progress, creating an empty record on first use.
	Progress(ctx context.Context) (*types.PathProgress, error)
	SelectPath(ctx context.Context, pathID string) (*types.PathProgress, error)
	CompleteStage(ctx context.Context, stageID string) (*types.PathProgress, error)
}

type learningPathService struct {
	db       *gorm.DB
	log      *logger.Logger
	clock    clock.Clock
	catalog  *catalog.Catalog
	progress repos.PathProgressRepo
}

func NewLearningPathService(db *gorm.DB, log *logger.Logger, clk clock.Clock, cat *catalog.Catalog, progress repos.PathProgressRepo) LearningPathService {
	return &learningPathService{
		db:       db,
		log:      log.With("service", "LearningPathService"),
		clock:    clk,
		catalog:  cat,
		progress: progress,
	}
}

func (ls *learningPathService) Paths() []catalog.Path {
	return ls.catalog.Paths()
}

func (ls *learningPathService) Progress(ctx context.Context) (*types.PathProgress, error) {
	const op = "LearningPathService.Progress"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	p, err := ls.progress.GetOrCreate(dbctx.Context{Ctx: ctx}, userID, ls.clock.Now().UTC())
	if err != nil {
		return nil, storeErr(op, err)
	}
	return p, nil
}

func (ls *learningPathService) SelectPath(ctx context.Context, pathID string) (*types.PathProgress, error) {
	const op = "LearningPathService.SelectPath"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	pathID = strings.TrimSpace(pathID)
	path, ok := ls.catalog.Path(pathID)
	if !ok {
		return nil, validation(op, "unknown path "+pathID)
	}
	first := path.Stages[0].ID
	now := ls.clock.Now().UTC()
	var out *types.PathProgress
	err = ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := ls.progress.GetOrCreate(inner, userID, now); err != nil {
			return err
		}
		if err := ls.progress.SetCurrent(inner, userID, &path.ID, &first, now); err != nil {
			return err
		}
		out, err = ls.progress.GetOrCreate(inner, userID, now)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}
	ls.log.Debug("learning path selected", "user_id", userID, "path", path.ID)
	return out, nil
}

// CompleteStage marks stageID done. Completing the current stage moves the caller to
// the next unfinished stage of the current path, or clears it when none is left.
func (ls *learningPathService) CompleteStage(ctx context.Context, stageID string) (*types.PathProgress, error) {
	const op = "LearningPathService.CompleteStage"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	stageID = strings.TrimSpace(stageID)
	pathID, ok := ls.catalog.StagePath(stageID)
	if !ok {
		return nil, validation(op, "unknown stage "+stageID)
	}
	now := ls.clock.Now().UTC()
	var out *types.PathProgress
	err = ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := ls.progress.GetOrCreate(inner, userID, now)
		if err != nil {
			return err
		}
		if _, err := ls.progress.AddCompletedStage(inner, userID, pathID, stageID, now); err != nil {
			return err
		}
		if current.CurrentStage != nil && *current.CurrentStage == stageID && current.CurrentPath != nil {
			done := map[string]bool{stageID: true}
			for _, s := range current.CompletedStages {
				done[s] = true
			}
			next := ls.nextStage(*current.CurrentPath, done)
			if err := ls.progress.SetCurrent(inner, userID, current.CurrentPath, next, now); err != nil {
				return err
			}
		}
		out, err = ls.progress.GetOrCreate(inner, userID, now)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}
	ls.log.Debug("stage completed", "user_id", userID, "stage", stageID)
	return out, nil
}

func (ls *learningPathService) nextStage(pathID string, done map[string]bool) *string {
	path, ok := ls.catalog.Path(pathID)
	if !ok {
		return nil
	}
	for _, st := range path.Stages {
		if !done[st.ID] {
			id := st.ID
			return &id
		}
	}
	return nil
}
