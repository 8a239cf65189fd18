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

const answerAttempts = 3

type AssessmentService interface {
	Types() []catalog.AssessmentType
	Start(ctx context.Context, typeID string) (*types.Assessment, error)
	SubmitAnswer(ctx context.Context, id uuid.UUID, answer json.RawMessage) (*types.Assessment, error)
	Complete(ctx context.Context, id uuid.UUID, score int) (*types.Assessment, error)
	History(ctx context.Context, limit int) ([]*types.Assessment, error)
}

type assessmentService struct {
	log         *logger.Logger
	clock       clock.Clock
	catalog     *catalog.Catalog
	assessments repos.AssessmentRepo
}

func NewAssessmentService(log *logger.Logger, clk clock.Clock, cat *catalog.Catalog, assessments repos.AssessmentRepo) AssessmentService {
	return &assessmentService{
		log:         log.With("service", "AssessmentService"),
		clock:       clk,
		catalog:     cat,
		assessments: assessments,
	}
}

func (sv *assessmentService) Types() []catalog.AssessmentType {
	return sv.catalog.AssessmentTypes()
}

func (sv *assessmentService) Start(ctx context.Context, typeID string) (*types.Assessment, error) {
	const op = "AssessmentService.Start"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	typeID = strings.TrimSpace(typeID)
	def, ok := sv.catalog.AssessmentType(typeID)
	if !ok {
		return nil, validation(op, "unknown assessment type "+typeID)
	}
	a := &types.Assessment{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      def.ID,
		StartedAt: sv.clock.Now().UTC(),
		MaxScore:  def.MaxScore(),
		Answers:   datatypes.JSON(`[]`),
	}
	if err := sv.assessments.Create(dbctx.Context{Ctx: ctx}, a); err != nil {
		return nil, storeErr(op, err)
	}
	sv.log.Debug("assessment started", "user_id", userID, "assessment_id", a.ID, "type", def.ID)
	return a, nil
}

// SubmitAnswer appends answer to an open assessment. Concurrent submissions are
// serialized on the stored answer count.
func (sv *assessmentService) SubmitAnswer(ctx context.Context, id uuid.UUID, answer json.RawMessage) (*types.Assessment, error) {
	const op = "AssessmentService.SubmitAnswer"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if len(answer) == 0 || !json.Valid(answer) {
		return nil, validation(op, "answer must be valid JSON")
	}
	dbc := dbctx.Context{Ctx: ctx}
	for attempt := 0; attempt < answerAttempts; attempt++ {
		a, err := sv.assessments.GetByID(dbc, userID, id)
		if err != nil {
			return nil, storeErr(op, err)
		}
		if a.Completed {
			return nil, conflict(op, "assessment is already completed")
		}
		var answers []json.RawMessage
		if len(a.Answers) > 0 {
			if err := json.Unmarshal(a.Answers, &answers); err != nil {
				return nil, domainInternal(op, "stored answers are not a list")
			}
		}
		answers = append(answers, answer)
		raw, err := json.Marshal(answers)
		if err != nil {
			return nil, storeErr(op, err)
		}
		ok, err := sv.assessments.AppendAnswers(dbc, userID, id, a.AnswerCount, datatypes.JSON(raw), len(answers))
		if err != nil {
			return nil, storeErr(op, err)
		}
		if ok {
			a.Answers = datatypes.JSON(raw)
			a.AnswerCount = len(answers)
			return a, nil
		}
	}
	return nil, conflict(op, "assessment changed concurrently")
}

func (sv *assessmentService) Complete(ctx context.Context, id uuid.UUID, score int) (*types.Assessment, error) {
	const op = "AssessmentService.Complete"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	a, err := sv.assessments.GetByID(dbc, userID, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if score < 0 || score > a.MaxScore {
		return nil, validation(op, "score must be between 0 and the maximum score")
	}
	ok, err := sv.assessments.Complete(dbc, userID, id, score, sv.clock.Now().UTC())
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !ok {
		return nil, conflict(op, "assessment is already completed")
	}
	out, err := sv.assessments.GetByID(dbc, userID, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	sv.log.Debug("assessment completed", "user_id", userID, "assessment_id", id, "score", score)
	return out, nil
}

func (sv *assessmentService) History(ctx context.Context, limit int) ([]*types.Assessment, error) {
	const op = "AssessmentService.History"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	rows, err := sv.assessments.ListByUser(dbctx.Context{Ctx: ctx}, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}
