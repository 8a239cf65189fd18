package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    "pw",
		DisplayName: email,
		Instruments: datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tool string, minutes int, at time.Time) *types.PracticeSession {
	tb.Helper()
	s := &types.PracticeSession{
		ID:        uuid.New(),
		UserID:    userID,
		ToolName:  tool,
		Duration:  minutes,
		Date:      at,
		Completed: true,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tool string, target int, freq types.GoalFrequency, start time.Time) *types.Goal {
	tb.Helper()
	g := &types.Goal{
		ID:            uuid.New(),
		UserID:        userID,
		ToolName:      tool,
		TargetMinutes: target,
		Frequency:     freq,
		StartDate:     start,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
