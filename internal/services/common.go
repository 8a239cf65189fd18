package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/ctxutil"
)

// callerID returns the authenticated user of ctx or an unauthenticated error.
func callerID(ctx context.Context, op string) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "authentication required", nil)
	}
	return id, nil
}

func validation(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func notFound(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}

func unauthorized(op, msg string) error {
	return domainagg.NewError(domainagg.CodeUnauthorized, op, msg, nil)
}

func alreadyExists(op, msg string) error {
	return domainagg.NewError(domainagg.CodeAlreadyExists, op, msg, nil)
}

// storeErr maps a persistence failure onto an aggregate error code.
func storeErr(op string, err error) error {
	return aggregates.MapError(op, err)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func cleanTags(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func domainInternal(op, msg string) error {
	return domainagg.NewError(domainagg.CodeInternal, op, msg, nil)
}

func unauthenticated(op, msg string) error {
	return domainagg.NewError(domainagg.CodeUnauthenticated, op, msg, nil)
}

func conflict(op, msg string) error {
	return domainagg.NewError(domainagg.CodeConflict, op, msg, nil)
}
