package aggregates

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

// CASGuard performs guarded single-statement updates so a state transition is claimed by one writer.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateWhen applies updates to model rows matching key and guard. ok is false when nothing matched.
func (g CASGuard) UpdateWhen(dbc dbctx.Context, model any, key map[string]any, guard string, guardArgs []any, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	if len(key) == 0 {
		return false, ValidationError("key is required for UpdateWhen")
	}
	q := db.Model(model).Where(key)
	if guard = strings.TrimSpace(guard); guard != "" {
		q = q.Where(guard, guardArgs...)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a lost transition into a typed conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}
