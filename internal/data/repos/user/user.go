package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Region      *string
	Instruments *datatypes.JSON
}

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, emails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	UpdateProfile(dbc dbctx.Context, userID uuid.UUID, upd ProfileUpdate) error
	UpdateStats(dbc dbctx.Context, userID uuid.UUID, totalPracticeTime int, instruments datatypes.JSON, at time.Time) error
	ListIDsByRegion(dbc dbctx.Context, region string) ([]uuid.UUID, error)
	SearchByDisplayName(dbc dbctx.Context, prefix string, excludeID uuid.UUID, limit int) ([]*types.User, error)
	ListAll(dbc dbctx.Context, excludeID uuid.UUID, limit int) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if len(u.Instruments) == 0 {
			u.Instruments = datatypes.JSON([]byte("[]"))
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if len(emails) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateProfile(dbc dbctx.Context, userID uuid.UUID, upd ProfileUpdate) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	updates := map[string]any{}
	if upd.DisplayName != nil {
		updates["display_name"] = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		updates["photo_url"] = *upd.PhotoURL
	}
	if upd.Region != nil {
		updates["region"] = *upd.Region
	}
	if upd.Instruments != nil {
		updates["instruments"] = *upd.Instruments
	}
	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ur *userRepo) UpdateStats(dbc dbctx.Context, userID uuid.UUID, totalPracticeTime int, instruments datatypes.JSON, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_practice_time": totalPracticeTime,
			"instruments":         instruments,
			"stats_updated_at":    at,
		}).Error
}

// ListIDsByRegion matches regions case-insensitively.
func (ur *userRepo) ListIDsByRegion(dbc dbctx.Context, region string) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var ids []uuid.UUID
	region = strings.TrimSpace(region)
	if region == "" {
		return ids, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("LOWER(region) = LOWER(?)", region).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (ur *userRepo) SearchByDisplayName(dbc dbctx.Context, prefix string, excludeID uuid.UUID, limit int) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if limit <= 0 {
		limit = 50
	}
	var results []*types.User
	q := transaction.WithContext(dbc.Ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(display_name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%").
		Order("display_name ASC").
		Limit(limit)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) ListAll(dbc dbctx.Context, excludeID uuid.UUID, limit int) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if limit <= 0 {
		limit = 50
	}
	var results []*types.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("id <> ?", excludeID).
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
