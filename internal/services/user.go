package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/domain/user"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

const maxDisplayNameLength = 64

// UpdateProfileInput carries optional profile fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	DisplayName *string   `json:"display_name"`
	PhotoURL    *string   `json:"photo_url"`
	Region      *string   `json:"region"`
	Instruments *[]string `json:"instruments"`
}

type UserService interface {
	GetProfile(ctx context.Context) (*types.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		log:      serviceLog,
		userRepo: userRepo,
	}
}

func (us *userService) GetProfile(ctx context.Context) (*types.User, error) {
	const op = "UserService.GetProfile"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	return us.load(ctx, op, userID)
}

func (us *userService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	const op = "UserService.GetUser"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	return us.load(ctx, op, userID)
}

func (us *userService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*types.User, error) {
	const op = "UserService.UpdateProfile"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	upd := repos.ProfileUpdate{}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, validation(op, "display_name cannot be empty")
		}
		if len([]rune(name)) > maxDisplayNameLength {
			return nil, validation(op, "display_name is too long")
		}
		upd.DisplayName = &name
	}
	if in.PhotoURL != nil {
		photo := strings.TrimSpace(*in.PhotoURL)
		if photo != "" {
			if u, err := url.Parse(photo); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return nil, validation(op, "photo_url must be an http(s) url")
			}
		}
		upd.PhotoURL = &photo
	}
	if in.Region != nil {
		region := strings.TrimSpace(*in.Region)
		upd.Region = &region
	}
	if in.Instruments != nil {
		raw := user.EncodeInstruments(*in.Instruments)
		upd.Instruments = &raw
	}
	if err := us.userRepo.UpdateProfile(dbctx.Context{Ctx: ctx}, userID, upd); err != nil {
		us.log.Warn("update profile failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return us.load(ctx, op, userID)
}

func (us *userService) load(ctx context.Context, op string, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, notFound(op, "user does not exist")
	}
	return found[0], nil
}
