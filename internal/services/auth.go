package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/ctxutil"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

const minPasswordLength = 6

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type AuthResult struct {
	User        *types.User `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// SetContextFromToken validates a bearer token and attaches the caller to ctx.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	clock        clock.Clock
	userRepo     repos.UserRepo
	ledgerRepo   repos.RewardLedgerRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	userRepo repos.UserRepo,
	ledgerRepo repos.RewardLedgerRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		clock:        clk,
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "AuthService.Register"
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validation(op, "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validation(op, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domainInternal(op, "failed to hash password")
	}

	now := as.clock.Now().UTC()
	user := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(inner, email)
		if err != nil {
			return err
		}
		if exists {
			return alreadyExists(op, "email already registered")
		}
		if _, err := as.userRepo.Create(inner, []*types.User{user}); err != nil {
			return err
		}
		// Every account starts with an empty reward ledger.
		_, err = as.ledgerRepo.GetOrCreate(inner, user.ID)
		return err
	})
	if err != nil {
		as.log.Warn("register failed", "email", email, "error", err)
		return nil, storeErr(op, err)
	}
	as.log.Info("user registered", "user_id", user.ID)
	return as.issue(op, user)
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validation(op, "email and password are required")
	}
	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, storeErr(op, err)
	}
	// Unknown email and wrong password are indistinguishable to the client.
	if len(users) == 0 {
		return nil, unauthenticated(op, "invalid email or password")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, unauthenticated(op, "invalid email or password")
	}
	return as.issue(op, user)
}

func (as *authService) issue(op string, user *types.User) (*AuthResult, error) {
	tok, expiresAt, err := as.generateAccessToken(user)
	if err != nil {
		as.log.Error("sign access token failed", "user_id", user.ID, "error", err)
		return nil, domainInternal(op, "failed to issue token")
	}
	return &AuthResult{User: user, AccessToken: tok, ExpiresAt: expiresAt}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, time.Time, error) {
	now := as.clock.Now()
	expiresAt := now.Add(as.accessTTL)
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	return signed, expiresAt, err
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "AuthService.SetContextFromToken"
	if tokenString == "" {
		return ctx, unauthenticated(op, "missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.clock.Now),
	)
	if err != nil {
		return ctx, unauthenticated(op, "invalid or expired token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, unauthenticated(op, "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, unauthenticated(op, "invalid user id in token")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
