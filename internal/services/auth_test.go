package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/ctxutil"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func newTestAuth(e *env) AuthService {
	return NewAuthService(e.db, e.log, e.clock, e.users, e.ledgers, "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuth(e)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Email: " Player@Example.com ", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Email != "player@example.com" || res.User.DisplayName != "player" || res.AccessToken == "" {
		t.Fatalf("unexpected register result: %+v", res)
	}
	if res.User.Password == "hunter22" {
		t.Fatalf("password stored in clear text")
	}
	ledger, err := e.ledgers.GetOrCreate(dbctx.Context{Ctx: ctx}, res.User.ID)
	if err != nil || ledger.Points != 0 {
		t.Fatalf("ledger should exist after register: %+v err=%v", ledger, err)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "player@example.com", Password: "another1"}); !domainagg.IsCode(err, domainagg.CodeAlreadyExists) {
		t.Fatalf("duplicate email: want already_exists, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "hunter22"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad email: want validation, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "short@example.com", Password: "123"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("short password: want validation, got %v", err)
	}

	if _, err := svc.Login(ctx, "player@example.com", "wrong-pass"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("wrong password: want unauthenticated, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "hunter22"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("unknown email: want unauthenticated, got %v", err)
	}
	login, err := svc.Login(ctx, "PLAYER@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	authed, err := svc.SetContextFromToken(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if ctxutil.UserID(authed) != res.User.ID {
		t.Fatalf("token subject mismatch")
	}
}

func TestTokenExpiryAndTampering(t *testing.T) {
	e := newEnv(t)
	svc := newTestAuth(e)
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterInput{Email: "exp@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	other := NewAuthService(e.db, e.log, e.clock, e.users, e.ledgers, "other-secret", time.Hour)
	if _, err := other.SetContextFromToken(ctx, res.AccessToken); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("foreign signature: want unauthenticated, got %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, ""); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("empty token: want unauthenticated, got %v", err)
	}

	e.clock.Add(2 * time.Hour)
	if _, err := svc.SetContextFromToken(ctx, res.AccessToken); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("expired token: want unauthenticated, got %v", err)
	}
}

func TestUserServiceProfile(t *testing.T) {
	e := newEnv(t)
	us := NewUserService(e.log, e.users)
	u := e.user(t, "profile@example.com")

	name := "  Ada  "
	instruments := []string{"Piano", "piano", "Violin"}
	got, err := us.UpdateProfile(as(u), UpdateProfileInput{DisplayName: &name, Instruments: &instruments})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.DisplayName != "Ada" || string(got.Instruments) != `["Piano","Violin"]` {
		t.Fatalf("unexpected profile: name=%q instruments=%s", got.DisplayName, got.Instruments)
	}

	blank := " "
	if _, err := us.UpdateProfile(as(u), UpdateProfileInput{DisplayName: &blank}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank name: want validation, got %v", err)
	}
	photo := "ftp://example.com/me.png"
	if _, err := us.UpdateProfile(as(u), UpdateProfileInput{PhotoURL: &photo}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad photo url: want validation, got %v", err)
	}

	me, err := us.GetProfile(as(u))
	if err != nil || me.ID != u.ID {
		t.Fatalf("GetProfile: %+v err=%v", me, err)
	}
	if _, err := us.GetUser(as(u), uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing user: want not_found, got %v", err)
	}
	if _, err := us.GetProfile(context.Background()); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("anonymous: want unauthenticated, got %v", err)
	}
}
