package service

import (
	"context"
	"errors"
	"testing"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users  []model.User
	nextID uint
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

type fakePrefRepo struct {
	prefs   []model.UserPreference
	failing bool
}

func (r *fakePrefRepo) GetByUserID(ctx context.Context, userID uint) (*model.UserPreference, error) {
	for i := range r.prefs {
		if r.prefs[i].UserID == userID {
			p := r.prefs[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePrefRepo) Upsert(ctx context.Context, pref *model.UserPreference, opts ...utils.DBOption) error {
	if r.failing {
		return errors.New("upsert failed")
	}
	for i := range r.prefs {
		if r.prefs[i].UserID == pref.UserID {
			r.prefs[i] = *pref
			return nil
		}
	}
	r.prefs = append(r.prefs, *pref)
	return nil
}

type fakeUnitOfWork struct {
	runs int
}

func (u *fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	u.runs++
	return fn()
}

type authServiceFixture struct {
	svc      AuthService
	userRepo *fakeUserRepo
	prefRepo *fakePrefRepo
	uow      *fakeUnitOfWork
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost

	userRepo := &fakeUserRepo{}
	prefRepo := &fakePrefRepo{}
	uow := &fakeUnitOfWork{}

	return &authServiceFixture{
		svc:      NewAuthService(cfg, userRepo, prefRepo, uow, log),
		userRepo: userRepo,
		prefRepo: prefRepo,
		uow:      uow,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user with a starter preferences row", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		resp, err := f.svc.Register(ctx, dto.RegisterRequest{
			Username: "satoshi", Email: "satoshi@example.com", Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		assert.Equal(t, "satoshi", resp.Username)
		assert.NotZero(t, resp.ID)

		require.Len(t, f.userRepo.users, 1)
		assert.NotEqual(t, "hunter2hunter2", f.userRepo.users[0].PasswordHash)

		assert.Equal(t, 1, f.uow.runs, "user and preferences go through one transaction")
		require.Len(t, f.prefRepo.prefs, 1)
		assert.Equal(t, resp.ID, f.prefRepo.prefs[0].UserID)
		assert.JSONEq(t, `{}`, string(f.prefRepo.prefs[0].Preferences))
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		_, err := f.svc.Register(ctx, dto.RegisterRequest{
			Username: "satoshi", Email: "satoshi@example.com", Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, dto.RegisterRequest{
			Username: "satoshi", Email: "other@example.com", Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, ErrUserExists)
		assert.Equal(t, 1, f.uow.runs, "the duplicate never reaches the transaction")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		_, err := f.svc.Register(ctx, dto.RegisterRequest{
			Username: "satoshi", Email: "satoshi@example.com", Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, dto.RegisterRequest{
			Username: "finney", Email: "satoshi@example.com", Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("preferences failure fails the registration", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.prefRepo.failing = true

		_, err := f.svc.Register(ctx, dto.RegisterRequest{
			Username: "satoshi", Email: "satoshi@example.com", Password: "hunter2hunter2",
		})
		assert.Error(t, err)
		assert.Equal(t, 1, f.uow.runs)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthServiceFixture(t)

	_, err := f.svc.Register(ctx, dto.RegisterRequest{
		Username: "satoshi", Email: "satoshi@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, dto.LoginRequest{Username: "satoshi", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "satoshi", resp.Username)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Username: "satoshi", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user and wrong password are indistinguishable to the caller.
	_, err = f.svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
