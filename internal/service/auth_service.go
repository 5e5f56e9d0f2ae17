package service

import (
	"context"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetPreferences(ctx context.Context, userID uint) (*model.UserPreference, error)
	SavePreferences(ctx context.Context, userID uint, req dto.SavePreferencesRequest) (*model.UserPreference, error)
}

type authService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	prefRepo repository.UserPreferenceRepository
	uow      repository.UnitOfWork
	logger   *logger.Logger
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, prefRepo repository.UserPreferenceRepository, uow repository.UnitOfWork, log *logger.Logger) AuthService {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
		prefRepo: prefRepo,
		uow:      uow,
		logger:   log,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	existing, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	// The user row and its starter preferences row land in one transaction
	// so no user ever exists without a preferences record.
	err = s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.userRepo.Create(ctx, user, opts...); err != nil {
			return err
		}
		pref := &model.UserPreference{
			UserID:      user.ID,
			Preferences: datatypes.JSON([]byte(`{}`)),
		}
		return s.prefRepo.Upsert(ctx, pref, opts...)
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// Login deliberately returns the same error for an unknown username and a
// wrong password.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &dto.AuthResponse{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *authService) GetPreferences(ctx context.Context, userID uint) (*model.UserPreference, error) {
	pref, err := s.prefRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return nil, ErrNotFound
	}
	return pref, nil
}

func (s *authService) SavePreferences(ctx context.Context, userID uint, req dto.SavePreferencesRequest) (*model.UserPreference, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	pref := &model.UserPreference{
		UserID:      userID,
		Preferences: []byte(req.Preferences),
	}
	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
