package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.User, error)
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
}

type AuthService struct {
	users    UserStore
	sessions *TokenSessions
	images   ImageStore
	secret   string
	expiry   time.Duration
}

// NewAuthService wires account handling. images may be nil, in which case
// avatar uploads fail with ErrImageStorageDisabled.
func NewAuthService(users UserStore, sessions *TokenSessions, images ImageStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		images:   images,
		secret:   secret,
		expiry:   expiry,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashedPassword,
		Role:     models.RoleCustomer,
		FullName: req.FullName,
		Phone:    req.Phone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout only notifies subscribers; tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context) {
	if _, ok := SessionFromContext(ctx); ok {
		s.sessions.Publish(nil)
	}
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrLoginRequired
	}
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	for _, field := range []*string{req.FullName, req.Phone, req.Address} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if req.FullName != nil && len(*req.FullName) < 3 {
		return nil, &ValidationError{Field: "full_name", Reason: "must be at least 3 characters"}
	}

	user, err := s.users.UpdateProfile(ctx, userID, req)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrLoginRequired
	}
	return user, err
}

// UpdatePhoto uploads a profile picture and stores its URL on the user.
func (s *AuthService) UpdatePhoto(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	if s.images == nil {
		return "", ErrImageStorageDisabled
	}

	url, _, err := s.images.UploadImage(ctx, file, filename, "profiles")
	if err != nil {
		return "", err
	}

	if err := s.users.UpdatePhotoURL(ctx, userID, url); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrLoginRequired
		}
		return "", err
	}
	return url, nil
}

func (s *AuthService) issue(user *models.User) (*models.LoginResponse, error) {
	token, claims, err := utils.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return nil, err
	}

	s.sessions.Publish(claims.Session())

	return &models.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}
