package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, req models.UpdateProfileRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	return u, nil
}

func (f *fakeUsers) UpdatePhotoURL(_ context.Context, id, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PhotoURL = photoURL
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *TokenSessions) {
	t.Helper()
	sessions := NewTokenSessions()
	users := &fakeUsers{users: make(map[string]*models.User)}
	return NewAuthService(users, sessions, &fakeImages{}, testSecret, time.Hour), sessions
}

func registerBuyer(t *testing.T, auth *AuthService) *models.User {
	t.Helper()
	resp, err := auth.Register(context.Background(), models.RegisterRequest{Email: "buyer@example.com", Password: "secret1", FullName: "Buyer"})
	require.NoError(t, err)
	return &resp.User
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	auth, sessions := newAuthFixture(t)

	var published []*models.Session
	sessions.Subscribe(func(s *models.Session) { published = append(published, s) })

	registered, err := auth.Register(context.Background(), models.RegisterRequest{
		Email: "Buyer@Example.com", Password: "secret1", FullName: "Buyer",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", registered.User.Email)
	assert.Equal(t, models.RoleCustomer, registered.User.Role)

	loggedIn, err := auth.Login(context.Background(), models.LoginRequest{Email: "buyer@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := utils.ValidateToken(loggedIn.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	require.Len(t, published, 2)
	assert.Equal(t, registered.User.ID, published[1].UserID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	auth, _ := newAuthFixture(t)
	req := models.RegisterRequest{Email: "buyer@example.com", Password: "secret1", FullName: "Buyer"}

	_, err := auth.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = auth.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	auth, _ := newAuthFixture(t)
	_, err := auth.Register(context.Background(), models.RegisterRequest{Email: "buyer@example.com", Password: "secret1", FullName: "Buyer"})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), models.LoginRequest{Email: "buyer@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LogoutPublishesNil(t *testing.T) {
	auth, sessions := newAuthFixture(t)

	var published []*models.Session
	sessions.Subscribe(func(s *models.Session) { published = append(published, s) })

	auth.Logout(context.Background())
	assert.Empty(t, published)

	auth.Logout(WithSession(context.Background(), &models.Session{UserID: "u1"}))
	require.Len(t, published, 1)
	assert.Nil(t, published[0])
}

func TestAuthService_UpdateProfileKeepsOmittedFields(t *testing.T) {
	auth, _ := newAuthFixture(t)
	user := registerBuyer(t, auth)

	phone := " 0812 "
	address := "12 Main St"
	updated, err := auth.UpdateProfile(context.Background(), user.ID, models.UpdateProfileRequest{Phone: &phone, Address: &address})

	require.NoError(t, err)
	assert.Equal(t, "Buyer", updated.FullName)
	assert.Equal(t, "0812", updated.Phone)
	assert.Equal(t, "12 Main St", updated.Address)
}

func TestAuthService_UpdateProfileValidation(t *testing.T) {
	auth, _ := newAuthFixture(t)
	user := registerBuyer(t, auth)

	short := "  ab "
	_, err := auth.UpdateProfile(context.Background(), user.ID, models.UpdateProfileRequest{FullName: &short})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "full_name", verr.Field)

	name := "Someone"
	_, err = auth.UpdateProfile(context.Background(), "missing", models.UpdateProfileRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestAuthService_UpdatePhoto(t *testing.T) {
	auth, _ := newAuthFixture(t)
	user := registerBuyer(t, auth)

	url, err := auth.UpdatePhoto(context.Background(), user.ID, strings.NewReader("img"), "me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/profiles/me.png", url)

	profile, err := auth.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, url, profile.PhotoURL)

	noImages := NewAuthService(&fakeUsers{users: map[string]*models.User{}}, NewTokenSessions(), nil, testSecret, time.Hour)
	_, err = noImages.UpdatePhoto(context.Background(), user.ID, strings.NewReader("img"), "me.png")
	assert.ErrorIs(t, err, ErrImageStorageDisabled)
}
