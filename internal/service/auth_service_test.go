package service

import (
	"testing"

	"stockcast-api/internal/config"
	"stockcast-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byEmail    map[string]*model.User
	byGoogleID map[string]*model.User
	created    *model.User
	updated    *model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byEmail:    make(map[string]*model.User),
		byGoogleID: make(map[string]*model.User),
	}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		if u.GoogleID != nil {
			repo.byGoogleID[*u.GoogleID] = u
		}
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByGoogleID(googleID string) (*model.User, error) {
	if u, ok := f.byGoogleID[googleID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(user *model.User) error {
	f.created = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.updated = user
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(id uuid.UUID) error { return nil }

func newAuthServiceForTest(repo *fakeUserRepo) AuthService {
	return NewAuthService(repo, &config.Config{}, testLogger())
}

func localUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Email:        email,
		Name:         "Jane",
		AuthProvider: model.AuthProviderLocal,
	}
	require.NoError(t, user.SetPassword(password))
	return user
}

func TestSignupAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newFakeUserRepo()
	svc := newAuthServiceForTest(repo)

	resp, err := svc.Signup("jane@example.com", "hunter22", "Jane")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	require.NotNil(t, repo.created)
	assert.True(t, repo.created.HasPassword())

	resp, err = svc.Login("jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(localUser(t, "jane@example.com", "hunter22"))
	svc := newAuthServiceForTest(repo)

	_, err := svc.Signup("jane@example.com", "other", "Jane")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo(localUser(t, "jane@example.com", "hunter22"))
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login("jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())

	_, err := svc.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_GoogleOnlyAccountIsRejectedUnchanged(t *testing.T) {
	googleID := "g-123"
	user := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Email:        "jane@example.com",
		Name:         "Jane",
		AuthProvider: model.AuthProviderGoogle,
		GoogleID:     &googleID,
	}
	repo := newFakeUserRepo(user)
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login("jane@example.com", "anything")
	assert.ErrorIs(t, err, ErrGoogleOnlyAccount)

	// The failed attempt must not write a password onto the account.
	assert.False(t, user.HasPassword())
	assert.Nil(t, repo.updated)
}

func TestGoogleAuthURL_NotConfigured(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())

	_, err := svc.GoogleAuthURL("state")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}

func TestGoogleAuthURL_Configured(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		FrontendURL:        "http://localhost:5173",
	}, testLogger())

	url, err := svc.GoogleAuthURL("xyzzy")
	require.NoError(t, err)
	assert.Contains(t, url, "state=xyzzy")
	assert.Contains(t, url, "client_id=client-id")
}

func TestGetUser_NotFound(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())

	_, err := svc.GetUser(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
