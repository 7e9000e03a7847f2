package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"stockcast-api/internal/config"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"
	"stockcast-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	// ErrGoogleOnlyAccount is returned when a password login hits an account
	// created through Google sign-in. The account's (empty) password is
	// never touched on a failed attempt.
	ErrGoogleOnlyAccount = errors.New("this account uses Google sign-in, please log in with Google")
	ErrOAuthNotConfigured = errors.New("Google OAuth credentials not configured")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthResponse is returned by every successful authentication path.
type AuthResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Signup(email, password, name string) (*AuthResponse, error)
	Login(email, password string) (*AuthResponse, error)
	GoogleAuthURL(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*AuthResponse, error)
	GetUser(id uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	oauth    *oauth2.Config
	logger   *logrus.Logger
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config, logger *logrus.Logger) AuthService {
	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		redirectURL := cfg.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = cfg.FrontendURL + "/auth/google/callback"
		}
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return &authService{
		userRepo: userRepo,
		oauth:    oauthCfg,
		logger:   logger,
	}
}

func (s *authService) Signup(email, password, name string) (*AuthResponse, error) {
	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		AuthProvider: model.AuthProviderLocal,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authService) Login(email, password string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.HasPassword() {
		return nil, ErrGoogleOnlyAccount
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		s.logger.WithError(err).Warn("failed to record login time")
	}

	return s.issueToken(user)
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthNotConfigured
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// googleUserInfo is the subset of the userinfo payload the app needs.
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	if s.oauth == nil {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email address")
	}

	user, err := s.findOrCreateGoogleUser(info)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		s.logger.WithError(err).Warn("failed to record login time")
	}

	return s.issueToken(user)
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("google userinfo decode failed: %w", err)
	}
	return &info, nil
}

// findOrCreateGoogleUser resolves the Google identity to a local account:
// by Google ID first, then by email (linking the Google ID onto an existing
// local account), creating a new passwordless account otherwise.
func (s *authService) findOrCreateGoogleUser(info *googleUserInfo) (*model.User, error) {
	if user, err := s.userRepo.FindByGoogleID(info.ID); err == nil {
		return user, nil
	}

	user, err := s.userRepo.FindByEmail(info.Email)
	if err == nil {
		user.GoogleID = &info.ID
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &model.User{
		Email:        info.Email,
		Name:         info.Name,
		AuthProvider: model.AuthProviderGoogle,
		GoogleID:     &info.ID,
	}
	if user.Name == "" {
		user.Name = info.Email
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) GetUser(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) issueToken(user *model.User) (*AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}
