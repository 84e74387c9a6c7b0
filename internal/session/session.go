// internal/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/logger"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/utils"
)

// Storage keys
const (
	KeyToken        = "auth-token"
	KeyUser         = "auth-user"
	KeyRefreshToken = "auth-refresh-token"
)

var ErrNoRefreshToken = errors.New("no refresh token stored")

type Status string

const (
	StatusLoading       Status = "loading"
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
	StatusExpired       Status = "expired"
)

// State is a snapshot of the session.
type State struct {
	User    *models.User
	Token   string
	Loading bool
	Status  Status
}

func (s State) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// AuthAPI is the subset of the auth endpoints the session drives.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
}

// Storage persists credentials between runs.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetSealed(ctx context.Context, key, value string) error
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Session struct {
	auth          AuthAPI
	storage       Storage
	refreshWindow time.Duration
	now           func() time.Time
	log           *logrus.Entry

	mu           sync.Mutex
	state        State
	refreshToken string

	subject observer.Subject[State]
}

func New(auth AuthAPI, storage Storage, cfg config.SessionConfig) *Session {
	return &Session{
		auth:          auth,
		storage:       storage,
		refreshWindow: cfg.RefreshBefore(),
		now:           time.Now,
		log:           logrus.WithField("component", "session"),
		state:         State{Loading: true, Status: StatusLoading},
	}
}

// Token returns the current bearer token; it makes Session an api.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe registers fn for every state transition.
func (s *Session) Subscribe(fn func(State)) func() {
	return s.subject.Subscribe(fn)
}

func (s *Session) set(st State, refreshToken string) {
	s.mu.Lock()
	s.state = st
	s.refreshToken = refreshToken
	snap := s.snapshot()
	s.mu.Unlock()

	s.subject.Publish(snap)
}

// Init restores a persisted session. A token whose exp has passed is
// dropped without a network call; otherwise the token is validated with
// /auth/me. Any failure clears storage.
func (s *Session) Init(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read stored token")
		s.clear(ctx, StatusAnonymous)
		return nil
	}
	var saved models.User
	hasUser, err := s.storage.GetJSON(ctx, KeyUser, &saved)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read stored user")
		hasUser = false
	}

	if !hasToken || !hasUser {
		s.clear(ctx, StatusAnonymous)
		return nil
	}

	if utils.TokenExpired(token, s.now()) {
		s.log.Info("Stored token has expired")
		s.clear(ctx, StatusExpired)
		return nil
	}

	refreshToken, _, _ := s.storage.Get(ctx, KeyRefreshToken)

	// The token must be visible to the API client before validating it.
	s.mu.Lock()
	s.state.Token = token
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)
	if err != nil || user == nil {
		if errors.Is(err, api.ErrSessionExpired) {
			s.clear(ctx, StatusExpired)
		} else {
			s.log.WithError(err).Warn("Auth initialization error")
			s.clear(ctx, StatusAnonymous)
		}
		return nil
	}

	if err := s.storage.SetJSON(ctx, KeyUser, user); err != nil {
		s.log.WithError(err).Warn("Failed to persist user")
	}
	s.set(State{User: user, Token: token, Status: StatusAuthenticated}, refreshToken)
	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"token":   logger.TokenPrefix(token),
	}).Debug("Session restored")
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *Session) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	resp, err := s.auth.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *Session) establish(ctx context.Context, resp *models.AuthResponse) error {
	if resp == nil || resp.Token == "" || resp.User == nil {
		return fmt.Errorf("auth response is missing the token or user")
	}

	if err := s.storage.SetSealed(ctx, KeyToken, resp.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.SetJSON(ctx, KeyUser, resp.User); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if resp.RefreshToken != "" {
		if err := s.storage.SetSealed(ctx, KeyRefreshToken, resp.RefreshToken); err != nil {
			return fmt.Errorf("failed to persist refresh token: %w", err)
		}
	}

	s.set(State{User: resp.User, Token: resp.Token, Status: StatusAuthenticated}, resp.RefreshToken)
	s.log.WithField("user_id", resp.User.ID).Info("Logged in")
	return nil
}

// Logout tells the API and clears local state. Local state is cleared even
// when the API call fails.
func (s *Session) Logout(ctx context.Context) error {
	var apiErr error
	if s.Token() != "" {
		apiErr = s.auth.Logout(ctx)
		if apiErr != nil && !errors.Is(apiErr, api.ErrSessionExpired) {
			s.log.WithError(apiErr).Warn("Logout error")
		}
	}
	s.clear(ctx, StatusAnonymous)
	if errors.Is(apiErr, api.ErrSessionExpired) {
		return nil
	}
	return apiErr
}

// Expire is the handler for a 401 on an authenticated call.
func (s *Session) Expire() {
	s.log.Info("Session expired, logging out")
	s.clear(context.Background(), StatusExpired)
}

func (s *Session) clear(ctx context.Context, status Status) {
	if err := s.storage.Delete(ctx, KeyToken, KeyUser, KeyRefreshToken); err != nil {
		s.log.WithError(err).Warn("Failed to clear stored credentials")
	}
	s.set(State{Status: status}, "")
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	user := s.state.User
	s.mu.Unlock()

	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.auth.Refresh(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("refresh response carried no token")
	}
	if resp.RefreshToken != "" {
		refreshToken = resp.RefreshToken
	}
	if resp.User != nil {
		user = resp.User
	}

	if err := s.storage.SetSealed(ctx, KeyToken, resp.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.SetSealed(ctx, KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}

	s.set(State{User: user, Token: resp.Token, Status: StatusAuthenticated}, refreshToken)
	s.log.Debug("Access token refreshed")
	return nil
}

// EnsureFresh refreshes the token when it expires within the refresh window.
// It is never called on a timer; callers invoke it before long operations.
func (s *Session) EnsureFresh(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return api.ErrAuthRequired
	}
	if !utils.TokenExpiresWithin(token, s.now(), s.refreshWindow) {
		return nil
	}
	s.mu.Lock()
	canRefresh := s.refreshToken != ""
	s.mu.Unlock()
	if !canRefresh {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *Session) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.auth.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("profile response carried no user")
	}
	if err := s.storage.SetJSON(ctx, KeyUser, user); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	s.mu.Lock()
	st := s.state
	refreshToken := s.refreshToken
	s.mu.Unlock()
	st.User = user
	s.set(st, refreshToken)
	return user, nil
}
