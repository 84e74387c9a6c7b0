// internal/api/auth.go
package api

import (
	"context"

	"github.com/vibing/vibing-client/internal/models"
)

type AuthService struct {
	c *Client
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.c.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.c.Post(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.Post(ctx, "/auth/logout", nil, nil)
}

// Refresh exchanges a refresh token for a new access token. The response
// carries only the token fields.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := map[string]string{"refreshToken": refreshToken}
	if err := s.c.Post(ctx, "/auth/refresh", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := s.c.Get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := s.c.Put(ctx, "/auth/profile", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *AuthService) SendVerificationCode(ctx context.Context, phone string) (*models.VerificationCodeResponse, error) {
	var resp models.VerificationCodeResponse
	body := map[string]string{"phone": phone}
	if err := s.c.Post(ctx, "/auth/send-verification-code", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) VerifyPhone(ctx context.Context, phone, code string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"phone": phone, "code": code}
	if err := s.c.Post(ctx, "/auth/verify-phone", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
