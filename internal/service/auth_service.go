package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"procurement/internal/apperr"
	"procurement/internal/auth"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
)

type LoginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService checks directory credentials and resolves access tokens.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Authenticate(token string) (model.User, error)
}

type authService struct {
	dir    *hierarchy.Directory
	tokens auth.Tokens
}

func NewAuthService(dir *hierarchy.Directory, tokens auth.Tokens) AuthService {
	return &authService{dir: dir, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	u, ok := s.dir.Get(req.UserID)
	if !ok || u.PasswordHash == "" {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrAuthentication)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrAuthentication)
	}
	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

// Authenticate maps a token to its directory user. Tokens whose role no
// longer matches the directory are refused.
func (s *authService) Authenticate(token string) (model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return model.User{}, err
	}
	u, err := lookupActor(s.dir, claims.Subject)
	if err != nil {
		return model.User{}, err
	}
	if u.Role != claims.Role {
		return model.User{}, fmt.Errorf("%w: stale role in token", apperr.ErrAuthentication)
	}
	return u, nil
}
