// Package auth registers the owner account and issues bearer tokens for the
// HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/go-crm-nosql/internal/pkg/id"
	"github.com/go-crm-nosql/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// Result is returned by Register and Login.
type Result struct {
	Bearer string       `json:"Bearer"`
	User   *domain.User `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*Result, error)
	Login(ctx context.Context, req domain.LoginRequest) (*Result, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type jwtSigner interface {
	Sign(userID, email string) (string, error)
}

type service struct {
	users  userStore
	jwt    jwtSigner
	logger *zap.Logger
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider jwtSigner
	Logger      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{users: deps.UserRepo, jwt: deps.JWTProvider, logger: logger}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("auth: user registered", zap.String("user_id", u.UserID))
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) issue(u *domain.User) (*Result, error) {
	bearer, err := s.jwt.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Result{Bearer: bearer, User: u}, nil
}
