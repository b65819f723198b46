package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-api/internal/auth/domain"
	"github.com/devfolio/portfolio-api/internal/auth/repository"
	"github.com/devfolio/portfolio-api/internal/logging"
)

var errNoToken = errors.New("missing token")

// Session is returned by Register and Login.
type Session struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users  repository.Store
	tokens *TokenIssuer
	log    *zap.Logger
	cost   int
}

func NewAuthService(users repository.Store, tokens *TokenIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

// Register creates the admin account. It is only open while no account
// exists.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*Session, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrRegistrationClosed
	}

	u, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.log).Info("admin registered", zap.String("user_id", u.ID))
	return s.session(u)
}

// EnsureAdmin creates the account described by req unless a user with that
// username or email already exists. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, req domain.RegisterRequest) (bool, error) {
	if err := req.Normalize(); err != nil {
		return false, err
	}
	if _, err := s.create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) create(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
	})
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logging.FromContext(ctx, s.log).Warn("login rejected", zap.String("username", u.Username))
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to a still-existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, errNoToken)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrUserNotFound)
	}
	return u, err
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", domain.ErrValidation)
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, u.ID, string(hash))
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}
