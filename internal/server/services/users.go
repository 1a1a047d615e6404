package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/config"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Revoker tracks logged-out session token ids.
type Revoker interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session is an issued session token and its claims.
type Session struct {
	Token  string
	Claims *auth.Claims
}

type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	jwtSecret               []byte
	sessionValidityDuration time.Duration
	revoked                 Revoker
}

// NewUserService builds the service. revoked may be nil, in which case
// logout only clears the cookie.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, revoked Revoker) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		jwtSecret:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
		revoked:                 revoked,
	}
}

func (s *UserService) SessionValidity() time.Duration {
	return s.sessionValidityDuration
}

// Signup checks, in order: an existing account, the email syntax and the
// password length.
func (s *UserService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !validEmail(email) {
		return nil, common.ErrorInvalidEmail
	}
	if len(password) < common.MinPasswordLength {
		return nil, common.ErrorPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Login verifies the credentials and issues a session token. Unknown
// users and wrong passwords are both common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	token, claims, err := auth.GenerateToken(user.ID, s.jwtSecret, s.sessionValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{Token: token, Claims: claims}, nil
}

// Identify resolves a session token to its user.
func (s *UserService) Identify(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("error checking revocation: %w", err)
		}
		if revoked {
			return nil, nil, common.ErrTokenRevoked
		}
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, claims, nil
}

func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoked == nil || claims == nil {
		return nil
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.revoked.Revoke(ctx, claims.ID, exp)
}
