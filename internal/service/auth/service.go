package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	jwtauth "github.com/jwalitptl/pharmacy-portal/pkg/auth"
)

const bcryptCost = 12

// Service is the auth platform: credential storage, sessions and the
// current-user lookup that refreshes expired sessions.
type Service interface {
	SignUp(ctx context.Context, email, password string, metadata model.JSONMap) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	// GetUser resolves the user behind the session tokens. When the access
	// token has expired and the refresh token is still good, a renewed
	// session is returned alongside the user.
	GetUser(ctx context.Context, accessToken, refreshToken string) (*model.User, *model.Session, error)
}

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(tokenID string, until time.Time)
	Revoked(tokenID string) bool
}

// Rotations maps a spent refresh token id onto the session that replaced it
// for a short reuse window.
type Rotations interface {
	Remember(tokenID string, session *model.Session)
	Recall(tokenID string) (*model.Session, bool)
}

type service struct {
	users     repository.UserRepository
	jwt       jwtauth.JWTService
	denylist  Denylist
	rotations Rotations
	log       zerolog.Logger
	now       func() time.Time

	// serializes refresh rotation so one token is spent once
	refreshMu sync.Mutex
}

// NewService builds the auth service. rotations may be nil, in which case a
// spent refresh token is rejected immediately.
func NewService(users repository.UserRepository, jwt jwtauth.JWTService, denylist Denylist, rotations Rotations, log zerolog.Logger) Service {
	return &service{
		users:     users,
		jwt:       jwt,
		denylist:  denylist,
		rotations: rotations,
		log:       log.With().Str("service", "auth").Logger(),
		now:       time.Now,
	}
}

func (s *service) SignUp(ctx context.Context, email, password string, metadata model.JSONMap) (*model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.AuthUser{
		ID:           uuid.New(),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Metadata:     metadata,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return s.issue(toUser(user))
}

func (s *service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := s.users.TouchSignIn(ctx, user.ID, s.now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record sign-in")
	}
	return s.issue(toUser(user))
}

// SignOut revokes both tokens. Unparseable tokens are ignored.
func (s *service) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := s.jwt.ValidateToken(accessToken); err == nil {
		s.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	if claims, err := s.jwt.ValidateRefreshToken(refreshToken); err == nil {
		s.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	return nil
}

func (s *service) GetUser(ctx context.Context, accessToken, refreshToken string) (*model.User, *model.Session, error) {
	if accessToken != "" {
		claims, err := s.jwt.ValidateToken(accessToken)
		if err == nil && !s.denylist.Revoked(claims.ID) {
			id, err := jwtauth.UserID(claims)
			if err != nil {
				return nil, nil, err
			}
			return &model.User{ID: id, Email: claims.Email}, nil, nil
		}
		if err != nil && !errors.Is(err, jwtauth.ErrExpiredToken) {
			s.log.Debug().Err(err).Msg("rejected access token")
		}
	}

	if refreshToken == "" {
		return nil, nil, model.ErrNoSession
	}
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, model.ErrNoSession
	}
	if session, ok := s.recall(claims.ID); ok {
		return session.User, session, nil
	}
	if s.denylist.Revoked(claims.ID) {
		return nil, nil, model.ErrNoSession
	}
	id, err := jwtauth.UserID(claims)
	if err != nil {
		return nil, nil, model.ErrNoSession
	}

	stored, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, model.ErrNoSession
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another request may have rotated this token while the user loaded
	if session, ok := s.recall(claims.ID); ok {
		return session.User, session, nil
	}
	if s.denylist.Revoked(claims.ID) {
		return nil, nil, model.ErrNoSession
	}

	// Refresh tokens rotate: the presented one is spent.
	session, err := s.issue(toUser(stored))
	if err != nil {
		return nil, nil, err
	}
	s.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	if s.rotations != nil {
		s.rotations.Remember(claims.ID, session)
	}
	return session.User, session, nil
}

// recall returns the session that replaced a spent refresh token, unless that
// session has itself been revoked since.
func (s *service) recall(tokenID string) (*model.Session, bool) {
	if s.rotations == nil {
		return nil, false
	}
	session, ok := s.rotations.Recall(tokenID)
	if !ok {
		return nil, false
	}
	successor, err := s.jwt.ValidateRefreshToken(session.RefreshToken)
	if err != nil || s.denylist.Revoked(successor.ID) {
		return nil, false
	}
	return session, true
}

func (s *service) issue(user *model.User) (*model.Session, error) {
	access, accessExp, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, refreshExp, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.Session{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}

func toUser(u *model.AuthUser) *model.User {
	return &model.User{ID: u.ID, Email: u.Email, Metadata: u.Metadata}
}
