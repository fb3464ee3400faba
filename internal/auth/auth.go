// Package auth implements credentials authentication and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mingle/internal/models"
	"mingle/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "mingle_session"
	// SessionTTL is the session lifetime; there is no refresh mechanism,
	// expired tokens simply fail parsing.
	SessionTTL = 24 * time.Hour

	tokenIssuer   = "mingle-api"
	tokenAudience = "mingle-client"

	revokedKeyPrefix = "session_revoked:"
)

// Session identifies an authenticated browser.
type Session struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// Service authenticates credentials and issues, parses and revokes sessions.
type Service struct {
	users  repository.UserRepository
	redis  *redis.Client
	secret []byte
}

// NewService builds an auth service. redis may be nil; revocation then
// degrades to expiry-only sessions.
func NewService(users repository.UserRepository, rdb *redis.Client, secret string) *Service {
	return &Service{users: users, redis: rdb, secret: []byte(secret)}
}

// Authenticate validates a username/password pair.
//
// Unknown usernames fail with ACCOUNT_NOT_FOUND. Admin accounts must match
// their bcrypt hash or fail with WRONG_PASSWORD. Non-admin attendees carry
// no credential and succeed unconditionally. The returned record has the
// password blanked.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewAccountNotFoundError()
	}

	if user.IsAdmin() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return nil, models.NewWrongPasswordError()
		}
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// IssueSession creates a signed session token for the given user.
func (s *Service) IssueSession(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(SessionTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseSession validates a session token and returns the session it names.
// Absent, malformed, expired and revoked tokens all return an error.
func (s *Service) ParseSession(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Session required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid session claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid session issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, models.NewUnauthorizedError("Invalid session audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in session")
	}

	sess := &Session{UserID: uint(userID)}
	if username, usernameOk := claims["username"].(string); usernameOk {
		sess.Username = username
	}
	if jti, jtiOk := claims["jti"].(string); jtiOk {
		sess.JTI = jti
	}
	if exp, expOk := claims["exp"].(float64); expOk {
		sess.ExpiresAt = time.Unix(int64(exp), 0)
	}

	if sess.JTI != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, revokedKeyPrefix+sess.JTI).Result()
		if err == nil && revoked > 0 {
			return nil, models.NewUnauthorizedError("Session has been revoked")
		}
	}

	return sess, nil
}

// Revoke blacklists the session's token id for its remaining lifetime.
func (s *Service) Revoke(ctx context.Context, sess *Session) {
	if s.redis == nil || sess == nil || sess.JTI == "" {
		return
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return
	}
	s.redis.Set(ctx, revokedKeyPrefix+sess.JTI, "1", ttl)
}

// CurrentUser resolves the session's user against the store. Returns
// (nil, nil) when the session is nil or the user was deleted since the
// token was issued.
func (s *Service) CurrentUser(ctx context.Context, sess *Session) (*models.User, error) {
	if sess == nil {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
