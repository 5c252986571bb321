package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/telemetry/tracing"
	"github.com/soodoh/openfit/pkg"
)

const minPasswordLength = 8

var ErrWrongCredentials = apperr.New("login", apperr.ErrUnauthorized, "wrong username or password")

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Service struct {
	users       Users
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	// HashPasswordFunc can be swapped for a cheaper hash in tests
	HashPasswordFunc func(password string) (string, error)
}

func NewService(users Users, ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		users:            users,
		ttl:              ttl,
		redisClient:      redisClient,
		RandStringFunc:   pkg.GenerateRandomString,
		HashPasswordFunc: pkg.HashPassword,
	}
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, creds Credentials, admin bool, createdAt time.Time) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	const op = "register"
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return nil, apperr.Validation(op, "username is required")
	}
	if len(creds.Password) < minPasswordLength {
		return nil, apperr.Validation(op, "password must have at least %d characters", minPasswordLength)
	}

	hash, err := s.HashPasswordFunc(creds.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Admin:        admin,
		CreatedAt:    createdAt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Infof("auth: registered user %s [%s] admin: %t", u.Username, u.ID, u.Admin)
	return u, nil
}

// Login checks the credentials and opens a session. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	u, err := s.users.ByUsername(ctx, strings.TrimSpace(creds.Username))
	if apperr.IsNotFound(err) {
		return "", ErrWrongCredentials
	}
	if err != nil {
		return "", err
	}
	if !pkg.CheckPasswordHash(creds.Password, u.PasswordHash) {
		return "", ErrWrongCredentials
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return "", err
	}

	id := Identity{UserID: u.ID, Admin: u.Admin}
	if err := s.redisClient.Set(ctx, sessionKey(token), sessionValue(id, createdAt), 0).Err(); err != nil {
		return "", err
	}
	// add token to the set of sessions, walked by ScanAndClean
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Logout ends the session. It reports whether the token was logged in.
func (s *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = s.redisClient.Get(ctx, sessionKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
		return false, err
	}
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context, now time.Time) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}
	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Infof("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		val, err := s.redisClient.Get(ctx, sessionKey(token)).Result()
		if errors.Is(err, redis.Nil) {
			toRemove = append(toRemove, token)
			continue
		}
		if err != nil {
			log.Errorf("=> auth service, scan and clean token: %s", err)
			continue
		}

		_, createdAt, err := parseSessionValue(val)
		if err != nil || now.Sub(createdAt) > s.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Errorf("=> auth service, clean token: %s", err)
			continue
		}
		// remove token from the set of sessions
		if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> auth service, clean token: %s", err)
			continue
		}
	}
	log.Infof("=> auth service, scan and clean removed %d sessions", len(toRemove))
}
