// Package session keeps admin login tokens and browser sessions in Redis.
//
// The bot issues a one-time login token bound to an admin's chat ID.
// Opening the link redeems the token for a session ID that the browser
// keeps in a cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound   = errors.New("login token not found or already used")
	ErrSessionNotFound = errors.New("session not found")
)

const (
	DefaultLoginTTL   = 10 * time.Minute
	DefaultSessionTTL = 12 * time.Hour
)

type Store struct {
	client     *redis.Client
	loginTTL   time.Duration
	sessionTTL time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client:     client,
		loginTTL:   DefaultLoginTTL,
		sessionTTL: DefaultSessionTTL,
	}
}

// IssueLoginToken creates a single-use token for chatID.
func (s *Store) IssueLoginToken(ctx context.Context, chatID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, loginKey(token), chatID, s.loginTTL).Err(); err != nil {
		return "", fmt.Errorf("redis set login token: %w", err)
	}
	return token, nil
}

// Redeem consumes a login token and opens a session for its chat ID.
func (s *Store) Redeem(ctx context.Context, token string) (string, int64, error) {
	if token == "" {
		return "", 0, ErrTokenNotFound
	}
	raw, err := s.client.GetDel(ctx, loginKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, ErrTokenNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("redis getdel login token: %w", err)
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("corrupt login token value %q: %w", raw, err)
	}

	sessionID := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(sessionID), chatID, s.sessionTTL).Err(); err != nil {
		return "", 0, fmt.Errorf("redis set session: %w", err)
	}
	return sessionID, chatID, nil
}

// Lookup returns the chat ID bound to a session.
func (s *Store) Lookup(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionNotFound
	}
	chatID, err := s.client.Get(ctx, sessionKey(sessionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis get session: %w", err)
	}
	return chatID, nil
}

func (s *Store) SessionTTL() time.Duration {
	return s.sessionTTL
}

func loginKey(token string) string {
	return fmt.Sprintf("login:%s", token)
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
