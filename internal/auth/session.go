package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "openfit-session||"
	tokensSetKey     = "openfit-sessions"
	tokenLength      = 35
)

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// sessionValue is stored under the session key as "<user id>|<admin>|<unix
// created at>".
func sessionValue(id Identity, createdAt time.Time) string {
	return fmt.Sprintf("%s|%t|%d", id.UserID, id.Admin, createdAt.Unix())
}

func parseSessionValue(v string) (Identity, time.Time, error) {
	parts := strings.Split(v, "|")
	if len(parts) != 3 {
		return Identity{}, time.Time{}, fmt.Errorf("malformed session value")
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("session user: %w", err)
	}
	admin, err := strconv.ParseBool(parts[1])
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("session admin flag: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("session created at: %w", err)
	}
	return Identity{UserID: userID, Admin: admin}, time.Unix(createdAtUnix, 0), nil
}
