package platform

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bundl/bundl/pkg/auth"
)

// TokenIssuer issues and revokes bearer tokens for a verified user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Blacklist(ctx context.Context, token string) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

const tokenTTL = 7 * 24 * time.Hour

// JWTTokenIssuer wraps the teacher's pkg/auth JWT service and adds a
// Redis-backed blacklist set, reusing the connection already wired for
// the Order Cache rather than standing up a second store for one set.
type JWTTokenIssuer struct {
	jwt    auth.JWTServiceInterface
	rdb    *redis.Client
	prefix string
}

func NewJWTTokenIssuer(jwt auth.JWTServiceInterface, rdb *redis.Client, prefix string) *JWTTokenIssuer {
	return &JWTTokenIssuer{jwt: jwt, rdb: rdb, prefix: prefix}
}

func (t *JWTTokenIssuer) Issue(userID string) (string, error) {
	return t.jwt.GenerateJWT(userID, time.Now().Add(tokenTTL))
}

func (t *JWTTokenIssuer) blacklistKey(token string) string {
	return t.prefix + "token:blacklist:" + token
}

func (t *JWTTokenIssuer) Blacklist(ctx context.Context, token string) error {
	return t.rdb.Set(ctx, t.blacklistKey(token), "1", tokenTTL).Err()
}

func (t *JWTTokenIssuer) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := t.rdb.Exists(ctx, t.blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
