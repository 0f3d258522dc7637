package security

import (
	"time"

	"gamebot-panel/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and parses the session cookie payload. The token only
// carries the session ID and user ID; the session itself lives in redis and
// can be revoked there independently of the token's exp claim.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (c *TokenCodec) Issue(sessionID, userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse validates the signature and expiry and returns (sessionID, userID).
func (c *TokenCodec) Parse(token string) (string, string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" || claims.Subject == "" {
		return "", "", domain.ErrUnauthorized
	}
	return claims.SessionID, claims.Subject, nil
}
