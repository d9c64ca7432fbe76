package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding for opaque tokens
	"errors"       // sentinel errors for token parsing
	"time"         // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string; Exp stores the UTC expiration.
// Access tokens are short-lived and sent in the Authorization header when
// calling tenant-scoped endpoints in bearer mode.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidUserToken is returned by ParseUserToken for any token that is
// malformed, badly signed, expired, or not a user token.
var ErrInvalidUserToken = errors.New("invalid user token")

// NewUserToken builds and signs an HS256 JWT for a user.  The claims carry
// the user id as the subject and type=user so tokens from other issuers
// sharing the secret cannot be replayed against the reservation pipeline.
func NewUserToken(secret, userID string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": "user",
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseUserToken validates a bearer token and returns the user id from its
// subject claim.  Only HMAC-signed tokens with type=user are accepted.
func ParseUserToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidUserToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidUserToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidUserToken
	}
	if typ, _ := claims["type"].(string); typ != "user" {
		return "", ErrInvalidUserToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidUserToken
	}
	return sub, nil
}

// RandomToken returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  It mints reservation tokens,
// order ids and internal user ids.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
