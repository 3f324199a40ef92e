// Package token mints and verifies the room access tokens consumed by
// ConnectOptions. Tokens are HS256 JWTs carrying a room grant; the SDK itself
// treats them as opaque credentials.
package token

import (
	"errors"
	"time"

	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = time.Hour

// RoomGrant scopes a token to a room. An empty Room allows the holder to
// create a new room on connect.
type RoomGrant struct {
	Room string `json:"room,omitempty"`
	Join bool   `json:"join"`
}

// Claims is the JWT payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Grant *RoomGrant `json:"grant,omitempty"`
}

// Identity returns the participant identity the token was minted for.
func (c *Claims) Identity() string {
	return c.Subject
}

// AccessToken builds signed room access tokens.
type AccessToken struct {
	apiKey    string
	apiSecret string
	identity  string
	ttl       time.Duration
	grant     *RoomGrant
}

// New creates an access token builder for the given API key pair.
func New(apiKey, apiSecret string) *AccessToken {
	return &AccessToken{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       DefaultTTL,
	}
}

// SetIdentity sets the participant identity embedded in the token.
func (t *AccessToken) SetIdentity(identity string) *AccessToken {
	t.identity = identity
	return t
}

// SetTTL sets the token lifetime.
func (t *AccessToken) SetTTL(ttl time.Duration) *AccessToken {
	if ttl > 0 {
		t.ttl = ttl
	}
	return t
}

// SetGrant attaches a room grant.
func (t *AccessToken) SetGrant(grant *RoomGrant) *AccessToken {
	t.grant = grant
	return t
}

// JWT signs and returns the token string.
func (t *AccessToken) JWT() (string, error) {
	if t.apiKey == "" || t.apiSecret == "" {
		return "", apperrors.NewAppError(apperrors.ErrCodeInvalidArgument, "api key and secret are required")
	}
	if t.identity == "" {
		return "", apperrors.NewAppError(apperrors.ErrCodeInvalidArgument, "token identity is required")
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.apiKey,
			Subject:   t.identity,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Grant: t.grant,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.apiSecret))
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrCodeInternal, err)
	}
	return raw, nil
}

// IdentityFromToken extracts the subject claim without verifying the
// signature. Only the server can verify; the client uses this for display.
func IdentityFromToken(raw string) string {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	return claims.Subject
}

// Verify parses a token string and validates its signature and lifetime.
func Verify(raw, apiSecret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(apiSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.WrapError(apperrors.ErrCodeTokenExpired, err)
		}
		return nil, apperrors.WrapError(apperrors.ErrCodeInvalidToken, err)
	}
	return claims, nil
}
