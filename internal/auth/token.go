package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidDestination is returned when a token's dest claim does not name a shop.
var ErrInvalidDestination = errors.New("session token dest is not a shop URL")

// Claims is the payload of an embedded-app session token.
type Claims struct {
	Dest      string `json:"dest"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Shop returns the shop host named by the dest claim.
func (c *Claims) Shop() (string, error) {
	parsed, err := url.Parse(c.Dest)
	if err != nil || parsed.Host == "" {
		return "", ErrInvalidDestination
	}
	return strings.ToLower(parsed.Host), nil
}

// SessionVerifier validates session tokens minted by the Shopify admin for this app.
type SessionVerifier struct {
	apiKey string
	secret []byte
	leeway time.Duration
}

// NewSessionVerifier builds a verifier for the app identified by apiKey.
func NewSessionVerifier(apiKey, apiSecret string, leeway time.Duration) *SessionVerifier {
	return &SessionVerifier{apiKey: apiKey, secret: []byte(apiSecret), leeway: leeway}
}

// Configured reports whether credentials are present.
func (v *SessionVerifier) Configured() bool {
	return v != nil && v.apiKey != "" && len(v.secret) > 0
}

// Verify checks signature, audience and lifetime and returns the claims.
func (v *SessionVerifier) Verify(tokenStr string) (*Claims, error) {
	if !v.Configured() {
		return nil, errors.New("session verifier is not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if _, err := claims.Shop(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Issue signs a session token for shop and userID valid for ttl. It mirrors what the
// Shopify admin mints and is used by local tooling and tests.
func (v *SessionVerifier) Issue(shop, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	dest := fmt.Sprintf("https://%s", shop)
	claims := &Claims{
		Dest: dest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    dest + "/admin",
			Subject:   userID,
			Audience:  jwt.ClaimStrings{v.apiKey},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
