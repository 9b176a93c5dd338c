package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// Issuer signs and validates access tokens. Tokens are signed with the
// server secret (HS256); when a JWKS URL is configured, tokens carrying a
// key id are checked against that key set instead.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	jwks   *keyfunc.JWKS
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithJWKS fetches the remote key set and keeps it refreshed in the background.
func (i *Issuer) WithJWKS(url string) error {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	i.jwks = jwks
	return nil
}

// Close stops the JWKS refresh goroutine, if any.
func (i *Issuer) Close() {
	if i.jwks != nil {
		i.jwks.EndBackground()
	}
}

// Generate creates a signed access token for a user.
func (i *Issuer) Generate(userID uuid.UUID, userType string, isStaff bool) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID:   userID.String(),
		UserType: userType,
		IsStaff:  isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// Validate verifies a token string and returns its claims.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, i.keyFor)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid JWT")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

func (i *Issuer) keyFor(token *jwt.Token) (interface{}, error) {
	if _, hasKID := token.Header["kid"]; hasKID && i.jwks != nil {
		return i.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return i.secret, nil
}
