package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "kind" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"access_expires_at"`
	RefreshExp   time.Time `json:"refresh_expires_at"`
	accessID     string
	refreshID    string
}

// Claims represents JWT payload.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued to.
func (c Claims) UserID() string { return c.Subject }

// Issue issues signed access and refresh tokens for subject. Each token gets its own jti.
func Issue(subject, issuer, key string, accessTTL, refreshTTL time.Duration, now time.Time) (TokenPair, error) {
	pair := TokenPair{
		AccessExp:  now.Add(accessTTL),
		RefreshExp: now.Add(refreshTTL),
		accessID:   uuid.NewString(),
		refreshID:  uuid.NewString(),
	}

	var err error
	pair.AccessToken, err = sign(Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        pair.accessID,
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(pair.AccessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, key)
	if err != nil {
		return TokenPair{}, err
	}

	pair.RefreshToken, err = sign(Claims{
		Kind: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        pair.refreshID,
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(pair.RefreshExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}, key)
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func sign(c Claims, key string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
}

// Parse validates a token of the given kind and returns claims.
func Parse(tokenStr, key, issuer, kind string, now func() time.Time) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(key), nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Kind != kind {
		return Claims{}, errors.New("wrong token kind")
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, errors.New("incomplete token")
	}
	return *claims, nil
}
