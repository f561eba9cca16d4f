package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTStrategy issues HS256 signed JSON web tokens.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	return &JWTStrategy{secret: []byte(secret), ttl: opts.ttl(), issuer: opts.Issuer}
}

// IssueToken signs identity into a token valid for the configured TTL.
func (s *JWTStrategy) IssueToken(identity model.Identity) (string, error) {
	if identity.UserID == "" {
		return "", ErrInvalidToken
	}
	now := time.Now()
	c := claims{
		Email: identity.Email,
		Role:  string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// ParseToken verifies signature and expiry and returns the identity.
func (s *JWTStrategy) ParseToken(token string) (model.Identity, error) {
	var c claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return model.Identity{}, errors.Join(ErrInvalidToken, err)
	}
	role := model.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{UserID: c.Subject, Email: c.Email, Role: role}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
