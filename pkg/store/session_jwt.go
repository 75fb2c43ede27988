package store

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultJWTIssuer   = "legalgpt-api"
	defaultJWTAudience = "legalgpt-web"
	// DefaultTokenTTL is how long an issued bearer token stays valid.
	DefaultTokenTTL   = 7 * 24 * time.Hour
	minJWTSecretBytes = 32
)

// ErrWeakSecret is returned when the signing secret is too short for HS256.
var ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")

// JWTOptions configures claim validation. Leeway defaults to zero: tokens
// are issued and verified by the same process, so exp is exact.
type JWTOptions struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Claims is the verified token payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTIssuer issues and verifies HS256 bearer tokens.
type JWTIssuer struct {
	secret   []byte
	ttl      time.Duration
	revoker  TokenRevoker
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewJWTIssuer builds an issuer. revoker may be nil, in which case logout is a no-op.
func NewJWTIssuer(secret string, ttl time.Duration, revoker TokenRevoker, opts JWTOptions) (*JWTIssuer, error) {
	if len(secret) < minJWTSecretBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	opts = normalizeJWTOptions(opts)
	return &JWTIssuer{
		secret:   []byte(secret),
		ttl:      ttl,
		revoker:  revoker,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		leeway:   opts.Leeway,
		now:      time.Now,
	}, nil
}

// Issue signs a token binding userID and email, expiring after the TTL.
func (i *JWTIssuer) Issue(userID, email string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("token subject required")
	}
	now := i.now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify returns the payload when the token is authentic, unexpired and not
// revoked. Every failure collapses to ok == false.
func (i *JWTIssuer) Verify(token string) (Claims, bool) {
	claims, err := i.parse(token)
	if err != nil {
		return Claims{}, false
	}
	if i.revoker != nil {
		revoked, err := i.revoker.IsRevoked(claims.ID)
		if err != nil || revoked {
			return Claims{}, false
		}
	}
	return claims, true
}

// Revoke invalidates a still-valid token until its natural expiry.
// Invalid tokens are ignored.
func (i *JWTIssuer) Revoke(token string) error {
	if i.revoker == nil {
		return nil
	}
	claims, err := i.parse(token)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	return i.revoker.Revoke(claims.ID, claims.ExpiresAt.Time.Sub(i.now()))
}

// TTL reports the configured token lifetime.
func (i *JWTIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *JWTIssuer) parse(token string) (Claims, error) {
	claims := Claims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, errors.New("empty token")
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(i.leeway),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return claims, err
	}
	if !parsed.Valid {
		return claims, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.UserID != claims.Subject {
		return claims, errors.New("token subject mismatch")
	}
	if strings.TrimSpace(claims.ID) == "" {
		return claims, errors.New("token jti missing")
	}
	return claims, nil
}

func normalizeJWTOptions(opts JWTOptions) JWTOptions {
	opts.Issuer = strings.TrimSpace(opts.Issuer)
	opts.Audience = strings.TrimSpace(opts.Audience)
	if opts.Issuer == "" {
		opts.Issuer = defaultJWTIssuer
	}
	if opts.Audience == "" {
		opts.Audience = defaultJWTAudience
	}
	if opts.Leeway < 0 {
		opts.Leeway = 0
	}
	return opts
}
