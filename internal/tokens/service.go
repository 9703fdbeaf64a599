// Package tokens implements the token issuance, rotation and revocation
// core. Stores are injected so the service stays independent of the
// backing database.
package tokens

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FandaPeterka/ListManagementApp/internal/apperr"
	"github.com/FandaPeterka/ListManagementApp/internal/models"
)

var (
	// ErrTokenConflict signals a duplicate jti on issuance. The caller
	// decides whether to retry; the service never regenerates on its own.
	ErrTokenConflict = apperr.Conflict("token generation failed due to duplicate jti")

	// ErrInvalidRefreshToken covers unknown, already-rotated, expired and
	// forged refresh tokens alike.
	ErrInvalidRefreshToken = apperr.Unauthorized("invalid refresh token")
)

// ErrDuplicate is returned by stores on a unique-key collision.
var ErrDuplicate = errors.New("duplicate key")

type RefreshTokenStore interface {
	Insert(ctx context.Context, token models.RefreshToken) error
	// Delete removes the record with the given jti and reports whether a
	// record was actually removed. Racing callers observe the removal
	// atomically: exactly one of them sees true.
	Delete(ctx context.Context, jti string) (bool, error)
	Find(ctx context.Context, jti string) (*models.RefreshToken, error)
}

type BlacklistStore interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// Claims are carried by both tokens of a pair: the user id as subject and
// a shared jti linking them to one refresh-token record.
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service struct {
	refresh       RefreshTokenStore
	blacklist     BlacklistStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(refresh RefreshTokenStore, blacklist BlacklistStore, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		refresh:       refresh,
		blacklist:     blacklist,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue mints an access/refresh pair sharing a fresh jti and persists the
// refresh-token record. One durable write.
func (s *Service) Issue(ctx context.Context, userID primitive.ObjectID) (*Pair, error) {
	jti := uuid.NewString()
	now := time.Now()

	accessToken, err := s.sign(userID, jti, now, s.accessTTL, s.accessSecret)
	if err != nil {
		return nil, apperr.Internal("failed to generate tokens", err)
	}
	refreshToken, err := s.sign(userID, jti, now, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return nil, apperr.Internal("failed to generate tokens", err)
	}

	record := models.RefreshToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.refresh.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicate) {
			log.Printf("[TOKEN] [ERROR] jti collision on issue: %s", jti)
			return nil, ErrTokenConflict
		}
		return nil, apperr.Internal("failed to generate tokens", err)
	}

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Rotate consumes the presented refresh token and issues a new pair. The
// delete is the sole concurrency safeguard: of two racing rotations only
// one delete succeeds, the loser fails with ErrInvalidRefreshToken. There
// is no atomicity across delete and insert; a crash in between forces the
// user to log in again.
func (s *Service) Rotate(ctx context.Context, oldJTI string, userID primitive.ObjectID) (*Pair, error) {
	deleted, err := s.refresh.Delete(ctx, oldJTI)
	if err != nil {
		return nil, apperr.Internal("failed to rotate refresh token", err)
	}
	if !deleted {
		log.Printf("[TOKEN] [WARN] rotation of unknown jti: %s", oldJTI)
		return nil, ErrInvalidRefreshToken
	}

	return s.Issue(ctx, userID)
}

// Blacklist revokes a jti until expiresAt. Re-blacklisting the same jti is
// a silent success.
func (s *Service) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := s.blacklist.Add(ctx, jti, expiresAt); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil
		}
		return apperr.Internal("failed to blacklist token", err)
	}
	return nil
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	blacklisted, err := s.blacklist.Contains(ctx, jti)
	if err != nil {
		return false, apperr.Internal("blacklist lookup failed", err)
	}
	return blacklisted, nil
}

// ParseAccess verifies tokenString against the access-token secret.
func (s *Service) ParseAccess(tokenString string) (*Claims, error) {
	return parse(tokenString, s.accessSecret)
}

// ParseRefresh verifies tokenString against the refresh-token secret.
func (s *Service) ParseRefresh(tokenString string) (*Claims, error) {
	return parse(tokenString, s.refreshSecret)
}

// ValidateRefresh runs the full refresh-token check: signature, blacklist,
// then the store record and its expiry. Any failure surfaces as
// ErrInvalidRefreshToken so callers cannot distinguish forged from
// consumed tokens.
func (s *Service) ValidateRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.ParseRefresh(tokenString)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	blacklisted, err := s.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		log.Printf("[TOKEN] [WARN] blacklisted refresh token: %s", claims.ID)
		return nil, ErrInvalidRefreshToken
	}

	record, err := s.refresh.Find(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("refresh token lookup failed", err)
	}
	if record == nil || time.Now().After(record.ExpiresAt) {
		log.Printf("[TOKEN] [WARN] expired or unknown refresh token: %s", claims.ID)
		return nil, ErrInvalidRefreshToken
	}

	return claims, nil
}

func (s *Service) sign(userID primitive.ObjectID, jti string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenString string, secret []byte) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	return &claims, nil
}
