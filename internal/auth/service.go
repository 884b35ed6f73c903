// Package auth implements the WP login exchange: the frontend proves
// possession of a shared secret via an HMAC signature and receives a
// short-lived JWT for the provider proxy routes.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrBadSignature  = errors.New("bad_signature")
	ErrInvalidToken  = errors.New("invalid_token")
	ErrNotConfigured = errors.New("auth_not_configured")
)

// Claims is the token payload handed to proxy routes.
type Claims struct {
	AccountID      string `json:"account_id"`
	ExternalUserID int64  `json:"external_user_id"`
	Email          string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	AccountSvc accountdomain.Service
}

type Service struct {
	sharedSecret []byte
	jwtSecret    []byte
	ttl          time.Duration
	log          *zap.Logger
	accountSvc   accountdomain.Service
}

func New(p Params) *Service {
	return &Service{
		sharedSecret: []byte(p.Cfg.SharedSecret),
		jwtSecret:    []byte(p.Cfg.JWTSecret),
		ttl:          p.Cfg.JWTTTL,
		log:          p.Log.Named("auth.service"),
		accountSvc:   p.AccountSvc,
	}
}

// Exchange validates the caller's HMAC signature over "externalID|email",
// finds or creates the account, and returns a signed token.
func (s *Service) Exchange(ctx context.Context, externalID int64, email, signature string) (string, error) {
	if len(s.sharedSecret) == 0 || len(s.jwtSecret) == 0 {
		return "", ErrNotConfigured
	}

	expected := s.Signature(externalID, email)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", ErrBadSignature
	}

	account, err := s.accountSvc.Upsert(ctx, externalID, email)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := Claims{
		AccountID:      account.ID.String(),
		ExternalUserID: account.ExternalUserID,
		Email:          account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ExternalUserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Signature computes the expected HMAC for a login-exchange request.
func (s *Service) Signature(externalID int64, email string) string {
	mac := hmac.New(sha256.New, s.sharedSecret)
	fmt.Fprintf(mac, "%d|%s", externalID, email)
	return hex.EncodeToString(mac.Sum(nil))
}

// Parse verifies a bearer token and returns its claims.
func (s *Service) Parse(raw string) (*Claims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrNotConfigured
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
