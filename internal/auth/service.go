package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/retenly/retenly/internal/account"
	"github.com/retenly/retenly/internal/config"
)

// ErrInvalidToken covers malformed, expired, and revoked tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload minted for both token kinds.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyNo int64  `json:"company_no"`
	jwt.RegisteredClaims
}

// Service mints and renews session tokens.
type Service struct {
	cfg      config.Config
	accounts account.Repository
}

// NewService builds the token issuer.
func NewService(cfg config.Config, accounts account.Repository) *Service {
	return &Service{cfg: cfg, accounts: accounts}
}

// TokenPair bundles a short-lived access token with a longer-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues a token pair for an already-authenticated user.
func (s *Service) Login(user account.User) (TokenPair, error) {
	access, accessExp, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(user account.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Email:     user.Email,
		Role:      user.RoleName,
		CompanyNo: user.CompanyNo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token, confirms the account still exists, and
// issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseClaims(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	user, err := s.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		// Soft-deleted accounts fall out of FindByID, revoking their sessions.
		return "", 0, ErrInvalidToken
	}

	access, _, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// ParseClaims verifies an HS256 token against the secret and returns its claims.
func ParseClaims(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
