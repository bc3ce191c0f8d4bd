// Package auth issues and checks the tokens remote feeders use to upload
// position messages.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const feederTokenType = "feeder"

type TokenService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a feeder token for feederID.
func (s *TokenService) Issue(ctx context.Context, feederID string) (string, time.Time, error) {
	ctx = wrap.WithAction(wrap.WithFeederID(ctx, feederID), "issue_feeder_token")

	feederID = strings.TrimSpace(feederID)
	if feederID == "" {
		return "", time.Time{}, wrap.Error(ctx, ErrEmptyFeederID)
	}
	if s.secret == "" {
		return "", time.Time{}, wrap.Error(ctx, ErrEmptySecret)
	}

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	token, err := s.signClaims(NewFeederClaim(feederID, issuedAt, s.ttl, uuid.New()))
	if err != nil {
		return "", time.Time{}, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrTokenGenerateFail, err))
	}

	return token, expiresAt, nil
}

// Validate checks the signature, type and expiry of token and returns the feeder it names.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Feeder, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsedToken, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	if typ, _ := mc["typ"].(string); typ != feederTokenType {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	feederID, _ := mc["sub"].(string)
	if feederID == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'sub' in token claims", ErrInvalidToken))
	}

	if jti, _ := mc["jti"].(string); jti == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'jti' in token claims", ErrInvalidToken))
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	return &models.Feeder{
		ID:        feederID,
		Role:      types.RoleFeeder,
		ExpiresAt: exp.Time,
	}, nil
}

func (s *TokenService) signClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func NewFeederClaim(feederID string, issuedAt time.Time, ttl time.Duration, tokenID uuid.UUID) jwt.Claims {
	return jwt.MapClaims{
		"typ": feederTokenType,
		"jti": tokenID.String(),
		"sub": feederID,
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(ttl).Unix(),
	}
}
