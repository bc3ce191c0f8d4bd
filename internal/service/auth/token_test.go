package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestToken_IssueAndValidate(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	ctx := context.Background()

	token, exp, err := s.Issue(ctx, "pi-dublin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("token already expired at %v", exp)
	}

	feeder, err := s.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if feeder.ID != "pi-dublin" || feeder.Role != types.RoleFeeder {
		t.Fatalf("unexpected feeder %+v", feeder)
	}
}

func TestToken_Rejects(t *testing.T) {
	ctx := context.Background()
	s := NewTokenService("secret", time.Hour)
	valid, _, err := s.Issue(ctx, "pi")
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenService("other-secret", time.Hour)
	if _, err := other.Validate(ctx, valid); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: err = %v", err)
	}

	if _, err := s.Validate(ctx, "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: err = %v", err)
	}

	wrongType, _ := s.signClaims(jwt.MapClaims{
		"typ": "access",
		"jti": uuid.NewString(),
		"sub": "pi",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := s.Validate(ctx, wrongType); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong type: err = %v", err)
	}

	noExp, _ := s.signClaims(jwt.MapClaims{"typ": feederTokenType, "jti": uuid.NewString(), "sub": "pi"})
	if _, err := s.Validate(ctx, noExp); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("no exp: err = %v", err)
	}
}

func TestToken_Expired(t *testing.T) {
	ctx := context.Background()
	s := NewTokenService("secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := s.Issue(ctx, "pi")
	if err != nil {
		t.Fatal(err)
	}

	s.now = time.Now
	if _, err := s.Validate(ctx, token); !errors.Is(err, ErrExpToken) {
		t.Fatalf("err = %v", err)
	}
}

func TestToken_IssueErrors(t *testing.T) {
	ctx := context.Background()
	if _, _, err := NewTokenService("secret", time.Hour).Issue(ctx, "  "); !errors.Is(err, ErrEmptyFeederID) {
		t.Fatalf("err = %v", err)
	}
	if _, _, err := NewTokenService("", time.Hour).Issue(ctx, "pi"); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("err = %v", err)
	}
}
