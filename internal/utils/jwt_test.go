package utils

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	jm := NewJWTManager("secret", "HS256", time.Hour).WithClock(func() time.Time { return now })

	token, err := jm.GenerateToken(42, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := jm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || !claims.IsAdmin {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Subject != "42" || claims.Issuer != TokenIssuer {
		t.Fatalf("registered claims = %+v", claims.RegisteredClaims)
	}
}

func TestJWTRejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	jm := NewJWTManager("secret", "HS256", time.Hour).WithClock(clock)
	token, _ := jm.GenerateToken(1, "bob", false)

	later := NewJWTManager("secret", "HS256", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := later.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: %v", err)
	}

	other := NewJWTManager("other", "HS256", time.Hour).WithClock(clock)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}

	hs512 := NewJWTManager("secret", "HS512", time.Hour).WithClock(clock)
	if _, err := hs512.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong algorithm: %v", err)
	}

	if _, err := jm.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if !IsPasswordHash(hash) || IsPasswordHash("secret1") {
		t.Fatal("IsPasswordHash misclassified")
	}
	if CheckPassword("secret1", hash) != nil || CheckPassword("wrong", hash) == nil {
		t.Fatal("CheckPassword mismatch")
	}
}
