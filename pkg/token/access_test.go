package token

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	secret := []byte("secret")

	tok, err := GenerateAccessToken(42, true, secret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := VerifyToken(tok, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	id, err := UserID(claims)
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if id != 42 {
		t.Fatalf("user id = %d, want 42", id)
	}
	if !claims.Admin {
		t.Fatal("admin claim lost")
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	secret := []byte("secret")

	expired, err := GenerateAccessToken(1, false, secret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wrongKey, err := GenerateAccessToken(1, false, []byte("other"), time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong key", token: wrongKey},
		{name: "garbage", token: "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyToken(tt.token, secret); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
