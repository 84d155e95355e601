package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 44-character base64 string, as produced by `openssl rand -base64 32`
const testSecret = "wJ6Qk8Qn1v9Qw1Zb2l8Qk9J3p6Qk8Qn1v9Qw1Zb2l8Qk="

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret)

	tests := []struct {
		name    string
		userID  string
		account string
		wantErr bool
	}{
		{
			name:    "valid access token",
			userID:  "user-123",
			account: "0.0.12345",
			wantErr: false,
		},
		{
			name:    "empty userID",
			userID:  "",
			account: "0.0.12345",
			wantErr: true,
		},
		{
			name:    "empty account",
			userID:  "user-123",
			account: "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.GenerateAccessToken(tt.userID, tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateAccessToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && token == "" {
				t.Error("GenerateAccessToken() returned empty token")
			}
		})
	}
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret)

	token, err := svc.GenerateAccessToken("user-123", "0.0.12345")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want user-123", claims.Subject)
	}
	if claims.Account != "0.0.12345" {
		t.Errorf("Account = %q, want 0.0.12345", claims.Account)
	}
	if claims.Type != TokenTypeAccess {
		t.Errorf("Type = %q, want %q", claims.Type, TokenTypeAccess)
	}
}

func TestValidateToken_RefreshHasNoAccount(t *testing.T) {
	svc := NewJWTService(testSecret)

	token, err := svc.GenerateRefreshToken("user-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Errorf("Type = %q, want %q", claims.Type, TokenTypeRefresh)
	}
	if claims.Account != "" {
		t.Errorf("Account = %q, want empty for refresh token", claims.Account)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService(testSecret)
	other := NewJWTService("completely-different-secret-value!!")

	token, err := svc.GenerateAccessToken("user-123", "0.0.12345")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(testSecret)
	svc.leeway = 0

	// Hand-craft an already expired token signed with the service secret.
	now := time.Now().Add(-time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Type: TokenTypeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateToken_Rotation(t *testing.T) {
	oldSvc := NewJWTService(testSecret)
	token, err := oldSvc.GenerateAccessToken("user-123", "0.0.12345")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	rotated := NewJWTServiceWithRotation("brand-new-secret-after-rotation!!!", testSecret)
	claims, err := rotated.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken with previous secret: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want user-123", claims.Subject)
	}

	noRotation := NewJWTService("brand-new-secret-after-rotation!!!")
	if _, err := noRotation.ValidateToken(token); err == nil {
		t.Error("expected validation to fail without previous secret")
	}
}

func TestValidateToken_RejectsWrongAlg(t *testing.T) {
	svc := NewJWTService(testSecret)

	// alg=none tokens must never validate.
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		Type:             TokenTypeAccess,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
