package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateAccessToken("user-42", "Alice")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := mgr.ValidateAccess(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("expected user_id=user-42, got %s", claims.UserID)
	}
	if claims.DisplayName != "Alice" {
		t.Errorf("expected display_name=Alice, got %s", claims.DisplayName)
	}
	if claims.Subject != "user-42" {
		t.Errorf("expected subject=user-42, got %s", claims.Subject)
	}
}

func TestRefreshTokenRejectedOnAccessSurface(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	refresh, err := mgr.GenerateRefreshToken("user-99", "Bob")
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	if _, err := mgr.ValidateAccess(refresh); err == nil {
		t.Error("a refresh token must not validate as an access token")
	}
	claims, err := mgr.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if claims.UserID != "user-99" {
		t.Errorf("expected user_id=user-99, got %s", claims.UserID)
	}
}

func TestAccessTokenRejectedOnRefreshSurface(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	access, _ := mgr.GenerateAccessToken("user-1", "Carol")
	if _, err := mgr.ValidateRefresh(access); err == nil {
		t.Error("an access token must not validate as a refresh token")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	pair, err := mgr.GenerateTokenPair("user-7", "Dana")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
	if pair.RefreshToken == "" {
		t.Error("expected non-empty refresh token")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should be different")
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expected expires_in=900, got %d", pair.ExpiresIn)
	}

	claims, err := mgr.ValidateRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh half of pair: %v", err)
	}
	if claims.DisplayName != "Dana" {
		t.Errorf("refresh token should carry the display name, got %q", claims.DisplayName)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr1 := NewJWTManager("secret-one")
	mgr2 := NewJWTManager("secret-two")

	token, err := mgr1.GenerateAccessToken("user-1", "Alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = mgr2.ValidateAccess(token)
	if err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	_, err := mgr.ValidateAccess("not-a-jwt")
	if err == nil {
		t.Error("expected error for garbage token")
	}
	_, err = mgr.ValidateAccess("")
	if err == nil {
		t.Error("expected error for empty token")
	}
}

func TestExpiredToken(t *testing.T) {
	mgr := &JWTManager{
		secret:        []byte("test-secret"),
		accessExpiry:  -1 * time.Second,
		refreshExpiry: 7 * 24 * time.Hour,
	}
	token, err := mgr.GenerateAccessToken("user-1", "Alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = mgr.ValidateAccess(token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestDifferentUsersGetDifferentTokens(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	t1, _ := mgr.GenerateAccessToken("alice", "Alice")
	t2, _ := mgr.GenerateAccessToken("bob", "Bob")
	if t1 == t2 {
		t.Error("different users should get different tokens")
	}
}
