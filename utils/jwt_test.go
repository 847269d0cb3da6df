package utils

import (
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "user@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatal("expired token should not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := ParseToken(tok); err == nil {
			t.Fatalf("token %q should not parse", tok)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret123") {
		t.Fatal("correct password should verify")
	}
	if CheckPassword(hash, "wrongpass") {
		t.Fatal("wrong password should not verify")
	}
}

func TestTokenBlacklist(t *testing.T) {
	token, err := GenerateToken(7, "revoke@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if IsTokenBlacklisted(token) {
		t.Fatal("fresh token should not be blacklisted")
	}
	BlacklistToken(token, time.Now().Add(time.Hour))
	if !IsTokenBlacklisted(token) {
		t.Fatal("revoked token should be blacklisted")
	}
}

func TestBlacklistIgnoresAlreadyExpired(t *testing.T) {
	BlacklistToken("expired-token", time.Now().Add(-time.Minute))
	if IsTokenBlacklisted("expired-token") {
		t.Fatal("already expired token should not be stored")
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	got := Sanitize(`hello <script>alert("x")</script><b>world</b>`)
	if got != "hello <b>world</b>" {
		t.Fatalf("Sanitize = %q", got)
	}
}
