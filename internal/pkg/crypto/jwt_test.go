package crypto

import "testing"

const testSecret = "test-secret-key-for-unit-tests-only"

// TestGenerateAndParseToken tests the JWT round trip
func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com", testSecret, 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("Token should not be empty")
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Expected user@example.com, got %s", claims.Email)
	}
}

// TestParseTokenWrongSecret tests signature verification
func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com", testSecret, 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, "another-secret"); err == nil {
		t.Error("Token signed with a different secret should be rejected")
	}
}

// TestParseExpiredToken tests expiry enforcement
func TestParseExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Error("Expired token should be rejected")
	}
}

// TestParseGarbage tests malformed input
func TestParseGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", testSecret); err == nil {
		t.Error("Malformed token should be rejected")
	}
}
