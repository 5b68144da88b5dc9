package crypto

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Test123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if hash == "Test123456" {
		t.Error("hash should not equal plaintext")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Test123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !CheckPassword("Test123456", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("WrongPassword", hash) {
		t.Error("wrong password should not verify")
	}
	if CheckPassword("Test123456", "not-a-bcrypt-hash") {
		t.Error("invalid hash should not verify")
	}
}

func TestHashPasswordUnique(t *testing.T) {
	h1, err := HashPassword("Test123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("Test123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Error("bcrypt hashes should be salted and differ")
	}
}
