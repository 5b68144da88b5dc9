package utils

import (
	"regexp"
	"testing"
)

func TestGenerateInviteToken(t *testing.T) {
	token := GenerateInviteToken()
	if len(token) != 32 {
		t.Errorf("expected 32 chars, got %d", len(token))
	}
	if GenerateInviteToken() == token {
		t.Error("tokens should be unique")
	}
}

func TestGenerateRandomString(t *testing.T) {
	for _, length := range []int{8, 16, 32, 64} {
		s := GenerateRandomString(length)
		if len(s) != length {
			t.Errorf("expected %d chars, got %d", length, len(s))
		}
	}
}

func TestGenerateSharingCode(t *testing.T) {
	pattern := regexp.MustCompile(`^ES-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)
	code := GenerateSharingCode()
	if !pattern.MatchString(code) {
		t.Errorf("unexpected sharing code format: %s", code)
	}
	if GenerateSharingCode() == code {
		t.Error("sharing codes should be unique")
	}
}

func TestGenerateContractNo(t *testing.T) {
	pattern := regexp.MustCompile(`^EC-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)
	no := GenerateContractNo()
	if !pattern.MatchString(no) {
		t.Errorf("unexpected contract no format: %s", no)
	}
}

func TestGenerateWebhookSecret(t *testing.T) {
	secret := GenerateWebhookSecret()
	if len(secret) != 64 {
		t.Errorf("expected 64 chars, got %d", len(secret))
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"user@example.com", "u***r@example.com"},
		{"alice.wang@example.com", "a***g@example.com"},
		{"ab@example.com", "ab@example.com"},
		{"not-an-email", "not-an-email"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.email); got != tc.want {
			t.Errorf("MaskEmail(%s) = %s, want %s", tc.email, got, tc.want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"abcdefgh12345678", "abcd****5678"},
		{"short", "short"},
	}
	for _, tc := range cases {
		if got := MaskToken(tc.token); got != tc.want {
			t.Errorf("MaskToken(%s) = %s, want %s", tc.token, got, tc.want)
		}
	}
}
