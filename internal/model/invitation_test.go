package model

import (
	"testing"
	"time"
)

// TestInviteTransitions tests that pending is the only non-terminal state
func TestInviteTransitions(t *testing.T) {
	pending := InvitationToken{Status: InviteStatusPending}
	for _, target := range []InviteStatus{InviteStatusUsed, InviteStatusExpired, InviteStatusRevoked} {
		if !pending.CanTransitionTo(target) {
			t.Errorf("pending -> %s should be allowed", target)
		}
	}

	// terminal states never transition, including back to pending
	for _, from := range []InviteStatus{InviteStatusUsed, InviteStatusExpired, InviteStatusRevoked} {
		inv := InvitationToken{Status: from}
		for _, to := range []InviteStatus{InviteStatusPending, InviteStatusUsed, InviteStatusExpired, InviteStatusRevoked} {
			if inv.CanTransitionTo(to) {
				t.Errorf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

// TestInviteExpiry tests the lazy expiry check
func TestInviteExpiry(t *testing.T) {
	expired := InvitationToken{ExpiresAt: time.Now().Add(-time.Minute)}
	if !expired.IsExpired() {
		t.Error("Invitation past its deadline should be expired")
	}

	fresh := InvitationToken{ExpiresAt: time.Now().Add(time.Hour)}
	if fresh.IsExpired() {
		t.Error("Invitation before its deadline should not be expired")
	}
}

// TestInviteValidity tests that validity requires pending and unexpired
func TestInviteValidity(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	valid := InvitationToken{Status: InviteStatusPending, ExpiresAt: future}
	if !valid.IsValid() {
		t.Error("Pending unexpired invitation should be valid")
	}

	expired := InvitationToken{Status: InviteStatusPending, ExpiresAt: past}
	if expired.IsValid() {
		t.Error("Expired invitation should not be valid")
	}

	for _, status := range []InviteStatus{InviteStatusUsed, InviteStatusExpired, InviteStatusRevoked} {
		inv := InvitationToken{Status: status, ExpiresAt: future}
		if inv.IsValid() {
			t.Errorf("%s invitation should not be valid", status)
		}
	}
}
