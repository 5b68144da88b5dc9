package model

import "testing"

// TestCanAddMember tests the member quota check
func TestCanAddMember(t *testing.T) {
	org := Organization{MaxMembers: 50}

	if !org.CanAddMember(0) {
		t.Error("Empty organization should accept a new member")
	}
	if !org.CanAddMember(49) {
		t.Error("Organization below its quota should accept a new member")
	}
	if org.CanAddMember(50) {
		t.Error("Organization at its quota should reject a new member")
	}
	if org.CanAddMember(100) {
		t.Error("Organization over its quota should reject a new member")
	}

	unlimited := Organization{MaxMembers: 0}
	if !unlimited.CanAddMember(10000) {
		t.Error("Zero quota should mean unlimited members")
	}
}
