package model

import "testing"

// TestRolePermissions tests the role permission matrix
func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role       RoleSlug
		permission string
		allowed    bool
	}{
		{RoleOwner, "org:delete", true},
		{RoleOwner, "member:invite", true},
		{RoleOwner, "contract:approve", true},
		{RoleAdmin, "org:delete", false},
		{RoleAdmin, "member:invite", true},
		{RoleAdmin, "contract:terminate", true},
		{RoleMember, "member:invite", false},
		{RoleMember, "contract:create", true},
		{RoleMember, "contract:approve", false},
		{RoleMember, "record:create", true},
		{RoleViewer, "contract:read", true},
		{RoleViewer, "contract:create", false},
		{RoleViewer, "record:create", false},
		{RoleViewer, "export:read", false},
	}

	for _, c := range cases {
		role := OrganizationRole{Slug: c.role}
		if got := role.HasPermission(c.permission); got != c.allowed {
			t.Errorf("%s / %s: expected %v, got %v", c.role, c.permission, c.allowed, got)
		}
	}
}

// TestRoleHelpers tests owner and admin checks
func TestRoleHelpers(t *testing.T) {
	owner := OrganizationRole{Slug: RoleOwner}
	if !owner.IsOwner() || !owner.IsAdmin() {
		t.Error("Owner should be both owner and admin")
	}

	admin := OrganizationRole{Slug: RoleAdmin}
	if admin.IsOwner() {
		t.Error("Admin should not be owner")
	}
	if !admin.IsAdmin() {
		t.Error("Admin should be admin")
	}

	member := OrganizationRole{Slug: RoleMember}
	if member.IsOwner() || member.IsAdmin() {
		t.Error("Member should be neither owner nor admin")
	}
}

// TestDefaultRoles tests that every new organization gets the four preset roles
func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles("org-1")
	if len(roles) != 4 {
		t.Fatalf("Expected 4 default roles, got %d", len(roles))
	}

	seen := map[RoleSlug]bool{}
	for _, r := range roles {
		if r.OrgID != "org-1" {
			t.Errorf("Role %s should belong to org-1, got %s", r.Slug, r.OrgID)
		}
		seen[r.Slug] = true
	}
	for _, slug := range []RoleSlug{RoleOwner, RoleAdmin, RoleMember, RoleViewer} {
		if !seen[slug] {
			t.Errorf("Missing default role %s", slug)
		}
	}
}
