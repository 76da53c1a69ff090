package user

import "testing"

func TestDisplayName(t *testing.T) {
	cases := []struct {
		p    Profile
		want string
	}{
		{Profile{FullName: "Ada Lovelace", Email: "ada@example.com"}, "Ada Lovelace"},
		{Profile{FullName: "  ", Email: "ada@example.com"}, "ada"},
		{Profile{Email: "no-at-sign"}, "no-at-sign"},
	}
	for _, tc := range cases {
		if got := tc.p.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName(%+v)=%q want %q", tc.p, got, tc.want)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	if NormalizeRole("") != RoleUser {
		t.Fatalf("empty role should default to user")
	}
	if NormalizeRole("admin") != RoleAdmin {
		t.Fatalf("admin role should be kept")
	}
	if IsValidRole("owner") {
		t.Fatalf("owner is not a valid role")
	}
}
