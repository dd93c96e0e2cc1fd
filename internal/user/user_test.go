package user

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/alecgard/clubhive/internal/auth"
)

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &User{PasswordHash: string(hash)}

	if !CheckPassword(u, "password") {
		t.Error("expected correct password to match")
	}
	if CheckPassword(u, "Password") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword(&User{}, "") {
		t.Error("expected empty hash to fail")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"Chad@Local.com":     "chad@local.com",
		"  amogh@local.com ": "amogh@local.com",
		"":                   "",
	}
	for in, want := range tests {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToAuthUser(t *testing.T) {
	u := &User{ID: "u1", Email: "a@b.c", Name: "A", Role: auth.RoleAdmin, Points: 40}
	got := ToAuthUser(u)
	if got.ID != "u1" || got.Email != "a@b.c" || got.Name != "A" || !got.IsAdmin() {
		t.Errorf("unexpected auth user %+v", got)
	}
}
