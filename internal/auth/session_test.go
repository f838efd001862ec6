package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"noteminder/internal/logger"
	"noteminder/internal/testutil"
	"noteminder/models"
	"noteminder/repository"
)

func newGuard(t *testing.T, name string) (*SessionGuard, *repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(testutil.OpenInMemoryDB(t, name))
	return NewSessionGuard(users, testSecret, time.Hour, logger.Discard()), users
}

func TestSessionGuard_RegisterAndLogin(t *testing.T) {
	g, users := newGuard(t, "guardlogin")
	ctx := context.Background()

	u, err := g.Register(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("expected user role, got %s", u.Role)
	}

	stored, _ := users.GetCredentials(ctx, "alice")
	if stored.PasswordHash == "pw1" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("password stored without bcrypt: %q", stored.PasswordHash)
	}

	if _, ok := g.Current(); ok {
		t.Fatalf("no session expected before login")
	}
	got, token, err := g.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "" || token == "" {
		t.Fatalf("unexpected login result: %+v token=%q", got, token)
	}
	cur, err := g.RequireCurrent()
	if err != nil || cur.Username != "alice" {
		t.Fatalf("current: %v %+v", err, cur)
	}

	g.Logout()
	if _, err := g.RequireCurrent(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}

	restored, err := g.Restore(ctx, token)
	if err != nil || restored.ID != u.ID {
		t.Fatalf("restore: %v %+v", err, restored)
	}
	if _, err := g.Restore(ctx, "garbage"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for bad token, got %v", err)
	}
}

func TestSessionGuard_InvalidCredentialsIndistinguishable(t *testing.T) {
	g, _ := newGuard(t, "guardcreds")
	ctx := context.Background()
	if _, err := g.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, wrongPw := g.Login(ctx, "alice", "nope")
	_, _, noUser := g.Login(ctx, "mallory", "pw1")
	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(noUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v / %v", wrongPw, noUser)
	}
	if wrongPw.Error() != noUser.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPw, noUser)
	}
	if _, ok := g.Current(); ok {
		t.Fatalf("failed login must not set a session")
	}
}

func TestSessionGuard_RegisterValidationAndDuplicate(t *testing.T) {
	g, users := newGuard(t, "guarddup")
	ctx := context.Background()

	cases := []struct{ user, pw string }{
		{"", "pw"},
		{"   ", "pw"},
		{"alice", ""},
		{"has space", "pw"},
		{strings.Repeat("a", 33), "pw"},
		{"alice", strings.Repeat("p", 73)},
	}
	for _, c := range cases {
		if _, err := g.Register(ctx, c.user, c.pw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Register(%q, %d bytes): expected ErrInvalidInput, got %v", c.user, len(c.pw), err)
		}
	}

	if _, err := g.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := g.Register(ctx, "alice", "pw2"); !errors.Is(err, repository.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	// The original password still works.
	if _, _, err := g.Login(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("original credentials broken: %v", err)
	}
	list, _ := users.List(ctx, 10, 0)
	if len(list) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list))
	}
}

func TestSessionGuard_EnsureAdmin(t *testing.T) {
	g, users := newGuard(t, "guardadmin")
	ctx := context.Background()

	created, err := g.EnsureAdmin(ctx, "admin", "admin")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin: created=%v err=%v", created, err)
	}
	created, err = g.EnsureAdmin(ctx, "admin", "other")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin: created=%v err=%v", created, err)
	}
	u, _, err := g.Login(ctx, "admin", "admin")
	if err != nil || !u.IsAdmin() {
		t.Fatalf("admin login: %v %+v", err, u)
	}
	list, _ := users.List(ctx, 10, 0)
	if len(list) != 1 {
		t.Fatalf("expected a single admin, got %d users", len(list))
	}
}
