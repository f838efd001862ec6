package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/slog"

	"noteminder/models"
	"noteminder/repository"
)

const maxUsernameLen = 32

// UserStore is the part of the user repository the session guard needs.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionGuard validates credentials and tracks the one logged-in identity
// of the process.
type SessionGuard struct {
	users  UserStore
	secret string
	ttl    time.Duration
	log    *slog.Logger

	mu      sync.RWMutex
	current *models.User

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionGuard(users UserStore, secret string, ttl time.Duration, log *slog.Logger) *SessionGuard {
	return &SessionGuard{
		users:  users,
		secret: secret,
		ttl:    ttl,
		log:    log.With("component", "session"),
	}
}

// ValidateUsername rejects empty, overlong or whitespace-containing names.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, maxUsernameLen)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: username must not contain spaces or control characters", ErrInvalidInput)
		}
	}
	return nil
}

// Register creates a regular user. Duplicate usernames fail with
// repository.ErrDuplicateUser and leave the existing account untouched.
func (g *SessionGuard) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := g.users.Create(ctx, username, hash, models.RoleUser)
	if err != nil {
		g.log.Debug("registration failed", "username", username, "error", err)
		return nil, err
	}
	g.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks the credentials, makes the user the active identity and
// returns a signed session token.
func (g *SessionGuard) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	u, err := g.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	token, err := IssueToken(u, g.secret, g.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	g.setCurrent(u)
	g.log.Info("user logged in", "user_id", u.ID, "username", u.Username)
	return u, token, nil
}

// Authenticate returns the matching user. An unknown username and a wrong
// password both yield ErrInvalidCredentials, and both pay for a bcrypt compare.
func (g *SessionGuard) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := g.users.GetCredentials(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		CheckPassword(g.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

func (g *SessionGuard) dummy() string {
	g.dummyOnce.Do(func() {
		g.dummyHash, _ = HashPassword("not-a-real-password")
	})
	return g.dummyHash
}

// Restore re-establishes the active identity from a session token issued by Login.
func (g *SessionGuard) Restore(ctx context.Context, token string) (*models.User, error) {
	p, err := ParseToken(strings.TrimSpace(token), g.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	u, err := g.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.Username != p.Name {
		return nil, fmt.Errorf("%w: account no longer exists", ErrNoSession)
	}
	g.setCurrent(u)
	return u, nil
}

// Logout clears the active identity.
func (g *SessionGuard) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.log.Info("user logged out", "user_id", g.current.ID)
	}
	g.current = nil
}

// Current returns a copy of the active identity.
func (g *SessionGuard) Current() (*models.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil, false
	}
	u := *g.current
	return &u, true
}

// RequireCurrent is Current with ErrNoSession when nobody is logged in.
func (g *SessionGuard) RequireCurrent() (*models.User, error) {
	u, ok := g.Current()
	if !ok {
		return nil, ErrNoSession
	}
	return u, nil
}

func (g *SessionGuard) setCurrent(u *models.User) {
	cp := *u
	cp.PasswordHash = ""
	g.mu.Lock()
	g.current = &cp
	g.mu.Unlock()
}

// EnsureAdmin seeds the admin account on first run. It reports whether the
// account was created; an existing username is left as is.
func (g *SessionGuard) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if err := ValidateUsername(username); err != nil {
		return false, err
	}
	existing, err := g.users.GetCredentials(ctx, username)
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := models.NewAdmin(username, hash)
	if _, err := g.users.Create(ctx, admin.Username, admin.PasswordHash, admin.Role); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}
	g.log.Info("admin account seeded", "username", username)
	return true, nil
}
