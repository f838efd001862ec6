package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"noteminder/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The handle is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache keeps the database alive for as long as the pooled connection is open.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed session token with the claims the app reads.
// Built directly on the jwt library so auth tests can use it without an import cycle.
func GenerateJWTHS256(t *testing.T, secret string, userID int64, name, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"name": name,
		"kind": kind,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// FixedClock is a clock frozen at At.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
