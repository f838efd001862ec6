package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"noteminder/internal/auth"
	"noteminder/internal/logger"
	"noteminder/internal/service"
	"noteminder/internal/testutil"
	"noteminder/repository"
)

const testSecret = "grpc-test-secret"

type env struct {
	guard  *auth.SessionGuard
	dial   func(t *testing.T) *Client
	server *Server
}

// newEnv serves the note service over an in-process bufconn listener.
func newEnv(t *testing.T, name string) *env {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	log := logger.Discard()
	users := repository.NewUserRepository(d)
	guard := auth.NewSessionGuard(users, testSecret, time.Hour, log)
	s := &Server{
		Guard:    guard,
		Notes:    service.NewNotes(users, repository.NewCategoryRepository(d), repository.NewNoteRepository(d), log),
		Users:    users,
		Secret:   testSecret,
		TokenTTL: time.Hour,
	}

	lis := bufconn.Listen(1 << 20)
	srv, _ := NewServer(s, log)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dial := func(t *testing.T) *Client {
		t.Helper()
		c, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
	return &env{guard: guard, dial: dial, server: s}
}

func login(t *testing.T, e *env, username, password string) *Client {
	t.Helper()
	c := e.dial(t)
	ctx := context.Background()
	_, err := c.Register(ctx, username, password)
	require.NoError(t, err)
	_, err = c.Login(ctx, username, password)
	require.NoError(t, err)
	require.NotEmpty(t, c.Token())
	return c
}

func TestNoteService_NoteLifecycle(t *testing.T) {
	e := newEnv(t, "grpc_lifecycle")
	c := login(t, e, "alice", "pw1")
	ctx := context.Background()

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)

	n, err := c.CreateNote(ctx, NoteInput{Title: "T", Content: "C", ReminderTime: "2030-01-01 10:00", Category: cats[0].Name})
	require.NoError(t, err)
	assert.Equal(t, cats[0].Name, n.Category)
	assert.False(t, n.Notified)

	got, err := c.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", got.Content)

	up, err := c.UpdateNote(ctx, n.ID, NoteInput{Title: "T2", Content: "C2", ReminderTime: "2030-01-02 10:00"})
	require.NoError(t, err)
	assert.Equal(t, "T2", up.Title)
	assert.Empty(t, up.Category)

	list, err := c.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteNote(ctx, n.ID))
	_, err = c.GetNote(ctx, n.ID)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestNoteService_ErrorCodes(t *testing.T) {
	e := newEnv(t, "grpc_codes")
	alice := login(t, e, "alice", "pw1")
	bob := login(t, e, "bob", "pw2")
	ctx := context.Background()

	_, err := alice.Register(ctx, "alice", "other")
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = e.dial(t).Login(ctx, "alice", "wrong")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = alice.CreateNote(ctx, NoteInput{Title: "x", ReminderTime: "2030-13-01 10:00"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = alice.CreateNote(ctx, NoteInput{Title: "x", ReminderTime: "2030-01-01 10:00", Category: "Hobby"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	n, err := alice.CreateNote(ctx, NoteInput{Title: "mine", ReminderTime: "2030-01-01 10:00"})
	require.NoError(t, err)

	_, err = bob.UpdateNote(ctx, n.ID, NoteInput{Title: "stolen", ReminderTime: "2030-01-01 10:00"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Equal(t, codes.PermissionDenied, status.Code(bob.DeleteNote(ctx, n.ID)))

	got, err := alice.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	_, err = alice.GetNote(ctx, 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNoteService_RequiresToken(t *testing.T) {
	e := newEnv(t, "grpc_token")
	c := e.dial(t)
	ctx := context.Background()

	_, err := c.ListNotes(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	c.SetToken("not-a-jwt")
	_, err = c.ListCategories(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	st, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)
}

func TestNoteService_ListUsersAdminOnly(t *testing.T) {
	e := newEnv(t, "grpc_users")
	ctx := context.Background()

	created, err := e.guard.EnsureAdmin(ctx, "root", "rootpw")
	require.NoError(t, err)
	require.True(t, created)

	alice := login(t, e, "alice", "pw1")
	_, err = alice.ListUsers(ctx, 0, 0)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	admin := e.dial(t)
	_, err = admin.Login(ctx, "root", "rootpw")
	require.NoError(t, err)
	users, err := admin.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "root", users[0].Username)
	assert.Equal(t, "admin", users[0].Role)

	// A token claiming admin for a regular account is rejected.
	forged := e.dial(t)
	forged.SetToken(testutil.GenerateJWTHS256(t, testSecret, users[1].ID, "alice", "admin"))
	_, err = forged.ListUsers(ctx, 0, 0)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestJSONCodec_ProtoAndPlain(t *testing.T) {
	var c jsonCodec
	b, err := c.Marshal(&NoteInput{Title: "a", ReminderTime: "2030-01-01 10:00"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"a","content":"","reminder_time":"2030-01-01 10:00"}`, string(b))

	b, err = c.Marshal(&healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	var req healthpb.HealthCheckRequest
	require.NoError(t, c.Unmarshal(b, &req))
	assert.Equal(t, ServiceName, req.GetService())
}
