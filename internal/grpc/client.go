package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a running note service. Login stores the bearer token used
// by later calls.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to addr over plaintext; the API only listens on loopback.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return c.conn.Invoke(ctx, method, req, resp)
}

func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	out := new(User)
	if err := c.invoke(ctx, RegisterMethod, &Credentials{Username: username, Password: password}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, LoginMethod, &Credentials{Username: username, Password: password}, out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return out.User, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]*Category, error) {
	out := new(ListCategoriesResponse)
	if err := c.invoke(ctx, ListCategoriesMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) CreateNote(ctx context.Context, in NoteInput) (*Note, error) {
	out := new(Note)
	if err := c.invoke(ctx, CreateNoteMethod, &in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListNotes(ctx context.Context) ([]*Note, error) {
	out := new(ListNotesResponse)
	if err := c.invoke(ctx, ListNotesMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (c *Client) GetNote(ctx context.Context, id int64) (*Note, error) {
	out := new(Note)
	if err := c.invoke(ctx, GetNoteMethod, wrapperspb.Int64(id), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int64, in NoteInput) (*Note, error) {
	out := new(Note)
	if err := c.invoke(ctx, UpdateNoteMethod, &UpdateNoteRequest{ID: id, NoteInput: in}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.invoke(ctx, DeleteNoteMethod, wrapperspb.Int64(id), new(emptypb.Empty))
}

func (c *Client) ListUsers(ctx context.Context, limit, offset int32) ([]*User, error) {
	out := new(ListUsersResponse)
	if err := c.invoke(ctx, ListUsersMethod, &ListUsersRequest{Limit: limit, Offset: offset}, out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Health reports the serving status of the note service.
func (c *Client) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
