package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"noteminder/internal/auth"
	"noteminder/internal/service"
	"noteminder/models"
)

// Server implements NoteServiceServer on top of the session guard and the
// note service.
type Server struct {
	Guard    *auth.SessionGuard
	Notes    *service.Notes
	Users    auth.UserLookup
	Secret   string
	TokenTTL time.Duration
}

var _ NoteServiceServer = (*Server)(nil)

func (s *Server) Register(ctx context.Context, req *Credentials) (*User, error) {
	u, err := s.Guard.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUser(u), nil
}

// Login authenticates and returns a bearer token. It does not touch the
// daemon's own session.
func (s *Server) Login(ctx context.Context, req *Credentials) (*LoginResponse, error) {
	u, err := s.Guard.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	token, err := auth.IssueToken(u, s.Secret, s.TokenTTL)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "issue token: %v", err)
	}
	return &LoginResponse{User: toUser(u), Token: token}, nil
}

func (s *Server) ListCategories(ctx context.Context, _ *emptypb.Empty) (*ListCategoriesResponse, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	list, err := s.Notes.Categories(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListCategoriesResponse{Categories: make([]*Category, 0, len(list))}
	for _, c := range list {
		resp.Categories = append(resp.Categories, &Category{ID: c.ID, Name: c.Name})
	}
	return resp, nil
}

func (s *Server) CreateNote(ctx context.Context, req *NoteInput) (*Note, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Notes.Create(ctx, p.UserID, toInput(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return toNote(n), nil
}

func (s *Server) ListNotes(ctx context.Context, _ *emptypb.Empty) (*ListNotesResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Notes.List(ctx, p.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListNotesResponse{Notes: make([]*Note, 0, len(list))}
	for i := range list {
		resp.Notes = append(resp.Notes, toNote(&list[i]))
	}
	return resp, nil
}

func (s *Server) GetNote(ctx context.Context, req *wrapperspb.Int64Value) (*Note, error) {
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "note id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Notes.Get(ctx, p.UserID, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toNote(n), nil
}

func (s *Server) UpdateNote(ctx context.Context, req *UpdateNoteRequest) (*Note, error) {
	if req.ID == 0 {
		return nil, status.Error(codes.InvalidArgument, "note id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.Notes.Update(ctx, p.UserID, req.ID, toInput(&req.NoteInput))
	if err != nil {
		return nil, toStatus(err)
	}
	return toNote(n), nil
}

func (s *Server) DeleteNote(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "note id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Notes.Delete(ctx, p.UserID, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// ListUsers is admin only and never returns password hashes.
func (s *Server) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	p, err := auth.RequireAdmin(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	list, err := s.Notes.Users(ctx, p.UserID, int(req.Limit), int(req.Offset))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &ListUsersResponse{Users: make([]*User, 0, len(list))}
	for i := range list {
		resp.Users = append(resp.Users, toUser(&list[i]))
	}
	return resp, nil
}

func toUser(u *models.User) *User {
	return &User{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

func toNote(n *models.Note) *Note {
	out := &Note{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		ReminderTime: n.ReminderTime,
		Notified:     n.Notified,
	}
	if n.CategoryName != nil {
		out.Category = *n.CategoryName
	}
	return out
}

func toInput(in *NoteInput) service.NoteInput {
	return service.NoteInput{
		Title:        in.Title,
		Content:      in.Content,
		ReminderTime: in.ReminderTime,
		Category:     in.Category,
	}
}
