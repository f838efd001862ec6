package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "noteminder.v1.NoteService"

const (
	RegisterMethod       = "/" + ServiceName + "/Register"
	LoginMethod          = "/" + ServiceName + "/Login"
	ListCategoriesMethod = "/" + ServiceName + "/ListCategories"
	CreateNoteMethod     = "/" + ServiceName + "/CreateNote"
	ListNotesMethod      = "/" + ServiceName + "/ListNotes"
	GetNoteMethod        = "/" + ServiceName + "/GetNote"
	UpdateNoteMethod     = "/" + ServiceName + "/UpdateNote"
	DeleteNoteMethod     = "/" + ServiceName + "/DeleteNote"
	ListUsersMethod      = "/" + ServiceName + "/ListUsers"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type Note struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	ReminderTime string `json:"reminder_time"`
	Notified     bool   `json:"notified"`
	Category     string `json:"category,omitempty"`
}

type NoteInput struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ReminderTime string `json:"reminder_time"`
	Category     string `json:"category,omitempty"`
}

type UpdateNoteRequest struct {
	ID int64 `json:"id"`
	NoteInput
}

type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
}

type ListUsersRequest struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// NoteServiceServer is the server API of noteminder.v1.NoteService.
type NoteServiceServer interface {
	Register(context.Context, *Credentials) (*User, error)
	Login(context.Context, *Credentials) (*LoginResponse, error)
	ListCategories(context.Context, *emptypb.Empty) (*ListCategoriesResponse, error)
	CreateNote(context.Context, *NoteInput) (*Note, error)
	ListNotes(context.Context, *emptypb.Empty) (*ListNotesResponse, error)
	GetNote(context.Context, *wrapperspb.Int64Value) (*Note, error)
	UpdateNote(context.Context, *UpdateNoteRequest) (*Note, error)
	DeleteNote(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
}

// unary builds the method descriptor of one unary RPC.
func unary[Req, Resp any](name string, call func(NoteServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(NoteServiceServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var NoteServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", NoteServiceServer.Register),
		unary("Login", NoteServiceServer.Login),
		unary("ListCategories", NoteServiceServer.ListCategories),
		unary("CreateNote", NoteServiceServer.CreateNote),
		unary("ListNotes", NoteServiceServer.ListNotes),
		unary("GetNote", NoteServiceServer.GetNote),
		unary("UpdateNote", NoteServiceServer.UpdateNote),
		unary("DeleteNote", NoteServiceServer.DeleteNote),
		unary("ListUsers", NoteServiceServer.ListUsers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "noteminder/v1/notes",
}

func RegisterNoteServiceServer(s grpc.ServiceRegistrar, srv NoteServiceServer) {
	s.RegisterService(&NoteServiceDesc, srv)
}
