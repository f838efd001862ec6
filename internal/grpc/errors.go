package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"noteminder/internal/auth"
	"noteminder/repository"
)

// toStatus maps domain errors to gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codes.Internal
	switch {
	case errors.Is(err, repository.ErrDuplicateUser):
		code = codes.AlreadyExists
	case errors.Is(err, repository.ErrInvalidTimestamp),
		errors.Is(err, repository.ErrUnknownCategory),
		errors.Is(err, auth.ErrInvalidInput):
		code = codes.InvalidArgument
	case errors.Is(err, repository.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, repository.ErrPermissionDenied):
		code = codes.PermissionDenied
	case errors.Is(err, auth.ErrInvalidCredentials):
		code = codes.Unauthenticated
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}
