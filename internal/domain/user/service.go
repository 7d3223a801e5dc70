package user

import "context"

type AdminUserService interface {
	// Execute dispatches one admin action. Business failures are reported in the
	// response and as the returned error so the handler can pick a status code.
	Execute(ctx context.Context, actor Actor, req AdminUserRequest) (AdminUserResponse, error)
	List(ctx context.Context, actor Actor) ([]UserResponse, error)
}
