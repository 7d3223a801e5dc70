package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

const (
	temporaryPasswordLength = 12
	// Ambiguous characters (0/O, 1/l/I) are left out.
	temporaryPasswordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type adminUserServiceImpl struct {
	tx           database.Transactor
	userRepo     user.UserRepository
	employeeRepo employee.EmployeeRepository
	orgRepo      organization.OrganizationRepository
	emailService email.EmailService
	now          func() time.Time
}

func NewAdminUserService(
	tx database.Transactor,
	userRepo user.UserRepository,
	employeeRepo employee.EmployeeRepository,
	orgRepo organization.OrganizationRepository,
	emailService email.EmailService,
	now func() time.Time,
) user.AdminUserService {
	if now == nil {
		now = time.Now
	}
	return &adminUserServiceImpl{
		tx:           tx,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		orgRepo:      orgRepo,
		emailService: emailService,
		now:          now,
	}
}

// Execute implements user.AdminUserService.
func (s *adminUserServiceImpl) Execute(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	if !actor.IsAdmin() {
		return failure(user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return user.AdminUserResponse{Error: "validation failed", Details: verrs.ToMap()}, err
		}
		return failure(err)
	}

	var (
		resp user.AdminUserResponse
		err  error
	)
	switch user.AdminAction(req.Action) {
	case user.ActionCreate:
		resp, err = s.create(ctx, actor, req)
	case user.ActionChangeRole:
		resp, err = s.changeRole(ctx, actor, req)
	case user.ActionResetPassword:
		resp, err = s.resetPassword(ctx, actor, req)
	case user.ActionToggleActive:
		resp, err = s.toggleActive(ctx, actor, req)
	case user.ActionUnlockAccount:
		resp, err = s.unlock(ctx, actor, req)
	default:
		err = user.ErrUnknownAction
	}
	if err != nil {
		return failure(err)
	}

	slog.Info("admin user action", "action", req.Action, "actor", actor.UserID, "user_id", resp.User.ID)
	return resp, nil
}

func failure(err error) (user.AdminUserResponse, error) {
	return user.AdminUserResponse{Error: err.Error()}, err
}

func (s *adminUserServiceImpl) create(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return user.AdminUserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.AdminUserResponse{}, user.ErrUserEmailExists
	}

	password, hash, err := newTemporaryPassword()
	if err != nil {
		return user.AdminUserResponse{}, err
	}

	var created user.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.userRepo.Create(ctx, user.User{
			OrganizationID:     actor.OrganizationID,
			Email:              req.Email,
			FullName:           req.FullName,
			PasswordHash:       hash,
			Role:               user.Role(req.Role),
			IsActive:           true,
			MustChangePassword: true,
		})
		if err != nil {
			return err
		}
		if req.CreateEmployee == nil || !*req.CreateEmployee {
			return nil
		}

		if req.EmployeeCode != nil && *req.EmployeeCode != "" {
			taken, err := s.employeeRepo.ExistsByCode(ctx, actor.OrganizationID, *req.EmployeeCode)
			if err != nil {
				return err
			}
			if taken {
				return employee.ErrEmployeeCodeExists
			}
		}
		emp, err := s.employeeRepo.Create(ctx, employee.Employee{
			OrganizationID: actor.OrganizationID,
			UserID:         &created.ID,
			FullName:       req.FullName,
			EmployeeCode:   req.EmployeeCode,
			IsActive:       true,
		})
		if err != nil {
			return err
		}
		created.EmployeeID = &emp.ID
		return nil
	})
	if err != nil {
		return user.AdminUserResponse{}, err
	}

	resp := s.respond(created)
	resp.TemporaryPassword = &password
	if req.SendInvite == nil || *req.SendInvite {
		sent := s.sendInvitation(ctx, created, password)
		resp.InviteEmailSent = &sent
	}
	return resp, nil
}

// sendInvitation never fails the action: the temporary password is returned to
// the admin either way.
func (s *adminUserServiceImpl) sendInvitation(ctx context.Context, u user.User, password string) bool {
	org, err := s.orgRepo.GetByID(ctx, u.OrganizationID)
	if err != nil {
		slog.Warn("invitation skipped, organization lookup failed", "user_id", u.ID, "error", err)
		return false
	}
	sent, err := s.emailService.SendInvitation(u.Email, email.InvitationData{
		FullName:          u.FullName,
		OrganizationName:  org.Name,
		Email:             u.Email,
		TemporaryPassword: password,
	})
	if err != nil {
		slog.Error("failed to send invitation", "user_id", u.ID, "error", err)
		return false
	}
	return sent
}

func (s *adminUserServiceImpl) changeRole(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	if req.UserID == actor.UserID {
		return user.AdminUserResponse{}, user.ErrCannotModifySelf
	}
	target, err := s.userRepo.GetByID(ctx, req.UserID, actor.OrganizationID)
	if err != nil {
		return user.AdminUserResponse{}, err
	}
	if err := s.userRepo.UpdateRole(ctx, target.ID, user.Role(req.Role)); err != nil {
		return user.AdminUserResponse{}, err
	}
	target.Role = user.Role(req.Role)
	return s.respond(target), nil
}

func (s *adminUserServiceImpl) resetPassword(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	target, err := s.userRepo.GetByID(ctx, req.UserID, actor.OrganizationID)
	if err != nil {
		return user.AdminUserResponse{}, err
	}
	password, hash, err := newTemporaryPassword()
	if err != nil {
		return user.AdminUserResponse{}, err
	}
	if err := s.userRepo.UpdatePassword(ctx, target.ID, hash, true); err != nil {
		return user.AdminUserResponse{}, err
	}
	target.MustChangePassword = true

	sent, err := s.emailService.SendTemporaryPassword(target.Email, email.TemporaryPasswordData{
		FullName:          target.FullName,
		TemporaryPassword: password,
	})
	if err != nil {
		slog.Error("failed to send temporary password", "user_id", target.ID, "error", err)
	}

	resp := s.respond(target)
	resp.TemporaryPassword = &password
	resp.InviteEmailSent = &sent
	return resp, nil
}

func (s *adminUserServiceImpl) toggleActive(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	if req.UserID == actor.UserID {
		return user.AdminUserResponse{}, user.ErrCannotModifySelf
	}
	target, err := s.userRepo.GetByID(ctx, req.UserID, actor.OrganizationID)
	if err != nil {
		return user.AdminUserResponse{}, err
	}
	if err := s.userRepo.SetActive(ctx, target.ID, !target.IsActive); err != nil {
		return user.AdminUserResponse{}, err
	}
	target.IsActive = !target.IsActive
	return s.respond(target), nil
}

func (s *adminUserServiceImpl) unlock(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	target, err := s.userRepo.GetByID(ctx, req.UserID, actor.OrganizationID)
	if err != nil {
		return user.AdminUserResponse{}, err
	}
	now := s.now()
	if !target.IsLocked(now) && target.FailedLoginAttempts == 0 {
		return user.AdminUserResponse{}, user.ErrAccountNotLocked
	}
	if err := s.userRepo.Unlock(ctx, target.ID, now); err != nil {
		return user.AdminUserResponse{}, err
	}
	target.LockedUntil = nil
	target.FailedLoginAttempts = 0
	return s.respond(target), nil
}

// List implements user.AdminUserService.
func (s *adminUserServiceImpl) List(ctx context.Context, actor user.Actor) ([]user.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, user.ErrAdminPrivilegeRequired
	}
	users, err := s.userRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.NewUserResponse(u, now))
	}
	return out, nil
}

func (s *adminUserServiceImpl) respond(u user.User) user.AdminUserResponse {
	resp := user.NewUserResponse(u, s.now())
	return user.AdminUserResponse{User: &resp}
}

func newTemporaryPassword() (password, hash string, err error) {
	buf := make([]byte, temporaryPasswordLength)
	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", user.ErrTemporaryPasswordFailure, err)
		}
		buf[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	hashed, err := bcrypt.GenerateFromPassword(buf, bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", user.ErrTemporaryPasswordFailure, err)
	}
	return string(buf), string(hashed), nil
}
