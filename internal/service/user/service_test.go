package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopTx struct{}

func (nopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type memUsers struct {
	user.UserRepository
	items map[string]*user.User
	seq   int
}

func (m *memUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq+100)
	m.items[u.ID] = &u
	return u, nil
}

func (m *memUsers) GetByID(ctx context.Context, id, organizationID string) (user.User, error) {
	u, ok := m.items[id]
	if !ok || u.OrganizationID != organizationID {
		return user.User{}, user.ErrUserNotFound
	}
	return *u, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.items {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ListByOrganization(ctx context.Context, organizationID string) ([]user.User, error) {
	var out []user.User
	for _, u := range m.items {
		if u.OrganizationID == organizationID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateRole(ctx context.Context, id string, role user.Role) error {
	m.items[id].Role = role
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	m.items[id].PasswordHash = passwordHash
	m.items[id].MustChangePassword = mustChange
	return nil
}

func (m *memUsers) SetActive(ctx context.Context, id string, active bool) error {
	m.items[id].IsActive = active
	return nil
}

func (m *memUsers) Unlock(ctx context.Context, id string, at time.Time) error {
	m.items[id].LockedUntil = nil
	m.items[id].FailedLoginAttempts = 0
	return nil
}

type memEmployees struct {
	employee.EmployeeRepository
	items []employee.Employee
}

func (m *memEmployees) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = fmt.Sprintf("emp-%d", len(m.items)+100)
	m.items = append(m.items, e)
	return e, nil
}

func (m *memEmployees) ExistsByCode(ctx context.Context, organizationID, code string) (bool, error) {
	for _, e := range m.items {
		if e.OrganizationID == organizationID && e.EmployeeCode != nil && *e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeOrgs struct {
	organization.OrganizationRepository
}

func (fakeOrgs) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	return organization.Organization{ID: id, Name: "Acme"}, nil
}

type recordingMailer struct {
	invitations []email.InvitationData
	resets      []email.TemporaryPasswordData
}

func (r *recordingMailer) SendInvitation(to string, data email.InvitationData) (bool, error) {
	r.invitations = append(r.invitations, data)
	return true, nil
}

func (r *recordingMailer) SendTemporaryPassword(to string, data email.TemporaryPasswordData) (bool, error) {
	r.resets = append(r.resets, data)
	return true, nil
}

type adminFixture struct {
	svc       user.AdminUserService
	users     *memUsers
	employees *memEmployees
	mailer    *recordingMailer
	admin     user.Actor
	now       time.Time
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users: &memUsers{items: map[string]*user.User{
			"u-1": {ID: "u-1", OrganizationID: "org-1", Email: "admin@acme.test", Role: user.RoleAdmin, IsActive: true},
			"u-2": {ID: "u-2", OrganizationID: "org-1", Email: "lucia@acme.test", Role: user.RoleEmployee, IsActive: true},
			"u-3": {ID: "u-3", OrganizationID: "org-2", Email: "other@corp.test", Role: user.RoleEmployee, IsActive: true},
		}},
		employees: &memEmployees{},
		mailer:    &recordingMailer{},
		admin:     user.Actor{UserID: "u-1", OrganizationID: "org-1", Role: user.RoleAdmin},
		now:       time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAdminUserService(nopTx{}, f.users, f.employees, fakeOrgs{}, f.mailer, func() time.Time { return f.now })
	return f
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestAdminUserService_Create(t *testing.T) {
	f := newAdminFixture()

	resp, err := f.svc.Execute(context.Background(), f.admin, user.AdminUserRequest{
		Action:         "create",
		Email:          " Marta@Acme.test ",
		FullName:       "Marta Ruiz",
		CreateEmployee: boolPtr(true),
		EmployeeCode:   strPtr("E-042"),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "marta@acme.test", resp.User.Email)
	assert.Equal(t, "employee", resp.User.Role)
	assert.True(t, resp.User.MustChangePassword)
	require.NotNil(t, resp.User.EmployeeID)
	require.Len(t, f.employees.items, 1)
	assert.Equal(t, resp.User.ID, *f.employees.items[0].UserID)

	require.NotNil(t, resp.TemporaryPassword)
	assert.Len(t, *resp.TemporaryPassword, temporaryPasswordLength)
	stored := f.users.items[resp.User.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(*resp.TemporaryPassword)))

	require.NotNil(t, resp.InviteEmailSent)
	assert.True(t, *resp.InviteEmailSent)
	require.Len(t, f.mailer.invitations, 1)
	assert.Equal(t, "Acme", f.mailer.invitations[0].OrganizationName)
	assert.Equal(t, *resp.TemporaryPassword, f.mailer.invitations[0].TemporaryPassword)
}

func TestAdminUserService_Create_Errors(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	resp, err := f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "create", Email: "lucia@acme.test", FullName: "Lucía"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
	assert.Equal(t, user.ErrUserEmailExists.Error(), resp.Error)

	resp, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "create", Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, resp.Details, "email")
	assert.Contains(t, resp.Details, "fullName")

	_, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{
		Action: "create", Email: "a@acme.test", FullName: "A", CreateEmployee: boolPtr(true), EmployeeCode: strPtr("E-1"), SendInvite: boolPtr(false),
	})
	require.NoError(t, err)
	_, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{
		Action: "create", Email: "b@acme.test", FullName: "B", CreateEmployee: boolPtr(true), EmployeeCode: strPtr("E-1"), SendInvite: boolPtr(false),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
	assert.Empty(t, f.mailer.invitations)

	resp, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "promote", UserID: "u-2"})
	require.Error(t, err)
	assert.Contains(t, resp.Details, "action")
}

func TestAdminUserService_RequiresAdmin(t *testing.T) {
	f := newAdminFixture()
	manager := user.Actor{UserID: "u-9", OrganizationID: "org-1", Role: user.RoleManager}

	_, err := f.svc.Execute(context.Background(), manager, user.AdminUserRequest{Action: "toggle-active", UserID: "u-2"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = f.svc.List(context.Background(), manager)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestAdminUserService_ChangeRoleAndToggle(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	resp, err := f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "change-role", UserID: "u-2", Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.User.Role)
	assert.Equal(t, user.RoleManager, f.users.items["u-2"].Role)

	resp, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "toggle-active", UserID: "u-2"})
	require.NoError(t, err)
	assert.False(t, resp.User.IsActive)

	_, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "toggle-active", UserID: "u-1"})
	assert.ErrorIs(t, err, user.ErrCannotModifySelf)
	_, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "change-role", UserID: "u-1", Role: "employee"})
	assert.ErrorIs(t, err, user.ErrCannotModifySelf)

	_, err = f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "toggle-active", UserID: "u-3"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAdminUserService_ResetPassword(t *testing.T) {
	f := newAdminFixture()

	resp, err := f.svc.Execute(context.Background(), f.admin, user.AdminUserRequest{Action: "reset-password", UserID: "u-2"})

	require.NoError(t, err)
	require.NotNil(t, resp.TemporaryPassword)
	assert.True(t, f.users.items["u-2"].MustChangePassword)
	require.Len(t, f.mailer.resets, 1)
	assert.Equal(t, *resp.TemporaryPassword, f.mailer.resets[0].TemporaryPassword)
}

func TestAdminUserService_Unlock(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "unlock-account", UserID: "u-2"})
	assert.ErrorIs(t, err, user.ErrAccountNotLocked)

	until := f.now.Add(10 * time.Minute)
	f.users.items["u-2"].LockedUntil = &until
	f.users.items["u-2"].FailedLoginAttempts = 5

	resp, err := f.svc.Execute(ctx, f.admin, user.AdminUserRequest{Action: "unlock-account", UserID: "u-2"})
	require.NoError(t, err)
	assert.False(t, resp.User.IsLocked)
	assert.Zero(t, f.users.items["u-2"].FailedLoginAttempts)
}

func TestAdminUserService_List(t *testing.T) {
	f := newAdminFixture()

	users, err := f.svc.List(context.Background(), f.admin)

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestNewTemporaryPassword(t *testing.T) {
	a, hash, err := newTemporaryPassword()
	require.NoError(t, err)
	b, _, err := newTemporaryPassword()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.Contains(t, temporaryPasswordAlphabet, string(c))
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(a)))
}
