package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/timebank"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubAuth struct{ auth.AuthService }

func (stubAuth) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Password != "password123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{AccessToken: "token", AccessTokenExpiresAt: 1}, nil
}

type stubAttendance struct {
	attendance.AttendanceService
	actor user.Actor
}

func (s *stubAttendance) ClockIn(ctx context.Context, actor user.Actor, req attendance.ClockActionRequest) (attendance.ClockActionResponse, error) {
	s.actor = actor
	return attendance.ClockActionResponse{Status: "WORKING"}, nil
}

func (s *stubAttendance) ListRegularizations(ctx context.Context, actor user.Actor, status *attendance.RegularizationStatus) ([]attendance.RegularizationResponse, error) {
	return []attendance.RegularizationResponse{}, nil
}

type stubReport struct{ report.ReportService }

func (stubReport) Export(ctx context.Context, actor user.Actor, employeeID string, req report.ExportRequest) (report.ExportFile, error) {
	return report.ExportFile{Filename: "informe_daily_e1_2024-03-04.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("a,b\n")}, nil
}

type stubAdminUsers struct{ user.AdminUserService }

func (stubAdminUsers) Execute(ctx context.Context, actor user.Actor, req user.AdminUserRequest) (user.AdminUserResponse, error) {
	if req.Action != "create" {
		return user.AdminUserResponse{Error: user.ErrUnknownAction.Error()}, user.ErrUnknownAction
	}
	password := "Abcdefgh2345"
	sent := true
	return user.AdminUserResponse{
		User:              &user.UserResponse{ID: "u2", Email: req.Email},
		TemporaryPassword: &password,
		InviteEmailSent:   &sent,
	}, nil
}

type testServer struct {
	router     http.Handler
	jwt        *jwt.JWTService
	attendance *stubAttendance
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	translator, err := i18n.New("es")
	require.NoError(t, err)
	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")
	att := &stubAttendance{}

	router := NewRouter(config.AppConfig{Env: "test", AllowedOrigins: []string{"*"}}, jwtSvc, translator, Handlers{
		Auth:         NewAuthHandler(stubAuth{}),
		Attendance:   NewAttendanceHandler(att),
		Notification: NewNotificationHandler(struct{ notification.Service }{}, jwtSvc),
		Report:       NewReportHandler(stubReport{}),
		Schedule:     NewScheduleHandler(struct{ schedule.ScheduleService }{}),
		Absence:      NewAbsenceHandler(struct{ absence.AbsenceService }{}),
		TimeBank:     NewTimeBankHandler(struct{ timebank.TimeBankService }{}),
		Expense:      NewExpenseHandler(struct{ expense.ExpenseService }{}),
		AdminUser:    NewAdminUserHandler(stubAdminUsers{}),
	})
	return testServer{router: router, jwt: jwtSvc, attendance: att}
}

func (s testServer) token(t *testing.T, role user.Role, employeeID string) string {
	t.Helper()
	claims := jwt.Claims{UserID: "u1", Email: "ana@example.com", OrganizationID: "org-1", Role: role}
	if employeeID != "" {
		claims.EmployeeID = &employeeID
	}
	token, _, err := s.jwt.GenerateAccessToken(claims)
	require.NoError(t, err)
	return token
}

func (s testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRouter_Login(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{Email: "ana@example.com", Password: "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	assert.Equal(t, "token", resp["data"].(map[string]interface{})["access_token"])

	w = srv.do(http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{Email: "ana@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeBody(t, w)["success"].(bool))
}

func TestRouter_Login_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("invalid json"))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ClockIn(t *testing.T) {
	srv := newTestServer(t)

	t.Run("requires a token", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/attendance/clock-in", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("requires an employee profile", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/attendance/clock-in", srv.token(t, user.RoleAdmin, ""), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("passes the caller to the service", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/attendance/clock-in", srv.token(t, user.RoleEmployee, "e1"), attendance.ClockActionRequest{})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, user.Actor{UserID: "u1", EmployeeID: "e1", OrganizationID: "org-1", Role: user.RoleEmployee}, srv.attendance.actor)
		data := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "WORKING", data["status"])
	})
}

func TestRouter_RevokedToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, user.RoleEmployee, "e1")

	srv.jwt.RevokeToken(token)

	w := srv.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SSETokenRejectedAsAccessToken(t *testing.T) {
	srv := newTestServer(t)
	sseToken, _, err := srv.jwt.GenerateSSEToken("u1")
	require.NoError(t, err)

	w := srv.do(http.MethodGet, "/api/v1/attendance/status", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ManagerRoutes(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/api/v1/attendance/regularizations", srv.token(t, user.RoleEmployee, "e1"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(http.MethodGet, "/api/v1/attendance/regularizations", srv.token(t, user.RoleManager, "e2"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Export(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, user.RoleEmployee, "e1")

	w := srv.do(http.MethodGet, "/api/v1/attendance/export?period=daily&date=2024-03-04&format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="informe_daily_e1_2024-03-04.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestRouter_AdminUsers(t *testing.T) {
	srv := newTestServer(t)

	t.Run("admin only", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/admin/users", srv.token(t, user.RoleManager, "e1"), map[string]string{"action": "create"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/admin/users", srv.token(t, user.RoleAdmin, ""), map[string]string{
			"action": "create", "email": "new@example.com", "fullName": "Nueva", "role": "employee",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, "Abcdefgh2345", resp["temporaryPassword"])
		assert.Equal(t, true, resp["inviteEmailSent"])
		assert.NotContains(t, resp, "success")
	})

	t.Run("unknown action", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/admin/users", srv.token(t, user.RoleAdmin, ""), map[string]string{"action": "promote"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, user.ErrUnknownAction.Error(), decodeBody(t, w)["error"])
	})
}

func TestRouter_Locale(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login?lang=en", strings.NewReader(`{}`))
	req.Header.Set("Accept-Language", "es")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, "en", w.Header().Get("Content-Language"))
}

func TestRouter_StreamRequiresSSEToken(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/stream?token="+srv.token(t, user.RoleEmployee, "e1"), nil).WithContext(ctx)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
