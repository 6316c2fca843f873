package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/auth"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/session"
	"github.com/SAP-F-2025/training-service/internal/testutil"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "secret1"

func init() {
	gin.SetMode(gin.TestMode)
	auth.Cost = bcrypt.MinCost
}

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sm := services.NewServiceManager(
		postgres.NewRepository(db),
		nil,
		events.NewMockEventPublisher(logger),
		logger,
		validator.New(),
		services.ServiceOptions{DefaultUserPassword: "123456"},
	)
	sessions := session.New(session.Options{Lifetime: time.Hour})

	router := gin.New()
	NewHandlerManager(sm, sessions, utils.NewSlogLogger(logger)).SetupRoutes(router)

	csrf := CSRF([]byte("0123456789abcdef0123456789abcdef"), nil, logger)
	return &testServer{t: t, db: db, handler: sessions.LoadAndSave(csrf(router))}
}

// user inserts an active account that can sign in with testPassword.
func (s *testServer) user(email string, role models.UserRole, departmentID *uint) *models.User {
	s.t.Helper()
	u := testutil.SeedUser(s.t, s.db, email, role, departmentID)
	hash, err := auth.HashPassword(testPassword)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Model(u).Update("password_hash", hash).Error)
	return u
}

type client struct {
	s       *testServer
	cookies []*http.Cookie
}

func (s *testServer) client() *client { return &client{s: s} }

func (c *client) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(c.s.t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.s.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) login(email string) *client {
	c.s.t.Helper()
	rec := c.do(http.MethodPost, "/auth/login", services.LoginRequest{Email: email, Password: testPassword})
	require.Equal(c.s.t, http.StatusOK, rec.Code, rec.Body.String())
	return c
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// envelope mirrors SuccessResponse with a typed payload.
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.client().do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	c := s.client()

	rec := c.do(http.MethodGet, "/auth/departments", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodGet, "/auth/departments", nil, "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := newTestServer(t)
	c := s.client()

	rec := c.do(http.MethodGet, "/user/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/user/dashboard", nil, "Accept", "text/html,application/xhtml+xml")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login?next=%2Fuser%2Fdashboard", rec.Header().Get("Location"))

	rec = c.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/auth/departments", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "registration form lists departments anonymously")
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t)
	u := s.user("staff@example.com", models.RoleStaff, nil)
	c := s.client()

	rec := c.do(http.MethodPost, "/auth/login", services.LoginRequest{Email: "staff@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/auth/login?next=/user/trainings", services.LoginRequest{Email: "staff@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[envelope[loginResponse]](t, rec)
	assert.Equal(t, u.ID, login.Data.User.UserID)
	assert.Equal(t, "/user/trainings", login.Data.Redirect)

	rec = c.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[services.Principal](t, rec)
	assert.Equal(t, models.RoleStaff, me.Role)

	rec = c.do(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RejectsExternalRedirect(t *testing.T) {
	s := newTestServer(t)
	s.user("staff@example.com", models.RoleStaff, nil)

	rec := s.client().do(http.MethodPost, "/auth/login?next=//evil.example.com", services.LoginRequest{Email: "staff@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[envelope[loginResponse]](t, rec).Data.Redirect)
}

func TestRegisterAndChangePassword(t *testing.T) {
	s := newTestServer(t)
	c := s.client()

	rec := c.do(http.MethodPost, "/auth/register", services.RegisterRequest{FullName: "New Person", Email: "new@example.com", Password: testPassword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = c.do(http.MethodPost, "/auth/register", services.RegisterRequest{FullName: "New Person", Email: "new@example.com", Password: testPassword})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	c.login("new@example.com")
	rec = c.do(http.MethodPost, "/auth/change-password", services.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPost, "/auth/change-password", services.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "secret2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "session survives the token renewal")
}

func TestMalformedAndInvalidPayloads(t *testing.T) {
	s := newTestServer(t)
	s.user("admin@example.com", models.RoleAdmin, nil)
	c := s.client().login("admin@example.com")

	rec := c.do(http.MethodPost, "/admin/trainings", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/admin/trainings", services.TrainingRequest{Code: "bad code", Title: "Too"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", body.Message)

	rec = c.do(http.MethodGet, "/admin/trainings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/admin/trainings/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignmentFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin@example.com", models.RoleAdmin, nil)
	staff := s.user("staff@example.com", models.RoleStaff, nil)
	adminClient := s.client().login("admin@example.com")
	staffClient := s.client().login("staff@example.com")

	dept := decode[envelope[models.Department]](t,
		adminClient.do(http.MethodPost, "/admin/departments", services.DepartmentRequest{Name: "Engineering"})).Data
	level := decode[envelope[models.Level]](t,
		adminClient.do(http.MethodPost, "/admin/levels", services.LevelRequest{Name: "Basic"})).Data
	training := decode[envelope[models.Training]](t,
		adminClient.do(http.MethodPost, "/admin/trainings", services.TrainingRequest{Code: "CS101", Title: "Intro to Computing"})).Data
	require.NotZero(t, dept.ID)
	require.NotZero(t, level.ID)
	require.NotZero(t, training.ID)

	rec := adminClient.do(http.MethodPost, "/admin/training-sections",
		services.TrainingSectionRequest{TrainingID: training.ID, DepartmentID: dept.ID, LevelID: level.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Not yet assigned.
	rec = staffClient.do(http.MethodPost, "/user/trainings/"+itoa(training.ID)+"/start", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assignPath := "/admin/users/" + itoa(staff.ID) + "/trainings"
	rec = adminClient.do(http.MethodPost, assignPath, map[string]interface{}{"training_ids": []uint{training.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = adminClient.do(http.MethodPost, assignPath, map[string]interface{}{"training_ids": []uint{training.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[envelope[services.AssignResult]](t, rec).Data.Assigned)

	rec = adminClient.do(http.MethodGet, assignPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"training_ids":[`+itoa(training.ID)+`]`)

	rec = staffClient.do(http.MethodPost, "/user/trainings/"+itoa(training.ID)+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInProgress, decode[envelope[models.UserTraining]](t, rec).Data.Status)

	rec = staffClient.do(http.MethodPost, "/user/trainings/"+itoa(training.ID)+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decode[envelope[models.UserTraining]](t, rec).Data.Status)

	rec = staffClient.do(http.MethodGet, "/user/trainings?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.UserTraining](t, rec), 1)

	rec = staffClient.do(http.MethodGet, "/user/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[services.Dashboard](t, rec).Completed)

	rec = staffClient.do(http.MethodGet, "/user/career-path", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "staff without a department has no career path")

	rec = staffClient.do(http.MethodGet, "/reports/department-trainings?department_id="+itoa(dept.ID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = adminClient.do(http.MethodGet, "/reports/department-trainings?department_id="+itoa(dept.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[services.DepartmentReport](t, rec)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 100.0, report.Rows[0].CompletionRate)

	rec = adminClient.do(http.MethodGet, "/reports/department-trainings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = adminClient.do(http.MethodGet, "/reports/department-trainings/"+itoa(dept.ID)+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = adminClient.do(http.MethodGet, "/admin/audit-logs?event_type="+string(models.AuditTrainingCompleted), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[services.AuditLogListResponse](t, rec)
	assert.Equal(t, int64(1), logs.Total)

	rec = adminClient.do(http.MethodDelete, "/admin/users/"+itoa(admin.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "admins cannot delete themselves")
}

func TestCSRFRejectsCrossSiteMutations(t *testing.T) {
	s := newTestServer(t)
	s.user("staff@example.com", models.RoleStaff, nil)
	c := s.client().login("staff@example.com")

	rec := c.do(http.MethodPost, "/auth/logout", nil, "Sec-Fetch-Site", "cross-site")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodGet, "/auth/me", nil, "Sec-Fetch-Site", "cross-site")
	assert.Equal(t, http.StatusOK, rec.Code, "safe methods pass")

	rec = c.do(http.MethodPost, "/auth/logout", nil, "Sec-Fetch-Site", "same-origin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
