package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguacare/admin-api/internal/config"
	facilityhandler "github.com/linguacare/admin-api/internal/handler/facility"
	"github.com/linguacare/admin-api/internal/middleware"
	"github.com/linguacare/admin-api/internal/model"
	authservice "github.com/linguacare/admin-api/internal/service/auth"
	pkgauth "github.com/linguacare/admin-api/pkg/auth"
	"github.com/linguacare/admin-api/pkg/logger"
)

type stubUserRepo struct{}

func (stubUserRepo) Create(context.Context, *model.User) error { return errors.New("not implemented") }
func (stubUserRepo) Get(context.Context, uuid.UUID) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (stubUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (stubUserRepo) Update(context.Context, *model.User) error { return errors.New("not implemented") }
func (stubUserRepo) ListAdmins(context.Context) ([]*model.User, error) {
	return nil, errors.New("not implemented")
}

type stubFacilityRepo struct{}

func (stubFacilityRepo) Create(_ context.Context, f *model.Facility) error {
	f.ID = uuid.New()
	return nil
}
func (stubFacilityRepo) Get(context.Context, uuid.UUID) (*model.Facility, error) {
	return &model.Facility{}, nil
}
func (stubFacilityRepo) Update(context.Context, *model.Facility) error { return nil }
func (stubFacilityRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (stubFacilityRepo) List(context.Context) ([]*model.Facility, error) {
	return []*model.Facility{}, nil
}

// testEngine builds the full route table with a real auth middleware. Only
// the facility handler gets a backing repository; the other handlers are
// never reached by these tests.
func testEngine(t *testing.T) (*gin.Engine, func(model.Role) string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := pkgauth.NewJWTService("router-test-secret", time.Hour)
	log := &logger.Logger{ZL: zerolog.Nop()}
	authSvc := authservice.NewService(stubUserRepo{}, jwtSvc, time.Hour, log)
	authMW := middleware.NewAuthMiddleware(authSvc)

	engine := New(&config.Config{}, authMW, Handlers{
		Facility: facilityhandler.NewHandler(stubFacilityRepo{}),
	})

	token := func(role model.Role) string {
		user := &model.User{Email: "user@example.com", Role: role}
		user.ID = uuid.New()
		signed, err := jwtSvc.GenerateAccessToken(user)
		require.NoError(t, err)
		return signed
	}
	return engine, token
}

func doRequest(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

const facilityBody = `{"name":"Mercy General","street":"1 Main St","city":"San Francisco","state":"CA","zip_code":"94100","phone":"555-0100","latitude":37.77,"longitude":-122.42}`

func TestEntityWritesRequireAdminRole(t *testing.T) {
	engine, token := testEngine(t)

	for _, role := range []model.Role{model.RoleStaff, model.RoleInterpreter} {
		w := doRequest(engine, http.MethodPost, "/api/v1/facilities", token(role), facilityBody)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s must not create facilities", role)

		w = doRequest(engine, http.MethodDelete, "/api/v1/facilities/"+uuid.NewString(), token(role), "")
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s must not delete facilities", role)
	}

	w := doRequest(engine, http.MethodPost, "/api/v1/facilities", token(model.RoleAdmin), facilityBody)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEntityReadsAllowAnyAuthenticatedRole(t *testing.T) {
	engine, token := testEngine(t)

	w := doRequest(engine, http.MethodGet, "/api/v1/facilities", token(model.RoleInterpreter), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	engine, _ := testEngine(t)

	w := doRequest(engine, http.MethodGet, "/api/v1/facilities", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditLogsAreAdminOnly(t *testing.T) {
	engine, token := testEngine(t)

	w := doRequest(engine, http.MethodGet, "/api/v1/audit-logs", token(model.RoleStaff), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
