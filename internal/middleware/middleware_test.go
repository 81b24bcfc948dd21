package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Wrap(errors.New("bad token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return s.claims, nil
}

type recordingObserver struct {
	paths []string
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.paths = append(r.paths, method+" "+path)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(claims *models.JWTClaims, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWT(stubValidator{claims: claims})}, guards...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/students/:id/points", chain...)
	return r
}

func serve(r http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newRouter(&models.JWTClaims{UserID: "T-1", Role: models.RoleTeacher})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/S-1/points", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/S-1/points", "bad").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/students/S-1/points", "good").Code)
}

func TestRBACRolesAndSelf(t *testing.T) {
	guard := RBAC(string(models.RoleTeacher), AllowSelf)

	teacher := newRouter(&models.JWTClaims{UserID: "T-1", Role: models.RoleTeacher}, guard)
	assert.Equal(t, http.StatusNoContent, serve(teacher, "/students/S-9/points", "good").Code)

	student := newRouter(&models.JWTClaims{UserID: "S-1", Role: models.RoleStudent}, guard)
	assert.Equal(t, http.StatusNoContent, serve(student, "/students/S-1/points", "good").Code)
	assert.Equal(t, http.StatusForbidden, serve(student, "/students/S-2/points", "good").Code)

	strict := newRouter(&models.JWTClaims{UserID: "S-1", Role: models.RoleStudent}, RequireRoles(models.RoleTeacher))
	assert.Equal(t, http.StatusForbidden, serve(strict, "/students/S-1/points", "good").Code)
}

func TestResponseMetaAdvertisesPollInterval(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta(5 * time.Second))
	r.GET("/state", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	rec := serve(r, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5000", rec.Header().Get(PollIntervalHeader))
	assert.JSONEq(t, `{"poll_interval_ms":5000,"cache_hit":true}`, rec.Body.String())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, "/sessions/SES-1", "")
	serve(r, "/nowhere", "")
	assert.Equal(t, []string{"GET /sessions/:id", "GET unmatched"}, obs.paths)
}

func TestAuditLogsSuccessfulActions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(JWT(stubValidator{claims: &models.JWTClaims{UserID: "T-1", Role: models.RoleTeacher}}))
	r.POST("/ok", Audit(zap.New(core), "session.start"), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", Audit(zap.New(core), "session.start"), func(c *gin.Context) { c.Status(http.StatusConflict) })

	for _, target := range []string{"/ok", "/fail"} {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "T-1", entries[0].ContextMap()["actor_id"])
	assert.Equal(t, "session.start", entries[0].ContextMap()["action"])
}
