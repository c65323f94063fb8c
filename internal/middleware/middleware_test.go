package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/middleware"
	"github.com/SscSPs/licoreria_pos/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

const jwtSecret = "middleware-test-secret"

type MiddlewareTestSuite struct {
	suite.Suite
	logs *bytes.Buffer
}

func (suite *MiddlewareTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.logs = &bytes.Buffer{}
}

func TestMiddleware(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func (suite *MiddlewareTestSuite) newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	logger := slog.New(slog.NewJSONHandler(suite.logs, nil))
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		operatorID, _ := middleware.GetOperatorIDFromContext(c)
		c.String(http.StatusOK, operatorID)
	})
	return r
}

func (suite *MiddlewareTestSuite) get(r *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func (suite *MiddlewareTestSuite) TestAuthAcceptsValidToken() {
	token, err := utils.GenerateJWT("ana", jwtSecret, time.Hour, "test")
	suite.Require().NoError(err)

	w := suite.get(suite.newRouter(middleware.AuthMiddleware(jwtSecret)), bearer(token))

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("ana", w.Body.String())
	suite.Contains(suite.logs.String(), `"operator_id":"ana"`)
}

func (suite *MiddlewareTestSuite) TestAuthRejections() {
	r := suite.newRouter(middleware.AuthMiddleware(jwtSecret))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ana",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	expiredToken, err := expired.SignedString([]byte(jwtSecret))
	suite.Require().NoError(err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noSubjectToken, err := noSubject.SignedString([]byte(jwtSecret))
	suite.Require().NoError(err)

	otherSecret, err := utils.GenerateJWT("ana", "another-secret", time.Hour, "test")
	suite.Require().NoError(err)

	cases := map[string]http.Header{
		"missing header": {},
		"wrong scheme":   {"Authorization": {"Basic abc"}},
		"expired":        bearer(expiredToken),
		"no subject":     bearer(noSubjectToken),
		"wrong secret":   bearer(otherSecret),
	}
	for name, header := range cases {
		suite.Run(name, func() {
			w := suite.get(r, header)
			suite.Equal(http.StatusUnauthorized, w.Code)
		})
	}
}

func (suite *MiddlewareTestSuite) TestRequestIDIsEchoedOrGenerated() {
	r := suite.newRouter()

	w := suite.get(r, http.Header{"X-Request-Id": {"req-42"}})
	suite.Equal("req-42", w.Header().Get("X-Request-ID"))

	w = suite.get(r, nil)
	suite.Len(w.Header().Get("X-Request-ID"), 36)
	suite.Contains(suite.logs.String(), "Request completed")
}

func (suite *MiddlewareTestSuite) TestRateLimitRejectsAfterQuota() {
	limiter, err := middleware.NewRateLimiter("2-M")
	suite.Require().NoError(err)
	r := suite.newRouter(middleware.RateLimit(limiter))

	first := suite.get(r, nil)
	suite.Equal(http.StatusOK, first.Code)
	suite.Equal("1", first.Header().Get("X-RateLimit-Remaining"))
	suite.Equal(http.StatusOK, suite.get(r, nil).Code)
	suite.Equal(http.StatusTooManyRequests, suite.get(r, nil).Code)
}

func (suite *MiddlewareTestSuite) TestRateLimitIsPerOperator() {
	limiter, err := middleware.NewRateLimiter("1-M")
	suite.Require().NoError(err)
	r := suite.newRouter(middleware.AuthMiddleware(jwtSecret), middleware.RateLimit(limiter))

	ana, err := utils.GenerateJWT("ana", jwtSecret, time.Hour, "test")
	suite.Require().NoError(err)
	luis, err := utils.GenerateJWT("luis", jwtSecret, time.Hour, "test")
	suite.Require().NoError(err)

	suite.Equal(http.StatusOK, suite.get(r, bearer(ana)).Code)
	suite.Equal(http.StatusTooManyRequests, suite.get(r, bearer(ana)).Code)
	suite.Equal(http.StatusOK, suite.get(r, bearer(luis)).Code)
}

func (suite *MiddlewareTestSuite) TestNewRateLimiterRejectsBadFormat() {
	_, err := middleware.NewRateLimiter("often")
	suite.Error(err)
}

func (suite *MiddlewareTestSuite) TestHTTPMetricsCountsByRoute() {
	reg := prometheus.NewRegistry()
	r := suite.newRouter(middleware.NewHTTPMetrics(reg).Middleware())

	suite.get(r, nil)
	suite.get(r, nil)
	req, _ := http.NewRequest(http.MethodGet, "/nowhere", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	count, err := testutil.GatherAndCount(reg, "pos_http_requests_total")
	suite.Require().NoError(err)
	suite.Equal(2, count)
}
